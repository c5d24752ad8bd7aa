package soil

import (
	"sort"

	"soilsense/models"
)

type advice struct {
	low  string
	high string
}

var adviceTable = map[models.MeasurementName]advice{
	models.Moisture: {
		low:  "Soil moisture is low: increase irrigation",
		high: "Soil moisture is high: reduce irrigation and improve drainage",
	},
	models.Temperature: {
		low:  "Soil temperature is low: apply mulch or delay planting until the soil warms",
		high: "Soil temperature is high: apply mulch or shade to cool the soil",
	},
	models.Conductivity: {
		low:  "Conductivity is low: nutrients may be depleted, consider fertilization",
		high: "Conductivity is high: leach salts with irrigation and reduce fertilizer application",
	},
	models.PH: {
		low:  "Soil is too acidic: apply lime to raise pH",
		high: "Soil is too alkaline: apply sulfur or organic matter to lower pH",
	},
	models.Nitrogen: {
		low:  "Nitrogen is low: apply nitrogen-rich fertilizer",
		high: "Nitrogen is high: reduce fertilizer application",
	},
	models.Phosphorus: {
		low:  "Phosphorus is low: apply phosphate fertilizer",
		high: "Phosphorus is high: reduce phosphate fertilizer application",
	},
	models.Potassium: {
		low:  "Potassium is low: apply potash fertilizer",
		high: "Potassium is high: reduce potash fertilizer application",
	},
	models.Salinity: {
		low:  "Salinity reading is below range: check sensor calibration",
		high: "Salinity is high: flush soil with clean water and reduce fertilizer application",
	},
}

const urgentPrefix = "Urgent: "

var canonicalIndex = func() map[models.MeasurementName]int {
	idx := make(map[models.MeasurementName]int, len(models.MeasurementNames))
	for i, n := range models.MeasurementNames {
		idx[n] = i
	}
	return idx
}()

// Recommend turns warning and critical classifications into remediation
// text, one line per offending measurement, in canonical parameter order.
// The result is never nil.
func Recommend(cs []Classification) []string {
	flagged := make([]Classification, 0, len(cs))
	for _, c := range cs {
		if c.Severity == SeverityWarning || c.Severity == SeverityCritical {
			flagged = append(flagged, c)
		}
	}
	sort.SliceStable(flagged, func(i, j int) bool {
		return canonicalIndex[flagged[i].Name] < canonicalIndex[flagged[j].Name]
	})

	out := make([]string, 0, len(flagged))
	for _, c := range flagged {
		a, ok := adviceTable[c.Name]
		if !ok {
			continue
		}
		msg := a.low
		if c.Direction == DirectionHigh {
			msg = a.high
		}
		if c.Severity == SeverityCritical {
			msg = urgentPrefix + msg
		}
		out = append(out, msg)
	}
	return out
}
