package soil

import (
	"math"
	"time"

	"soilsense/models"

	"github.com/montanaflynn/stats"
)

// Stat summarizes one measurement over a window.
type Stat struct {
	Avg     float64 `json:"avg"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Samples int     `json:"samples"`
}

// Summary is the windowed statistics report for one device. Every
// recognized measurement has a key; it is nil when no reading in the
// window carried a value for it.
type Summary struct {
	DeviceID     string                           `json:"deviceId"`
	Start        time.Time                        `json:"start"`
	End          time.Time                        `json:"end"`
	Count        int                              `json:"count"`
	Measurements map[models.MeasurementName]*Stat `json:"measurements"`
}

// Summarize computes per-measurement mean and extremes over readings.
// Absent, null and non-finite values are left out of both sum and count. An empty
// selection is ErrNotFound, not an all-null summary.
func Summarize(deviceID string, readings []models.Reading, start, end time.Time) (*Summary, error) {
	if len(readings) == 0 {
		return nil, ErrNotFound
	}
	sum := &Summary{
		DeviceID:     deviceID,
		Start:        start,
		End:          end,
		Count:        len(readings),
		Measurements: make(map[models.MeasurementName]*Stat, len(models.MeasurementNames)),
	}
	for _, name := range models.MeasurementNames {
		var data stats.Float64Data
		for _, r := range readings {
			if v, ok := r.Measurements.Value(name); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
				data = append(data, v)
			}
		}
		if len(data) == 0 {
			sum.Measurements[name] = nil
			continue
		}
		avg, err := data.Mean()
		if err != nil {
			return nil, err
		}
		lo, err := data.Min()
		if err != nil {
			return nil, err
		}
		hi, err := data.Max()
		if err != nil {
			return nil, err
		}
		sum.Measurements[name] = &Stat{Avg: avg, Min: lo, Max: hi, Samples: len(data)}
	}
	return sum, nil
}
