package soil

import (
	"strings"
	"time"

	"soilsense/models"
)

// DefaultUnits is attached when a payload carries a value without a unit.
var DefaultUnits = map[models.MeasurementName]string{
	models.Moisture:     "%",
	models.Temperature:  "C",
	models.Conductivity: "µS/cm",
	models.PH:           "pH",
	models.Nitrogen:     "mg/kg",
	models.Phosphorus:   "mg/kg",
	models.Potassium:    "mg/kg",
	models.Salinity:     "ppm",
}

// Validate rejects payloads that cannot be attributed to a device.
func Validate(p models.ReadingPayload) error {
	if strings.TrimSpace(p.DeviceID) == "" {
		return &ValidationError{Field: "deviceId", Message: "Device ID is required"}
	}
	return nil
}

// BuildMeasurements copies only the keys the device sent.
func BuildMeasurements(raw []models.RawMeasurement) models.Measurements {
	m := make(models.Measurements, len(raw))
	for _, r := range raw {
		if !r.Value.Set {
			continue
		}
		unit := strings.TrimSpace(r.Unit)
		if unit == "" {
			unit = DefaultUnits[r.Name]
		}
		m[r.Name] = models.Measurement{Value: r.Value.Value, Unit: unit}
	}
	return m
}

// assemble builds a fully derived Reading from a validated payload.
func assemble(p models.ReadingPayload, m models.Measurements, ev Evaluation, now time.Time) models.Reading {
	r := models.Reading{
		DeviceID:     strings.TrimSpace(p.DeviceID),
		DeviceName:   strings.TrimSpace(p.DeviceName),
		Location:     strings.TrimSpace(p.Location),
		FarmName:     strings.TrimSpace(p.FarmName),
		CropType:     strings.TrimSpace(p.CropType),
		Depth:        string(p.Depth),
		Notes:        p.Notes,
		Measurements: m,
		Battery:      p.Battery(),
		Connection:   p.Connection(),
		SoilHealth:   ev.SoilHealth,
		Status:       ev.Status,
		Timestamp:    now,
	}
	r.Recommendations = Recommend(ev.Classifications)
	r.NPKRatio = NPKRatio(m[models.Nitrogen].Value, m[models.Phosphorus].Value, m[models.Potassium].Value)
	return r
}
