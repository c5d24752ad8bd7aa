package soil

import (
	"fmt"
	"os"

	"soilsense/models"

	"gopkg.in/yaml.v2"
)

// Band is the acceptable range of one measurement plus the wider critical
// bounds around it. CriticalLow <= Low <= High <= CriticalHigh.
type Band struct {
	Low          float64 `json:"low"`
	High         float64 `json:"high"`
	CriticalLow  float64 `json:"criticalLow"`
	CriticalHigh float64 `json:"criticalHigh"`
}

func (b Band) validate() error {
	if !(b.CriticalLow <= b.Low && b.Low <= b.High && b.High <= b.CriticalHigh) {
		return fmt.Errorf("bounds must satisfy criticalLow <= low <= high <= criticalHigh, got %v/%v/%v/%v",
			b.CriticalLow, b.Low, b.High, b.CriticalHigh)
	}
	return nil
}

// Thresholds is the per-measurement threshold table. It is built once at
// startup and only read afterwards, so it is safe for concurrent use.
type Thresholds struct {
	bands map[models.MeasurementName]Band
}

// pH is treated as a linear quantity like every other parameter.
var defaultBands = map[models.MeasurementName]Band{
	models.Moisture:     {Low: 20, High: 60, CriticalLow: 5, CriticalHigh: 85},       // %
	models.Temperature:  {Low: 10, High: 30, CriticalLow: 0, CriticalHigh: 40},       // °C
	models.Conductivity: {Low: 200, High: 2000, CriticalLow: 50, CriticalHigh: 4000}, // µS/cm
	models.PH:           {Low: 5.5, High: 7.5, CriticalLow: 4, CriticalHigh: 9},
	models.Nitrogen:     {Low: 20, High: 80, CriticalLow: 5, CriticalHigh: 150},   // mg/kg
	models.Phosphorus:   {Low: 10, High: 50, CriticalLow: 3, CriticalHigh: 100},   // mg/kg
	models.Potassium:    {Low: 40, High: 200, CriticalLow: 10, CriticalHigh: 400}, // mg/kg
	models.Salinity:     {Low: 0, High: 1000, CriticalLow: 0, CriticalHigh: 2000}, // ppm
}

// DefaultThresholds returns the built-in table.
func DefaultThresholds() *Thresholds {
	bands := make(map[models.MeasurementName]Band, len(defaultBands))
	for k, v := range defaultBands {
		bands[k] = v
	}
	return &Thresholds{bands: bands}
}

type bandOverride struct {
	Low          *float64 `yaml:"low"`
	High         *float64 `yaml:"high"`
	CriticalLow  *float64 `yaml:"criticalLow"`
	CriticalHigh *float64 `yaml:"criticalHigh"`
}

// ParseThresholds overlays YAML overrides on the defaults. Only the bounds
// named in the document change:
//
//	moisture:
//	  low: 25
//	  criticalLow: 10
func ParseThresholds(data []byte) (*Thresholds, error) {
	var doc map[string]bandOverride
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("parse thresholds: %w", err)
	}
	t := DefaultThresholds()
	for key, o := range doc {
		name := models.MeasurementName(key)
		if !name.Valid() {
			return nil, fmt.Errorf("thresholds: unknown measurement %q", key)
		}
		b := t.bands[name]
		if o.Low != nil {
			b.Low = *o.Low
		}
		if o.High != nil {
			b.High = *o.High
		}
		if o.CriticalLow != nil {
			b.CriticalLow = *o.CriticalLow
		}
		if o.CriticalHigh != nil {
			b.CriticalHigh = *o.CriticalHigh
		}
		if err := b.validate(); err != nil {
			return nil, fmt.Errorf("thresholds: %s: %w", key, err)
		}
		t.bands[name] = b
	}
	return t, nil
}

// LoadThresholds reads overrides from path. An empty path yields the defaults.
func LoadThresholds(path string) (*Thresholds, error) {
	if path == "" {
		return DefaultThresholds(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read thresholds file: %w", err)
	}
	return ParseThresholds(data)
}

// Band returns the bounds configured for name.
func (t *Thresholds) Band(name models.MeasurementName) (Band, bool) {
	b, ok := t.bands[name]
	return b, ok
}

// Bands returns a copy of the table keyed by measurement name.
func (t *Thresholds) Bands() map[models.MeasurementName]Band {
	out := make(map[models.MeasurementName]Band, len(t.bands))
	for k, v := range t.bands {
		out[k] = v
	}
	return out
}
