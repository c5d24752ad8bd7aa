package soil

import (
	"testing"

	"soilsense/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func measurements(kv map[models.MeasurementName]float64) models.Measurements {
	m := models.Measurements{}
	for k, v := range kv {
		m[k] = models.Measurement{Value: f(v), Unit: DefaultUnits[k]}
	}
	return m
}

func TestEvaluateEmptyIsNeutral(t *testing.T) {
	table := DefaultThresholds()

	for name, m := range map[string]models.Measurements{
		"nil":       nil,
		"empty":     {},
		"all nulls": {models.Moisture: {Unit: "%"}, models.PH: {}},
	} {
		t.Run(name, func(t *testing.T) {
			ev := table.Evaluate(m)
			assert.Equal(t, models.SoilHealthFair, ev.SoilHealth)
			assert.Equal(t, models.StatusNormal, ev.Status)
			assert.Empty(t, ev.Classifications)
		})
	}
}

func TestClassifyBoundaries(t *testing.T) {
	table := DefaultThresholds()
	tests := []struct {
		value float64
		sev   Severity
		dir   Direction
	}{
		{4.9, SeverityCritical, DirectionLow},
		{5, SeverityWarning, DirectionLow},
		{19.9, SeverityWarning, DirectionLow},
		{20, SeverityOK, DirectionNone},
		{60, SeverityOK, DirectionNone},
		{60.1, SeverityWarning, DirectionHigh},
		{85, SeverityWarning, DirectionHigh},
		{85.1, SeverityCritical, DirectionHigh},
	}
	for _, tt := range tests {
		sev, dir := table.Classify(models.Moisture, tt.value)
		assert.Equal(t, tt.sev, sev, "moisture=%v", tt.value)
		assert.Equal(t, tt.dir, dir, "moisture=%v", tt.value)
	}
}

func TestEvaluateSoilHealthPolicy(t *testing.T) {
	table := DefaultThresholds()
	tests := []struct {
		name   string
		in     map[models.MeasurementName]float64
		health models.SoilHealth
		status models.Status
	}{
		{"all ok", map[models.MeasurementName]float64{models.Moisture: 35, models.PH: 6.5, models.Nitrogen: 40}, models.SoilHealthExcellent, models.StatusNormal},
		{"one warning", map[models.MeasurementName]float64{models.Moisture: 10, models.PH: 6.5}, models.SoilHealthGood, models.StatusWarning},
		{"two warnings", map[models.MeasurementName]float64{models.Moisture: 10, models.PH: 5}, models.SoilHealthFair, models.StatusWarning},
		{"three warnings", map[models.MeasurementName]float64{models.Moisture: 10, models.PH: 5, models.Temperature: 35}, models.SoilHealthFair, models.StatusWarning},
		{"one critical", map[models.MeasurementName]float64{models.Moisture: 2, models.PH: 6.5}, models.SoilHealthPoor, models.StatusCritical},
		{"one critical plus warnings", map[models.MeasurementName]float64{models.Moisture: 2, models.PH: 5, models.Temperature: 35}, models.SoilHealthPoor, models.StatusCritical},
		{"two criticals", map[models.MeasurementName]float64{models.Moisture: 2, models.PH: 3}, models.SoilHealthCritical, models.StatusCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := table.Evaluate(measurements(tt.in))
			assert.Equal(t, tt.health, ev.SoilHealth)
			assert.Equal(t, tt.status, ev.Status)
		})
	}
}

func TestEvaluateSkipsAbsentAndNull(t *testing.T) {
	m := measurements(map[models.MeasurementName]float64{models.PH: 6.8})
	m[models.Moisture] = models.Measurement{Unit: "%"} // explicit null

	ev := DefaultThresholds().Evaluate(m)
	require.Len(t, ev.Classifications, 1)
	assert.Equal(t, models.PH, ev.Classifications[0].Name)
	assert.Equal(t, models.SoilHealthExcellent, ev.SoilHealth)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	table := DefaultThresholds()
	m := measurements(map[models.MeasurementName]float64{
		models.Salinity: 1500, models.Moisture: 90, models.PH: 6, models.Potassium: 5,
	})
	first := table.Evaluate(m)
	second := table.Evaluate(m)
	assert.Equal(t, first, second)
	assert.Equal(t, Recommend(first.Classifications), Recommend(second.Classifications))

	var order []models.MeasurementName
	for _, c := range first.Classifications {
		order = append(order, c.Name)
	}
	assert.Equal(t, []models.MeasurementName{models.Moisture, models.PH, models.Potassium, models.Salinity}, order)
}
