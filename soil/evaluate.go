package soil

import (
	"math"

	"soilsense/models"
)

type Severity string

const (
	SeverityOK       Severity = "ok"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Direction tells which side of the acceptable range a value fell on.
type Direction string

const (
	DirectionNone Direction = ""
	DirectionLow  Direction = "low"
	DirectionHigh Direction = "high"
)

// Classification is the verdict for one present, non-null measurement.
type Classification struct {
	Name      models.MeasurementName `json:"name"`
	Value     float64                `json:"value"`
	Severity  Severity               `json:"severity"`
	Direction Direction              `json:"direction,omitempty"`
}

// Evaluation is the outcome of Evaluate.
type Evaluation struct {
	SoilHealth      models.SoilHealth
	Status          models.Status
	Classifications []Classification // canonical order, ok entries included
	Warnings        int
	Criticals       int
}

// Classify places value against the band of name. Values on the acceptable
// bounds are ok; values on the critical bounds are warnings.
func (t *Thresholds) Classify(name models.MeasurementName, value float64) (Severity, Direction) {
	b, ok := t.bands[name]
	if !ok {
		return SeverityOK, DirectionNone
	}
	switch {
	case value < b.CriticalLow:
		return SeverityCritical, DirectionLow
	case value < b.Low:
		return SeverityWarning, DirectionLow
	case value > b.CriticalHigh:
		return SeverityCritical, DirectionHigh
	case value > b.High:
		return SeverityWarning, DirectionHigh
	}
	return SeverityOK, DirectionNone
}

// Evaluate classifies every present, non-null measurement and folds the
// results with a worst-case policy. With nothing to evaluate it returns
// the neutral (Fair, normal).
func (t *Thresholds) Evaluate(m models.Measurements) Evaluation {
	var ev Evaluation
	for _, name := range models.MeasurementNames {
		v, ok := m.Value(name)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sev, dir := t.Classify(name, v)
		switch sev {
		case SeverityCritical:
			ev.Criticals++
		case SeverityWarning:
			ev.Warnings++
		}
		ev.Classifications = append(ev.Classifications, Classification{Name: name, Value: v, Severity: sev, Direction: dir})
	}

	if len(ev.Classifications) == 0 {
		ev.SoilHealth = models.SoilHealthFair
		ev.Status = models.StatusNormal
		return ev
	}

	switch {
	case ev.Criticals > 0:
		ev.Status = models.StatusCritical
	case ev.Warnings > 0:
		ev.Status = models.StatusWarning
	default:
		ev.Status = models.StatusNormal
	}
	ev.SoilHealth = healthFor(ev.Criticals, ev.Warnings)
	return ev
}

func healthFor(criticals, warnings int) models.SoilHealth {
	switch {
	case criticals >= 2:
		return models.SoilHealthCritical
	case criticals == 1:
		return models.SoilHealthPoor
	case warnings >= 2:
		return models.SoilHealthFair
	case warnings == 1:
		return models.SoilHealthGood
	}
	return models.SoilHealthExcellent
}
