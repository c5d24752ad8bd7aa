package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MeasurementName identifies one evaluated soil parameter.
type MeasurementName string

const (
	Moisture     MeasurementName = "moisture"
	Temperature  MeasurementName = "temperature"
	Conductivity MeasurementName = "conductivity"
	PH           MeasurementName = "pH"
	Nitrogen     MeasurementName = "nitrogen"
	Phosphorus   MeasurementName = "phosphorus"
	Potassium    MeasurementName = "potassium"
	Salinity     MeasurementName = "salinity"
)

// MeasurementNames is the canonical parameter order. Recommendations and
// summaries are always emitted in this order.
var MeasurementNames = []MeasurementName{
	Moisture, Temperature, Conductivity, PH, Nitrogen, Phosphorus, Potassium, Salinity,
}

// Valid reports whether n is one of the recognized measurements.
func (n MeasurementName) Valid() bool {
	for _, m := range MeasurementNames {
		if m == n {
			return true
		}
	}
	return false
}

// SoilHealth is the five-level qualitative classification.
type SoilHealth string

const (
	SoilHealthExcellent SoilHealth = "Excellent"
	SoilHealthGood      SoilHealth = "Good"
	SoilHealthFair      SoilHealth = "Fair"
	SoilHealthPoor      SoilHealth = "Poor"
	SoilHealthCritical  SoilHealth = "Critical"
)

// ParseSoilHealth accepts the canonical spelling case-insensitively.
func ParseSoilHealth(s string) (SoilHealth, bool) {
	for _, h := range []SoilHealth{SoilHealthExcellent, SoilHealthGood, SoilHealthFair, SoilHealthPoor, SoilHealthCritical} {
		if strings.EqualFold(string(h), s) {
			return h, true
		}
	}
	return "", false
}

// Status is the operational severity used for alerting.
type Status string

const (
	StatusNormal   Status = "normal"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

func ParseStatus(s string) (Status, bool) {
	for _, st := range []Status{StatusNormal, StatusWarning, StatusCritical} {
		if strings.EqualFold(string(st), s) {
			return st, true
		}
	}
	return "", false
}

// Measurement is one sensor value. A nil Value means the device sent the key
// with an explicit null.
type Measurement struct {
	Value *float64 `bson:"value"          json:"value"`
	Unit  string   `bson:"unit,omitempty" json:"unit,omitempty"`
}

// Measurements is sparse: a missing key means "not measured".
type Measurements map[MeasurementName]Measurement

// Value returns the numeric value when the measurement is present and non-null.
func (m Measurements) Value(name MeasurementName) (float64, bool) {
	v, ok := m[name]
	if !ok || v.Value == nil {
		return 0, false
	}
	return *v.Value, true
}

type Battery struct {
	Level   *float64 `bson:"level,omitempty"   json:"level,omitempty"`   // percent
	Voltage *float64 `bson:"voltage,omitempty" json:"voltage,omitempty"` // volts
}

type Connection struct {
	RSSI           *float64 `bson:"rssi,omitempty"           json:"rssi,omitempty"`
	SignalStrength *float64 `bson:"signalStrength,omitempty" json:"signalStrength,omitempty"`
}

// Reading is one ingested snapshot plus its derived classification.
// Readings are written once and never updated.
type Reading struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"        json:"id"`
	DeviceID   string             `bson:"deviceId"             json:"deviceId"`
	DeviceName string             `bson:"deviceName,omitempty" json:"deviceName,omitempty"`
	Location   string             `bson:"location,omitempty"   json:"location,omitempty"`
	FarmName   string             `bson:"farmName,omitempty"   json:"farmName,omitempty"`
	CropType   string             `bson:"cropType,omitempty"   json:"cropType,omitempty"`
	Depth      string             `bson:"depth,omitempty"      json:"depth,omitempty"`
	Notes      string             `bson:"notes,omitempty"      json:"notes,omitempty"`

	Measurements Measurements `bson:"measurements" json:"measurements"`
	Battery      *Battery     `bson:"battery,omitempty"    json:"battery,omitempty"`
	Connection   *Connection  `bson:"connection,omitempty" json:"connection,omitempty"`

	// Derived at ingestion
	NPKRatio        *string    `bson:"npkRatio"        json:"npkRatio"`
	SoilHealth      SoilHealth `bson:"soilHealth"      json:"soilHealth"`
	Status          Status     `bson:"status"          json:"status"`
	Recommendations []string   `bson:"recommendations" json:"recommendations"`

	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// IsAlert reports whether the reading belongs in the alerts feed.
func (r Reading) IsAlert() bool {
	return r.Status == StatusWarning || r.Status == StatusCritical ||
		r.SoilHealth == SoilHealthPoor || r.SoilHealth == SoilHealthCritical
}

// HasNPK reports whether nitrogen, phosphorus and potassium are all non-null.
func (r Reading) HasNPK() bool {
	_, n := r.Measurements.Value(Nitrogen)
	_, p := r.Measurements.Value(Phosphorus)
	_, k := r.Measurements.Value(Potassium)
	return n && p && k
}
