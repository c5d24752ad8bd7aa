package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// OptionalFloat keeps three states apart: key absent (Set=false),
// key present with null (Set=true, Value=nil) and key present with a number.
type OptionalFloat struct {
	Set   bool
	Value *float64
}

func (o *OptionalFloat) UnmarshalJSON(b []byte) error {
	o.Set = true
	o.Value = nil
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		// Some firmwares send numbers as strings.
		var s string
		if json.Unmarshal(b, &s) != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		v, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("measurement value %s is not a finite number", b)
	}
	o.Value = &v
	return nil
}

// Float returns an OptionalFloat carrying v.
func Float(v float64) OptionalFloat { return OptionalFloat{Set: true, Value: &v} }

// Null returns an OptionalFloat that was sent as an explicit null.
func Null() OptionalFloat { return OptionalFloat{Set: true} }

// FlexString accepts a JSON string or number (depth is sent both ways).
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// ReadingPayload is the flat body devices POST to the ingest endpoint.
type ReadingPayload struct {
	DeviceID   string     `json:"deviceId"`
	DeviceName string     `json:"deviceName,omitempty"`
	Location   string     `json:"location,omitempty"`
	FarmName   string     `json:"farmName,omitempty"`
	CropType   string     `json:"cropType,omitempty"`
	Depth      FlexString `json:"depth,omitempty"`
	Notes      string     `json:"notes,omitempty"`

	Moisture         OptionalFloat `json:"moisture"`
	MoistureUnit     string        `json:"moistureUnit,omitempty"`
	Temperature      OptionalFloat `json:"temperature"`
	TemperatureUnit  string        `json:"temperatureUnit,omitempty"`
	Conductivity     OptionalFloat `json:"conductivity"`
	ConductivityUnit string        `json:"conductivityUnit,omitempty"`
	PH               OptionalFloat `json:"pH"`
	PHAlias          OptionalFloat `json:"ph"`
	PHUnit           string        `json:"pHUnit,omitempty"`
	Nitrogen         OptionalFloat `json:"nitrogen"`
	NitrogenUnit     string        `json:"nitrogenUnit,omitempty"`
	Phosphorus       OptionalFloat `json:"phosphorus"`
	PhosphorusUnit   string        `json:"phosphorusUnit,omitempty"`
	Potassium        OptionalFloat `json:"potassium"`
	PotassiumUnit    string        `json:"potassiumUnit,omitempty"`
	Salinity         OptionalFloat `json:"salinity"`
	SalinityUnit     string        `json:"salinityUnit,omitempty"`

	BatteryLevel   OptionalFloat `json:"batteryLevel"`
	BatteryVoltage OptionalFloat `json:"batteryVoltage"`
	RSSI           OptionalFloat `json:"rssi"`
	SignalStrength OptionalFloat `json:"signalStrength"`
}

// RawMeasurement is one measurement as it arrived, before defaults.
type RawMeasurement struct {
	Name  MeasurementName
	Value OptionalFloat
	Unit  string
}

// RawMeasurements lists the payload's measurement slots in canonical order,
// including the ones that were not sent.
func (p ReadingPayload) RawMeasurements() []RawMeasurement {
	ph := p.PH
	if !ph.Set || ph.Value == nil {
		if p.PHAlias.Set {
			ph = p.PHAlias
		}
	}
	return []RawMeasurement{
		{Moisture, p.Moisture, p.MoistureUnit},
		{Temperature, p.Temperature, p.TemperatureUnit},
		{Conductivity, p.Conductivity, p.ConductivityUnit},
		{PH, ph, p.PHUnit},
		{Nitrogen, p.Nitrogen, p.NitrogenUnit},
		{Phosphorus, p.Phosphorus, p.PhosphorusUnit},
		{Potassium, p.Potassium, p.PotassiumUnit},
		{Salinity, p.Salinity, p.SalinityUnit},
	}
}

// Battery returns nil unless one of the battery keys was sent.
func (p ReadingPayload) Battery() *Battery {
	if !p.BatteryLevel.Set && !p.BatteryVoltage.Set {
		return nil
	}
	return &Battery{Level: p.BatteryLevel.Value, Voltage: p.BatteryVoltage.Value}
}

// Connection returns nil unless one of the link-quality keys was sent.
func (p ReadingPayload) Connection() *Connection {
	if !p.RSSI.Set && !p.SignalStrength.Set {
		return nil
	}
	return &Connection{RSSI: p.RSSI.Value, SignalStrength: p.SignalStrength.Value}
}
