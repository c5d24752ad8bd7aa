package main

import (
	"time"

	"soilsense/models"
)

// Request/response DTOs. Keep them minimal and explicit.

type envelope map[string]any

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResp struct {
	Token string `json:"token"`
}

type listResp struct {
	Success bool             `json:"success"`
	Count   int              `json:"count"`
	Data    []models.Reading `json:"data"`
}

type recommendationsResp struct {
	Success         bool              `json:"success"`
	SoilHealth      models.SoilHealth `json:"soilHealth"`
	Status          models.Status     `json:"status"`
	Recommendations []string          `json:"recommendations"`
	Timestamp       time.Time         `json:"timestamp"`
}

// alertView trims a reading to the parameters the alerts feed shows.
type alertView struct {
	ID              string              `json:"id"`
	Timestamp       time.Time           `json:"timestamp"`
	Status          models.Status       `json:"status"`
	SoilHealth      models.SoilHealth   `json:"soilHealth"`
	Recommendations []string            `json:"recommendations"`
	Readings        models.Measurements `json:"readings"`
}

var alertParameters = []models.MeasurementName{models.Moisture, models.PH, models.Salinity, models.Nitrogen}

func newAlertView(r models.Reading) alertView {
	m := make(models.Measurements, len(alertParameters))
	for _, name := range alertParameters {
		if v, ok := r.Measurements[name]; ok {
			m[name] = v
		}
	}
	return alertView{
		ID:              r.ID.Hex(),
		Timestamp:       r.Timestamp,
		Status:          r.Status,
		SoilHealth:      r.SoilHealth,
		Recommendations: r.Recommendations,
		Readings:        m,
	}
}

// Payload we send to the alert webhook for critical readings.
type alertWebhookReq struct {
	ReadingID       string            `json:"readingId"`
	DeviceID        string            `json:"deviceId"`
	DeviceName      string            `json:"deviceName,omitempty"`
	FarmName        string            `json:"farmName,omitempty"`
	Location        string            `json:"location,omitempty"`
	Status          models.Status     `json:"status"`
	SoilHealth      models.SoilHealth `json:"soilHealth"`
	Recommendations []string          `json:"recommendations"`
	Timestamp       time.Time         `json:"timestamp"`
}
