package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"soilsense/models"
	"soilsense/soil"

	"github.com/go-chi/chi/v5"
)

const (
	defaultListLimit  = 100
	defaultAlertLimit = 50
	defaultStatsHours = 24
	defaultNPKDays    = 7
)

// handleIngestReading evaluates and stores one device reading.
func (a *App) handleIngestReading(w http.ResponseWriter, r *http.Request) {
	var p models.ReadingPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	reading, err := a.readings.Ingest(ctx, p)
	if err != nil {
		writeServiceError(w, err, "Error saving reading", "")
		return
	}
	writeJSON(w, http.StatusCreated, envelope{
		"success": true,
		"message": "Reading saved successfully",
		"data":    reading,
	})
}

// handleListReadings returns a device's readings filtered by the query string.
func (a *App) handleListReadings(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceId")
	q := r.URL.Query()

	limit, err := queryInt(q.Get("limit"), defaultListLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	f := models.ReadingFilter{Limit: int64(limit), Sort: models.SortDesc}

	if s := q.Get("status"); s != "" {
		st, ok := models.ParseStatus(s)
		if !ok {
			writeError(w, http.StatusBadRequest, "status must be normal, warning or critical")
			return
		}
		f.Status = st
	}
	if s := q.Get("soilHealth"); s != "" {
		h, ok := models.ParseSoilHealth(s)
		if !ok {
			writeError(w, http.StatusBadRequest, "soilHealth must be Excellent, Good, Fair, Poor or Critical")
			return
		}
		f.SoilHealth = h
	}
	if f.Start, err = queryTime(q.Get("startDate")); err != nil {
		writeError(w, http.StatusBadRequest, "startDate must be RFC3339 or YYYY-MM-DD")
		return
	}
	if f.End, err = queryTime(q.Get("endDate")); err != nil {
		writeError(w, http.StatusBadRequest, "endDate must be RFC3339 or YYYY-MM-DD")
		return
	}
	switch strings.ToLower(q.Get("sort")) {
	case "", "desc":
	case "asc":
		f.Sort = models.SortAsc
	default:
		writeError(w, http.StatusBadRequest, "sort must be asc or desc")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()
	out, err := a.readings.Readings(ctx, deviceID, f)
	if err != nil {
		writeServiceError(w, err, "Error fetching readings", "")
		return
	}
	writeJSON(w, http.StatusOK, listResp{Success: true, Count: len(out), Data: out})
}

// handleLatestReading returns the newest reading of a device.
func (a *App) handleLatestReading(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	reading, err := a.readings.Latest(ctx, chi.URLParam(r, "deviceId"))
	if err != nil {
		writeServiceError(w, err, "Error fetching latest reading", "No readings found for this device")
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "data": reading})
}

// handleReadingStats returns averages and extremes over the last `hours`.
func (a *App) handleReadingStats(w http.ResponseWriter, r *http.Request) {
	hours, err := queryInt(r.URL.Query().Get("hours"), defaultStatsHours)
	if err != nil {
		writeError(w, http.StatusBadRequest, "hours must be an integer")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()
	sum, err := a.readings.Averages(ctx, chi.URLParam(r, "deviceId"), hours)
	if err != nil {
		writeServiceError(w, err, "Error fetching statistics", "No data available for statistics")
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"period":  fmt.Sprintf("Last %d hours", hours),
		"data":    sum,
	})
}

// handleRecommendations returns the advice attached to the newest reading.
func (a *App) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	reading, err := a.readings.Latest(ctx, chi.URLParam(r, "deviceId"))
	if err != nil {
		writeServiceError(w, err, "Error fetching latest reading", "No readings found for this device")
		return
	}
	writeJSON(w, http.StatusOK, recommendationsResp{
		Success:         true,
		SoilHealth:      reading.SoilHealth,
		Status:          reading.Status,
		Recommendations: reading.Recommendations,
		Timestamp:       reading.Timestamp,
	})
}

// handleAlerts lists warning/critical readings, newest first.
func (a *App) handleAlerts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r.URL.Query().Get("limit"), defaultAlertLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()
	out, err := a.readings.Alerts(ctx, chi.URLParam(r, "deviceId"), int64(limit))
	if err != nil {
		writeServiceError(w, err, "Error fetching alerts", "")
		return
	}
	views := make([]alertView, 0, len(out))
	for _, reading := range out {
		views = append(views, newAlertView(reading))
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "count": len(views), "data": views})
}

// handleNPKAnalysis returns the nutrient trend over the last `days`.
func (a *App) handleNPKAnalysis(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r.URL.Query().Get("days"), defaultNPKDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, "days must be an integer")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()
	points, err := a.readings.NPKTrend(ctx, chi.URLParam(r, "deviceId"), days)
	if err != nil {
		writeServiceError(w, err, "Error fetching NPK analysis", "")
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"period":  fmt.Sprintf("Last %d days", days),
		"count":   len(points),
		"data":    points,
	})
}

// handleCleanup deletes readings older than {days}.
func (a *App) handleCleanup(w http.ResponseWriter, r *http.Request) {
	days, err := strconv.Atoi(chi.URLParam(r, "days"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "days must be an integer")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	n, err := a.readings.Cleanup(ctx, days)
	if err != nil {
		writeServiceError(w, err, "Error cleaning up readings", "")
		return
	}
	log.Printf("Cleanup by %s removed %d readings older than %d days", mustUserID(r).Hex(), n, days)
	writeJSON(w, http.StatusOK, envelope{
		"success":      true,
		"message":      fmt.Sprintf("Deleted %d old readings", n),
		"deletedCount": n,
	})
}

// handleThresholds exposes the active threshold table.
func (a *App) handleThresholds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{"success": true, "data": a.readings.Thresholds().Bands()})
}

// ---- helpers ----

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{"success": false, "message": msg})
}

// writeServiceError maps the soil error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error, failMsg, notFoundMsg string) {
	var verr *soil.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, soil.ErrNotFound):
		if notFoundMsg == "" {
			notFoundMsg = "not found"
		}
		writeError(w, http.StatusNotFound, notFoundMsg)
	default:
		log.Printf("%s: %v", failMsg, err)
		writeJSON(w, http.StatusInternalServerError, envelope{
			"success": false,
			"message": failMsg,
			"error":   err.Error(),
		})
	}
}

func queryInt(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

// queryTime parses RFC3339 or a bare UTC date. Empty means unbounded.
func queryTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
