package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"soilsense/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertNotifierPostsCriticalOnly(t *testing.T) {
	var calls atomic.Int32
	var got alertWebhookReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := newAlertNotifier(srv.URL)
	require.NoError(t, n.ReadingStored(context.Background(), models.Reading{DeviceID: "dev-1", Status: models.StatusWarning}))
	n.wait()
	assert.Equal(t, int32(0), calls.Load())

	err := n.ReadingStored(context.Background(), models.Reading{
		DeviceID:        "dev-1",
		Status:          models.StatusCritical,
		SoilHealth:      models.SoilHealthPoor,
		Recommendations: []string{"Urgent: Soil moisture is low: increase irrigation"},
	})
	require.NoError(t, err)
	n.wait()
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "dev-1", got.DeviceID)
	assert.Equal(t, models.SoilHealthPoor, got.SoilHealth)
}

func TestAlertNotifierDoesNotBlockCaller(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()
	n := newAlertNotifier(srv.URL)
	defer n.wait()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	start := time.Now()
	require.NoError(t, n.ReadingStored(ctx, models.Reading{Status: models.StatusCritical}))
	cancel()
	assert.Less(t, time.Since(start), time.Second)
}

func TestAlertNotifierReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := newAlertNotifier(srv.URL).send(context.Background(), models.Reading{Status: models.StatusCritical})
	assert.ErrorContains(t, err, "[notify]")
}
