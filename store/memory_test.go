package store

import (
	"context"
	"testing"
	"time"

	"soilsense/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

var t0 = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func seed(t *testing.T, s *MemoryReadings, rs ...models.Reading) {
	t.Helper()
	for i := range rs {
		_, err := s.Insert(context.Background(), &rs[i])
		require.NoError(t, err)
	}
}

func TestMemoryReadingsQueries(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryReadings()
	seed(t, s,
		models.Reading{DeviceID: "a", Status: models.StatusNormal, SoilHealth: models.SoilHealthExcellent, Timestamp: t0},
		models.Reading{DeviceID: "a", Status: models.StatusWarning, SoilHealth: models.SoilHealthGood, Timestamp: t0.Add(time.Hour)},
		models.Reading{DeviceID: "a", Status: models.StatusNormal, SoilHealth: models.SoilHealthPoor, Timestamp: t0.Add(2 * time.Hour)},
		models.Reading{DeviceID: "b", Status: models.StatusCritical, Timestamp: t0.Add(3 * time.Hour)},
	)

	all, err := s.FindByDevice(ctx, "a", models.ReadingFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, t0.Add(2*time.Hour), all[0].Timestamp)

	asc, err := s.FindByDevice(ctx, "a", models.ReadingFilter{Sort: models.SortAsc, Limit: 2})
	require.NoError(t, err)
	require.Len(t, asc, 2)
	assert.Equal(t, t0, asc[0].Timestamp)

	alerts, err := s.FindByDevice(ctx, "a", models.ReadingFilter{AlertsOnly: true})
	require.NoError(t, err)
	assert.Len(t, alerts, 2)

	latest, err := s.FindLatest(ctx, "b")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, models.StatusCritical, latest.Status)

	none, err := s.FindLatest(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, none)

	window, err := s.FindInWindow(ctx, "a", t0.Add(time.Hour), t0.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.True(t, window[0].Timestamp.Before(window[1].Timestamp))
}

func TestMemoryReadingsRequireNPK(t *testing.T) {
	s := NewMemoryReadings()
	full := models.Measurements{
		models.Nitrogen:   {Value: fp(40)},
		models.Phosphorus: {Value: fp(20)},
		models.Potassium:  {Value: fp(60)},
	}
	partial := models.Measurements{
		models.Nitrogen:   {Value: fp(40)},
		models.Phosphorus: {},
		models.Potassium:  {Value: fp(60)},
	}
	seed(t, s,
		models.Reading{DeviceID: "a", Measurements: full, Timestamp: t0},
		models.Reading{DeviceID: "a", Measurements: partial, Timestamp: t0},
	)
	out, err := s.FindByDevice(context.Background(), "a", models.ReadingFilter{RequireNPK: true})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestMemoryReadingsDeleteOlderThan(t *testing.T) {
	s := NewMemoryReadings()
	now := t0.AddDate(0, 0, 90)
	for _, age := range []int{5, 40, 60} {
		seed(t, s, models.Reading{DeviceID: "a", Timestamp: now.AddDate(0, 0, -age)})
	}
	n, err := s.DeleteOlderThan(context.Background(), now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	left, err := s.FindByDevice(context.Background(), "a", models.ReadingFilter{})
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestMemoryUsers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUsers()

	u := &models.User{Username: "ana", Email: "Ana@Example.com", PasswordHash: "x"}
	require.NoError(t, s.Create(ctx, u))
	assert.False(t, u.ID.IsZero())

	err := s.Create(ctx, &models.User{Email: "ana@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	got, err := s.FindByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", got.Username)

	_, err = s.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
