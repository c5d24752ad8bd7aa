package soil

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"soilsense/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// ReadingStore is the storage collaborator. FindLatest returns a nil
// reading and nil error when the device has no readings.
type ReadingStore interface {
	Insert(ctx context.Context, r *models.Reading) (primitive.ObjectID, error)
	FindByDevice(ctx context.Context, deviceID string, f models.ReadingFilter) ([]models.Reading, error)
	FindLatest(ctx context.Context, deviceID string) (*models.Reading, error)
	FindInWindow(ctx context.Context, deviceID string, start, end time.Time) ([]models.Reading, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Observer is told about every persisted reading.
type Observer interface {
	ReadingStored(ctx context.Context, r models.Reading) error
}

// Service is the reading lifecycle: validate, evaluate, persist, and the
// read-side queries built on stored history.
type Service struct {
	store     ReadingStore
	table     *Thresholds
	observers []Observer

	now      func() time.Time
	evaluate func(models.Measurements) Evaluation
}

func NewService(store ReadingStore, table *Thresholds, observers ...Observer) *Service {
	if table == nil {
		table = DefaultThresholds()
	}
	return &Service{
		store:     store,
		table:     table,
		observers: observers,
		now:       func() time.Time { return time.Now().UTC() },
		evaluate:  table.Evaluate,
	}
}

// Thresholds returns the active table.
func (s *Service) Thresholds() *Thresholds { return s.table }

// Build runs validation, evaluation, recommendations and the NPK ratio.
// Nothing is evaluated when validation fails.
func (s *Service) Build(p models.ReadingPayload) (models.Reading, error) {
	if err := Validate(p); err != nil {
		return models.Reading{}, err
	}
	m := BuildMeasurements(p.RawMeasurements())
	ev := s.evaluate(m)
	return assemble(p, m, ev, s.now()), nil
}

// Ingest builds the reading, persists it and notifies observers.
func (s *Service) Ingest(ctx context.Context, p models.ReadingPayload) (*models.Reading, error) {
	r, err := s.Build(p)
	if err != nil {
		return nil, err
	}
	id, err := s.store.Insert(ctx, &r)
	if err != nil {
		return nil, storageErr("insert reading", err)
	}
	r.ID = id

	log.Printf("New reading from %s: soil health %s, status %s, %d recommendation(s)",
		r.DeviceID, r.SoilHealth, r.Status, len(r.Recommendations))

	s.notify(ctx, r)
	return &r, nil
}

func (s *Service) notify(ctx context.Context, r models.Reading) {
	if len(s.observers) == 0 {
		return
	}
	var g errgroup.Group
	for _, o := range s.observers {
		o := o
		g.Go(func() error {
			if err := o.ReadingStored(ctx, r); err != nil {
				log.Printf("observer %T failed for reading %s: %v", o, r.ID.Hex(), err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Readings lists a device's readings, newest first unless f says otherwise.
func (s *Service) Readings(ctx context.Context, deviceID string, f models.ReadingFilter) ([]models.Reading, error) {
	if deviceID == "" {
		return nil, &ValidationError{Field: "deviceId", Message: "Device ID is required"}
	}
	if f.Limit < 0 {
		return nil, &ValidationError{Field: "limit", Message: "limit must not be negative"}
	}
	if f.Sort == "" {
		f.Sort = models.SortDesc
	}
	out, err := s.store.FindByDevice(ctx, deviceID, f)
	if err != nil {
		return nil, storageErr("find readings", err)
	}
	return out, nil
}

// Latest returns the newest reading of a device or ErrNotFound.
func (s *Service) Latest(ctx context.Context, deviceID string) (*models.Reading, error) {
	r, err := s.store.FindLatest(ctx, deviceID)
	if err != nil {
		return nil, storageErr("find latest reading", err)
	}
	if r == nil {
		return nil, ErrNotFound
	}
	return r, nil
}

// Alerts lists readings whose status or soil health calls for attention.
func (s *Service) Alerts(ctx context.Context, deviceID string, limit int64) ([]models.Reading, error) {
	return s.Readings(ctx, deviceID, models.ReadingFilter{AlertsOnly: true, Sort: models.SortDesc, Limit: limit})
}

// maxWindowHours is the longest window a time.Duration can express.
const maxWindowHours = int64(math.MaxInt64 / int64(time.Hour))

// Averages summarizes the trailing window of hours for a device.
func (s *Service) Averages(ctx context.Context, deviceID string, hours int) (*Summary, error) {
	if hours <= 0 {
		return nil, &ValidationError{Field: "hours", Message: "hours must be a positive number"}
	}
	if int64(hours) > maxWindowHours {
		return nil, &ValidationError{Field: "hours", Message: fmt.Sprintf("hours must not exceed %d", maxWindowHours)}
	}
	end := s.now()
	start := end.Add(-time.Duration(hours) * time.Hour)
	readings, err := s.store.FindInWindow(ctx, deviceID, start, end)
	if err != nil {
		return nil, storageErr("find readings in window", err)
	}
	return Summarize(deviceID, readings, start, end)
}

// NPKPoint is one entry of the nutrient trend.
type NPKPoint struct {
	Timestamp  time.Time `json:"timestamp"`
	Nitrogen   float64   `json:"nitrogen"`
	Phosphorus float64   `json:"phosphorus"`
	Potassium  float64   `json:"potassium"`
	NPKRatio   *string   `json:"npkRatio"`
}

// NPKTrend returns readings of the last days that carry all three
// nutrients, oldest first.
func (s *Service) NPKTrend(ctx context.Context, deviceID string, days int) ([]NPKPoint, error) {
	if days <= 0 {
		return nil, &ValidationError{Field: "days", Message: "days must be a positive number"}
	}
	readings, err := s.Readings(ctx, deviceID, models.ReadingFilter{
		RequireNPK: true,
		Start:      s.now().AddDate(0, 0, -days),
		Sort:       models.SortAsc,
	})
	if err != nil {
		return nil, err
	}
	out := make([]NPKPoint, 0, len(readings))
	for _, r := range readings {
		n, _ := r.Measurements.Value(models.Nitrogen)
		p, _ := r.Measurements.Value(models.Phosphorus)
		k, _ := r.Measurements.Value(models.Potassium)
		out = append(out, NPKPoint{Timestamp: r.Timestamp, Nitrogen: n, Phosphorus: p, Potassium: k, NPKRatio: r.NPKRatio})
	}
	return out, nil
}

// Cleanup deletes every reading older than days and reports how many went.
func (s *Service) Cleanup(ctx context.Context, days int) (int64, error) {
	if days < 0 {
		return 0, &ValidationError{Field: "days", Message: "days must not be negative"}
	}
	cutoff := s.now().AddDate(0, 0, -days)
	n, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, storageErr("delete old readings", err)
	}
	return n, nil
}
