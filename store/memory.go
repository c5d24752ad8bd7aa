package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"soilsense/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryReadings is a process-local reading store for development runs
// (STORE_BACKEND=memory) and tests.
type MemoryReadings struct {
	mu       sync.RWMutex
	readings []models.Reading
}

func NewMemoryReadings() *MemoryReadings { return &MemoryReadings{} }

func (s *MemoryReadings) Insert(_ context.Context, r *models.Reading) (primitive.ObjectID, error) {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	s.mu.Lock()
	s.readings = append(s.readings, *r)
	s.mu.Unlock()
	return r.ID, nil
}

func (s *MemoryReadings) FindByDevice(_ context.Context, deviceID string, f models.ReadingFilter) ([]models.Reading, error) {
	out := s.collect(func(r models.Reading) bool { return r.DeviceID == deviceID && f.Match(r) })
	sortByTime(out, f.Sort == models.SortAsc)
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemoryReadings) FindLatest(_ context.Context, deviceID string) (*models.Reading, error) {
	out := s.collect(func(r models.Reading) bool { return r.DeviceID == deviceID })
	if len(out) == 0 {
		return nil, nil
	}
	sortByTime(out, false)
	return &out[0], nil
}

func (s *MemoryReadings) FindInWindow(_ context.Context, deviceID string, start, end time.Time) ([]models.Reading, error) {
	out := s.collect(func(r models.Reading) bool {
		return r.DeviceID == deviceID && !r.Timestamp.Before(start) && !r.Timestamp.After(end)
	})
	sortByTime(out, true)
	return out, nil
}

func (s *MemoryReadings) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.readings[:0]
	var n int64
	for _, r := range s.readings {
		if r.Timestamp.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	s.readings = kept
	return n, nil
}

func (s *MemoryReadings) collect(keep func(models.Reading) bool) []models.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Reading{}
	for _, r := range s.readings {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func sortByTime(rs []models.Reading, asc bool) {
	sort.SliceStable(rs, func(i, j int) bool {
		if asc {
			return rs[i].Timestamp.Before(rs[j].Timestamp)
		}
		return rs[i].Timestamp.After(rs[j].Timestamp)
	})
}

// MemoryUsers mirrors MongoUsers without a database.
type MemoryUsers struct {
	mu    sync.RWMutex
	users map[string]models.User // by lower-cased email
}

func NewMemoryUsers() *MemoryUsers { return &MemoryUsers{users: map[string]models.User{}} }

func (s *MemoryUsers) Create(_ context.Context, u *models.User) error {
	u.Email = strings.ToLower(u.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Email]; ok {
		return ErrDuplicateEmail
	}
	u.ID = primitive.NewObjectID()
	s.users[u.Email] = *u
	return nil
}

func (s *MemoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (s *MemoryUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}
