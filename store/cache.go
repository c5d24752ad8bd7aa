package store

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"soilsense/models"
	"soilsense/soil"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const latestKeyPrefix = "soilsense:latest:"

// LatestCache keeps each device's newest reading in Redis in front of
// another store. Cache failures are logged and fall through to the store.
type LatestCache struct {
	soil.ReadingStore
	rdb *redis.Client
	ttl time.Duration
}

func NewLatestCache(next soil.ReadingStore, rdb *redis.Client, ttl time.Duration) *LatestCache {
	return &LatestCache{ReadingStore: next, rdb: rdb, ttl: ttl}
}

func latestKey(deviceID string) string { return latestKeyPrefix + deviceID }

func (c *LatestCache) Insert(ctx context.Context, r *models.Reading) (primitive.ObjectID, error) {
	id, err := c.ReadingStore.Insert(ctx, r)
	if err != nil {
		return id, err
	}
	c.put(ctx, r)
	return id, nil
}

func (c *LatestCache) FindLatest(ctx context.Context, deviceID string) (*models.Reading, error) {
	raw, err := c.rdb.Get(ctx, latestKey(deviceID)).Bytes()
	switch {
	case err == nil:
		var r models.Reading
		if jerr := json.Unmarshal(raw, &r); jerr == nil {
			return &r, nil
		}
	case !errors.Is(err, redis.Nil):
		log.Printf("[cache] get latest %s: %v", deviceID, err)
	}

	r, err := c.ReadingStore.FindLatest(ctx, deviceID)
	if err != nil || r == nil {
		return r, err
	}
	c.put(ctx, r)
	return r, nil
}

// DeleteOlderThan drops every cached entry since any of them may now be stale.
func (c *LatestCache) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := c.ReadingStore.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return n, err
	}
	iter := c.rdb.Scan(ctx, 0, latestKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if derr := c.rdb.Del(ctx, iter.Val()).Err(); derr != nil {
			log.Printf("[cache] del %s: %v", iter.Val(), derr)
		}
	}
	if ierr := iter.Err(); ierr != nil {
		log.Printf("[cache] scan: %v", ierr)
	}
	return n, nil
}

func (c *LatestCache) put(ctx context.Context, r *models.Reading) {
	raw, err := json.Marshal(r)
	if err != nil {
		log.Printf("[cache] encode reading %s: %v", r.ID.Hex(), err)
		return
	}
	if err := c.rdb.Set(ctx, latestKey(r.DeviceID), raw, c.ttl).Err(); err != nil {
		log.Printf("[cache] set latest %s: %v", r.DeviceID, err)
	}
}
