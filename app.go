package main

import (
	"context"
	"fmt"
	"log"

	"soilsense/models"
	"soilsense/soil"
	"soilsense/store"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type App struct {
	cfg      Config
	readings *soil.Service
	users    userStore
	live     *liveHub
	closers  []func(context.Context)
}

func newApp(ctx context.Context, cfg Config) (*App, error) {
	table, err := soil.LoadThresholds(cfg.ThresholdsFile)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, live: newLiveHub()}

	var readings soil.ReadingStore
	switch cfg.StoreBackend {
	case "memory":
		log.Println("Using in-memory storage; readings are lost on restart")
		readings = store.NewMemoryReadings()
		a.users = store.NewMemoryUsers()
	case "mongo", "":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		a.closers = append(a.closers, func(ctx context.Context) { _ = client.Disconnect(ctx) })
		db := client.Database(cfg.MongoDB)

		rs := store.NewMongoReadings(db)
		if err := rs.EnsureIndexes(ctx); err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("reading indexes: %w", err)
		}
		us := store.NewMongoUsers(db)
		if err := us.EnsureIndexes(ctx); err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("user indexes: %w", err)
		}
		readings, a.users = rs, us
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("[cache] redis unavailable at %s, latest-reading cache disabled: %v", cfg.RedisAddr, err)
			_ = rdb.Close()
		} else {
			log.Println("[cache] latest-reading cache enabled")
			readings = store.NewLatestCache(readings, rdb, cfg.LatestCacheTTL)
			a.closers = append(a.closers, func(context.Context) { _ = rdb.Close() })
		}
	}

	observers := []soil.Observer{a.live}
	if cfg.InfluxURL != "" {
		mirror := store.NewInfluxMirror(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
		if err := mirror.Ping(ctx); err != nil {
			log.Printf("[influx] %v; mirroring stays on and will retry per reading", err)
		} else {
			log.Println("[influx] mirroring readings to bucket " + cfg.InfluxBucket)
		}
		observers = append(observers, mirror)
		a.closers = append(a.closers, func(context.Context) { mirror.Close() })
	}
	if cfg.AlertWebhookURL != "" {
		notifier := newAlertNotifier(cfg.AlertWebhookURL)
		observers = append(observers, notifier)
		a.closers = append(a.closers, func(context.Context) { notifier.wait() })
	}

	a.readings = soil.NewService(readings, table, observers...)
	return a, nil
}

func (a *App) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i](ctx)
	}
	a.closers = nil
}
