package main

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	StoreBackend   string // mongo | memory
	MongoURI       string
	MongoDB        string
	JWTSecret      string
	TokenTTL       time.Duration
	ThresholdsFile string
	CORSOrigins    []string

	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	LatestCacheTTL time.Duration

	AlertWebhookURL string
	RetentionDays   int
}

func mustConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system environment variables")
	}

	cfg := Config{
		Port:           getenv("PORT", "8080"),
		StoreBackend:   strings.ToLower(getenv("STORE_BACKEND", "mongo")),
		MongoURI:       getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getenv("MONGO_DB", "soilsense"),
		JWTSecret:      getenv("JWT_SECRET", "change_me"),
		TokenTTL:       getenvDuration("TOKEN_TTL", 24*time.Hour),
		ThresholdsFile: getenv("THRESHOLDS_FILE", ""),
		CORSOrigins:    splitList(getenv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),

		InfluxURL:    getenv("INFLUXDB_URL", ""),
		InfluxToken:  getenv("INFLUXDB_TOKEN", ""),
		InfluxOrg:    getenv("INFLUXDB_ORG", ""),
		InfluxBucket: getenv("INFLUXDB_BUCKET", "soil_readings"),

		RedisAddr:      getenv("REDIS_ADDR", ""),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		RedisDB:        getenvInt("REDIS_DB", 0),
		LatestCacheTTL: getenvDuration("LATEST_CACHE_TTL", 10*time.Minute),

		AlertWebhookURL: getenv("ALERT_WEBHOOK_URL", ""),
		RetentionDays:   getenvInt("RETENTION_DAYS", 0),
	}
	if cfg.JWTSecret == "change_me" {
		log.Println("JWT_SECRET is not set, using the development default")
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", k, v, def)
		return def
	}
	return n
}

func getenvDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %s", k, v, def)
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
