package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	DBURL     string
	RedisAddr string

	AccessTokenSecret  string
	AccessTokenTTL     time.Duration
	RefreshTokenSecret string
	RefreshTokenTTL    time.Duration

	CORSOrigins  []string
	MaxBodyBytes int64

	OTLPEndpoint string

	// optional faculty account seeded on boot
	SeedFacultyUserName string
	SeedFacultyFullName string
	SeedFacultyPassword string

	LoginRateLimit  int
	LoginRateWindow time.Duration
}

func Load() Config {
	// .env is optional, deployments set the environment directly
	_ = godotenv.Load()

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		DBURL:     buildDBURL(),
		RedisAddr: getEnv("REDIS_ADDR", "127.0.0.1:6379"),

		AccessTokenSecret:  getEnv("ACCESS_TOKEN_SECRET", "dev-access-secret"),
		AccessTokenTTL:     getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenSecret: getEnv("REFRESH_TOKEN_SECRET", "dev-refresh-secret"),
		RefreshTokenTTL:    getEnvDuration("REFRESH_TOKEN_TTL", 240*time.Hour),

		CORSOrigins:  splitCSV(getEnv("CORS_ORIGIN", "http://localhost:5173")),
		MaxBodyBytes: int64(getEnvInt("MAX_BODY_BYTES", 160*1024)),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		SeedFacultyUserName: getEnv("SEED_FACULTY_USERNAME", ""),
		SeedFacultyFullName: getEnv("SEED_FACULTY_FULLNAME", "Seed Faculty"),
		SeedFacultyPassword: getEnv("SEED_FACULTY_PASSWORD", ""),

		LoginRateLimit:  getEnvInt("LOGIN_RATE_LIMIT", 20),
		LoginRateWindow: getEnvDuration("LOGIN_RATE_WINDOW", time.Minute),
	}
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "attendhub")
	pass := getEnv("DB_PASSWORD", "attendhub")
	name := getEnv("DB_NAME", "attendhub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return d
	}
	return fallback
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
