package config

import (
	"fmt"
	"github.com/joho/godotenv"
	"opsched/cmd/internal/scheduling"
	"opsched/cmd/internal/telemetry"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port          string
	DatabasePath  string
	Location      *time.Location
	BusinessHours scheduling.BusinessHours
	SlotStep      time.Duration
	LinkBaseURL   string
	KafkaBrokers  []string
	KafkaTopic    string
	RedisURL      string
	RateLimitRPS  float64
	Tracing       telemetry.Tracing
}

// Load reads .env when present and then the process environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	port, err := Port("PORT", "6060")
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(String("TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}

	hours, err := businessHours(loc)
	if err != nil {
		return nil, err
	}

	step, err := Int("SLOT_STEP_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	if step <= 0 {
		return nil, fmt.Errorf("SLOT_STEP_MINUTES must be positive (got %d)", step)
	}

	rps, err := strconv.ParseFloat(String("RATE_LIMIT_RPS", "20"), 64)
	if err != nil || rps < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS must be a non-negative number")
	}

	tracing, err := tracingConfig()
	if err != nil {
		return nil, err
	}

	dbPath := "./database.db"
	if v, ok := os.LookupEnv("DATABASE_PATH"); ok {
		dbPath = strings.TrimSpace(v)
	}

	return &Config{
		Port:          port,
		DatabasePath:  dbPath,
		Location:      loc,
		BusinessHours: hours,
		SlotStep:      time.Duration(step) * time.Minute,
		LinkBaseURL:   String("LINK_BASE_URL", "http://localhost:"+port),
		KafkaBrokers:  SplitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:    String("KAFKA_TOPIC", "schedule.events"),
		RedisURL:      strings.TrimSpace(os.Getenv("REDIS_URL")),
		RateLimitRPS:  rps,
		Tracing:       tracing,
	}, nil
}

func tracingConfig() (telemetry.Tracing, error) {
	t := telemetry.Tracing{
		Endpoint:    String("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		SampleRatio: 1,
	}
	if v := String("OTEL_ENABLED", ""); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return t, fmt.Errorf("OTEL_ENABLED must be a boolean (got %q)", v)
		}
		t.Enabled = enabled
	}
	if v := String("OTEL_SAMPLING_RATIO", ""); v != "" {
		ratio, err := strconv.ParseFloat(v, 64)
		if err != nil || ratio < 0 || ratio > 1 {
			return t, fmt.Errorf("OTEL_SAMPLING_RATIO must be between 0 and 1 (got %q)", v)
		}
		t.SampleRatio = ratio
	}
	return t, nil
}

func businessHours(loc *time.Location) (scheduling.BusinessHours, error) {
	h := scheduling.BusinessHours{Location: loc}

	var err error
	if h.Open, err = scheduling.ParseClock(String("BUSINESS_HOURS_START", "09:00")); err != nil {
		return h, fmt.Errorf("BUSINESS_HOURS_START: %w", err)
	}
	if h.Close, err = scheduling.ParseClock(String("BUSINESS_HOURS_END", "17:00")); err != nil {
		return h, fmt.Errorf("BUSINESS_HOURS_END: %w", err)
	}
	if h.Open >= h.Close {
		return h, fmt.Errorf("BUSINESS_HOURS_START must be before BUSINESS_HOURS_END")
	}

	for _, raw := range SplitList(String("BUSINESS_DAYS", "1,2,3,4,5")) {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 0 || d > 6 {
			return h, fmt.Errorf("BUSINESS_DAYS must list weekdays 0-6 (got %q)", raw)
		}
		h.Days = append(h.Days, time.Weekday(d))
	}
	if len(h.Days) == 0 {
		return h, fmt.Errorf("BUSINESS_DAYS must not be empty")
	}
	return h, nil
}

func String(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func Int(key string, fallback int) (int, error) {
	v := String(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer (got %q)", key, v)
	}
	return n, nil
}

func Port(key, fallback string) (string, error) {
	v := String(key, fallback)
	p, err := strconv.Atoi(v)
	if err != nil || p < 1 || p > 65535 {
		return "", fmt.Errorf("%s must be a valid TCP port (got %q)", key, v)
	}
	return v, nil
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
