// Package config loads and validates environment variables at startup.
// Fail-fast in production: if a required variable is missing, the process
// exits. In development missing values are logged as warnings instead so the
// site can be worked on without a full set of third-party credentials.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration for the site API.
type Config struct {
	Port string
	Env  string // "production" or "development"

	// Mailing-list platform (required).
	MailerAPIKey       string
	MailerServerPrefix string // e.g. "us14"
	MailerAudienceID   string

	// Postgres for applications and contact leads (required).
	DatabaseURL string

	// Redis backs the rate-limit counters and the job-listing snapshot when
	// set. Empty means in-process stores (single-instance deployments only).
	RedisURL string

	// ATS job source (optional — empty provider disables listings).
	ATSProvider string
	ATSSite     string
	ATSAPIKey   string

	// HiringOverride forces the hiring flag regardless of job count.
	// nil means "derive from the listing count".
	HiringOverride *bool

	// JobsCacheBypass makes every listing read fetch fresh and disables the
	// scheduled warm refresh. Used by build pipelines and local development.
	JobsCacheBypass bool

	RateMax    int
	RateWindow time.Duration
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	env := strings.ToLower(os.Getenv("APP_ENV"))
	if env == "" {
		env = "development"
	}

	cfg := &Config{
		Port:               os.Getenv("PORT"),
		Env:                env,
		MailerAPIKey:       os.Getenv("MAILER_API_KEY"),
		MailerServerPrefix: os.Getenv("MAILER_SERVER_PREFIX"),
		MailerAudienceID:   os.Getenv("MAILER_AUDIENCE_ID"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		ATSProvider:        strings.ToLower(os.Getenv("ATS_PROVIDER")),
		ATSSite:            os.Getenv("ATS_SITE"),
		ATSAPIKey:          os.Getenv("ATS_API_KEY"),
		RateMax:            10,
		RateWindow:         time.Minute,
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	required := []struct{ name, value string }{
		{"MAILER_API_KEY", cfg.MailerAPIKey},
		{"MAILER_SERVER_PREFIX", cfg.MailerServerPrefix},
		{"MAILER_AUDIENCE_ID", cfg.MailerAudienceID},
		{"DATABASE_URL", cfg.DatabaseURL},
	}
	for _, v := range required {
		if v.value != "" {
			continue
		}
		if cfg.IsProduction() {
			return nil, fmt.Errorf("%s is required", v.name)
		}
		log.Printf("[config] Warning: %s not set — related features are disabled", v.name)
	}

	if s := os.Getenv("HIRING_OVERRIDE"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("HIRING_OVERRIDE must be a boolean, got %q", s)
		}
		cfg.HiringOverride = &v
	}

	if s := os.Getenv("JOBS_CACHE_BYPASS"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("JOBS_CACHE_BYPASS must be a boolean, got %q", s)
		}
		cfg.JobsCacheBypass = v
	}

	if s := os.Getenv("RATE_MAX"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("RATE_MAX must be a positive integer, got %q", s)
		}
		cfg.RateMax = v
	}

	if s := os.Getenv("RATE_WINDOW"); s != "" {
		v, err := time.ParseDuration(s)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("RATE_WINDOW must be a positive duration, got %q", s)
		}
		cfg.RateWindow = v
	}

	return cfg, nil
}

// IsProduction reports whether the process runs with production semantics.
func (c *Config) IsProduction() bool { return c.Env == "production" }
