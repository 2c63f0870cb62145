// movrr-site-api
//
// JSON backend for the Movrr marketing site:
//   - newsletter / waitlist / early-access signups → mailing-list sync
//   - careers page → ATS listings behind a one-hour read-through cache
//   - job applications and contact leads → Postgres
//
// Counters and the listing snapshot live in Redis when REDIS_URL is set, so
// the same binary works single-instance (in-process stores) or scaled out.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/Movrr-Official/movrr-sub001/internal/config"
	"github.com/Movrr-Official/movrr-sub001/internal/db"
	"github.com/Movrr-Official/movrr-sub001/internal/jobs"
	"github.com/Movrr-Official/movrr-sub001/internal/leads"
	"github.com/Movrr-Official/movrr-sub001/internal/mailer"
	"github.com/Movrr-Official/movrr-sub001/internal/ratelimit"
	"github.com/Movrr-Official/movrr-sub001/internal/subscribe"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	if err := godotenv.Load(); err != nil {
		log.Println("[site-api] No .env file found — using process environment")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[site-api] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL (applications + contact leads) ───────────────────────────
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		log.Println("[site-api] Connecting to PostgreSQL…")
		pool, err = db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("[site-api] PostgreSQL: %v", err)
		}
		defer pool.Close()
		log.Println("[site-api] PostgreSQL connected ✓")
	}

	// ── Redis (shared counters + listing snapshot) ──────────────────────────
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		log.Println("[site-api] Connecting to Redis…")
		rdb, err = db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("[site-api] Redis: %v", err)
		}
		defer rdb.Close()
		log.Println("[site-api] Redis connected ✓")
	}

	// ── Mailing list ────────────────────────────────────────────────────────
	list := mailer.New(cfg.MailerAPIKey, cfg.MailerServerPrefix, cfg.MailerAudienceID)
	subSvc := subscribe.NewService(list)

	// ── Job listings ────────────────────────────────────────────────────────
	fetcher, err := jobs.NewFetcher(cfg.ATSProvider, cfg.ATSSite, cfg.ATSAPIKey)
	if err != nil {
		log.Fatalf("[site-api] ATS config: %v", err)
	}
	var snapStore jobs.SnapshotStore = jobs.NewMemorySnapshotStore()
	if rdb != nil {
		snapStore = jobs.NewRedisSnapshotStore(rdb, "")
	}
	cache := jobs.NewCache(fetcher, snapStore, jobs.WithBypass(cfg.JobsCacheBypass))

	// ── Rate limiting ───────────────────────────────────────────────────────
	var limitStore ratelimit.Store
	var memStore *ratelimit.MemoryStore
	if rdb != nil {
		limitStore = ratelimit.NewRedisStore(rdb, "")
	} else {
		memStore = ratelimit.NewMemoryStore()
		limitStore = memStore
	}
	limiter := ratelimit.New(limitStore, "api", cfg.RateMax, cfg.RateWindow)

	// ── Routes ──────────────────────────────────────────────────────────────
	api := http.NewServeMux()
	subscribe.NewHandler(subSvc).RegisterRoutes(api)
	jobs.NewHandler(cache, cfg.HiringOverride).RegisterRoutes(api)
	if pool != nil {
		leads.NewHandler(leads.NewService(pool)).RegisterRoutes(api)
	} else {
		log.Println("[site-api] DATABASE_URL not set — application and contact forms disabled")
	}

	root := http.NewServeMux()
	root.HandleFunc("/health", healthHandler)
	root.Handle("/", ratelimit.Middleware(limiter, nil)(api))

	// ── Scheduled maintenance ───────────────────────────────────────────────
	// Warm refresh keeps the careers page hot so cold-cache misses (and the
	// duplicate fetches they can race into) stay rare. The sweep bounds the
	// in-process rate-limit store on a fixed, deterministic interval.
	c := cron.New()
	if !cfg.JobsCacheBypass {
		if _, err := c.AddFunc("@every 1h", func() {
			if _, err := cache.Refresh(context.Background()); err != nil {
				log.Printf("[site-api] Scheduled job refresh failed: %v", err)
			}
		}); err != nil {
			log.Fatalf("[site-api] cron.AddFunc: %v", err)
		}
		// Populate the listing immediately on boot (non-blocking).
		go func() {
			if _, err := cache.Refresh(ctx); err != nil {
				log.Printf("[site-api] Initial job fetch failed: %v", err)
			}
		}()
	}
	if memStore != nil {
		if _, err := c.AddFunc("@every 5m", memStore.Sweep); err != nil {
			log.Fatalf("[site-api] cron.AddFunc: %v", err)
		}
	}
	c.Start()
	defer c.Stop()

	// ── HTTP server ─────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      root,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("[site-api] v%s (%s) listening on :%s", version, cfg.Env, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[site-api] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ───────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[site-api] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[site-api] Shutdown error: %v", err)
	}
	log.Println("[site-api] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "site-api",
		"version": version,
	})
}
