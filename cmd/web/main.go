// cmd/web/main.go
//
// formrelay – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (host-wide file → .env fallback).
//
//  2. Load configuration (YAML → FORMRELAY_ env → vault: secrets).
//
//  3. Start daily rotating logger (tees to console when running in a TTY).
//
//  4. Open the store for the configured driver.  An unreachable database
//     does not block startup; the schema is applied once it answers.
//
//  5. Wire relay client → duplicate checker → coordinator → read-back query.
//
//  6. Build the chi router:
//
//     • request id            – chi middleware.RequestID
//     • panic → JSON 500      – middleware.Recover
//     • security headers      – middleware.Security
//     • HTTPS redirect        – middleware.ForceHTTPS (config flag)
//     • CORS                  – middleware.CORS (configured origins)
//     • client IP, UA, geo    – requestinfo.Enrich
//     • access log            – middleware.RequestLogger
//     • /metrics              – promhttp
//
//  7. Serve until SIGINT/SIGTERM, then drain with a bounded shutdown and
//     close the store.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/formrelay/internal/api"
	"github.com/yanizio/formrelay/internal/config"
	"github.com/yanizio/formrelay/internal/logger"
	"github.com/yanizio/formrelay/internal/middleware"
	"github.com/yanizio/formrelay/internal/relay"
	"github.com/yanizio/formrelay/internal/requestinfo"
	"github.com/yanizio/formrelay/internal/server"
	"github.com/yanizio/formrelay/internal/store"
	"github.com/yanizio/formrelay/internal/submission"
	"github.com/yanizio/formrelay/internal/vault"
)

const (
	serverEnvPath   = "/usr/local/etc/formrelay/global.env"
	shutdownTimeout = 20 * time.Second
	schemaRetry     = 30 * time.Second
)

// loadEnv prefers the host-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

// ensureSchema applies the schema, retrying every interval until it
// succeeds or ctx ends.
func ensureSchema(ctx context.Context, m interface{ Migrate(context.Context) error }, lg *zap.SugaredLogger, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		err := m.Migrate(ctx)
		if err == nil {
			lg.Infow("schema ready")
			return
		}
		lg.Warnw("schema check failed, will retry", "err", err, "in", interval)
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("formrelay: %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bootstrap console logger so config errors are visible.
	boot, _ := zap.NewProduction()
	zap.ReplaceGlobals(boot)

	//
	// ── 1.  Configuration and logger ────────────────────────────────────
	//
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logDir := cfg.Logging.Dir
	if logDir == "" {
		logDir = filepath.Join(cfg.Paths.Root, "logs")
	}
	logOut, err := logger.New(logger.Options{Dir: logDir, Level: cfg.Logging.Level, Tee: runningInTTY()})
	if err != nil {
		return err
	}
	defer func() { _ = logOut.Sync() }()

	if err := requestinfo.InitGeo(cfg.GeoIP.DBPath); err != nil {
		logOut.Warnw("geoip disabled", "err", err)
	}
	defer requestinfo.CloseGeo()

	//
	// ── 2.  Store ───────────────────────────────────────────────────────
	//
	logOut.Infow("connecting to store", "driver", cfg.Database.Driver)
	be, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := be.Close(); err != nil {
			logOut.Warnw("store close", "err", err)
		}
	}()
	logOut.Infow("store opened", "driver", be.Driver())

	//
	// ── 3.  Submission pipeline ─────────────────────────────────────────
	//
	rc := relay.New(cfg.Relay.Endpoint, cfg.Relay.Timeout, relay.WithLogger(logOut))
	dupes := submission.NewDuplicateChecker(be, cfg.Duplicate.CacheSize)
	coord := submission.NewCoordinator(be, dupes, rc, logOut)
	query := submission.NewQuery(be, cfg.Admin.DefaultLimit, cfg.Admin.MaxLimit)

	//
	// ── 4.  Router ──────────────────────────────────────────────────────
	//
	h := &api.Handler{
		Service:    cfg.Service.Name,
		AdminToken: cfg.Admin.Token,
		Submit:     coord,
		Read:       query,
		Store:      be,
	}
	router := api.NewRouter(h,
		chimw.RequestID,
		middleware.Recover,
		middleware.Security,
		func(next http.Handler) http.Handler { return middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS, next) },
		middleware.CORS(cfg.HTTP.CORSOrigins),
		requestinfo.Enrich,
		middleware.RequestLogger(logOut),
	)
	router.Handle("/metrics", promhttp.Handler())

	srv := server.New(cfg.HTTP.ListenAddr, router, server.Timeouts{
		Read:  cfg.HTTP.ReadTimeout,
		Write: cfg.HTTP.WriteTimeout,
		Idle:  cfg.HTTP.IdleTimeout,
	})

	//
	// ── 5.  Serve until signalled ───────────────────────────────────────
	//
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logOut.Infow("listening", "addr", srv.Addr, "admin_guarded", cfg.Admin.Token != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logOut.Infow("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	g.Go(func() error { ensureSchema(gctx, be, logOut, schemaRetry); return nil })

	if os.Getenv("VAULT_TOKEN") != "" {
		vc, err := vault.New(logOut)
		if err != nil {
			logOut.Warnw("vault renewal disabled", "err", err)
		} else {
			g.Go(func() error { vc.KeepAlive(gctx); return nil })
		}
	}

	return g.Wait()
}
