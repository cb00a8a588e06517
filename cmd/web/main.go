// cmd/web/main.go
//
// PocketRocks – HTTP entry point.
//
// Boot order
// ----------
//
//  1. Start daily rotating logger (tees to console when running in a TTY).
//
//  2. Load config: conf/.env → conf/global.yaml → PR_ env overrides, with
//     Vault resolution for secret-bearing fields.
//
//  3. Open the document-store DB and ping it.
//
//  4. Build the identity-provider client, the optional thinking-partner
//     chat service, and the optional GeoIP reader.
//
//  5. Init and mount every registered component, then wrap the mux:
//     request-info enrichment → security headers → access guard →
//     (optionally) HTTPS enforcement.
//
//  6. Serve with sane timeouts; SIGINT/SIGTERM drain in-flight requests.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pocketrocks/pocketrocks/internal/ai"
	"github.com/pocketrocks/pocketrocks/internal/component"
	"github.com/pocketrocks/pocketrocks/internal/config"
	"github.com/pocketrocks/pocketrocks/internal/database"
	"github.com/pocketrocks/pocketrocks/internal/guard"
	"github.com/pocketrocks/pocketrocks/internal/identity"
	"github.com/pocketrocks/pocketrocks/internal/logger"
	"github.com/pocketrocks/pocketrocks/internal/middleware"
	"github.com/pocketrocks/pocketrocks/internal/requestinfo"
	"github.com/pocketrocks/pocketrocks/internal/server"
	"github.com/pocketrocks/pocketrocks/internal/session"

	_ "github.com/pocketrocks/pocketrocks/components/debug"
	_ "github.com/pocketrocks/pocketrocks/components/session"
	_ "github.com/pocketrocks/pocketrocks/components/thinking"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Config ──────────────────────────────────────────────────────
	//
	cfg, err := config.Load(ctx)
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	//
	// ── 2.  Document store ─────────────────────────────────────────────
	//
	db, err := database.Open(cfg.Database.ResolvedDSN())
	if err != nil {
		logOut.Fatalf("connect document store: %v", err)
	}
	defer db.Close()
	logOut.Infow("document store online")

	//
	// ── 3.  Identity provider client ───────────────────────────────────
	//
	verifier := identity.NewClient(
		cfg.Identity.ProjectID,
		cfg.Identity.APIKey,
		cfg.Identity.BaseURL,
		cfg.Identity.Timeout(),
	)

	//
	// ── 4.  Optional services ──────────────────────────────────────────
	//
	var chat *ai.Service
	if cfg.AI.Enabled() {
		chat, err = ai.NewService(ctx, cfg.AI)
		if err != nil {
			logOut.Fatalf("start thinking partner: %v", err)
		}
		logOut.Infow("thinking partner online", "model", cfg.AI.Model)
	} else {
		logOut.Infow("thinking partner disabled (no model configured)")
	}

	if cfg.Geo.DBPath != "" {
		if err := requestinfo.InitGeo(cfg.Geo.DBPath); err != nil {
			logOut.Warnw("geoip disabled", "path", cfg.Geo.DBPath, "err", err)
		}
	}

	//
	// ── 5.  Components ─────────────────────────────────────────────────
	//
	cookie := session.Cookie{
		Name: cfg.Session.CookieName,
		TTL:  cfg.Session.TTL(),
	}
	rules := guard.Rules{
		LoginPath:   cfg.Guard.LoginPath,
		LandingPath: cfg.Guard.LandingPath,
		TransitPath: cfg.Guard.TransitPath,
	}
	deps := component.Deps{
		Config:   cfg,
		Cookie:   cookie,
		Rules:    rules,
		Verifier: verifier,
		DB:       db,
		Chat:     chat,
	}

	mux := chi.NewRouter()
	for _, c := range component.All() {
		if err := c.Init(deps); err != nil {
			logOut.Fatalf("init component %s: %v", c.Name(), err)
		}
		c.Routes(mux)
		logOut.Infow("component mounted", "name", c.Name())
	}

	mux.Handle("/metrics", promhttp.Handler())
	mux.Get("/healthz", healthz(db))

	//
	// ── 6.  Middleware chain and server ────────────────────────────────
	//
	var root http.Handler = mux
	root = guard.Gate(rules, cookie, root)
	root = middleware.Security(root)
	root = requestinfo.Enrich(root)
	if cfg.HTTP.ForceHTTPS {
		root = middleware.ForceHTTPS(root)
	}

	srv := server.New(cfg.HTTP.ListenAddr, root)

	go func() {
		logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logOut.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logOut.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logOut.Warnw("shutdown incomplete", "err", err)
	}
}

// healthz is a liveness probe: process up and document store reachable.
func healthz(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			zap.S().Warnw("healthz ping failed", "err", err)
			http.Error(w, "document store unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
