package router

import (
	"context"
	"database/sql"
	"net/http"
	"os"

	"civil-registry/internal/adapters/auth/jwtauth"
	"civil-registry/internal/adapters/storage"
	mem "civil-registry/internal/adapters/storage/memory"
	pg "civil-registry/internal/adapters/storage/postgres"
	"civil-registry/internal/domain/auditlog"
	"civil-registry/internal/domain/backup"
	"civil-registry/internal/domain/kebeles"
	"civil-registry/internal/domain/records"
	"civil-registry/internal/domain/records/metrics"
	"civil-registry/internal/domain/users"
	"civil-registry/internal/middleware"
	"civil-registry/internal/platform/config"
	"civil-registry/internal/platform/logger"
	"civil-registry/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	Config config.Config

	// AuthVerifier puede venir ya armado (tests). Si es nil y hay
	// JWT_SECRET, el router arma el verificador JWT; si tampoco hay
	// secret, corre en modo dev con headers X-Debug-*.
	AuthVerifier auth.AuthVerifier

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Log logger.Logger
}

func NewRouter(opts Options) http.Handler {
	cfg := opts.Config

	log := opts.Log
	if log == nil {
		log = logger.NewFromEnv()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	// Emisión y verificación de tokens comparten el mismo servicio.
	// Sin JWT_SECRET se firma con un secret de dev y la verificación
	// queda en modo headers de debug.
	secret := cfg.JWTSecret
	verifier := opts.AuthVerifier
	if secret == "" {
		secret = "dev-insecure-secret"
		log.Warn("JWT_SECRET not set, running in dev auth mode", nil)
	}
	tokens := jwtauth.New(secret, cfg.AppName, cfg.TokenTTL)
	if verifier == nil && cfg.JWTSecret != "" {
		verifier = tokens
	}

	r.Use(middleware.AuthContext(verifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	reg := prometheus.NewRegistry()
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	var (
		recordsRepo records.Repository
		usersRepo   users.Repository
		logsRepo    auditlog.Repository
	)

	// Si no te pasan DB explícita, intenta por config/env (para dev/handoff)
	db := opts.DB
	if db == nil {
		dsn := cfg.DBDSN
		if dsn == "" {
			dsn = os.Getenv("DB_DSN")
		}
		if dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Error("postgres unavailable, falling back to memory store", map[string]any{"error": err.Error()})
			}
		}
	}

	if db != nil {
		recordsRepo = pg.NewRecordsRepo(db)
		usersRepo = pg.NewUsersRepo(db)
		logsRepo = pg.NewAuditLogRepo(db)
		log.Info("using postgres store", nil)
	} else {
		recordsRepo = mem.NewRecordsRepo()
		usersRepo = mem.NewUsersRepo()
		logsRepo = mem.NewAuditLogRepo()
		log.Info("using in-memory store", nil)
	}

	// Services por módulo
	logsSvc := auditlog.NewService(logsRepo)
	usersSvc := users.NewService(usersRepo)
	recordsSvc := records.NewService(recordsRepo, logsSvc, metrics.New(reg))
	backupSvc := backup.NewService(recordsSvc, logsSvc)

	if cfg.SeedUsers {
		if err := storage.SeedUsers(context.Background(), usersSvc); err != nil {
			log.Error("seed users failed", map[string]any{"error": err.Error()})
		}
	}

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc, tokens, logsSvc)
	records.RegisterRoutes(r, recordsSvc)
	auditlog.RegisterRoutes(r, logsSvc)
	kebeles.RegisterRoutes(r)
	backup.RegisterRoutes(r, backupSvc, logsSvc)

	return r
}
