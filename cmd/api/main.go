package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"vet-clinic-api/internal/adapters/auth/jwt"
	"vet-clinic-api/internal/adapters/auth/remote"
	"vet-clinic-api/internal/adapters/auth/revocation"
	"vet-clinic-api/internal/adapters/messaging/rabbitmq"
	pg "vet-clinic-api/internal/adapters/storage/postgres"
	"vet-clinic-api/internal/config"
	"vet-clinic-api/internal/domain/appointments"
	"vet-clinic-api/internal/domain/events"
	"vet-clinic-api/internal/middleware"
	"vet-clinic-api/internal/platform/logger"
	"vet-clinic-api/internal/platform/metrics"
	"vet-clinic-api/internal/platform/tracer"
	"vet-clinic-api/internal/ports/auth"
	"vet-clinic-api/internal/router"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "vet-clinic-api",
		Short:         "Vet clinic appointments API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			if cfg.DatabaseDSN == "" {
				return errors.New("DB_DSN is required for migrate up")
			}

			db, err := pg.Open(cfg.DatabaseDSN)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			n, err := pg.NewMigrator(db).Up(cmd.Context())
			if err != nil {
				return fmt.Errorf("migrate up: %w", err)
			}
			log.Info("migrations.applied", map[string]any{"count": n})
			return nil
		},
	})

	return cmd
}

func runServer(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	if z, ok := log.(*logger.ZapLogger); ok {
		defer func() { _ = z.Sync() }()
	}

	tp, err := tracer.Init(ctx, tracer.Options{
		Enabled:     cfg.TracingEnabled,
		ServiceName: cfg.AppName,
		Endpoint:    cfg.OTLPEndpoint,
		SampleRate:  cfg.TracingSampleRate,
	})
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(sctx)
	}()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	schedule, err := appointments.NewSchedule(cfg.ClinicOpenHour, cfg.ClinicCloseHour)
	if err != nil {
		return err
	}

	var db *sql.DB
	if cfg.DatabaseDSN != "" {
		db, err = pg.Open(cfg.DatabaseDSN)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()
		log.Info("storage.postgres", nil)
	} else {
		log.Warn("storage.memory", map[string]any{"reason": "DB_DSN not set"})
	}

	revoked := revocation.New(cfg.RevocationCacheSize, cfg.JWTTTL)
	verifier, issuer, err := authStack(cfg, revoked, log)
	if err != nil {
		return err
	}

	var publisher events.Publisher
	if cfg.RabbitMQEnabled {
		p, err := rabbitmq.NewPublisher(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange}, log)
		if err != nil {
			return fmt.Errorf("rabbitmq: %w", err)
		}
		defer p.Close()
		publisher = p
	}

	opts := router.Options{
		AuthVerifier: verifier,
		DB:           db,
		Logger:       log,
		Metrics:      metrics.NewCollector("vet_clinic"),
		Schedule:     &schedule,
		Location:     loc,
		Publisher:    publisher,
		Revoker:      revoked,
		RateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		},
	}
	if cfg.TracingEnabled {
		opts.ServiceName = cfg.AppName
	}
	if issuer != nil {
		opts.TokenIssuer = issuer
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.NewRouter(opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server.starting", map[string]any{"addr": srv.Addr, "auth_mode": cfg.AuthMode})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Info("server.shutting_down", map[string]any{"signal": sig.String()})
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server.stopped", nil)
	return nil
}

// authStack arma verifier e issuer según AUTH_MODE.
// development: sin verifier (headers X-Debug-*), login igual emite JWT.
func authStack(cfg *config.Config, revoked *revocation.Store, log logger.Logger) (auth.AuthVerifier, *jwt.Manager, error) {
	switch cfg.AuthMode {
	case config.AuthModeRemote:
		v, err := remote.NewVerifier(remote.Config{
			BaseURL: cfg.AuthRemoteURL,
			APIKey:  cfg.AuthRemoteAPIKey,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("remote verifier: %w", err)
		}
		return v, nil, nil

	case config.AuthModeJWT:
		m := jwt.NewManager(jwt.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, TTL: cfg.JWTTTL}, revoked)
		return m, m, nil

	default:
		secret := cfg.JWTSecret
		if secret == "" {
			secret = randomSecret()
			log.Warn("auth.dev_secret", map[string]any{"reason": "JWT_SECRET not set, tokens die with the process"})
		}
		m := jwt.NewManager(jwt.Config{Secret: secret, Issuer: cfg.JWTIssuer, TTL: cfg.JWTTTL}, revoked)
		return nil, m, nil
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func newLogger(cfg *config.Config) (logger.Logger, error) {
	return logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
}
