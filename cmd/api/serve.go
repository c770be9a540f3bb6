package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"placement-portal/internal/accounts"
	"placement-portal/internal/audit"
	"placement-portal/internal/auth"
	"placement-portal/internal/httpapi"
	"placement-portal/internal/placement"
	"placement-portal/internal/rbac"
	"placement-portal/internal/reporting"
	"placement-portal/internal/tenancy"
	"placement-portal/pkg/telemetry"
	"placement-portal/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

const readinessTimeout = time.Second

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the HTTP API server",
	PreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Root context that cancels on shutdown
		rootCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(rootCtx, stop)
	},
}

func serve(rootCtx context.Context, stop context.CancelFunc) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownTelemetry, err := telemetry.Setup()
	if err != nil {
		return fmt.Errorf("telemetry init failed: %w", err)
	}
	metrics, err := telemetry.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics init failed: %w", err)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		return fmt.Errorf("postgres init failed: %w", err)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		return fmt.Errorf("redis init failed: %w", err)
	}
	defer rdb.Close()

	placementRepo := placement.NewPostgresRepo(db)
	placementSvc := placement.NewService(placementRepo)
	accountSvc := accounts.NewService(accounts.NewPostgresRepo(db), placementSvc, cfg.Auth.BcryptCost)

	codec, err := auth.NewCodec(cfg.Auth)
	if err != nil {
		return fmt.Errorf("auth init failed: %w", err)
	}
	authn := auth.NewAuthenticator(codec, accountSvc, nil)

	authorizer, err := rbac.NewAuthorizer(rbac.DefaultRules())
	if err != nil {
		return fmt.Errorf("route rules invalid: %w", err)
	}

	h := httpapi.Handlers{
		Auth:      authn,
		Accounts:  accountSvc,
		Throttle:  accounts.NewRedisThrottle(rdb, cfg.Login.MaxFailures, cfg.Login.FailureWindow),
		Scopes:    tenancy.NewResolver(accountSvc, accountSvc, metrics),
		Placement: placementSvc,
		Reports:   reporting.NewService(placementRepo),
		Audit:     audit.NewService(audit.NewPostgresRepo(db)),
		Metrics:   metrics,
		Ready: map[string]httpapi.ReadinessCheck{
			"postgres": func(ctx context.Context) error { return utils.HealthCheck(ctx, db, readinessTimeout) },
			"redis":    func(ctx context.Context) error { return utils.RedisHealthCheck(ctx, rdb, readinessTimeout) },
		},
	}
	r := newRouter(h, authn, authorizer, metrics)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env, "token_ttl", codec.TTL().String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Error("telemetry shutdown failed", "err", err)
	}
	return nil
}
