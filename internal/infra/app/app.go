package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/boutell/sassypants/internal/core/port"
	"github.com/boutell/sassypants/internal/infra/config"
	"github.com/boutell/sassypants/internal/infra/database"
	"github.com/boutell/sassypants/internal/infra/logger"
	"github.com/boutell/sassypants/internal/infra/notify"
	"github.com/boutell/sassypants/internal/infra/security"
	postgresrepo "github.com/boutell/sassypants/internal/repository/postgres"
	"github.com/boutell/sassypants/internal/transport/http/routes"
	"github.com/boutell/sassypants/internal/usecase"
)

type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if err := postgresrepo.RunMigrations(ctx, database.DSN(cfg.Postgres)); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	accounts := postgresrepo.NewAccountRepository(pool)

	var notifier port.Notifier
	if cfg.SMTP.Host != "" {
		notifier = notify.NewSMTPNotifier(cfg.SMTP, cfg.App.Service)
	} else {
		log.Info("smtp host not configured, logging notifications instead")
		notifier = notify.NewLoggingNotifier(log)
	}

	hasher := security.NewHasher(cfg.Lifecycle.ScryptCost)
	codes := security.NewCodeIssuer()

	engine := usecase.NewLifecycleEngine(cfg, accounts, notifier, hasher, codes, log)

	router := routes.Register(routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Engine:   engine,
		Database: pool,
	})

	return &Application{
		cfg:    cfg,
		engine: router,
		logger: log,
		pool:   pool,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting account service",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
