package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/sorayamlj/FocusTache/api/handler"
	"github.com/sorayamlj/FocusTache/domain"
	"github.com/sorayamlj/FocusTache/internal/config"
	"github.com/sorayamlj/FocusTache/internal/infrastructure/buffer"
	"github.com/sorayamlj/FocusTache/internal/infrastructure/monitor"
	pgInfra "github.com/sorayamlj/FocusTache/internal/infrastructure/postgres"
	redisInfra "github.com/sorayamlj/FocusTache/internal/infrastructure/redis"
	sqliteInfra "github.com/sorayamlj/FocusTache/internal/infrastructure/sqlite"
	"github.com/sorayamlj/FocusTache/internal/middleware"
	"github.com/sorayamlj/FocusTache/internal/router"
	"github.com/sorayamlj/FocusTache/internal/services"
	"github.com/sorayamlj/FocusTache/internal/services/lifecycle"
	"github.com/sorayamlj/FocusTache/pkg/httpcontext"
	"github.com/sorayamlj/FocusTache/repository"
	"github.com/sorayamlj/FocusTache/repository/postgres"
	redisRepo "github.com/sorayamlj/FocusTache/repository/redis"
	sqliteRepo "github.com/sorayamlj/FocusTache/repository/sqlite"
	"github.com/sorayamlj/FocusTache/usecase"
	"github.com/sorayamlj/FocusTache/usecase/dashboard"
	sessionUC "github.com/sorayamlj/FocusTache/usecase/session"
	taskUC "github.com/sorayamlj/FocusTache/usecase/task"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, zapLogger, err := setup(false)
		if err != nil {
			return err
		}
		defer zapLogger.Sync()
		return serve(cmd.Context(), cfg, zapLogger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// stores groups the repositories of the selected driver.
type stores struct {
	tasks  repository.TaskRepository
	notes  repository.NoteRepository
	events repository.EventRepository
	check  monitor.Check
}

func openStores(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, zapLogger *zap.Logger) (stores, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverSQLite:
		db, err := sqliteInfra.Open(cfg.SQLite.Path, zapLogger)
		if err != nil {
			return stores{}, fmt.Errorf("sqlite open failed: %w", err)
		}
		manager.Register("sqlite", func(ctx context.Context) error {
			return db.Close()
		})
		return sqliteStores(db), nil
	default:
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			return stores{}, fmt.Errorf("migrations failed: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, zapLogger)
		if err != nil {
			return stores{}, fmt.Errorf("postgres connection failed: %w", err)
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pgInfra.Close(pool, zapLogger)
			return nil
		})
		return postgresStores(pool), nil
	}
}

func sqliteStores(db *sql.DB) stores {
	return stores{
		tasks:  sqliteRepo.NewTaskRepository(db),
		notes:  sqliteRepo.NewNoteRepository(db),
		events: sqliteRepo.NewEventRepository(db),
		check:  monitor.SQLiteCheck(db),
	}
}

func postgresStores(pool *pgxpool.Pool) stores {
	return stores{
		tasks:  postgres.NewTaskRepository(pool),
		notes:  postgres.NewNoteRepository(pool),
		events: postgres.NewEventRepository(pool),
		check:  monitor.PostgresCheck(pool),
	}
}

func serve(parent context.Context, cfg *config.Config, zapLogger *zap.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	manager := lifecycle.New(parent, cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen()
	appCtx := manager.Context()

	st, err := openStores(appCtx, cfg, manager, zapLogger)
	if err != nil {
		_ = manager.Shutdown(context.Background())
		return err
	}

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
	if err != nil {
		_ = manager.Shutdown(context.Background())
		return fmt.Errorf("redis connection failed: %w", err)
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})
	sessionRepo := redisRepo.NewFocusSessionRepository(redisClient)

	var bufferStore *buffer.Store
	if cfg.Buffer.Enabled {
		bufferStore, err = buffer.Open(cfg.Buffer.Path, "tasks")
		if err != nil {
			_ = manager.Shutdown(context.Background())
			return fmt.Errorf("failed to open buffer store: %w", err)
		}
		manager.Register("buffer", func(ctx context.Context) error {
			return bufferStore.Close()
		})
	}

	mon := monitor.New([]monitor.Check{st.check, monitor.RedisCheck(redisClient)}, bufferStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	var opBuffer usecase.OperationBuffer
	if bufferStore != nil {
		bufferProcessor := services.NewBufferProcessor(
			bufferStore,
			mon,
			st.tasks,
			zapLogger,
			services.ProcessorConfig{
				Interval:   cfg.Buffer.SyncInterval,
				BatchSize:  cfg.Buffer.BatchSize,
				MaxRetries: cfg.Buffer.MaxRetry,
				MaxAge:     cfg.Buffer.MaxAge,
			},
		)
		bufferProcessor.Start()
		manager.Register("buffer_processor", func(ctx context.Context) error {
			bufferProcessor.Stop(ctx)
			return nil
		})
		opBuffer = services.NewBufferBridge(bufferProcessor)
	}

	validator := domain.NewValidator(cfg.Tasks.OwnerDomains)
	taskUseCase := taskUC.New(st.tasks, opBuffer, validator, zapLogger)
	sessionUseCase := sessionUC.New(sessionRepo, zapLogger)

	source := dashboard.RepositorySource{
		TaskRepo:    st.tasks,
		SessionRepo: sessionRepo,
		NoteRepo:    st.notes,
		EventRepo:   st.events,
	}
	dashboardService := dashboard.NewService(source, zapLogger,
		dashboard.WithSourceTimeout(cfg.Dashboard.SourceTimeout),
		dashboard.WithClock(func() time.Time { return time.Now().In(cfg.Timezone) }),
	)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Task:       apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Collection: apiHandler.NewCollectionHandler(sessionUseCase, source, ctxAdapter, zapLogger),
		Dashboard:  apiHandler.NewDashboardHandler(dashboardService, ctxAdapter, zapLogger),
		Health:     apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	r := router.New(handlers, authMiddleware, router.Options{
		EnableMetrics: cfg.HTTP.EnableMetrics,
		EnablePprof:   cfg.HTTP.EnablePprof,
	})

	server := &fasthttp.Server{
		Handler:      middleware.Observe(zapLogger)(r.Handler),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	manager.Go("http_server", func(ctx context.Context) error {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("store", cfg.Store.Driver),
			zap.Strings("owner_domains", validator.Domains()),
		)
		return server.ListenAndServe(cfg.Address())
	})
	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	if err := manager.Wait(); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
		return err
	}
	return nil
}
