package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	supa "github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"clinic/config"
	_ "clinic/docs"
	"clinic/internal/realtime"
	"clinic/internal/repository"
	"clinic/internal/service"
	"clinic/internal/storage"
	"clinic/internal/transport/rest"
	"clinic/internal/transport/websocket"
	"clinic/migrations"
	"clinic/pkg/database"
	"clinic/pkg/logger"
	"clinic/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

// @title Clinic Booking API
// @version 1.0
// @description API записи к врачам: расписание, свободные слоты, бронирование

// @BasePath /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "clinic",
		Short:        "Сервис записи к врачам",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "путь к файлу конфигурации (yaml)")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(migrateCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runServer(ctx, cfg, log)
		},
	}
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции базы данных",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := database.NewPostgresDB(cmd.Context(), cfg.Postgres, log)
			if err != nil {
				log.Error("Не удалось подключиться к БД", zap.Error(err))
				return err
			}
			defer db.Close()

			return database.RunMigrations(cmd.Context(), db, migrations.FS, log)
		},
	}
}

func bootstrap(configPath string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.NewConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	log, err := logger.NewLogger(cfg.Environment, cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось создать логгер: %w", err)
	}

	return cfg, log, nil
}

func runServer(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	loc, err := cfg.Booking.Location()
	if err != nil {
		return err
	}

	broker := realtime.NewBroker(0, log)
	defer broker.Close()

	g, ctx := errgroup.WithContext(ctx)

	var repos *repository.Repositories
	switch cfg.DataBackend {
	case config.BackendSupabase:
		client, err := supa.NewClient(cfg.Supabase.URL, cfg.Supabase.Key, nil)
		if err != nil {
			log.Error("Не удалось создать клиент Supabase", zap.Error(err))
			return err
		}
		repos = repository.NewSupabaseRepositories(client)
		// PostgREST exposes no LISTEN channel, so writes publish themselves.
		repos.Appointment = realtime.NewPublishingAppointments(repos.Appointment, broker, log)
		log.Info("Хранилище данных: Supabase", zap.String("url", cfg.Supabase.URL))
	default:
		db, err := database.NewPostgresDB(ctx, cfg.Postgres, log)
		if err != nil {
			log.Error("Не удалось подключиться к БД", zap.Error(err))
			return err
		}
		defer db.Close()

		if err := database.RunMigrations(ctx, db, migrations.FS, log); err != nil {
			log.Error("Ошибка при выполнении миграций", zap.Error(err))
			return err
		}

		repos = repository.NewRepositories(db)

		listener := realtime.NewPGListener(cfg.Postgres.DSN(), broker, log)
		g.Go(func() error {
			return listener.Run(ctx)
		})
	}

	var fileStorage storage.FileStorage
	if cfg.S3.Endpoint != "" {
		s3Storage, err := storage.NewS3Storage(ctx, cfg.S3, log)
		if err != nil {
			log.Error("Не удалось инициализировать S3 хранилище", zap.Error(err))
			return err
		}
		fileStorage = s3Storage
		log.Info("S3 хранилище инициализировано", zap.String("endpoint", cfg.S3.Endpoint))
	} else {
		log.Warn("S3 хранилище не настроено, выгрузки будут недоступны")
	}

	var limiter rest.RateLimiter
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Error("Не удалось подключиться к Redis", zap.Error(err))
			return err
		}
		defer redisClient.Close()
		limiter = redisClient
	} else {
		log.Warn("Redis не настроен, ограничение частоты записи отключено")
	}

	services := service.NewServices(service.Deps{
		Repos:       repos,
		Logger:      log,
		Config:      cfg,
		FileStorage: fileStorage,
		Clock:       service.NewClock(loc),
	})

	feed := websocket.NewAppointmentFeed(broker, cfg.HTTP.CORSOrigins, log)
	handler := rest.NewHandler(services, log, cfg, feed, limiter)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	handler.InitRoutes(router)

	srv := &http.Server{
		Addr:           ":" + cfg.HTTP.Port,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderMB << 20,
	}

	g.Go(func() error {
		log.Info("Сервер запущен", zap.String("addr", srv.Addr), zap.String("backend", cfg.DataBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ошибка запуска сервера: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("Выключение сервера...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// websocket connections are hijacked and not closed by Shutdown
		broker.Close()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("ошибка при остановке сервера: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Сервер остановлен с ошибкой", zap.Error(err))
		return err
	}

	log.Info("Сервер успешно остановлен")
	return nil
}
