package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"landrecords/docs"
	"landrecords/internal/auth"
	"landrecords/internal/cache"
	"landrecords/internal/config"
	"landrecords/internal/db"
	"landrecords/internal/handler"
	"landrecords/internal/integrity"
	"landrecords/internal/logger"
	"landrecords/internal/metrics"
	"landrecords/internal/repository"
	"landrecords/internal/router"
	"landrecords/internal/service"
	"landrecords/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// @title Land Records API
// @version 1.0
// @description Digital land registry: parcels, ownership transfers (mutations) with admin review, and tamper-evident documents.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "landrecords"}).
			Error(context.Background(), "config load failed", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: "landrecords",
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server exited", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	gormDB, err := db.New(cfg.DB)
	if err != nil {
		return err
	}

	if cfg.DB.Reset {
		log.Warn(ctx, "RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			return err
		}
	}
	if cfg.DB.AutoMigrate {
		if err := db.Migrate(gormDB); err != nil {
			return err
		}
	}

	cacheClient := cache.New(cfg.Redis)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		log.Warn(ctx, "redis unreachable, token revocation and profile cache degraded", map[string]any{"error": err.Error()})
	}

	store, err := storage.NewLocal(cfg.Storage)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Initialize repositories
	repos := repository.New(gormDB)
	tx := repository.NewTransactor(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWT)
	tokenStore := auth.NewTokenStore(cacheClient)
	hasher := auth.NewPasswordHasher(cfg.Password)
	engine := integrity.New(cfg.Integrity)

	// Initialize services
	userService := service.NewUserService(repos.Users, cacheClient)
	authService := service.NewAuthService(repos.Users, userService, jwtService, tokenStore, hasher, m, log)
	landService := service.NewLandRecordService(repos, log)
	documentService := service.NewDocumentService(repos, tx, store, engine, m, log)
	mutationService := service.NewMutationService(repos, tx, m, log)
	verificationService := service.NewVerificationService(repos)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(e, router.Deps{
		Config:      cfg,
		Log:         log,
		JWT:         jwtService,
		AuthService: authService,
		Gatherer:    registry,
		Health: func(ctx context.Context) error {
			return db.Ping(ctx, gormDB)
		},
	}, router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		User:         handler.NewUserHandler(userService),
		LandRecord:   handler.NewLandRecordHandler(landService),
		Document:     handler.NewDocumentHandler(documentService),
		Mutation:     handler.NewMutationHandler(mutationService),
		Verification: handler.NewVerificationHandler(verificationService),
	})

	if cfg.Server.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.Server.SwaggerHost
	}

	addr := ":" + cfg.Server.Port
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "http server listening", map[string]any{
			"addr":    addr,
			"swagger": "http://" + docs.SwaggerInfo.Host + "/swagger/index.html",
		})
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info(shutdownCtx, "shutting down")
		if err := e.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return closeDB(gormDB)
	})

	return g.Wait()
}

func closeDB(gormDB *gorm.DB) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
