package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pranav-7262/mern-recipe-app/internal/api"
	"github.com/Pranav-7262/mern-recipe-app/internal/app/service"
	"github.com/Pranav-7262/mern-recipe-app/internal/common/security"
	"github.com/Pranav-7262/mern-recipe-app/internal/domain/repository"
	"github.com/Pranav-7262/mern-recipe-app/internal/platform/cache"
	"github.com/Pranav-7262/mern-recipe-app/internal/platform/config"
	"github.com/Pranav-7262/mern-recipe-app/internal/platform/database"
	"github.com/Pranav-7262/mern-recipe-app/internal/platform/logging"
	"github.com/Pranav-7262/mern-recipe-app/internal/platform/metrics"
)

type stores struct {
	users   repository.UserRepository
	recipes repository.RecipeRepository
	close   func()
}

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("err", err.Error()))
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Initialize Storage
	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Error("storage unavailable", slog.String("driver", cfg.StoreDriver), slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer st.close()
	logger.Info("storage ready", slog.String("driver", cfg.StoreDriver))

	// 3. Initialize Login Throttling (optional)
	var limiter service.LoginLimiter = service.NoLoginLimit{}
	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Error("redis unavailable", slog.String("err", err.Error()))
			os.Exit(1)
		}
		defer rdb.Close()
		limiter = cache.NewLoginLimiter(rdb, cfg.LoginMaxAttempts, cfg.LoginLockoutWindow)
		logger.Info("login throttling enabled", slog.Int("max_attempts", cfg.LoginMaxAttempts))
	}

	// 4. Initialize Services
	issuer, err := security.NewTokenIssuer(cfg.JWTKey)
	if err != nil {
		logger.Error("token issuer", slog.String("err", err.Error()))
		os.Exit(1)
	}
	authService := service.NewAuthService(st.users, security.NewPasswordHasher(cfg.BcryptCost), issuer, limiter)
	recipeService := service.NewRecipeService(st.recipes, st.users)

	// 5. Initialize Router & HTTP Server
	router := api.NewRouter(authService, recipeService, api.RouterOptions{
		Logger:         logger,
		Metrics:        metrics.New(),
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
		DebugErrors:    cfg.DebugErrors,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", slog.String("err", err.Error()))
			stop()
		}
	}()

	<-ctx.Done() // Wait for interrupt signal

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.String("err", err.Error()))
		return
	}
	logger.Info("server stopped gracefully")
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, db, err := database.ConnectMongo(connectCtx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		if err := repository.EnsureMongoIndexes(connectCtx, db); err != nil {
			client.Disconnect(context.Background())
			return nil, err
		}
		return &stores{
			users:   repository.NewMongoUserRepository(db),
			recipes: repository.NewMongoRecipeRepository(db),
			close:   func() { client.Disconnect(context.Background()) },
		}, nil

	case config.StorePostgres:
		db, err := database.ConnectPostgres(connectCtx, cfg.PostgresDSN())
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(connectCtx, db); err != nil {
			db.Close()
			return nil, err
		}
		return pgStores(db), nil

	default:
		mem := repository.NewMemoryStore()
		return &stores{users: mem.Users(), recipes: mem.Recipes(), close: func() {}}, nil
	}
}

func pgStores(db *sql.DB) *stores {
	return &stores{
		users:   repository.NewPgUserRepository(db),
		recipes: repository.NewPgRecipeRepository(db),
		close:   func() { db.Close() },
	}
}
