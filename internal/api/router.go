package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Pranav-7262/mern-recipe-app/internal/api/handler"
	"github.com/Pranav-7262/mern-recipe-app/internal/api/middleware"
	"github.com/Pranav-7262/mern-recipe-app/internal/app/service"
	"github.com/Pranav-7262/mern-recipe-app/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterOptions struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	CORSOrigins    []string
	RequestTimeout time.Duration
	DebugErrors    bool // attach raw error text to 4xx/5xx bodies
}

func NewRouter(
	authService *service.AuthService,
	recipeService *service.RecipeService,
	opts RouterOptions,
) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(opts.Logger, opts.Metrics))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(opts.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())

	gate := middleware.Authenticator(authService, opts.Metrics)

	r.Route("/api", func(api chi.Router) {
		authHandler := handler.NewAuthHandler(authService, opts.Metrics, opts.DebugErrors)
		api.Route("/auth", func(auth chi.Router) {
			authHandler.RegisterRoutes(auth, gate)
		})

		recipeHandler := handler.NewRecipeHandler(recipeService, opts.DebugErrors)
		api.Route("/recipes", func(recipes chi.Router) {
			recipeHandler.RegisterRoutes(recipes, gate)
		})
	})

	return r
}
