package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/metinatakli/showtime-aggregator/internal/cache"
	"github.com/metinatakli/showtime-aggregator/internal/config"
	"github.com/metinatakli/showtime-aggregator/internal/domain"
	"github.com/metinatakli/showtime-aggregator/internal/handler"
	appmiddleware "github.com/metinatakli/showtime-aggregator/internal/middleware"
	"github.com/metinatakli/showtime-aggregator/internal/repository"
	"github.com/metinatakli/showtime-aggregator/internal/telemetry"
	appvalidator "github.com/metinatakli/showtime-aggregator/internal/validator"
	"github.com/metinatakli/showtime-aggregator/internal/vcs"
	"github.com/riandyrn/otelchi"
)

const serviceName = "showtime-api"

var (
	version = vcs.Version()
)

// ResponseCache keeps rendered read responses. A nil cache disables caching.
type ResponseCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context) error
}

type application struct {
	config    *config.Config
	logger    *slog.Logger
	validator *validator.Validate
	cache     ResponseCache

	providerRepo    domain.ProviderRepository
	cinemaRepo      domain.CinemaRepository
	movieRepo       domain.MovieRepository
	showtimeRepo    domain.ShowtimeRepository
	bookingLinkRepo domain.BookingLinkRepository
}

func Run() error {
	configPath := flag.String("config", "", "Path to YAML config file")
	port := flag.Int("port", 0, "Server port, overrides the config file")
	env := flag.String("env", "", "Environment (dev|staging|prod), overrides the config file")
	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	if *port != 0 {
		cfg.API.Port = *port
	}
	if *env != "" {
		cfg.Env = *env
	}

	telemetryCfg := telemetry.Config{
		ServiceName:  serviceName,
		Version:      version,
		Env:          cfg.Env,
		CollectorURL: cfg.Otel.CollectorURL,
	}

	logger := telemetry.NewLogger(os.Stdout, telemetryCfg, slog.LevelInfo)

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetryCfg, logger)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(ctx)

	db, err := repository.NewPool(ctx, repository.PoolConfig{
		DSN:          cfg.DB.DSN,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		MaxIdleTime:  cfg.DB.MaxIdleTime,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	err = repository.NewPostgresStore(db).Migrate(ctx)
	if err != nil {
		return err
	}

	var responses ResponseCache

	if cfg.Redis.URL != "" {
		redisClient, err := cache.NewClient(ctx, cache.ClientConfig{
			URL:          cfg.Redis.URL,
			MaxOpenConns: cfg.Redis.MaxOpenConns,
			MaxIdleConns: cfg.Redis.MaxIdleConns,
			MaxIdleTime:  cfg.Redis.MaxIdleTime,
		})
		if err != nil {
			return err
		}
		defer redisClient.Close()

		responses = cache.New(redisClient, cfg.Redis.CacheTTL)
	} else {
		logger.Info("redis URL not set, response caching disabled")
	}

	app := newApplication(cfg, logger, repository.NewRegistries(db), responses)

	return app.run()
}

// NewHandler returns the API router over registries. A nil cache disables
// response caching.
func NewHandler(cfg *config.Config, logger *slog.Logger, registries domain.Registries, responses ResponseCache) http.Handler {
	return newApplication(cfg, logger, registries, responses).routes()
}

func newApplication(cfg *config.Config, logger *slog.Logger, registries domain.Registries, responses ResponseCache) *application {
	return &application{
		config:          cfg,
		logger:          logger,
		validator:       appvalidator.NewValidator(),
		cache:           responses,
		providerRepo:    registries.Providers,
		cinemaRepo:      registries.Cinemas,
		movieRepo:       registries.Movies,
		showtimeRepo:    registries.Showtimes,
		bookingLinkRepo: registries.BookingLinks,
	}
}

func (app *application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.API.Port),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		shutdownError <- srv.Shutdown(ctx)
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(appmiddleware.NotFoundHandler)
	r.MethodNotAllowed(appmiddleware.MethodNotAllowedHandler)

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(appmiddleware.RequestLogger(app.logger))
	r.Use(appmiddleware.RecoverPanic(app.logger))
	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))

	r.Get("/healthcheck", handler.NewHealthcheckHandler(app.config.Env, version).GetHealth)

	r.Route("/providers", func(r chi.Router) {
		r.Get("/", app.ListProviders)
		r.Post("/", app.CreateProvider)
	})

	r.Route("/cinemas", func(r chi.Router) {
		r.Get("/", app.ListCinemas)
		r.Post("/", app.CreateCinema)
	})

	r.Post("/movies", app.CreateMovie)
	r.Get("/movie", app.GetMovie)

	r.Route("/showtimes", func(r chi.Router) {
		r.Get("/", app.ListShowtimes)
		r.Post("/", app.CreateShowtime)
	})

	r.Get("/booking-links", app.ListBookingLinks)

	return r
}
