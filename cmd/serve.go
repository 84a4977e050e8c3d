package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"volleyball-live-system/config"
	"volleyball-live-system/handlers"
	"volleyball-live-system/logger"
	"volleyball-live-system/messaging"
	"volleyball-live-system/middleware"
	"volleyball-live-system/models"
	"volleyball-live-system/services"
	"volleyball-live-system/utils"
	"volleyball-live-system/workers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with its workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile, envDir)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return serve(cfg)
	},
}

type routeDeps struct {
	matches handlers.MatchOperations
	roster  handlers.RosterOperations
	weather handlers.WeatherOperations
	reports handlers.ReportOperations
	stats   handlers.StatisticsProvider
}

func serve(cfg *config.Config) error {
	if err := logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags:      map[string]string{"service": "volleyball-live-system"},
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Flush(2 * time.Second)

	db, err := openDB(cfg.Database)
	if err != nil {
		return err
	}
	if err := models.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	publisher, err := messaging.NewPublisher(messaging.Config{
		URL:            cfg.NATS.URL,
		SubjectPrefix:  cfg.NATS.SubjectPrefix,
		ConnectionName: cfg.NATS.ConnectionName,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer publisher.Close()

	stats := services.NewStatisticsService(db)
	matches := services.NewMatchService(db,
		services.WithPublisher(publisher),
		services.WithChangeNotifier(stats),
		services.WithRetryPolicy(services.RetryPolicy{
			MaxRetries:      cfg.Scoring.MaxRetries,
			InitialInterval: cfg.Scoring.RetryInitialInterval,
			MaxElapsed:      cfg.Scoring.RetryMaxElapsed,
			LockTimeout:     cfg.Scoring.LockTimeout,
		}),
	)
	roster := services.NewRosterService(db, services.WithRosterNotifier(stats))
	weather := services.NewWeatherService(matches)

	var store services.ObjectStore
	if cfg.Storage.Bucket != "" {
		r2, err := utils.NewR2Store(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to initialize R2 client: %w", err)
		}
		store = r2
	} else {
		logger.Info("Storage bucket not configured, match reports are kept in the database only")
	}
	reports := services.NewReportService(matches, store)

	sched, err := stats.StartRefreshScheduler(ctx, cfg.Statistics.RefreshInterval)
	if err != nil {
		return fmt.Errorf("failed to start statistics scheduler: %w", err)
	}
	defer func() { _ = sched.Shutdown() }()

	if cfg.RosterSync.BaseURL != "" {
		workers.NewRosterSyncWorker(roster, cfg.RosterSync).Start(ctx)
	}
	if cfg.Weather.Enabled {
		workers.NewWeatherPoller(weather, cfg.Weather).Start(ctx)
	}

	app := newApp(cfg, routeDeps{
		matches: matches,
		roster:  roster,
		weather: weather,
		reports: reports,
		stats:   stats,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(fmt.Sprintf(":%d", cfg.Server.Port))
	}()
	logger.Info("Server running",
		zap.Int("port", cfg.Server.Port),
		zap.Strings("allowed_origins", cfg.Server.Origins()),
		zap.Bool("nats", cfg.NATS.URL != ""),
		zap.Bool("roster_sync", cfg.RosterSync.BaseURL != ""),
		zap.Bool("weather", cfg.Weather.Enabled))

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	return app.ShutdownWithTimeout(10 * time.Second)
}

func newApp(cfg *config.Config, deps routeDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "volleyball-live-system",
		BodyLimit: cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(cfg.Server.Origins(), ","),
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Roles",
		ExposeHeaders: "Content-Length, Content-Type, X-Request-ID",
		MaxAge:        86400,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "version": Version})
	})

	// Everything below /health must come through the gateway.
	api := app.Group("", middleware.GatewayAuthMiddleware(cfg.Auth), middleware.UserContextMiddleware())

	handlers.SetupMatchRoutes(api, deps.matches)
	handlers.SetupRosterRoutes(api, deps.roster)
	handlers.SetupWeatherRoutes(api, deps.weather)
	handlers.SetupReportRoutes(api, deps.reports)
	handlers.SetupStatisticsRoutes(api, deps.stats)

	return app
}
