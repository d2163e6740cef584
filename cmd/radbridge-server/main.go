package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/radbridge/radbridge/internal/config"
	"github.com/radbridge/radbridge/internal/domain/audio"
	authdomain "github.com/radbridge/radbridge/internal/domain/auth"
	"github.com/radbridge/radbridge/internal/domain/company"
	"github.com/radbridge/radbridge/internal/domain/device"
	"github.com/radbridge/radbridge/internal/domain/institution"
	"github.com/radbridge/radbridge/internal/domain/proctype"
	"github.com/radbridge/radbridge/internal/domain/study"
	"github.com/radbridge/radbridge/internal/domain/studyreport"
	"github.com/radbridge/radbridge/internal/domain/template"
	"github.com/radbridge/radbridge/internal/domain/user"
	"github.com/radbridge/radbridge/internal/domain/usercompany"
	platformauth "github.com/radbridge/radbridge/internal/platform/auth"
	"github.com/radbridge/radbridge/internal/platform/blobstore"
	"github.com/radbridge/radbridge/internal/platform/db"
	"github.com/radbridge/radbridge/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "radbridge-server",
		Short: "Teleradiology back-office API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := db.Migrate(cmd.Context(), cfg.DatabaseURL); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Println("Migrations applied successfully.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			statuses, err := db.MigrationStatuses(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			fmt.Printf("%-10s %-40s %s\n", "VERSION", "SOURCE", "STATUS")
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied"
				}
				fmt.Printf("%-10d %-40s %s\n", s.Version, s.Source, state)
			}
			return nil
		},
	})

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	var blobs blobstore.BlobStore
	if cfg.S3Bucket != "" {
		blobs, err = blobstore.NewS3Store(ctx, blobstore.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize blob store")
		}
		logger.Info().Str("bucket", cfg.S3Bucket).Msg("blob store ready")
	} else {
		blobs = blobstore.NewMemoryStore()
		logger.Warn().Msg("S3_BUCKET not set; audio uploads use an in-memory store")
	}

	issuer := platformauth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTRefreshSecret)
	hasher := platformauth.NewPasswordHasher()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(middleware.BodyLimit("1M", "100M"))
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(platformauth.Authenticate(issuer))

	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	e.GET("/health", func(c echo.Context) error {
		h := db.CheckHealth(c.Request().Context(), pool)
		status := http.StatusOK
		if !h.Healthy {
			status = http.StatusServiceUnavailable
		}
		return c.JSON(status, h)
	})

	// Repositories
	credRepo := authdomain.NewRepoPG(pool)
	userRepo := user.NewRepoPG(pool)
	companyRepo := company.NewRepoPG(pool)
	affiliationRepo := usercompany.NewRepoPG(pool)
	institutionRepo := institution.NewRepoPG(pool)
	deviceRepo := device.NewRepoPG(pool)
	studyRepo := study.NewRepoPG(pool)
	reportRepo := studyreport.NewRepoPG(pool)
	templateRepo := template.NewRepoPG(pool)
	procRepo := proctype.NewRepoPG(pool)
	recordingRepo := audio.NewRepoPG(pool)

	// Services
	authSvc := authdomain.NewService(credRepo, userRepo, hasher, issuer)
	userSvc := user.NewService(userRepo)
	companySvc := company.NewService(companyRepo)
	affiliationSvc := usercompany.NewService(affiliationRepo, userRepo, companyRepo)
	institutionSvc := institution.NewService(institutionRepo)
	deviceSvc := device.NewService(deviceRepo)
	studySvc := study.NewService(studyRepo)
	reportSvc := studyreport.NewService(reportRepo, studyRepo)
	templateSvc := template.NewService(templateRepo)
	procSvc := proctype.NewService(procRepo)
	audioSvc := audio.NewService(recordingRepo, studyRepo, blobs)

	// Handlers
	authdomain.NewHandler(authSvc, !cfg.IsDev()).RegisterRoutes(e)
	user.NewHandler(userSvc).RegisterRoutes(apiV1)
	company.NewHandler(companySvc).RegisterRoutes(apiV1)
	usercompany.NewHandler(affiliationSvc).RegisterRoutes(apiV1)
	institution.NewHandler(institutionSvc).RegisterRoutes(apiV1)
	device.NewHandler(deviceSvc).RegisterRoutes(apiV1)
	study.NewHandler(studySvc).RegisterRoutes(apiV1)
	studyreport.NewHandler(reportSvc).RegisterRoutes(apiV1)
	template.NewHandler(templateSvc).RegisterRoutes(apiV1)
	proctype.NewHandler(procSvc).RegisterRoutes(apiV1)
	audio.NewHandler(audioSvc).RegisterRoutes(apiV1)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
