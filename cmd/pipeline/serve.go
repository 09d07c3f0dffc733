package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"

	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/api"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/auth"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/config"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/directory"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/events"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/logging"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/matching"
	mcpserver "github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/mcp"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/notify"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/pipeline"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/repository"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/tlsutil"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the hiring-pipeline HTTP server",
	RunE: func(_ *cobra.Command, _ []string) error {
		return serve()
	},
}

func serve() error {
	ctx := context.Background()

	logger, err := logging.New(jsonLog, debugLog)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger.Info("configuration loaded",
		zap.String("environment", cfg.Environment),
		zap.String("issuer", cfg.Auth.Issuer),
		zap.String("directory_url", cfg.Directory.URL),
	)

	dbPool, err := initDatabase(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer dbPool.Close()
	logger.Info("database connected")

	// redis is optional; without it lifecycle events are simply not
	// published
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
	}

	// wiring, leaves first
	store := repository.NewPostgresWorkflowStore(dbPool)
	dir := directory.NewClient(cfg.Directory.URL, cfg.Directory.APIKey)
	mailer := notify.NewMailer(cfg.Mail.URL, cfg.Mail.APIKey, cfg.Mail.Sender)
	notifier := notify.NewCenter(mailer, logger)
	publisher := events.NewPublisher(rdb, logger)
	engine := matching.NewEngine(dir, logger)
	workflows := pipeline.NewService(store, dir, notifier, publisher, logger)
	logger.Info("service layer initialized")

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware(app))

	authz, err := auth.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize auth: %w", err)
	}

	e.GET("/login", echo.WrapHandler(http.HandlerFunc(authz.LoginHandler)))
	e.GET("/auth/callback", echo.WrapHandler(http.HandlerFunc(authz.CallbackHandler)))
	e.GET("/logout", echo.WrapHandler(http.HandlerFunc(authz.LogoutHandler)))

	apiGroup := e.Group("/api/v1")
	apiGroup.Use(echo.WrapMiddleware(authz.RequireAuth))
	api.NewServer(engine, workflows, dir, logger).Register(apiGroup)
	logger.Info("REST API handlers mounted")

	mcpSrv := mcpserver.NewServer(engine, workflows, dir)
	mcpHandlers := http.NewServeMux()
	mcpserver.MountHTTPHandlers(mcpHandlers, mcpSrv.GetMCPServer())
	e.Any("/mcp/*", echo.WrapHandler(mcpHandlers))
	logger.Info("MCP protocol handlers mounted")

	e.GET("/openapi.yaml", echo.WrapHandler(api.SpecHandler(cfg.Auth.Issuer)))
	e.GET("/docs", echo.WrapHandler(api.SwaggerHandler(cfg.Auth.ClientID)))
	e.GET("/docs/oauth2-redirect.html", echo.WrapHandler(api.OAuth2RedirectHandler()))

	addr := ":8080"
	if cfg.TLS.Enable {
		addr = ":8443"
	}
	server := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", addr), zap.Bool("tls", cfg.TLS.Enable))
		if cfg.TLS.Enable {
			if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
				serverErrors <- fmt.Errorf("tls enabled but cert/key file not provided")
				return
			}
			// generate if missing and hostnames provided
			if _, err := os.Stat(cfg.TLS.CertFile); os.IsNotExist(err) {
				if len(cfg.TLS.Hostnames) > 0 {
					if err := tlsutil.GenerateSelfSignedCert(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.Hostnames); err != nil {
						logger.Error("failed to generate self-signed cert", zap.Error(err))
					}
				}
			}
			serverErrors <- server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.Stringer("signal", sig))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", zap.Error(err))
			if err := server.Close(); err != nil {
				logger.Error("server close error", zap.Error(err))
			}
		}
		logger.Info("server stopped gracefully")
	}
	return nil
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	logger.Debug("initializing database connection")

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
