package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/ledgerline/erp-client/internal/config"
	"github.com/ledgerline/erp-client/internal/devapi"
	"github.com/ledgerline/erp-client/internal/models"
	"golang.org/x/time/rate"
)

func main() {
	// Logging setup
	slog.SetDefault(jsonLogger)
	// Load configuration
	ch := config.NewConfigHandler()
	devConfig, err := ch.Config()
	if err != nil {
		slog.Error("loading the configuration failed", "error", err)
		os.Exit(1)
	}
	// Set log level to "debug" if activated
	if devConfig.DebugMode {
		logLevel.Set(slog.LevelDebug)
	}
	ch.HandleChanges(reloadLogLevel)
	ch.Watch()
	if devConfig.DevAPI.SigningKey == "" && devConfig.RunningEnvironment == config.Development {
		key, err := models.NewRandomGenerator(48).ID()
		if err != nil {
			slog.Error("generating a signing key failed", "error", err)
			os.Exit(1)
		}
		slog.Warn("no signing key configured, using a random one, tokens will not survive a restart")
		devConfig.DevAPI.SigningKey = config.RedactedString(key)
	}
	for _, validate := range []func() error{devConfig.Server.Validate, devConfig.Monitoring.Validate, devConfig.DevAPI.Validate} {
		err = validate()
		if err != nil {
			slog.Error("the config validation failed", "error", err)
			os.Exit(1)
		}
	}
	slog.Info("loaded config", "server", devConfig.Server, "devAPI", devConfig.DevAPI)
	// Setup
	e := echo.New()
	e.Pre(middleware.RequestID(), middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	// The banner and the port do not respect the logger formatting we set below so we remove them
	// the port will be logged further down when the server starts.
	e.HideBanner = true
	e.HidePort = true
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	// Version endpoint
	buildInfo, ok := debug.ReadBuildInfo()
	version := ""
	if ok && buildInfo != nil {
		version = buildInfo.Main.Version
	}
	e.GET("/version", func(c echo.Context) error {
		return c.String(http.StatusOK, version)
	})
	// Rate limiting
	if devConfig.Server.RateLimits.Enabled {
		e.Use(middleware.RateLimiter(
			middleware.NewRateLimiterMemoryStoreWithConfig(
				middleware.RateLimiterMemoryStoreConfig{
					Rate:      rate.Limit(devConfig.Server.RateLimits.Rate),
					Burst:     devConfig.Server.RateLimits.Burst,
					ExpiresIn: 3 * time.Minute,
				}),
		),
		)
	}
	// CORS
	if len(devConfig.Server.AllowOrigin) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: devConfig.Server.AllowOrigin}))
	}
	// Sentry
	if devConfig.Monitoring.Sentry.Enabled {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              string(devConfig.Monitoring.Sentry.Dsn),
			TracesSampleRate: devConfig.Monitoring.Sentry.SampleRate,
			Environment:      devConfig.Monitoring.Sentry.Environment,
		})
		if err != nil {
			slog.Error("sentry initialization failed", "error", err)
		}
		e.Use(sentryecho.New(sentryecho.Options{}))
	}
	// Prometheus
	if devConfig.Monitoring.Prometheus.Enabled {
		e.Use(echoprometheus.NewMiddleware("erp_devapi"))
		go func() {
			metrics := echo.New()
			metrics.HideBanner = true
			metrics.HidePort = true
			metrics.GET("/metrics", echoprometheus.NewHandler())
			err := metrics.Start(fmt.Sprintf(":%d", devConfig.Monitoring.Prometheus.Port))
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("prometheus server failed to start", "error", err)
				os.Exit(1)
			}
		}()
	}
	// Initialize the dev API
	devServer, err := devapi.NewServer(devapi.WithConfig(devConfig.DevAPI))
	if err != nil {
		slog.Error("dev API initialization failed", "error", err)
		os.Exit(1)
	}
	devServer.RegisterHandlers(e, commonMiddlewares...)
	err = devServer.StartPurge()
	if err != nil {
		os.Exit(1)
	}
	defer devServer.StopPurge()
	// Start server
	address := fmt.Sprintf("%s:%d", devConfig.Server.Host, devConfig.Server.Port)
	slog.Info("starting the server on address " + address)
	go func() {
		err := e.Start(address)
		if err != nil && err != http.ErrServerClosed {
			slog.Error("the server failed", "error", err)
			os.Exit(1)
		}
	}()
	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	slog.Info("received signal to shut down the server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		slog.Error("shutting down the server gracefully failed", "error", err)
		os.Exit(1)
	}
}
