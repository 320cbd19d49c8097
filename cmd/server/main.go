/*
main.go - Application entry point

PURPOSE:

	Initializes and starts the leave management server. Handles
	configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
 1. Load configuration (.env / environment)
 2. Initialize SQLite store
 3. Build the holiday calendar (file override or defaults)
 4. Wire auth, domain service, and HTTP handlers
 5. Start server with graceful shutdown

COMMAND-LINE FLAGS:

	-seed    Provision the demo organization on startup

ENVIRONMENT:

	APP_PORT       HTTP server port (default: 8080)
	APP_ENV        development | production
	DB_PATH        SQLite database path; ":memory:" for in-memory
	JWT_SECRET     Token signing secret (required)
	JWT_TOKEN_TTL  Session token lifetime (default: 24h)
	HOLIDAYS_FILE  Optional JSON file of ISO holiday dates

GRACEFUL SHUTDOWN:

	On SIGINT/SIGTERM:
	1. Stop accepting new connections
	2. Wait for active requests to complete (30s timeout)
	3. Close database connection
	4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nandhu-6/leave-management-system/api"
	"github.com/nandhu-6/leave-management-system/auth"
	"github.com/nandhu-6/leave-management-system/config"
	"github.com/nandhu-6/leave-management-system/leave"
	"github.com/nandhu-6/leave-management-system/store/sqlite"
)

func main() {
	seed := flag.Bool("seed", false, "provision the demo organization on startup")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := api.NewLogger(cfg.App.Env)

	store, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	holidays := leave.DefaultHolidays()
	if cfg.App.HolidaysFile != "" {
		holidays, err = leave.LoadHolidayFile(cfg.App.HolidaysFile)
		if err != nil {
			logger.Error("failed to load holiday file", "path", cfg.App.HolidaysFile, "error", err)
			os.Exit(1)
		}
	}
	calendar := leave.NewCalendar(holidays)

	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.TokenTTL)
	authService := auth.NewService(store, tokens)
	service := leave.NewService(store, calendar)

	if *seed {
		if err := seedDirectory(context.Background(), store); err != nil {
			logger.Error("failed to seed directory", "error", err)
			os.Exit(1)
		}
		logger.Info("demo organization provisioned")
	}

	handler := api.NewHandler(service, authService)
	router := api.NewRouter(handler, tokens, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
