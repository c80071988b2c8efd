package app

import (
	"fmt"
	"os"
	"time"

	"thesistrack/backend/api"
	"thesistrack/backend/config"
	"thesistrack/backend/database"
	"thesistrack/backend/router"
	"thesistrack/backend/services/cron"
	"thesistrack/backend/utils/middleware"
)

// SetupAndRunServer bootstraps the environment, database, background
// jobs and HTTP server, then blocks serving requests.
func SetupAndRunServer() error {
	if err := config.LoadENV(); err != nil {
		return err
	}

	env, err := config.Get()
	if err != nil {
		return err
	}

	store, err := database.StartGORM()
	if err != nil {
		fmt.Println("Check whether Postgres is running and reachable")
		return err
	}

	if err := store.Init(); err != nil {
		fmt.Println("Failed to run database migrations")
		return err
	}

	// Cron jobs default to enabled
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" {
		cronManager = cron.NewCronManager(store.DB())
		if err := cronManager.Start(); err != nil {
			fmt.Printf("Warning: Failed to start cron jobs: %v\n", err)
			cronManager = nil
		}
	}

	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	server := api.NewAPIServer(fmt.Sprintf(":%d", env.PORT))
	app := server.GetEngine()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	router.SetupRoutes(app, store, env)

	return server.Run()
}
