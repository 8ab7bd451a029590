package app

import (
	"fmt"
	"log"
	"os"

	"github.com/drjulio/clinic-api/api"
	"github.com/drjulio/clinic-api/config"
	"github.com/drjulio/clinic-api/database"
	"github.com/drjulio/clinic-api/router"
	"github.com/drjulio/clinic-api/services"
	"github.com/drjulio/clinic-api/services/cron"
)

// SetupAndRunServer boots the whole service: env, database, cron, routes
func SetupAndRunServer() error {
	if err := config.LoadENV(); err != nil {
		log.Printf("Warning: no .env file loaded: %v", err)
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	store, err := database.StartGORM()
	if err != nil {
		fmt.Println("Check whether Postgres is running and reachable")
		return err
	}

	if err := store.Init(); err != nil {
		fmt.Println("Failed to initialize database tables")
		return err
	}

	if err := database.NewSeeder(store.GetDB()).SeedAll(); err != nil {
		log.Printf("Warning: seeding failed: %v", err)
	}

	// Cron jobs, enabled unless explicitly turned off
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" {
		policy := services.NewAccessPolicy(getEnv.COURSE_ACCESS_DAYS)
		enrollments := services.NewEnrollmentService(store.GetDB(), policy)
		mailer := services.NewEmailService(getEnv)

		cronManager = cron.NewCronManager(store.GetDB(), enrollments, mailer)
		if err := cronManager.Start(); err != nil {
			log.Printf("Warning: failed to start cron jobs: %v", err)
		}
	}

	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT), store)
	app := server.GetEngine()

	router.SetupRoutes(app, store, getEnv)

	return server.Run()
}
