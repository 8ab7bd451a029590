package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/drjulio/clinic-api/database"
)

// HandleCheckHealth reports whether the API and its database are reachable
func HandleCheckHealth(store database.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.HealthCheck(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "degraded",
				"error":  err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
