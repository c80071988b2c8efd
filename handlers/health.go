package handlers

import (
	"github.com/gofiber/fiber/v2"

	"thesistrack/backend/database"
	"thesistrack/backend/utils/response"
)

// HandleCheckHealth reports API and database health
func HandleCheckHealth(c *fiber.Ctx, store *database.GORMStore) error {
	if err := store.HealthCheck(); err != nil {
		return response.Error(c, fiber.StatusServiceUnavailable, "Database unavailable", "SERVICE_UNAVAILABLE")
	}
	return response.Success(c, fiber.Map{"status": "ok"})
}
