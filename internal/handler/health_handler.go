package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/student-affairs/servicedesk-api/internal/config"
	"github.com/student-affairs/servicedesk-api/internal/utils"
)

// HealthCheck reports service liveness and build context.
func HealthCheck(cfg config.Config) fiber.Handler {
	startedAt := time.Now().UTC()

	return func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, "ok", fiber.Map{
			"app":        cfg.AppName,
			"env":        cfg.AppEnv,
			"started_at": startedAt.Format(time.RFC3339),
		})
	}
}
