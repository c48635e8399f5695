package httpserver

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"

	"agrigeo/internal/config"
	"agrigeo/internal/geodata"
)

// RegisterRoutes mounts health, geodata and (in dev) debug routes.
func RegisterRoutes(app *fiber.App, cfg *config.Config, svc *geodata.Service) {
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	if strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV"))) == "dev" {
		app.Get("/debug/config", func(c *fiber.Ctx) error { return c.JSON(cfg.Redacted()) })
		app.Get("/debug/cache", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"caches": svc.Stats()})
		})
	}

	api := app.Group("/api")
	api.Get("/soil", soilHandler(svc))
	api.Get("/facilities", facilitiesHandler(svc))
	api.Get("/site", siteHandler(svc))
}
