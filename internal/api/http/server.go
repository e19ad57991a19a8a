package httpapi

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewServer builds the fiber app with middleware, a JSON error handler and
// all routes registered.
func NewServer(svc Answerer, history History, log *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "runbuddy",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// The recommendation call may wait on the LLM for tens of seconds.
		WriteTimeout: 60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	RegisterRoutes(app, svc, history, log)
	return app
}
