package api

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// NewApp builds the fiber app with middleware and every route registered.
// staticDir, when set, serves the web client with an index.html fallback.
func NewApp(h *Handler, staticDir string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "xp-ledger",
		BodyLimit:             bodyLimit(h.UploadLimit),
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestLogger(h.Log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	app.Get("/api/health", HandleHealth)
	app.Post("/api/import", h.HandleImport)
	app.Post("/api/cycles", h.HandleCycles)
	app.Get("/api/imports/:id", h.HandleGetImport)
	app.Get("/api/imports/:id/flights.csv", h.HandleFlightsCSV)
	app.Get("/metrics", adaptor.HTTPHandler(h.Metrics.Handler()))

	if staticDir != "" {
		app.Static("/", staticDir)
		// single-page app: unknown non-API paths get index.html
		app.Get("/*", func(c *fiber.Ctx) error {
			if strings.HasPrefix(c.Path(), "/api/") {
				return fiber.ErrNotFound
			}
			if _, err := os.Stat(filepath.Join(staticDir, "index.html")); err != nil {
				return fiber.ErrNotFound
			}
			return c.SendFile(filepath.Join(staticDir, "index.html"))
		})
	}
	return app
}

func bodyLimit(uploadLimit int) int {
	// multipart framing on top of the file itself
	const overhead = 64 * 1024
	if uploadLimit <= 0 {
		return fiber.DefaultBodyLimit
	}
	return uploadLimit + overhead
}

// errorHandler renders every error as the JSON envelope the client expects.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

func requestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}
		if status >= fiber.StatusInternalServerError {
			log.Error("request", fields...)
		} else {
			log.Info("request", fields...)
		}
		return nil
	}
}
