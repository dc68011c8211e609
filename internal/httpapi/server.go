// Package httpapi exposes the focus service as a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/go-ports/focusflow/internal/service"
)

const shutdownTimeout = 5 * time.Second

// New builds the fiber app with every route registered. The service must
// stay open for the lifetime of the app.
func New(svc *service.Service) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:           svc.Config.Server.ReadTimeout,
		WriteTimeout:          svc.Config.Server.WriteTimeout,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestLogger)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	h := &handler{svc: svc}
	api := app.Group("/api")
	api.Post("/breakdown", h.breakdown)
	api.Post("/plans", h.createPlan)
	api.Get("/plans", h.listPlans)
	api.Get("/plans/:id", h.getPlan)
	api.Delete("/plans/:id", h.deletePlan)
	api.Post("/tasks/:id/complete", h.completeTask)
	api.Get("/stats", h.stats)
	api.Post("/moods", h.logMood)
	api.Get("/moods", h.listMoods)
	api.Get("/xp", h.xp)

	return app
}

// Serve listens on the configured address until ctx is cancelled, then shuts
// the app down gracefully.
func Serve(ctx context.Context, svc *service.Service) error {
	app := New(svc)
	addr := svc.Config.Server.Addr

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http api listening", "addr", addr)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// ---------------------------------------------------------------------------
// Middleware
// ---------------------------------------------------------------------------

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	route := ""
	if c.Route() != nil {
		route = c.Route().Path
	}
	slog.Debug("http_access",
		"method", c.Method(),
		"path", c.Path(),
		"route", route,
		"status", c.Response().StatusCode(),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return err
}

// errorHandler maps service errors onto status codes and renders them as
// {"error": "..."}.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, service.ErrInvalidInput):
		code = fiber.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		code = fiber.StatusNotFound
	}

	if code >= fiber.StatusInternalServerError {
		slog.Error("request error", "method", c.Method(), "path", c.Path(), "status", code, "err", err)
	} else {
		slog.Debug("request failed", "method", c.Method(), "path", c.Path(), "status", code, "err", err)
	}

	return c.Status(code).JSON(ErrorResponse{Error: err.Error()})
}
