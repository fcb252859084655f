package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aulavirtual/aula-api/internal/config"
	"github.com/aulavirtual/aula-api/internal/handler"
	"github.com/aulavirtual/aula-api/internal/middleware"
	"github.com/aulavirtual/aula-api/internal/models"
	"github.com/aulavirtual/aula-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	AccountHandler    *handler.AccountHandler
	CourseHandler     *handler.CourseHandler
	ContentHandler    *handler.ContentHandler
	ExamHandler       *handler.ExamHandler
	SessionMiddleware fiber.Handler
}

// Register wires the HTTP routes into the fiber application. Everything but
// login and health requires a session.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	sessionMiddleware := deps.SessionMiddleware
	if sessionMiddleware == nil {
		sessionMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		deps.AuthHandler.Register(auth, middleware.RateLimit("login", 10, time.Minute))

		protected := api.Group("/auth", sessionMiddleware)
		deps.AuthHandler.RegisterProtected(protected)
	}

	if deps.AccountHandler != nil {
		accounts := api.Group("/accounts", sessionMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.AccountHandler.Register(accounts)
	}

	courses := api.Group("/courses", sessionMiddleware)
	if deps.CourseHandler != nil {
		deps.CourseHandler.Register(courses)
	}

	exams := api.Group("/exams", sessionMiddleware)
	questions := api.Group("/questions", sessionMiddleware)

	if deps.ContentHandler != nil {
		files := api.Group("/files", sessionMiddleware)
		deps.ContentHandler.Register(courses, files)
	}

	if deps.ExamHandler != nil {
		answers := api.Group("/answers", sessionMiddleware)
		deps.ExamHandler.Register(courses, exams, questions, answers)
	}
}
