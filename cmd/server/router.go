package main

import (
	"fmt"

	"user-pulse/cmd/server/handlers"
	"user-pulse/cmd/server/handlers/handlerutil"
	"user-pulse/cmd/server/handlers/httperr"
	usersHandlers "user-pulse/cmd/server/handlers/users"
	"user-pulse/cmd/server/middlewares"
	"user-pulse/internal/config"
	"user-pulse/internal/logger"
	"user-pulse/internal/metrics"
	"user-pulse/internal/services/users"

	_ "user-pulse/docs" // Load swagger docs

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

// route is one row of the routing table.
type route struct {
	method   string
	path     string
	authed   bool
	handler  fiber.Handler
	sessionH func(*fiber.Ctx, users.Session) error
}

// userRoutes is registered top to bottom, so /users/me shadows /users/:id.
func userRoutes(h *usersHandlers.Handlers) []route {
	return []route{
		{method: fiber.MethodPost, path: "/users", handler: h.SignUp},
		{method: fiber.MethodPost, path: "/users/login", handler: h.Login},
		{method: fiber.MethodPost, path: "/users/logout", authed: true, sessionH: h.Logout},
		{method: fiber.MethodPost, path: "/users/logoutAll", authed: true, sessionH: h.LogoutAll},
		{method: fiber.MethodGet, path: "/users/me", authed: true, sessionH: h.Me},
		{method: fiber.MethodPatch, path: "/users/me", authed: true, sessionH: h.Update},
		{method: fiber.MethodDelete, path: "/users/me", authed: true, sessionH: h.Delete},
		{method: fiber.MethodGet, path: "/users/:id", handler: h.GetByID},
	}
}

// mount registers rt on r, putting the auth middleware in front of authed routes.
func mount(r fiber.Router, rt []route, auth fiber.Handler) {
	for _, rr := range rt {
		chain := make([]fiber.Handler, 0, 2)
		if rr.authed {
			chain = append(chain, auth, handlerutil.Authed(rr.sessionH))
		} else {
			chain = append(chain, rr.handler)
		}
		r.Add(rr.method, rr.path, chain...)
	}
}

// setupRouter configures and returns a Fiber app with all routes
func setupRouter(cfg config.Config, store users.Store, ping handlers.PingFunc) (*fiber.App, error) {
	v := validator.New()
	if err := users.RegisterValidators(v); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler,
		Immutable:    true, // make Fiber copy all request-derived strings
	})

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowHeaders: "Content-Type, Authorization",
	}))

	var (
		rec     users.Recorder
		authRec middlewares.FailureRecorder
	)
	if cfg.RouteMetricsEnabled {
		m := metrics.New()
		m.Attach(app)
		rec, authRec = m, m
	}

	// Health check, kept out of request logging
	app.Get("/healthz", handlers.Healthz(ping))

	app.Get("/docs/*", swagger.HandlerDefault)

	svc := users.NewService(store, cfg, rec, logger.L())
	h := usersHandlers.NewHandlers(svc, v)
	auth := middlewares.Auth(cfg, svc, authRec)

	if cfg.RequestLoggingEnabled {
		app.Use("/users", fiberlogger.New())
		logger.L().Info("request logging enabled")
	} else {
		logger.L().Info("request logging disabled")
	}
	mount(app, userRoutes(h), auth)

	return app, nil
}
