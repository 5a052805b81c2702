// Package webserver hosts the dashboard page and the thin HTTP adapters
// over the dashboard actions.
package webserver

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"invoicedash/internal/backend"
	"invoicedash/internal/dashboard"
	"invoicedash/internal/endpoint"
	"invoicedash/internal/storage"
)

//go:embed web
var webFS embed.FS

// Server wires the resolver, the action set, and the optional history store
// behind a fiber app.
type Server struct {
	resolver *endpoint.Resolver
	store    *storage.Store // nil when history is disabled

	health    *dashboard.Action
	openItems *dashboard.Action
	console   *dashboard.Action
}

// New builds the server. store may be nil.
func New(resolver *endpoint.Resolver, store *storage.Store) *Server {
	client := backend.New(resolver.BaseURL())

	var rec dashboard.Recorder
	if store != nil {
		rec = store
	}

	return &Server{
		resolver:  resolver,
		store:     store,
		health:    dashboard.NewHealthAction(client, rec),
		openItems: dashboard.NewOpenItemsAction(client, rec),
		console:   dashboard.NewConsoleAction(client, rec),
	}
}

// App assembles the fiber application.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} WEB ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New())

	// Dashboard process health, distinct from the backend health action
	app.Get("/healthz", s.Healthz)

	// Runtime configuration for the page, served before static files
	app.Get("/config", s.ConfigHandler)

	api := app.Group("/api")
	api.Get("/actions/health", s.HealthAction)
	api.Get("/actions/open-items", s.OpenItemsAction)
	api.Get("/actions/console", s.ConsoleAction)
	api.Get("/history", s.History)

	s.registerStatic(app)

	return app
}

// Start runs the app on the given address.
func (s *Server) Start(host string, port int) error {
	return s.App().Listen(fmt.Sprintf("%s:%d", host, port))
}

func (s *Server) Healthz(c *fiber.Ctx) error {
	historyHealthy := true
	if s.store != nil {
		historyHealthy = s.store.IsHealthy()
	}
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"history": historyHealthy,
	})
}

// ConfigHandler publishes the resolved backend endpoint to the page.
func (s *Server) ConfigHandler(c *fiber.Ctx) error {
	base := s.resolver.BaseURL()
	return c.JSON(fiber.Map{
		"backendUrl":     base,
		"backendDisplay": endpoint.Normalize(base),
	})
}

// registerStatic serves the embedded dashboard page with SPA-style fallback.
func (s *Server) registerStatic(app *fiber.App) {
	webContent, err := fs.Sub(webFS, "web")
	if err != nil {
		// go:embed guarantees the directory exists
		panic(fmt.Sprintf("web sub-filesystem: %v", err))
	}

	app.Get("*", func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/" {
			path = "/index.html"
		}
		fsPath := strings.TrimPrefix(path, "/")

		data, err := fs.ReadFile(webContent, fsPath)
		if err != nil {
			data, err = fs.ReadFile(webContent, "index.html")
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("index.html not found")
			}
			c.Set("Content-Type", "text/html; charset=utf-8")
			return c.Send(data)
		}

		contentType := "application/octet-stream"
		switch {
		case strings.HasSuffix(fsPath, ".html"):
			contentType = "text/html; charset=utf-8"
		case strings.HasSuffix(fsPath, ".js"):
			contentType = "application/javascript; charset=utf-8"
		case strings.HasSuffix(fsPath, ".css"):
			contentType = "text/css; charset=utf-8"
		}
		c.Set("Content-Type", contentType)

		return c.Send(data)
	})
}
