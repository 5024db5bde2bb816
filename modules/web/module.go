// Package web serves the storefront's page routes: catalog views, the
// cart, authentication and the admin panel.
package web

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/storefront-demo/modules/cart"
	"github.com/example/storefront-demo/modules/catalog"
	"github.com/example/storefront-demo/modules/notify"
	"github.com/example/storefront-demo/modules/session"
)

// Config holds the web surface configuration.
type Config struct {
	// Addr is the listen address. Empty disables the listener; tests
	// drive the app through App().Test instead.
	Addr string
}

// DefaultConfig returns the web defaults, honoring WEB_ADDR.
func DefaultConfig() Config {
	addr := os.Getenv("WEB_ADDR")
	if addr == "" {
		addr = ":3000"
	}
	return Config{Addr: addr}
}

// Module is the storefront HTTP module.
type Module struct {
	config Config
	app    *fiber.App

	catalogModule *catalog.Module
	cartModule    *cart.Module
	sessionModule *session.Module
	notifyModule  *notify.Module
}

var _ mono.Module = (*Module)(nil)
var _ mono.DependentModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the web module.
func NewModule(config Config) *Module {
	return &Module{config: config}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "web"
}

// Dependencies returns the modules that must start before this one.
func (m *Module) Dependencies() []string {
	return []string{"catalog", "cart", "session", "notify"}
}

// SetDependencyServiceContainer receives dependency containers. Wiring
// happens through the typed setters instead.
func (m *Module) SetDependencyServiceContainer(string, mono.ServiceContainer) {}

// SetCatalog injects the catalog module.
func (m *Module) SetCatalog(mod *catalog.Module) {
	m.catalogModule = mod
}

// SetCart injects the cart module.
func (m *Module) SetCart(mod *cart.Module) {
	m.cartModule = mod
}

// SetSession injects the session module.
func (m *Module) SetSession(mod *session.Module) {
	m.sessionModule = mod
}

// SetNotify injects the notification module.
func (m *Module) SetNotify(mod *notify.Module) {
	m.notifyModule = mod
}

// Start builds the Fiber app and begins serving.
func (m *Module) Start(_ context.Context) error {
	if m.catalogModule == nil || m.cartModule == nil || m.sessionModule == nil || m.notifyModule == nil {
		return fmt.Errorf("web module requires catalog, cart, session and notify modules")
	}

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	m.app.Use(cors.New())

	m.setupRoutes()

	if m.config.Addr != "" {
		go func() {
			if err := m.app.Listen(m.config.Addr); err != nil {
				log.Printf("[web] HTTP server error: %v", err)
			}
		}()
		log.Printf("[web] Storefront started on %s", m.config.Addr)
	}
	return nil
}

// Stop shuts down the HTTP server.
func (m *Module) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[web] Shutting down storefront...")
	return m.app.Shutdown()
}

// Health reports the web module status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr": m.config.Addr,
		},
	}
}

// App exposes the Fiber app for in-process testing.
func (m *Module) App() *fiber.App {
	return m.app
}

func (m *Module) setupRoutes() {
	handlers := NewHandlers(
		m.catalogModule.Store(),
		m.cartModule.Store(),
		m.sessionModule.Store(),
		m.notifyModule.Notifier(),
	)

	m.app.Get("/", handlers.Home)
	m.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "module": "web"})
	})

	m.app.Get("/products", handlers.ListProducts)
	m.app.Get("/products/paginated", handlers.ListPaginated)
	m.app.Get("/products/search", handlers.SearchProducts)
	m.app.Get("/products/:id", handlers.GetProduct)

	m.app.Get("/cart", handlers.ShowCart)
	m.app.Post("/cart/items", handlers.AddCartItem)
	m.app.Patch("/cart/items/:id", handlers.UpdateCartItem)
	m.app.Post("/cart/items/:id/increment", handlers.IncrementCartItem)
	m.app.Post("/cart/items/:id/decrement", handlers.DecrementCartItem)
	m.app.Delete("/cart/items/:id", handlers.RemoveCartItem)
	m.app.Delete("/cart", handlers.ClearCart)
	m.app.Post("/cart/checkout", handlers.Checkout)

	auth := m.app.Group("/auth")
	auth.Post("/login", handlers.Login)
	auth.Post("/admin-login", handlers.AdminLogin)
	auth.Post("/register", handlers.Register)
	auth.Post("/logout", handlers.Logout)
	auth.Get("/me", handlers.Me)

	admin := m.app.Group("/admin", RequireAdmin(m.sessionModule.Store()))
	admin.Post("/products", handlers.CreateProduct)
	admin.Put("/products/:id", handlers.UpdateProduct)
	admin.Delete("/products/:id", handlers.DeleteProduct)
	admin.Patch("/products/:id/stock", handlers.UpdateStock)

	m.app.Get("/notifications", handlers.Notifications)

	m.app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Página não encontrada",
		})
	})
}

// errorHandler converts unhandled errors into the JSON error envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}
	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
