// Package mockapi embeds a stand-in storefront backend. It serves the
// same route surface the client targets, backed by a SQLite catalog
// seeded with the sample products, so the demo runs without an external
// API.
package mockapi

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/storefront-demo/domain/user"
)

// Config holds the stand-in backend configuration.
type Config struct {
	// Addr is the listen address. Empty disables the listener; the app
	// is still built and reachable through Handler(), which is how tests
	// mount it.
	Addr string
	// DBPath is the SQLite database path.
	DBPath string
	// JWTSecret signs issued tokens.
	JWTSecret string
	// TokenLifetime bounds issued tokens.
	TokenLifetime time.Duration
}

// DefaultConfig returns the stand-in backend defaults, honoring the
// MOCKAPI_DB_PATH and MOCKAPI_JWT_SECRET environment variables.
func DefaultConfig() Config {
	dbPath := os.Getenv("MOCKAPI_DB_PATH")
	if dbPath == "" {
		dbPath = "storefront_api.db"
	}
	secret := os.Getenv("MOCKAPI_JWT_SECRET")
	if secret == "" {
		secret = "storefront-demo-secret-change-in-production"
	}
	return Config{
		Addr:          ":8080",
		DBPath:        dbPath,
		JWTSecret:     secret,
		TokenLifetime: 24 * time.Hour,
	}
}

// Module runs the embedded backend.
type Module struct {
	config Config
	db     *gorm.DB
	app    *fiber.App
	repo   *Repository
}

var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the mockapi module.
func NewModule(config Config) *Module {
	return &Module{config: config}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "mockapi"
}

// Start opens the database, seeds it and brings up the route surface.
func (m *Module) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.config.DBPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	m.db = db

	repo, err := NewRepository(db)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	m.repo = repo

	if err := repo.SeedProducts(); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	if err := repo.SeedAccount("cliente@example.com", "Cliente Demo", "senha123", user.RoleCustomer); err != nil {
		return fmt.Errorf("failed to seed customer account: %w", err)
	}
	if err := repo.SeedAccount("admin@example.com", "Administrador", "admin123", user.RoleAdmin); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	tokens := NewTokenIssuer(m.config.JWTSecret, "storefront-mockapi", m.config.TokenLifetime)
	handlers := NewHandlers(repo, tokens)

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	m.app.Use(recover.New())
	m.app.Use(cors.New())
	m.setupRoutes(handlers)

	if m.config.Addr != "" {
		go func() {
			if err := m.app.Listen(m.config.Addr); err != nil {
				log.Printf("[mockapi] HTTP server error: %v", err)
			}
		}()
		log.Printf("[mockapi] Stand-in backend started on %s (database: %s)", m.config.Addr, m.config.DBPath)
	} else {
		log.Println("[mockapi] Stand-in backend built without listener")
	}
	return nil
}

// Stop shuts down the server and closes the database.
func (m *Module) Stop(_ context.Context) error {
	if m.app != nil {
		if err := m.app.Shutdown(); err != nil {
			return err
		}
	}
	if m.db != nil {
		if sqlDB, err := m.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[mockapi] Stand-in backend stopped")
	return nil
}

// Health pings the underlying database.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{Healthy: false, Message: "database not initialized"}
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{Healthy: false, Message: err.Error()}
	}
	if err := sqlDB.Ping(); err != nil {
		return mono.HealthStatus{Healthy: false, Message: err.Error()}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.config.DBPath,
			"addr":     m.config.Addr,
		},
	}
}

// Handler exposes the route surface as an http.Handler. Tests mount it
// on an httptest server through this.
func (m *Module) Handler() http.Handler {
	return adaptor.FiberApp(m.app)
}

func (m *Module) setupRoutes(handlers *Handlers) {
	api := m.app.Group("/api")

	products := api.Group("/products")
	products.Get("/", handlers.ListProducts)
	products.Get("/in-stock", handlers.ListInStock)
	products.Get("/paginated", handlers.ListPaginated)
	products.Get("/search", handlers.SearchProducts)
	products.Get("/category/:name", handlers.ListByCategory)
	products.Get("/:id", handlers.GetProduct)
	products.Patch("/:id/stock", handlers.UpdateStock)

	admin := api.Group("/admin/products", handlers.RequireAdmin)
	admin.Post("/", handlers.CreateProduct)
	admin.Put("/:id", handlers.UpdateProduct)
	admin.Delete("/:id", handlers.DeleteProduct)

	auth := api.Group("/auth")
	auth.Post("/login", handlers.Login)
	auth.Post("/login-admin", handlers.LoginAdmin)
	auth.Post("/register", handlers.Register)
}
