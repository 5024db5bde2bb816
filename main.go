package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	backendmod "github.com/example/storefront-demo/modules/backend"
	cartmod "github.com/example/storefront-demo/modules/cart"
	catalogmod "github.com/example/storefront-demo/modules/catalog"
	mockapimod "github.com/example/storefront-demo/modules/mockapi"
	notifymod "github.com/example/storefront-demo/modules/notify"
	sessionmod "github.com/example/storefront-demo/modules/session"
	storagemod "github.com/example/storefront-demo/modules/storage"
	webmod "github.com/example/storefront-demo/modules/web"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration from environment
	apiURL := os.Getenv("STOREFRONT_API_URL")
	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	webAddr := getEnv("WEB_ADDR", ":3000")
	mockAddr := getEnv("MOCKAPI_ADDR", ":8080")

	log.Println("=== Storefront Demo ===")
	log.Printf("Redis: %s", redisAddr)
	log.Printf("Web: %s", webAddr)

	// Create modules
	storageModule := storagemod.NewModule(storagemod.Config{
		RedisAddr: redisAddr,
		Prefix:    "storefront:",
	})
	notifyModule := notifymod.NewModule()

	// Without an external API the embedded stand-in backend serves the
	// catalog and auth routes.
	var mockModule *mockapimod.Module
	if apiURL == "" {
		mockConfig := mockapimod.DefaultConfig()
		mockConfig.Addr = mockAddr
		mockModule = mockapimod.NewModule(mockConfig)
		apiURL = "http://localhost" + mockAddr
		log.Printf("Backend: embedded stand-in on %s", mockAddr)
	} else {
		log.Printf("Backend: %s", apiURL)
	}

	backendConfig := backendmod.DefaultConfig()
	backendConfig.BaseURL = apiURL
	backendModule := backendmod.NewModule(backendConfig)

	sessionModule := sessionmod.NewModule()
	sessionModule.SetBackend(backendModule)
	sessionModule.SetStorage(storageModule)
	sessionModule.SetNotify(notifyModule)

	catalogModule := catalogmod.NewModule(catalogmod.DefaultConfig())
	catalogModule.SetBackend(backendModule)
	catalogModule.SetSession(sessionModule)
	catalogModule.SetNotify(notifyModule)

	cartModule := cartmod.NewModule()
	cartModule.SetStorage(storageModule)
	cartModule.SetNotify(notifyModule)

	webModule := webmod.NewModule(webmod.Config{Addr: webAddr})
	webModule.SetCatalog(catalogModule)
	webModule.SetCart(cartModule)
	webModule.SetSession(sessionModule)
	webModule.SetNotify(notifyModule)

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create mono application: %v", err)
	}

	// Register modules in dependency order
	app.Register(storageModule)
	app.Register(notifyModule)
	if mockModule != nil {
		app.Register(mockModule)
	}
	app.Register(backendModule)
	app.Register(sessionModule)
	app.Register(catalogModule)
	app.Register(cartModule)
	app.Register(webModule)

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start app: %v", err)
	}

	log.Println("=== Storefront Started ===")
	log.Printf("Storefront available at http://localhost%s", webAddr)
	log.Println("Routes:")
	log.Println("  GET    /                      - Featured products")
	log.Println("  GET    /products              - Catalog (local filter/sort)")
	log.Println("  GET    /products/search       - Backend search")
	log.Println("  GET    /cart                  - Cart with totals")
	log.Println("  POST   /auth/login            - Customer login")
	log.Println("  POST   /auth/admin-login      - Admin login")
	log.Println("  POST   /admin/products        - Create product (admin)")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown")

	// Setup graceful shutdown using gelmium/graceful-shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
