package catalog

import (
	"context"
	"fmt"
	"log"

	"github.com/example/storefront-demo/modules/backend"
	"github.com/example/storefront-demo/modules/notify"
	"github.com/example/storefront-demo/modules/session"
	"github.com/go-monolith/mono"
)

// Config holds catalog module configuration.
type Config struct {
	// FallbackSamples substitutes the built-in sample catalog when an
	// initial load fails.
	FallbackSamples bool
	// LoadOnStart performs the initial catalog load during startup.
	LoadOnStart bool
}

// DefaultConfig returns the default catalog configuration.
func DefaultConfig() Config {
	return Config{
		FallbackSamples: true,
		LoadOnStart:     true,
	}
}

// Module provides the catalog store as a mono module.
type Module struct {
	config        Config
	backendModule *backend.Module
	sessionModule *session.Module
	notifyModule  *notify.Module
	store         *Store
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.DependentModule = (*Module)(nil)

// NewModule creates a new catalog module.
func NewModule(config Config) *Module {
	return &Module{
		config: config,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "catalog"
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"backend", "session", "notify"}
}

// SetDependencyServiceContainer is unused; dependencies are wired directly
// through setters before the application starts.
func (m *Module) SetDependencyServiceContainer(string, mono.ServiceContainer) {}

// SetBackend wires the backend module.
func (m *Module) SetBackend(mod *backend.Module) {
	m.backendModule = mod
}

// SetSession wires the session module.
func (m *Module) SetSession(mod *session.Module) {
	m.sessionModule = mod
}

// SetNotify wires the notify module.
func (m *Module) SetNotify(mod *notify.Module) {
	m.notifyModule = mod
}

// Start builds the catalog store and optionally performs the initial load.
func (m *Module) Start(ctx context.Context) error {
	if m.backendModule == nil || m.sessionModule == nil || m.notifyModule == nil {
		return fmt.Errorf("catalog dependencies not set")
	}

	m.store = NewStore(
		m.backendModule.Client(),
		m.sessionModule.Store(),
		m.notifyModule.Notifier(),
		m.config.FallbackSamples,
	)

	if m.config.LoadOnStart {
		// Initial load failure is non-fatal: the store falls back to the
		// sample catalog and the application keeps serving.
		if err := m.store.Load(ctx, false); err != nil {
			log.Printf("[catalog] Initial load failed: %v", err)
		}
	}

	log.Println("[catalog] Module started")
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[catalog] Module stopped")
	return nil
}

// Store returns the catalog store.
func (m *Module) Store() *Store {
	return m.store
}
