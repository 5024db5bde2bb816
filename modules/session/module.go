package session

import (
	"context"
	"fmt"
	"log"

	"github.com/example/storefront-demo/modules/backend"
	"github.com/example/storefront-demo/modules/notify"
	"github.com/example/storefront-demo/modules/storage"
	"github.com/go-monolith/mono"
)

// Module provides the session store as a mono module.
type Module struct {
	backendModule *backend.Module
	storageModule *storage.Module
	notifyModule  *notify.Module
	store         *Store
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.DependentModule = (*Module)(nil)

// NewModule creates a new session module.
func NewModule() *Module {
	return &Module{}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "session"
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"backend", "storage", "notify"}
}

// SetDependencyServiceContainer is unused; dependencies are wired directly
// through setters before the application starts.
func (m *Module) SetDependencyServiceContainer(string, mono.ServiceContainer) {}

// SetBackend wires the backend module.
func (m *Module) SetBackend(mod *backend.Module) {
	m.backendModule = mod
}

// SetStorage wires the storage module.
func (m *Module) SetStorage(mod *storage.Module) {
	m.storageModule = mod
}

// SetNotify wires the notify module.
func (m *Module) SetNotify(mod *notify.Module) {
	m.notifyModule = mod
}

// Start builds the session store, registers it as the backend's token
// source and unauthorized hook, and restores any persisted session.
func (m *Module) Start(ctx context.Context) error {
	if m.backendModule == nil || m.storageModule == nil || m.notifyModule == nil {
		return fmt.Errorf("session dependencies not set")
	}

	client := m.backendModule.Client()
	m.store = NewStore(client, m.storageModule.Store(), m.notifyModule.Notifier())

	client.SetTokenSource(m.store)
	client.SetUnauthorizedHook(m.store.HandleUnauthorized)

	m.store.Restore(ctx)

	log.Println("[session] Module started")
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[session] Module stopped")
	return nil
}

// Store returns the session store.
func (m *Module) Store() *Store {
	return m.store
}
