package cart

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"

	"github.com/example/storefront-demo/modules/notify"
	"github.com/example/storefront-demo/modules/storage"
)

// Module wires the cart store into the application and restores the
// persisted cart on start.
type Module struct {
	store *Store

	storageModule *storage.Module
	notifyModule  *notify.Module
}

var _ mono.Module = (*Module)(nil)
var _ mono.DependentModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the cart module.
func NewModule() *Module {
	return &Module{}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "cart"
}

// Dependencies returns the modules that must start before this one.
func (m *Module) Dependencies() []string {
	return []string{"storage", "notify"}
}

// SetDependencyServiceContainer receives dependency containers. Wiring
// happens through the typed setters instead.
func (m *Module) SetDependencyServiceContainer(name string, container mono.ServiceContainer) {
}

// SetStorage injects the storage module.
func (m *Module) SetStorage(mod *storage.Module) {
	m.storageModule = mod
}

// SetNotify injects the notification module.
func (m *Module) SetNotify(mod *notify.Module) {
	m.notifyModule = mod
}

// Start builds the cart store and restores any persisted cart.
func (m *Module) Start(ctx context.Context) error {
	if m.storageModule == nil || m.notifyModule == nil {
		return fmt.Errorf("cart module requires storage and notify modules")
	}

	m.store = NewStore(m.storageModule.Store(), m.notifyModule.Notifier())
	m.store.Restore(ctx)

	log.Printf("[cart] Cart ready with %d item(s)", m.store.ItemCount())
	return nil
}

// Stop persists the cart one final time.
func (m *Module) Stop(ctx context.Context) error {
	if m.store != nil {
		m.store.persist(ctx)
	}
	log.Println("[cart] Cart module stopped")
	return nil
}

// Health reports the cart module status.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{Healthy: false, Message: "cart store not initialized"}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"lines":      len(m.store.Lines()),
			"item_count": m.store.ItemCount(),
		},
	}
}

// Store returns the cart store.
func (m *Module) Store() *Store {
	return m.store
}
