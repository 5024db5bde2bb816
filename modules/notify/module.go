package notify

import (
	"context"
	"log"

	"github.com/go-monolith/mono"
)

// Module provides the Notifier as a mono module.
type Module struct {
	notifier *Notifier
}

// Compile-time interface check.
var _ mono.Module = (*Module)(nil)

// NewModule creates a new notify module.
func NewModule() *Module {
	return &Module{
		notifier: New(),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "notify"
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	log.Println("[notify] Module started")
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[notify] Module stopped")
	return nil
}

// Notifier returns the notification bus.
func (m *Module) Notifier() *Notifier {
	return m.notifier
}
