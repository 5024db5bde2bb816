package backend

import (
	"context"
	"log"

	"github.com/go-monolith/mono"
)

// Module provides the backend API client as a mono module.
type Module struct {
	config Config
	client *Client
}

// Compile-time interface check.
var _ mono.Module = (*Module)(nil)

// NewModule creates a new backend module.
func NewModule(config Config) *Module {
	return &Module{
		config: config,
		client: NewClient(config),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "backend"
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	log.Printf("[backend] API client ready (base URL %s)", m.client.BaseURL())
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[backend] Module stopped")
	return nil
}

// Client returns the API client.
func (m *Module) Client() *Client {
	return m.client
}
