package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"
	"github.com/redis/go-redis/v9"
)

// Config holds storage module configuration.
type Config struct {
	RedisAddr string
	Prefix    string
}

// DefaultConfig returns the default storage configuration.
func DefaultConfig() Config {
	return Config{
		RedisAddr: "localhost:6379",
		Prefix:    "storefront:",
	}
}

// Module provides the persisted key-value store as a mono module. It
// prefers Redis and falls back to an in-memory store when Redis is not
// reachable, so the application still runs standalone.
type Module struct {
	config Config
	client *redis.Client
	store  Store
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new storage module.
func NewModule(config Config) *Module {
	return &Module{
		config: config,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "storage"
}

// Start connects to Redis, falling back to in-memory storage if the ping
// fails.
func (m *Module) Start(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr: m.config.RedisAddr,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		m.store = NewMemoryStore()
		log.Printf("[storage] Redis unavailable at %s (%v), using in-memory store", m.config.RedisAddr, err)
		return nil
	}

	m.client = client
	m.store = NewRedisStore(client, m.config.Prefix)
	log.Printf("[storage] Connected to Redis at %s (prefix %q)", m.config.RedisAddr, m.config.Prefix)
	return nil
}

// Stop closes the Redis connection.
func (m *Module) Stop(_ context.Context) error {
	if m.client != nil {
		m.client.Close()
	}
	log.Println("[storage] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "store not initialized",
		}
	}

	if m.client == nil {
		return mono.HealthStatus{
			Healthy: true,
			Message: "operational (in-memory)",
		}
	}

	if err := m.client.Ping(ctx).Err(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("redis ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"redis": m.config.RedisAddr,
		},
	}
}

// Store returns the active key-value store.
func (m *Module) Store() Store {
	return m.store
}
