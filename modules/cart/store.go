// Package cart holds the shopping cart lines, keyed by product id, and
// derives totals. The cart is purely client-local; checkout never submits
// an order.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	domain "github.com/example/storefront-demo/domain/cart"
	"github.com/example/storefront-demo/modules/notify"
	"github.com/example/storefront-demo/modules/storage"
)

// KeyLines is the storage key the cart persists under.
const KeyLines = "cart_items"

var (
	// ErrLineNotFound is returned when a quantity update names an absent
	// line.
	ErrLineNotFound = errors.New("cart line not found")
	// ErrInvalidQuantity is returned when a quantity below 1 is requested.
	// Removal is an explicit separate operation; quantities never reach
	// zero through updates.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Store owns the cart lines. At most one line exists per product id;
// adding an already-present product increments its quantity.
type Store struct {
	mu    sync.RWMutex
	lines []domain.Line

	storage  storage.Store
	notifier *notify.Notifier
}

// NewStore creates an empty cart store. storage may be nil to disable
// persistence.
func NewStore(store storage.Store, notifier *notify.Notifier) *Store {
	return &Store{
		storage:  store,
		notifier: notifier,
	}
}

// AddItem opens a line with quantity 1 for a product not yet in the cart,
// or increments the existing line. The snapshot's name, price and image
// are captured on first add and kept as-is afterwards.
func (s *Store) AddItem(ctx context.Context, snapshot domain.Snapshot) {
	s.mu.Lock()
	merged := false
	for i := range s.lines {
		if s.lines[i].ProductID == snapshot.ProductID {
			s.lines[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		s.lines = append(s.lines, domain.Line{
			ProductID: snapshot.ProductID,
			Name:      snapshot.Name,
			Price:     snapshot.Price,
			Image:     snapshot.Image,
			Quantity:  1,
		})
	}
	s.mu.Unlock()

	s.persist(ctx)
	s.notifier.Success(snapshot.Name + " adicionado ao carrinho!")
}

// UpdateQuantity sets a line's quantity directly. Quantities below 1 are
// rejected; use RemoveItem to drop a line.
func (s *Store) UpdateQuantity(ctx context.Context, productID, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	found := false
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity = quantity
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return ErrLineNotFound
	}

	s.persist(ctx)
	return nil
}

// Increment raises a line's quantity by one.
func (s *Store) Increment(ctx context.Context, productID int) error {
	s.mu.Lock()
	found := false
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity++
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return ErrLineNotFound
	}

	s.persist(ctx)
	return nil
}

// Decrement lowers a line's quantity by one, flooring at 1. At the floor
// it is a no-op: dropping the line requires an explicit RemoveItem.
func (s *Store) Decrement(ctx context.Context, productID int) error {
	s.mu.Lock()
	found := false
	changed := false
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			found = true
			if s.lines[i].Quantity > 1 {
				s.lines[i].Quantity--
				changed = true
			}
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return ErrLineNotFound
	}
	if changed {
		s.persist(ctx)
	}
	return nil
}

// RemoveItem deletes the line for a product. Removing an absent product
// is a no-op.
func (s *Store) RemoveItem(ctx context.Context, productID int) {
	s.mu.Lock()
	removed := false
	kept := s.lines[:0]
	for _, line := range s.lines {
		if line.ProductID == productID {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	s.lines = kept
	s.mu.Unlock()

	if removed {
		s.persist(ctx)
	}
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.lines = nil
	s.mu.Unlock()

	s.persist(ctx)
	s.notifier.Info("Carrinho esvaziado")
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Store) Lines() []domain.Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lines := make([]domain.Line, len(s.lines))
	copy(lines, s.lines)
	return lines
}

// Total derives the cart total as the sum of price times quantity. It is
// recomputed on every read and never stored.
func (s *Store) Total() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total float64
	for _, line := range s.lines {
		total += line.Subtotal()
	}
	return total
}

// ItemCount derives the badge count: the sum of quantities across lines.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

// Restore loads persisted cart lines. Malformed persisted data is treated
// as an empty cart.
func (s *Store) Restore(ctx context.Context) {
	if s.storage == nil {
		return
	}

	raw, ok, err := s.storage.Get(ctx, KeyLines)
	if err != nil {
		log.Printf("[cart] Failed to read persisted cart: %v", err)
		return
	}
	if !ok {
		return
	}

	var lines []domain.Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		log.Printf("[cart] Discarding malformed persisted cart")
		s.storage.Delete(ctx, KeyLines)
		return
	}

	s.mu.Lock()
	s.lines = lines
	s.mu.Unlock()
}

func (s *Store) persist(ctx context.Context) {
	if s.storage == nil {
		return
	}

	data, err := json.Marshal(s.Lines())
	if err != nil {
		log.Printf("[cart] Failed to encode cart for persistence: %v", err)
		return
	}
	if err := s.storage.Set(ctx, KeyLines, string(data)); err != nil {
		log.Printf("[cart] Failed to persist cart: %v", err)
	}
}
