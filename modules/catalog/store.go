// Package catalog holds the working set of product records and proxies all
// catalog mutations to the remote product API. Local state changes only
// after the remote call succeeds.
package catalog

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/example/storefront-demo/domain/product"
	"github.com/example/storefront-demo/modules/backend"
	"github.com/example/storefront-demo/modules/notify"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNotFound is returned by local lookups for absent products.
	ErrNotFound = errors.New("product not found")
	// ErrPermissionDenied is returned when a mutation is attempted without
	// an administrative session.
	ErrPermissionDenied = errors.New("administrator session required")
)

// Authorizer gates catalog mutations. The session store implements it.
type Authorizer interface {
	CanManageProducts() bool
}

// Store owns the catalog state: the visible product list, pagination
// cursors and load/error flags.
type Store struct {
	mu          sync.RWMutex
	products    []product.Product
	totalPages  int
	currentPage int
	loading     bool
	lastError   string

	client   *backend.Client
	auth     Authorizer
	notifier *notify.Notifier

	// fallbackSamples substitutes the sample catalog when a read-path load
	// fails, instead of leaving the view empty.
	fallbackSamples bool

	loads singleflight.Group
}

// NewStore creates an empty catalog store.
func NewStore(client *backend.Client, auth Authorizer, notifier *notify.Notifier, fallbackSamples bool) *Store {
	return &Store{
		client:          client,
		auth:            auth,
		notifier:        notifier,
		fallbackSamples: fallbackSamples,
	}
}

// Load fetches the product set and replaces the local list wholesale.
// Concurrent loads with the same scope collapse into one remote call. On
// failure the error is surfaced and, when the fallback policy is enabled,
// the sample catalog is substituted so the view is never empty.
func (s *Store) Load(ctx context.Context, inStockOnly bool) error {
	key := "all"
	if inStockOnly {
		key = "in-stock"
	}

	s.setLoading(true)
	defer s.setLoading(false)

	result, err, _ := s.loads.Do(key, func() (any, error) {
		if inStockOnly {
			return s.client.ListInStock(ctx)
		}
		return s.client.ListProducts(ctx)
	})
	if err != nil {
		s.recordError("Não foi possível carregar os produtos")
		if s.fallbackSamples {
			s.replaceList(product.SampleProducts())
			s.notifier.Error("Não foi possível carregar os produtos. Usando dados de exemplo.")
		} else {
			s.notifier.Error("Não foi possível carregar os produtos")
		}
		return err
	}

	s.replaceList(result.([]product.Product))
	s.clearError()
	return nil
}

// SearchParams mirror the backend search endpoint's filters plus paging
// and server-side sort.
type SearchParams struct {
	Category string
	InStock  *bool
	MinPrice *float64
	MaxPrice *float64
	Name     string
	Page     int
	Size     int
}

// Search delegates filtering, sorting and pagination to the backend and
// replaces the local list with the returned page's content.
func (s *Store) Search(ctx context.Context, params SearchParams) error {
	s.setLoading(true)
	defer s.setLoading(false)

	page, err := s.client.SearchProducts(ctx, backend.SearchParams{
		Category: params.Category,
		InStock:  params.InStock,
		MinPrice: params.MinPrice,
		MaxPrice: params.MaxPrice,
		Name:     params.Name,
		Page:     params.Page,
		Size:     params.Size,
	})
	if err != nil {
		s.recordError("Erro ao buscar produtos")
		s.notifier.Error("Erro ao buscar produtos")
		return err
	}

	s.mu.Lock()
	s.products = page.Content
	s.totalPages = page.TotalPages
	s.currentPage = page.Number
	s.lastError = ""
	s.mu.Unlock()
	return nil
}

// Paginate fetches one server-sorted page and replaces the local list.
func (s *Store) Paginate(ctx context.Context, pageNum, size int, sortBy, sortDir string) error {
	s.setLoading(true)
	defer s.setLoading(false)

	page, err := s.client.ListPaginated(ctx, pageNum, size, sortBy, sortDir)
	if err != nil {
		s.recordError("Erro ao carregar página de produtos")
		s.notifier.Error("Erro ao carregar página de produtos")
		return err
	}

	s.mu.Lock()
	s.products = page.Content
	s.totalPages = page.TotalPages
	s.currentPage = page.Number
	s.lastError = ""
	s.mu.Unlock()
	return nil
}

// Create adds a product through the remote admin route and appends it
// locally once the backend confirms.
func (s *Store) Create(ctx context.Context, draft product.Draft) (*product.Product, error) {
	if !s.auth.CanManageProducts() {
		return nil, ErrPermissionDenied
	}

	s.setLoading(true)
	defer s.setLoading(false)

	created, err := s.client.CreateProduct(ctx, draft)
	if err != nil {
		s.recordError("Erro ao adicionar produto")
		s.notifier.Error("Erro ao adicionar produto")
		return nil, err
	}

	s.mu.Lock()
	s.products = append(s.products, *created)
	s.mu.Unlock()

	s.notifier.Success("Produto adicionado com sucesso!")
	return created, nil
}

// Update applies a partial patch to a product. The patch is merged over
// the local copy (or the freshly fetched one when the product is not held
// locally) and the merged record is sent as a full replace.
func (s *Store) Update(ctx context.Context, id int, patch product.Patch) (*product.Product, error) {
	if !s.auth.CanManageProducts() {
		return nil, ErrPermissionDenied
	}

	base, err := s.GetByID(id)
	if err != nil {
		remote, fetchErr := s.client.GetProduct(ctx, id)
		if fetchErr != nil {
			return nil, fetchErr
		}
		base = remote
	}

	s.setLoading(true)
	defer s.setLoading(false)

	merged := patch.Apply(*base)
	updated, err := s.client.UpdateProduct(ctx, id, merged.Draft())
	if err != nil {
		s.recordError("Erro ao atualizar produto")
		s.notifier.Error("Erro ao atualizar produto")
		return nil, err
	}

	s.replaceProduct(*updated)
	s.notifier.Success("Produto atualizado com sucesso!")
	return updated, nil
}

// Delete removes a product remotely, then locally.
func (s *Store) Delete(ctx context.Context, id int) error {
	if !s.auth.CanManageProducts() {
		return ErrPermissionDenied
	}

	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.client.DeleteProduct(ctx, id); err != nil {
		s.recordError("Erro ao deletar produto")
		s.notifier.Error("Erro ao deletar produto")
		return err
	}

	s.mu.Lock()
	kept := s.products[:0]
	for _, p := range s.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.products = kept
	s.mu.Unlock()

	s.notifier.Success("Produto deletado com sucesso!")
	return nil
}

// UpdateStock replaces a product's stock quantity after remote
// confirmation.
func (s *Store) UpdateStock(ctx context.Context, id, quantity int) (*product.Product, error) {
	if !s.auth.CanManageProducts() {
		return nil, ErrPermissionDenied
	}

	s.setLoading(true)
	defer s.setLoading(false)

	updated, err := s.client.UpdateStock(ctx, id, quantity)
	if err != nil {
		s.recordError("Erro ao atualizar estoque")
		s.notifier.Error("Erro ao atualizar estoque")
		return nil, err
	}

	s.replaceProduct(*updated)
	s.notifier.Success("Estoque atualizado com sucesso!")
	return updated, nil
}

// GetByID is a pure local lookup with no remote fallback.
func (s *Store) GetByID(id int) (*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// Products returns a copy of the current product list.
func (s *Store) Products() []product.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	products := make([]product.Product, len(s.products))
	copy(products, s.products)
	return products
}

// TotalPages returns the recorded total page count from the last search.
func (s *Store) TotalPages() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalPages
}

// CurrentPage returns the recorded page index from the last search.
func (s *Store) CurrentPage() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentPage
}

// Loading reports whether a remote call is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LastError returns the recorded error message, or "".
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

func (s *Store) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

func (s *Store) recordError(message string) {
	s.mu.Lock()
	s.lastError = message
	s.mu.Unlock()
	log.Printf("[catalog] %s", message)
}

func (s *Store) clearError() {
	s.mu.Lock()
	s.lastError = ""
	s.mu.Unlock()
}

func (s *Store) replaceList(products []product.Product) {
	s.mu.Lock()
	s.products = products
	s.mu.Unlock()
}

func (s *Store) replaceProduct(updated product.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.products {
		if p.ID == updated.ID {
			s.products[i] = updated
			return
		}
	}
	s.products = append(s.products, updated)
}
