package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/example/storefront-demo/domain/product"
)

// SearchParams are the query parameters accepted by the backend's search
// endpoint. Zero values are omitted from the query.
type SearchParams struct {
	Category string
	InStock  *bool
	MinPrice *float64
	MaxPrice *float64
	Name     string
	Page     int
	Size     int
}

// ListProducts fetches the full product set.
func (c *Client) ListProducts(ctx context.Context) ([]product.Product, error) {
	var products []product.Product
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListInStock fetches only products currently in stock.
func (c *Client) ListInStock(ctx context.Context) ([]product.Product, error) {
	var products []product.Product
	if err := c.do(ctx, http.MethodGet, "/api/products/in-stock", nil, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches a single product by ID.
func (c *Client) GetProduct(ctx context.Context, id int) (*product.Product, error) {
	var p product.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/products/%d", id), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByCategory fetches products in a category.
func (c *Client) ListByCategory(ctx context.Context, category string) ([]product.Product, error) {
	var products []product.Product
	path := "/api/products/category/" + url.PathEscape(category)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListPaginated fetches one page of products sorted server-side.
func (c *Client) ListPaginated(ctx context.Context, page, size int, sortBy, sortDir string) (*product.Page, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))
	query.Set("sortBy", sortBy)
	query.Set("sortDir", sortDir)

	var result product.Page
	if err := c.do(ctx, http.MethodGet, "/api/products/paginated", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchProducts delegates filtering, sorting and pagination to the
// backend.
func (c *Client) SearchProducts(ctx context.Context, params SearchParams) (*product.Page, error) {
	query := url.Values{}
	if params.Category != "" {
		query.Set("category", params.Category)
	}
	if params.InStock != nil {
		query.Set("inStock", strconv.FormatBool(*params.InStock))
	}
	if params.MinPrice != nil {
		query.Set("minPrice", strconv.FormatFloat(*params.MinPrice, 'f', -1, 64))
	}
	if params.MaxPrice != nil {
		query.Set("maxPrice", strconv.FormatFloat(*params.MaxPrice, 'f', -1, 64))
	}
	if params.Name != "" {
		query.Set("name", params.Name)
	}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.Size > 0 {
		query.Set("size", strconv.Itoa(params.Size))
	}

	var result product.Page
	if err := c.do(ctx, http.MethodGet, "/api/products/search", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateProduct creates a product through the admin route.
func (c *Client) CreateProduct(ctx context.Context, draft product.Draft) (*product.Product, error) {
	var created product.Product
	if err := c.do(ctx, http.MethodPost, "/api/admin/products", nil, draft, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProduct replaces a product through the admin route.
func (c *Client) UpdateProduct(ctx context.Context, id int, draft product.Draft) (*product.Product, error) {
	var updated product.Product
	path := fmt.Sprintf("/api/admin/products/%d", id)
	if err := c.do(ctx, http.MethodPut, path, nil, draft, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProduct removes a product through the admin route.
func (c *Client) DeleteProduct(ctx context.Context, id int) error {
	path := fmt.Sprintf("/api/admin/products/%d", id)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// UpdateStock replaces a product's stock quantity.
func (c *Client) UpdateStock(ctx context.Context, id, quantity int) (*product.Product, error) {
	query := url.Values{}
	query.Set("quantity", strconv.Itoa(quantity))

	var updated product.Product
	path := fmt.Sprintf("/api/products/%d/stock", id)
	if err := c.do(ctx, http.MethodPatch, path, query, nil, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
