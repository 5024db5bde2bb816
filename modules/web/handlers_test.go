package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront-demo/modules/backend"
	"github.com/example/storefront-demo/modules/cart"
	"github.com/example/storefront-demo/modules/catalog"
	"github.com/example/storefront-demo/modules/mockapi"
	"github.com/example/storefront-demo/modules/notify"
	"github.com/example/storefront-demo/modules/session"
	"github.com/example/storefront-demo/modules/storage"
)

// setupApp boots the full module stack against an embedded backend and
// returns the storefront Fiber app.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	ctx := context.Background()

	apiModule := mockapi.NewModule(mockapi.Config{
		DBPath:        filepath.Join(t.TempDir(), "web_test.db"),
		JWTSecret:     "test-secret",
		TokenLifetime: time.Hour,
	})
	if err := apiModule.Start(ctx); err != nil {
		t.Fatalf("Failed to start mockapi: %v", err)
	}
	t.Cleanup(func() { apiModule.Stop(ctx) })

	apiServer := httptest.NewServer(apiModule.Handler())
	t.Cleanup(apiServer.Close)

	storageModule := storage.NewModule(storage.Config{RedisAddr: "127.0.0.1:1"})
	notifyModule := notify.NewModule()
	backendModule := backend.NewModule(backend.Config{BaseURL: apiServer.URL})

	sessionModule := session.NewModule()
	sessionModule.SetBackend(backendModule)
	sessionModule.SetStorage(storageModule)
	sessionModule.SetNotify(notifyModule)

	catalogModule := catalog.NewModule(catalog.Config{FallbackSamples: true, LoadOnStart: true})
	catalogModule.SetBackend(backendModule)
	catalogModule.SetSession(sessionModule)
	catalogModule.SetNotify(notifyModule)

	cartModule := cart.NewModule()
	cartModule.SetStorage(storageModule)
	cartModule.SetNotify(notifyModule)

	webModule := NewModule(Config{Addr: ""})
	webModule.SetCatalog(catalogModule)
	webModule.SetCart(cartModule)
	webModule.SetSession(sessionModule)
	webModule.SetNotify(notifyModule)

	type starter interface {
		Start(context.Context) error
		Name() string
	}
	for _, m := range []starter{storageModule, notifyModule, backendModule, sessionModule, catalogModule, cartModule, webModule} {
		if err := m.Start(ctx); err != nil {
			t.Fatalf("Failed to start %s module: %v", m.Name(), err)
		}
	}
	t.Cleanup(func() { webModule.Stop(ctx) })

	return webModule.App()
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request, out any) int {
	t.Helper()
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	if out != nil {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("Failed to read response body: %v", err)
		}
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("Failed to decode response %s: %v", data, err)
		}
	}
	return resp.StatusCode
}

func loginAdmin(t *testing.T, app *fiber.App) {
	t.Helper()
	status := doRequest(t, app, jsonRequest(http.MethodPost, "/auth/admin-login", CredentialsRequest{
		Email:    "admin@example.com",
		Password: "admin123",
	}), nil)
	if status != http.StatusOK {
		t.Fatalf("Admin login returned %d", status)
	}
}

func TestWeb_HomeServesFeaturedProducts(t *testing.T) {
	app := setupApp(t)

	var home HomeResponse
	if status := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil), &home); status != http.StatusOK {
		t.Fatalf("Home returned %d", status)
	}
	if len(home.Featured) != 3 {
		t.Errorf("Expected 3 featured products, got %d", len(home.Featured))
	}
}

func TestWeb_ProductsFilterLocally(t *testing.T) {
	app := setupApp(t)

	var list ProductListResponse
	req := httptest.NewRequest(http.MethodGet, "/products?category=Electronics&max_price=300&in_stock=true", nil)
	if status := doRequest(t, app, req, &list); status != http.StatusOK {
		t.Fatalf("Products returned %d", status)
	}

	names := map[string]bool{}
	for _, p := range list.Products {
		names[p.Name] = true
	}
	if list.Total != 2 || !names["Wireless Headphones"] || !names["Gaming Mouse"] {
		t.Errorf("Unexpected filtered products: %v", names)
	}
}

func TestWeb_ProductsSortAscendingByPrice(t *testing.T) {
	app := setupApp(t)

	var list ProductListResponse
	req := httptest.NewRequest(http.MethodGet, "/products?sort=price-low", nil)
	if status := doRequest(t, app, req, &list); status != http.StatusOK {
		t.Fatalf("Products returned %d", status)
	}
	if len(list.Products) == 0 || list.Products[0].Name != "Gaming Mouse" {
		t.Errorf("Expected cheapest product first, got %+v", list.Products)
	}
}

func TestWeb_GetProductNotFound(t *testing.T) {
	app := setupApp(t)

	var errResp ErrorResponse
	status := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/products/999", nil), &errResp)
	if status != http.StatusNotFound || errResp.Error != "not_found" {
		t.Errorf("Expected 404 not_found, got %d %+v", status, errResp)
	}
}

func TestWeb_CartAddMergeAndTotals(t *testing.T) {
	app := setupApp(t)

	doRequest(t, app, jsonRequest(http.MethodPost, "/cart/items", AddItemRequest{ProductID: 1}), nil)

	var cartResp CartResponse
	status := doRequest(t, app, jsonRequest(http.MethodPost, "/cart/items", AddItemRequest{ProductID: 1}), &cartResp)
	if status != http.StatusOK {
		t.Fatalf("Add to cart returned %d", status)
	}
	if len(cartResp.Items) != 1 || cartResp.Items[0].Quantity != 2 {
		t.Fatalf("Expected merged line with quantity 2, got %+v", cartResp.Items)
	}

	wantSubtotal := 2 * 1299.99
	if cartResp.Subtotal != wantSubtotal {
		t.Errorf("Expected subtotal %v, got %v", wantSubtotal, cartResp.Subtotal)
	}
	if cartResp.Shipping != 15.0 || cartResp.Total != wantSubtotal+15.0 {
		t.Errorf("Unexpected shipping math: %+v", cartResp)
	}
}

func TestWeb_CartRejectsOutOfStockProduct(t *testing.T) {
	app := setupApp(t)

	// The Smart Watch ships out of stock in the sample catalog.
	var errResp ErrorResponse
	status := doRequest(t, app, jsonRequest(http.MethodPost, "/cart/items", AddItemRequest{ProductID: 4}), &errResp)
	if status != http.StatusConflict || errResp.Error != "out_of_stock" {
		t.Errorf("Expected 409 out_of_stock, got %d %+v", status, errResp)
	}
}

func TestWeb_CartQuantityZeroRejected(t *testing.T) {
	app := setupApp(t)

	doRequest(t, app, jsonRequest(http.MethodPost, "/cart/items", AddItemRequest{ProductID: 1}), nil)

	status := doRequest(t, app, jsonRequest(http.MethodPatch, "/cart/items/1", QuantityRequest{Quantity: 0}), nil)
	if status != http.StatusBadRequest {
		t.Errorf("Expected 400 for zero quantity, got %d", status)
	}

	var cartResp CartResponse
	doRequest(t, app, httptest.NewRequest(http.MethodGet, "/cart", nil), &cartResp)
	if cartResp.Items[0].Quantity != 1 {
		t.Errorf("Quantity changed by rejected update: %+v", cartResp.Items)
	}
}

func TestWeb_CartDecrementFloorsAtOne(t *testing.T) {
	app := setupApp(t)

	doRequest(t, app, jsonRequest(http.MethodPost, "/cart/items", AddItemRequest{ProductID: 1}), nil)

	var cartResp CartResponse
	doRequest(t, app, jsonRequest(http.MethodPost, "/cart/items/1/decrement", nil), &cartResp)
	if cartResp.Items[0].Quantity != 1 {
		t.Errorf("Expected quantity floor of 1, got %d", cartResp.Items[0].Quantity)
	}
}

func TestWeb_CheckoutRequiresItems(t *testing.T) {
	app := setupApp(t)

	if status := doRequest(t, app, jsonRequest(http.MethodPost, "/cart/checkout", nil), nil); status != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty-cart checkout, got %d", status)
	}

	doRequest(t, app, jsonRequest(http.MethodPost, "/cart/items", AddItemRequest{ProductID: 1}), nil)

	var checkout CheckoutResponse
	if status := doRequest(t, app, jsonRequest(http.MethodPost, "/cart/checkout", nil), &checkout); status != http.StatusOK {
		t.Errorf("Expected simulated checkout to succeed, got %d", status)
	}
	if checkout.Redirect == "" {
		t.Error("Expected a redirect target")
	}

	// Simulated checkout never drains the cart.
	var cartResp CartResponse
	doRequest(t, app, httptest.NewRequest(http.MethodGet, "/cart", nil), &cartResp)
	if len(cartResp.Items) != 1 {
		t.Errorf("Checkout modified the cart: %+v", cartResp.Items)
	}
}

func TestWeb_LoginAndMe(t *testing.T) {
	app := setupApp(t)

	if status := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/auth/me", nil), nil); status != http.StatusUnauthorized {
		t.Errorf("Expected 401 before login, got %d", status)
	}

	var sess SessionResponse
	status := doRequest(t, app, jsonRequest(http.MethodPost, "/auth/login", CredentialsRequest{
		Email:    "cliente@example.com",
		Password: "senha123",
	}), &sess)
	if status != http.StatusOK {
		t.Fatalf("Login returned %d", status)
	}
	if sess.User.Email != "cliente@example.com" || sess.IsAdmin {
		t.Errorf("Unexpected session: %+v", sess)
	}

	doRequest(t, app, jsonRequest(http.MethodPost, "/auth/logout", nil), nil)
	if status := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/auth/me", nil), nil); status != http.StatusUnauthorized {
		t.Errorf("Expected 401 after logout, got %d", status)
	}
}

func TestWeb_AdminLoginRejectsCustomer(t *testing.T) {
	app := setupApp(t)

	status := doRequest(t, app, jsonRequest(http.MethodPost, "/auth/admin-login", CredentialsRequest{
		Email:    "cliente@example.com",
		Password: "senha123",
	}), nil)
	if status != http.StatusForbidden {
		t.Errorf("Expected 403 for customer on admin login, got %d", status)
	}
}

func TestWeb_BadCredentialsRejected(t *testing.T) {
	app := setupApp(t)

	status := doRequest(t, app, jsonRequest(http.MethodPost, "/auth/login", CredentialsRequest{
		Email:    "cliente@example.com",
		Password: "errada",
	}), nil)
	if status != http.StatusUnauthorized {
		t.Errorf("Expected 401 for bad credentials, got %d", status)
	}
}

func TestWeb_AdminRoutesGated(t *testing.T) {
	app := setupApp(t)

	draft := map[string]any{"name": "Tablet", "price": 499.99, "category": "Electronics", "inStock": true, "stockQuantity": 5}

	if status := doRequest(t, app, jsonRequest(http.MethodPost, "/admin/products", draft), nil); status != http.StatusUnauthorized {
		t.Errorf("Expected 401 for anonymous admin call, got %d", status)
	}

	doRequest(t, app, jsonRequest(http.MethodPost, "/auth/login", CredentialsRequest{
		Email:    "cliente@example.com",
		Password: "senha123",
	}), nil)
	if status := doRequest(t, app, jsonRequest(http.MethodPost, "/admin/products", draft), nil); status != http.StatusForbidden {
		t.Errorf("Expected 403 for customer admin call, got %d", status)
	}
}

func TestWeb_AdminProductLifecycle(t *testing.T) {
	app := setupApp(t)
	loginAdmin(t, app)

	var created map[string]any
	status := doRequest(t, app, jsonRequest(http.MethodPost, "/admin/products", map[string]any{
		"name": "Tablet", "price": 499.99, "category": "Electronics", "inStock": true, "stockQuantity": 5,
	}), &created)
	if status != http.StatusCreated {
		t.Fatalf("Create returned %d", status)
	}
	id := int(created["id"].(float64))
	if id == 0 {
		t.Fatal("Created product has no id")
	}

	var updated map[string]any
	status = doRequest(t, app, jsonRequest(http.MethodPut, "/admin/products/"+itoa(id), map[string]any{
		"price": 449.99,
	}), &updated)
	if status != http.StatusOK {
		t.Fatalf("Update returned %d", status)
	}
	if updated["price"].(float64) != 449.99 || updated["name"].(string) != "Tablet" {
		t.Errorf("Patch merge failed: %+v", updated)
	}

	var stocked map[string]any
	status = doRequest(t, app, jsonRequest(http.MethodPatch, "/admin/products/"+itoa(id)+"/stock?quantity=0", nil), &stocked)
	if status != http.StatusOK {
		t.Fatalf("Stock update returned %d", status)
	}
	if stocked["inStock"].(bool) {
		t.Errorf("Expected out-of-stock after zeroing quantity: %+v", stocked)
	}

	if status := doRequest(t, app, jsonRequest(http.MethodDelete, "/admin/products/"+itoa(id), nil), nil); status != http.StatusNoContent {
		t.Fatalf("Delete returned %d", status)
	}
	if status := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/products/"+itoa(id), nil), nil); status != http.StatusNotFound {
		t.Errorf("Expected deleted product to be gone, got %d", status)
	}
}

func TestWeb_NotificationsFeed(t *testing.T) {
	app := setupApp(t)

	doRequest(t, app, jsonRequest(http.MethodPost, "/cart/items", AddItemRequest{ProductID: 1}), nil)

	var feed NotificationsResponse
	if status := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/notifications", nil), &feed); status != http.StatusOK {
		t.Fatalf("Notifications returned %d", status)
	}
	if len(feed.Notifications) == 0 {
		t.Error("Expected at least one notification after adding to cart")
	}
}

func TestWeb_UnknownRouteReturnsJSON404(t *testing.T) {
	app := setupApp(t)

	var errResp ErrorResponse
	status := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/no-such-page", nil), &errResp)
	if status != http.StatusNotFound || errResp.Error != "not_found" {
		t.Errorf("Expected JSON 404, got %d %+v", status, errResp)
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
