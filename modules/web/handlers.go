package web

import (
	"errors"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"

	domain "github.com/example/storefront-demo/domain/cart"
	"github.com/example/storefront-demo/domain/product"
	"github.com/example/storefront-demo/modules/backend"
	"github.com/example/storefront-demo/modules/cart"
	"github.com/example/storefront-demo/modules/catalog"
	"github.com/example/storefront-demo/modules/notify"
	"github.com/example/storefront-demo/modules/session"
)

// FlatShippingRate is charged on any non-empty cart. The demo has no
// shipping calculator.
const FlatShippingRate = 15.0

// Handlers serves the storefront page routes.
type Handlers struct {
	catalog  *catalog.Store
	cart     *cart.Store
	sessions *session.Store
	notifier *notify.Notifier
}

// NewHandlers creates the handlers.
func NewHandlers(catalogStore *catalog.Store, cartStore *cart.Store, sessions *session.Store, notifier *notify.Notifier) *Handlers {
	return &Handlers{
		catalog:  catalogStore,
		cart:     cartStore,
		sessions: sessions,
		notifier: notifier,
	}
}

// Home serves the featured products payload.
func (h *Handlers) Home(c *fiber.Ctx) error {
	return c.JSON(HomeResponse{
		Featured: product.Featured(h.catalog.Products()),
		Loading:  h.catalog.Loading(),
		Error:    h.catalog.LastError(),
	})
}

// ListProducts serves the catalog view. Filtering and sorting happen
// locally over the already-loaded catalog; this route never fetches.
func (h *Handlers) ListProducts(c *fiber.Ctx) error {
	criteria := product.Criteria{
		Category:    c.Query("category", product.CategoryAll),
		InStockOnly: c.QueryBool("in_stock", false),
	}

	minRaw, maxRaw := c.Query("min_price"), c.Query("max_price")
	if minRaw != "" || maxRaw != "" {
		priceRange := product.PriceRange{Max: math.MaxFloat64}
		if minRaw != "" {
			min, err := strconv.ParseFloat(minRaw, 64)
			if err != nil {
				return badRequest(c, "Parâmetro min_price inválido")
			}
			priceRange.Min = min
		}
		if maxRaw != "" {
			max, err := strconv.ParseFloat(maxRaw, 64)
			if err != nil {
				return badRequest(c, "Parâmetro max_price inválido")
			}
			priceRange.Max = max
		}
		criteria.PriceRange = &priceRange
	}

	products := product.ApplyFilters(h.catalog.Products(), criteria, c.Query("q"))
	if sortKey := c.Query("sort"); sortKey != "" {
		products = product.SortProducts(products, product.SortKey(sortKey))
	}

	return c.JSON(ProductListResponse{Products: products, Total: len(products)})
}

// GetProduct serves one product from the loaded catalog.
func (h *Handlers) GetProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "ID de produto inválido")
	}

	p, err := h.catalog.GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Produto não encontrado",
		})
	}
	return c.JSON(p)
}

// ListPaginated asks the backend for one sorted page and serves it.
func (h *Handlers) ListPaginated(c *fiber.Ctx) error {
	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", 10)

	if err := h.catalog.Paginate(c.UserContext(), page, size, c.Query("sortBy", "id"), c.Query("sortDir", "asc")); err != nil {
		return backendError(c, err)
	}
	return c.JSON(PageResponse{
		Products:    h.catalog.Products(),
		TotalPages:  h.catalog.TotalPages(),
		CurrentPage: h.catalog.CurrentPage(),
	})
}

// SearchProducts delegates filtering to the backend and serves the page.
func (h *Handlers) SearchProducts(c *fiber.Ctx) error {
	params := catalog.SearchParams{
		Category: c.Query("category"),
		Name:     c.Query("q"),
		Page:     c.QueryInt("page", 0),
		Size:     c.QueryInt("size", 0),
	}
	if raw := c.Query("in_stock"); raw != "" {
		inStock, err := strconv.ParseBool(raw)
		if err != nil {
			return badRequest(c, "Parâmetro in_stock inválido")
		}
		params.InStock = &inStock
	}
	if raw := c.Query("min_price"); raw != "" {
		min, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return badRequest(c, "Parâmetro min_price inválido")
		}
		params.MinPrice = &min
	}
	if raw := c.Query("max_price"); raw != "" {
		max, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return badRequest(c, "Parâmetro max_price inválido")
		}
		params.MaxPrice = &max
	}

	if err := h.catalog.Search(c.UserContext(), params); err != nil {
		return backendError(c, err)
	}
	return c.JSON(PageResponse{
		Products:    h.catalog.Products(),
		TotalPages:  h.catalog.TotalPages(),
		CurrentPage: h.catalog.CurrentPage(),
	})
}

// ShowCart serves the cart with its derived totals.
func (h *Handlers) ShowCart(c *fiber.Ctx) error {
	lines := h.cart.Lines()
	subtotal := h.cart.Total()
	shipping := 0.0
	if len(lines) > 0 {
		shipping = FlatShippingRate
	}
	return c.JSON(CartResponse{
		Items:     lines,
		ItemCount: h.cart.ItemCount(),
		Subtotal:  subtotal,
		Shipping:  shipping,
		Total:     subtotal + shipping,
	})
}

// AddCartItem puts a catalog product in the cart.
func (h *Handlers) AddCartItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Corpo da requisição inválido")
	}

	p, err := h.catalog.GetByID(req.ProductID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Produto não encontrado",
		})
	}
	if !p.Purchasable() {
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "out_of_stock",
			Message: "Produto fora de estoque",
		})
	}

	h.cart.AddItem(c.UserContext(), domain.Snapshot{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
	})
	return h.ShowCart(c)
}

// UpdateCartItem sets a line quantity directly.
func (h *Handlers) UpdateCartItem(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "ID de produto inválido")
	}

	var req QuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Corpo da requisição inválido")
	}

	if err := h.cart.UpdateQuantity(c.UserContext(), id, req.Quantity); err != nil {
		return cartError(c, err)
	}
	return h.ShowCart(c)
}

// IncrementCartItem raises a line quantity by one.
func (h *Handlers) IncrementCartItem(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "ID de produto inválido")
	}
	if err := h.cart.Increment(c.UserContext(), id); err != nil {
		return cartError(c, err)
	}
	return h.ShowCart(c)
}

// DecrementCartItem lowers a line quantity by one, never below one.
func (h *Handlers) DecrementCartItem(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "ID de produto inválido")
	}
	if err := h.cart.Decrement(c.UserContext(), id); err != nil {
		return cartError(c, err)
	}
	return h.ShowCart(c)
}

// RemoveCartItem drops a line from the cart.
func (h *Handlers) RemoveCartItem(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "ID de produto inválido")
	}
	h.cart.RemoveItem(c.UserContext(), id)
	return h.ShowCart(c)
}

// ClearCart empties the cart.
func (h *Handlers) ClearCart(c *fiber.Ctx) error {
	h.cart.Clear(c.UserContext())
	return h.ShowCart(c)
}

// Checkout simulates the checkout redirect. No order is placed and the
// cart is left untouched.
func (h *Handlers) Checkout(c *fiber.Ctx) error {
	if h.cart.ItemCount() == 0 {
		return badRequest(c, "Carrinho vazio")
	}
	return c.JSON(CheckoutResponse{
		Message:  "Redirecionando para o pagamento...",
		Redirect: "/checkout/payment",
	})
}

// Login authenticates a customer session.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Corpo da requisição inválido")
	}

	if err := h.sessions.Login(c.UserContext(), req.Email, req.Password); err != nil {
		return authError(c, err)
	}
	return h.Me(c)
}

// AdminLogin authenticates an admin session, rejecting non-admin
// accounts.
func (h *Handlers) AdminLogin(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Corpo da requisição inválido")
	}

	if err := h.sessions.LoginAdmin(c.UserContext(), req.Email, req.Password); err != nil {
		if errors.Is(err, session.ErrNotAdmin) {
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
				Error:   "forbidden",
				Message: "Acesso negado. Esta conta não possui privilégios de administrador.",
			})
		}
		return authError(c, err)
	}
	return h.Me(c)
}

// Register creates an account without signing in.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Corpo da requisição inválido")
	}

	if err := h.sessions.Register(c.UserContext(), req.Name, req.Email, req.Password); err != nil {
		return authError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Conta criada com sucesso! Faça login para continuar.",
	})
}

// Logout drops the session.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	h.sessions.Logout(c.UserContext())
	return c.JSON(fiber.Map{"message": "Sessão encerrada"})
}

// Me serves the current session.
func (h *Handlers) Me(c *fiber.Ctx) error {
	u := h.sessions.CurrentUser()
	if u == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Nenhuma sessão ativa",
		})
	}
	return c.JSON(SessionResponse{User: *u, IsAdmin: h.sessions.IsAdmin()})
}

// CreateProduct adds a catalog product through the admin panel.
func (h *Handlers) CreateProduct(c *fiber.Ctx) error {
	var draft product.Draft
	if err := c.BodyParser(&draft); err != nil {
		return badRequest(c, "Corpo da requisição inválido")
	}

	created, err := h.catalog.Create(c.UserContext(), draft)
	if err != nil {
		return catalogError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateProduct applies a partial product update through the admin panel.
func (h *Handlers) UpdateProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "ID de produto inválido")
	}

	var patch product.Patch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, "Corpo da requisição inválido")
	}

	updated, err := h.catalog.Update(c.UserContext(), id, patch)
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(updated)
}

// DeleteProduct removes a catalog product through the admin panel.
func (h *Handlers) DeleteProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "ID de produto inválido")
	}

	if err := h.catalog.Delete(c.UserContext(), id); err != nil {
		return catalogError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpdateStock replaces a product's stock quantity through the admin
// panel.
func (h *Handlers) UpdateStock(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "ID de produto inválido")
	}
	quantity := c.QueryInt("quantity", -1)
	if quantity < 0 {
		return badRequest(c, "Quantidade inválida")
	}

	updated, err := h.catalog.UpdateStock(c.UserContext(), id, quantity)
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(updated)
}

// Notifications serves the recent toast feed.
func (h *Handlers) Notifications(c *fiber.Ctx) error {
	return c.JSON(NotificationsResponse{Notifications: h.notifier.Recent()})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

func cartError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		return badRequest(c, "Quantidade deve ser no mínimo 1")
	case errors.Is(err, cart.ErrLineNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Item não está no carrinho",
		})
	default:
		return err
	}
}

func catalogError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, catalog.ErrPermissionDenied):
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
			Error:   "forbidden",
			Message: "Acesso negado. Esta conta não possui privilégios de administrador.",
		})
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, backend.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Produto não encontrado",
		})
	default:
		return backendError(c, err)
	}
}

func authError(c *fiber.Ctx, err error) error {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return c.Status(apiErr.Status).JSON(ErrorResponse{
			Error:   "auth_failed",
			Message: apiErr.Message,
		})
	}
	if errors.Is(err, session.ErrLoginInFlight) {
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: "Autenticação já em andamento",
		})
	}
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error:   "auth_failed",
		Message: "Credenciais inválidas",
	})
}

func backendError(c *fiber.Ctx, err error) error {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return c.Status(apiErr.Status).JSON(ErrorResponse{
			Error:   "backend_error",
			Message: apiErr.Message,
		})
	}
	return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
		Error:   "backend_unavailable",
		Message: "Erro ao conectar com o servidor",
	})
}
