package mockapi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront-demo/domain/product"
	"github.com/example/storefront-demo/domain/user"
)

// errorBody is the error envelope every non-2xx response carries.
type errorBody struct {
	Error string `json:"error"`
}

// Handlers holds the route handlers for the stand-in backend.
type Handlers struct {
	repo   *Repository
	tokens *TokenIssuer
}

// NewHandlers creates the handlers.
func NewHandlers(repo *Repository, tokens *TokenIssuer) *Handlers {
	return &Handlers{repo: repo, tokens: tokens}
}

func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(errorBody{Error: message})
}

// RequireAdmin validates the bearer token and rejects non-admin roles.
func (h *Handlers) RequireAdmin(c *fiber.Ctx) error {
	header := c.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return respondError(c, fiber.StatusUnauthorized, "Token de autenticação ausente")
	}

	claims, err := h.tokens.Validate(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return respondError(c, fiber.StatusUnauthorized, "Token inválido ou expirado")
	}
	if claims.Role != string(user.RoleAdmin) {
		return respondError(c, fiber.StatusForbidden, "Acesso negado. Esta conta não possui privilégios de administrador.")
	}

	return c.Next()
}

// ListProducts serves GET /api/products.
func (h *Handlers) ListProducts(c *fiber.Ctx) error {
	products, err := h.repo.ListProducts()
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(products)
}

// ListInStock serves GET /api/products/in-stock.
func (h *Handlers) ListInStock(c *fiber.Ctx) error {
	products, err := h.repo.ListInStock()
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(products)
}

// ListByCategory serves GET /api/products/category/:name.
func (h *Handlers) ListByCategory(c *fiber.Ctx) error {
	products, err := h.repo.ListByCategory(c.Params("name"))
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(products)
}

// ListPaginated serves GET /api/products/paginated.
func (h *Handlers) ListPaginated(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "0"))
	size, _ := strconv.Atoi(c.Query("size", "10"))

	result, err := h.repo.PageProducts(SearchFilter{}, page, size, c.Query("sortBy", "id"), c.Query("sortDir", "asc"))
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(result)
}

// SearchProducts serves GET /api/products/search.
func (h *Handlers) SearchProducts(c *fiber.Ctx) error {
	filter := SearchFilter{
		Category: c.Query("category"),
		Name:     c.Query("name"),
	}
	if raw := c.Query("inStock"); raw != "" {
		inStock, err := strconv.ParseBool(raw)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "Parâmetro inStock inválido")
		}
		filter.InStock = &inStock
	}
	if raw := c.Query("minPrice"); raw != "" {
		min, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "Parâmetro minPrice inválido")
		}
		filter.MinPrice = &min
	}
	if raw := c.Query("maxPrice"); raw != "" {
		max, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "Parâmetro maxPrice inválido")
		}
		filter.MaxPrice = &max
	}

	page, _ := strconv.Atoi(c.Query("page", "0"))
	size, _ := strconv.Atoi(c.Query("size", "10"))

	result, err := h.repo.PageProducts(filter, page, size, c.Query("sortBy", "id"), c.Query("sortDir", "asc"))
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(result)
}

// GetProduct serves GET /api/products/:id.
func (h *Handlers) GetProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "ID de produto inválido")
	}

	p, err := h.repo.FindProduct(id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return respondError(c, fiber.StatusNotFound, "Produto não encontrado")
		}
		return respondError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(p)
}

// UpdateStock serves PATCH /api/products/:id/stock?quantity=.
func (h *Handlers) UpdateStock(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "ID de produto inválido")
	}
	quantity, err := strconv.Atoi(c.Query("quantity", ""))
	if err != nil || quantity < 0 {
		return respondError(c, fiber.StatusBadRequest, "Quantidade inválida")
	}

	p, err := h.repo.UpdateStock(id, quantity)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return respondError(c, fiber.StatusNotFound, "Produto não encontrado")
		}
		return respondError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(p)
}

// CreateProduct serves POST /api/admin/products.
func (h *Handlers) CreateProduct(c *fiber.Ctx) error {
	var draft product.Draft
	if err := c.BodyParser(&draft); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Corpo da requisição inválido")
	}
	if draft.Name == "" {
		return respondError(c, fiber.StatusBadRequest, "Nome do produto é obrigatório")
	}

	created, err := h.repo.CreateProduct(draft)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateProduct serves PUT /api/admin/products/:id.
func (h *Handlers) UpdateProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "ID de produto inválido")
	}

	var draft product.Draft
	if err := c.BodyParser(&draft); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Corpo da requisição inválido")
	}

	updated, err := h.repo.UpdateProduct(id, draft)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return respondError(c, fiber.StatusNotFound, "Produto não encontrado")
		}
		return respondError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(updated)
}

// DeleteProduct serves DELETE /api/admin/products/:id.
func (h *Handlers) DeleteProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "ID de produto inválido")
	}

	if err := h.repo.DeleteProduct(id); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return respondError(c, fiber.StatusNotFound, "Produto não encontrado")
		}
		return respondError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

func (h *Handlers) authenticate(c *fiber.Ctx) (*Account, error) {
	var creds credentials
	if err := c.BodyParser(&creds); err != nil {
		return nil, respondError(c, fiber.StatusBadRequest, "Corpo da requisição inválido")
	}

	account, err := h.repo.FindAccount(creds.Email)
	if err != nil || !account.VerifyPassword(creds.Password) {
		return nil, respondError(c, fiber.StatusUnauthorized, "Credenciais inválidas")
	}
	return account, nil
}

// Login serves POST /api/auth/login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	account, err := h.authenticate(c)
	if account == nil {
		return err
	}

	token, err := h.tokens.Issue(account.User())
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(authResponse{Token: token, User: account.User()})
}

// LoginAdmin serves POST /api/auth/login-admin, rejecting accounts
// without the admin role.
func (h *Handlers) LoginAdmin(c *fiber.Ctx) error {
	account, err := h.authenticate(c)
	if account == nil {
		return err
	}
	if account.Role != string(user.RoleAdmin) {
		return respondError(c, fiber.StatusForbidden, "Acesso negado. Esta conta não possui privilégios de administrador.")
	}

	token, err := h.tokens.Issue(account.User())
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(authResponse{Token: token, User: account.User()})
}

// Register serves POST /api/auth/register. The created account is
// returned without a token; logging in is a separate step.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var reg registration
	if err := c.BodyParser(&reg); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Corpo da requisição inválido")
	}
	if reg.Email == "" || reg.Password == "" {
		return respondError(c, fiber.StatusBadRequest, "Email e senha são obrigatórios")
	}

	account, err := h.repo.CreateAccount(reg.Name, reg.Email, reg.Password)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return respondError(c, fiber.StatusConflict, "Este email já está cadastrado")
		}
		return respondError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(account.User())
}
