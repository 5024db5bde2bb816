package mockapi

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/example/storefront-demo/domain/product"
	"github.com/example/storefront-demo/domain/user"
)

var (
	// ErrProductNotFound is returned when a product id does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrUserNotFound is returned when no account matches the email.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering an already-used email.
	ErrEmailTaken = errors.New("email already registered")
)

// Account is the persisted user record, carrying the password hash the
// public user type must never expose.
type Account struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex"`
	Name         string
	PasswordHash string
	Role         string
}

// User strips the account down to its public shape.
func (a Account) User() user.User {
	return user.User{
		ID:    a.ID,
		Email: a.Email,
		Name:  a.Name,
		Role:  user.Role(a.Role),
	}.Normalize()
}

// Repository persists products and accounts using GORM over SQLite.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a Repository and migrates its schema.
func NewRepository(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(&product.Product{}, &Account{}); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

// SeedProducts inserts the sample catalog when the products table is
// empty. Seeding is skipped on a populated database so the demo keeps
// its edits across restarts.
func (r *Repository) SeedProducts() error {
	var count int64
	if err := r.db.Model(&product.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	products := product.SampleProducts()
	return r.db.Create(&products).Error
}

// SeedAccount creates an account with a bcrypt-hashed password unless the
// email is already registered.
func (r *Repository) SeedAccount(email, name, password string, role user.Role) error {
	var count int64
	if err := r.db.Model(&Account{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	account := Account{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         string(role),
	}
	return r.db.Create(&account).Error
}

// ListProducts returns every product ordered by id.
func (r *Repository) ListProducts() ([]product.Product, error) {
	var products []product.Product
	if err := r.db.Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListInStock returns products flagged as in stock.
func (r *Repository) ListInStock() ([]product.Product, error) {
	var products []product.Product
	if err := r.db.Where("in_stock = ?", true).Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListByCategory returns products in a category, matched case-insensitively.
func (r *Repository) ListByCategory(category string) ([]product.Product, error) {
	var products []product.Product
	err := r.db.Where("LOWER(category) = ?", strings.ToLower(category)).Order("id").Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// FindProduct returns one product by id.
func (r *Repository) FindProduct(id int) (*product.Product, error) {
	var p product.Product
	if err := r.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// SearchFilter narrows a product query. Zero values leave the dimension
// unconstrained.
type SearchFilter struct {
	Category string
	InStock  *bool
	MinPrice *float64
	MaxPrice *float64
	Name     string
}

// sortColumns whitelists the sortable columns; anything else falls back
// to id order.
var sortColumns = map[string]string{
	"id":     "id",
	"name":   "name",
	"price":  "price",
	"rating": "rating",
}

// PageProducts returns one page of products matching the filter, sorted
// by the given column and direction. page is zero-based.
func (r *Repository) PageProducts(filter SearchFilter, page, size int, sortBy, sortDir string) (*product.Page, error) {
	if size < 1 {
		size = 10
	}
	if page < 0 {
		page = 0
	}

	query := r.db.Model(&product.Product{})
	if filter.Category != "" && !strings.EqualFold(filter.Category, product.CategoryAll) {
		query = query.Where("LOWER(category) = ?", strings.ToLower(filter.Category))
	}
	if filter.InStock != nil {
		query = query.Where("in_stock = ?", *filter.InStock)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.Name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	column, ok := sortColumns[sortBy]
	if !ok {
		column = "id"
	}
	direction := "ASC"
	if strings.EqualFold(sortDir, "desc") {
		direction = "DESC"
	}

	var content []product.Product
	err := query.Order(column + " " + direction).Limit(size).Offset(page * size).Find(&content).Error
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	return &product.Page{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Size:          size,
		Number:        page,
		First:         page == 0,
		Last:          page >= totalPages-1,
	}, nil
}

// CreateProduct inserts a draft and returns it with its assigned id.
func (r *Repository) CreateProduct(draft product.Draft) (*product.Product, error) {
	p := product.Product{
		Name:          draft.Name,
		Price:         draft.Price,
		OriginalPrice: draft.OriginalPrice,
		Image:         draft.Image,
		Category:      draft.Category,
		Rating:        draft.Rating,
		InStock:       draft.InStock,
		Description:   draft.Description,
		StockQuantity: draft.StockQuantity,
	}
	if err := r.db.Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProduct replaces an existing product with the draft.
func (r *Repository) UpdateProduct(id int, draft product.Draft) (*product.Product, error) {
	existing, err := r.FindProduct(id)
	if err != nil {
		return nil, err
	}

	updated := product.Product{
		ID:            existing.ID,
		Name:          draft.Name,
		Price:         draft.Price,
		OriginalPrice: draft.OriginalPrice,
		Image:         draft.Image,
		Category:      draft.Category,
		Rating:        draft.Rating,
		InStock:       draft.InStock,
		Description:   draft.Description,
		StockQuantity: draft.StockQuantity,
	}
	if err := r.db.Save(&updated).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProduct removes a product by id.
func (r *Repository) DeleteProduct(id int) error {
	result := r.db.Delete(&product.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// UpdateStock sets a product's stock quantity and derives its in-stock
// flag from it.
func (r *Repository) UpdateStock(id, quantity int) (*product.Product, error) {
	p, err := r.FindProduct(id)
	if err != nil {
		return nil, err
	}

	p.StockQuantity = quantity
	p.InStock = quantity > 0
	if err := r.db.Save(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// FindAccount returns the account registered under an email.
func (r *Repository) FindAccount(email string) (*Account, error) {
	var account Account
	if err := r.db.First(&account, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &account, nil
}

// CreateAccount registers a new customer account.
func (r *Repository) CreateAccount(name, email, password string) (*Account, error) {
	var count int64
	if err := r.db.Model(&Account{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	account := Account{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         string(user.RoleCustomer),
	}
	if err := r.db.Create(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// VerifyPassword checks a candidate password against the account hash.
func (a Account) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}
