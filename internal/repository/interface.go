package repository

import (
	"context"

	"github.com/tablehost/restaurantapi/internal/db/models"
)

// Fields is a partial update keyed by JSON field name (for example "displayName").
// Keys a repository does not recognize are ignored.
type Fields map[string]any

// OperatorFilter narrows operator listings. Zero OpLevel means any level.
type OperatorFilter struct {
	OpLevel int
}

// OperatorRepository exposes persistence operations for operators.
type OperatorRepository interface {
	Create(ctx context.Context, op *models.Operator) error
	GetByID(ctx context.Context, id string) (*models.Operator, error)
	GetByEmail(ctx context.Context, email string) (*models.Operator, error)
	List(ctx context.Context, filter OperatorFilter) ([]models.Operator, error)
	// Update applies fields and returns the post-update document.
	Update(ctx context.Context, id string, fields Fields) (*models.Operator, error)
	Delete(ctx context.Context, id string) error
}

// CustomerRepository exposes persistence operations for customers.
type CustomerRepository interface {
	Create(ctx context.Context, cx *models.Customer) error
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
	List(ctx context.Context) ([]models.Customer, error)
	Update(ctx context.Context, id string, fields Fields) (*models.Customer, error)
	Delete(ctx context.Context, id string) error
}

// InventoryRepository exposes persistence operations for inventory items.
type InventoryRepository interface {
	Create(ctx context.Context, item *models.InventoryItem) error
	GetByID(ctx context.Context, id string) (*models.InventoryItem, error)
	List(ctx context.Context) ([]models.InventoryItem, error)
	Update(ctx context.Context, id string, fields Fields) (*models.InventoryItem, error)
	Delete(ctx context.Context, id string) error
}

// OrderRepository exposes persistence operations for orders.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	Update(ctx context.Context, id string, fields Fields) (*models.Order, error)
	Delete(ctx context.Context, id string) error
	// OwnerOf returns the user_id of the order, or ErrNotFound.
	OwnerOf(ctx context.Context, id string) (string, error)
}

// SessionRepository stores login sessions keyed by token hash.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)
	// DeleteByTokenHash is idempotent.
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
}
