package repository

import (
	"context"

	"github.com/tablehost/restaurantapi/internal/db/models"
	"github.com/uptrace/bun"
)

var orderColumns = map[string]string{
	"itemName": "request_item_name",
	"amount":   "request_amount",
	"sold":     "sold",
}

// BunOrderRepository implements OrderRepository using Bun ORM
type BunOrderRepository struct {
	db *bun.DB
}

// NewBunOrderRepository creates a new Bun-based order repository
func NewBunOrderRepository(db *bun.DB) *BunOrderRepository {
	return &BunOrderRepository{db: db}
}

func (r *BunOrderRepository) Create(ctx context.Context, order *models.Order) error {
	_, err := r.db.NewInsert().Model(order).Exec(ctx)
	return wrapErr("create order", err)
}

func (r *BunOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	order := new(models.Order)
	if err := r.db.NewSelect().Model(order).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, wrapErr("get order "+id, err)
	}
	return order, nil
}

func (r *BunOrderRepository) List(ctx context.Context) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	if err := r.db.NewSelect().Model(&orders).Order("id ASC").Scan(ctx); err != nil {
		return nil, wrapErr("list orders", err)
	}
	return orders, nil
}

// ListByUser returns the orders placed by one customer
func (r *BunOrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	err := r.db.NewSelect().
		Model(&orders).
		Where("user_id = ?", userID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, wrapErr("list orders by user", err)
	}
	return orders, nil
}

func (r *BunOrderRepository) Update(ctx context.Context, id string, fields Fields) (*models.Order, error) {
	if err := applyUpdate(ctx, r.db, (*models.Order)(nil), id, fields, orderColumns); err != nil {
		return nil, wrapErr("update order "+id, err)
	}
	return r.GetByID(ctx, id)
}

func (r *BunOrderRepository) Delete(ctx context.Context, id string) error {
	return wrapErr("delete order "+id, deleteByID(ctx, r.db, (*models.Order)(nil), id))
}

// OwnerOf reads only the owning customer id of an order.
func (r *BunOrderRepository) OwnerOf(ctx context.Context, id string) (string, error) {
	var userID string
	err := r.db.NewSelect().
		Model((*models.Order)(nil)).
		Column("user_id").
		Where("id = ?", id).
		Scan(ctx, &userID)
	if err != nil {
		return "", wrapErr("get order owner "+id, err)
	}
	return userID, nil
}
