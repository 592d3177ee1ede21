package repository

import (
	"context"

	"github.com/tablehost/restaurantapi/internal/db/models"
	"github.com/uptrace/bun"
)

var inventoryColumns = map[string]string{
	"productName": "product_name",
	"description": "description",
	"price":       "price",
	"stock":       "stock",
}

// BunInventoryRepository implements InventoryRepository using Bun ORM
type BunInventoryRepository struct {
	db *bun.DB
}

// NewBunInventoryRepository creates a new Bun-based inventory repository
func NewBunInventoryRepository(db *bun.DB) *BunInventoryRepository {
	return &BunInventoryRepository{db: db}
}

func (r *BunInventoryRepository) Create(ctx context.Context, item *models.InventoryItem) error {
	_, err := r.db.NewInsert().Model(item).Exec(ctx)
	return wrapErr("create inventory item", err)
}

func (r *BunInventoryRepository) GetByID(ctx context.Context, id string) (*models.InventoryItem, error) {
	item := new(models.InventoryItem)
	if err := r.db.NewSelect().Model(item).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, wrapErr("get inventory item "+id, err)
	}
	return item, nil
}

func (r *BunInventoryRepository) List(ctx context.Context) ([]models.InventoryItem, error) {
	items := make([]models.InventoryItem, 0)
	if err := r.db.NewSelect().Model(&items).Order("id ASC").Scan(ctx); err != nil {
		return nil, wrapErr("list inventory", err)
	}
	return items, nil
}

func (r *BunInventoryRepository) Update(ctx context.Context, id string, fields Fields) (*models.InventoryItem, error) {
	if err := applyUpdate(ctx, r.db, (*models.InventoryItem)(nil), id, fields, inventoryColumns); err != nil {
		return nil, wrapErr("update inventory item "+id, err)
	}
	return r.GetByID(ctx, id)
}

func (r *BunInventoryRepository) Delete(ctx context.Context, id string) error {
	return wrapErr("delete inventory item "+id, deleteByID(ctx, r.db, (*models.InventoryItem)(nil), id))
}
