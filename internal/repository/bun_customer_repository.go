package repository

import (
	"context"

	"github.com/tablehost/restaurantapi/internal/db/models"
	"github.com/uptrace/bun"
)

var customerColumns = map[string]string{
	"displayName":   "display_name",
	"fname":         "fname",
	"lname":         "lname",
	"email":         "email",
	"profilePicURI": "profile_pic_uri",
}

// BunCustomerRepository implements CustomerRepository using Bun ORM
type BunCustomerRepository struct {
	db *bun.DB
}

// NewBunCustomerRepository creates a new Bun-based customer repository
func NewBunCustomerRepository(db *bun.DB) *BunCustomerRepository {
	return &BunCustomerRepository{db: db}
}

func (r *BunCustomerRepository) Create(ctx context.Context, cx *models.Customer) error {
	_, err := r.db.NewInsert().Model(cx).Exec(ctx)
	return wrapErr("create customer", err)
}

func (r *BunCustomerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	cx := new(models.Customer)
	if err := r.db.NewSelect().Model(cx).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, wrapErr("get customer "+id, err)
	}
	return cx, nil
}

func (r *BunCustomerRepository) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	cx := new(models.Customer)
	if err := r.db.NewSelect().Model(cx).Where("email = ?", email).Scan(ctx); err != nil {
		return nil, wrapErr("get customer by email", err)
	}
	return cx, nil
}

func (r *BunCustomerRepository) List(ctx context.Context) ([]models.Customer, error) {
	cxs := make([]models.Customer, 0)
	if err := r.db.NewSelect().Model(&cxs).Order("id ASC").Scan(ctx); err != nil {
		return nil, wrapErr("list customers", err)
	}
	return cxs, nil
}

func (r *BunCustomerRepository) Update(ctx context.Context, id string, fields Fields) (*models.Customer, error) {
	if err := applyUpdate(ctx, r.db, (*models.Customer)(nil), id, fields, customerColumns); err != nil {
		return nil, wrapErr("update customer "+id, err)
	}
	return r.GetByID(ctx, id)
}

func (r *BunCustomerRepository) Delete(ctx context.Context, id string) error {
	return wrapErr("delete customer "+id, deleteByID(ctx, r.db, (*models.Customer)(nil), id))
}
