package repository

import (
	"context"

	"github.com/tablehost/restaurantapi/internal/db/models"
	"github.com/uptrace/bun"
)

var operatorColumns = map[string]string{
	"displayName":   "display_name",
	"fname":         "fname",
	"lname":         "lname",
	"email":         "email",
	"profilePicURI": "profile_pic_uri",
	"op_lvl":        "op_lvl",
	"isAdmin":       "is_admin",
}

// BunOperatorRepository implements OperatorRepository using Bun ORM
type BunOperatorRepository struct {
	db *bun.DB
}

// NewBunOperatorRepository creates a new Bun-based operator repository
func NewBunOperatorRepository(db *bun.DB) *BunOperatorRepository {
	return &BunOperatorRepository{db: db}
}

// Create inserts a new operator
func (r *BunOperatorRepository) Create(ctx context.Context, op *models.Operator) error {
	_, err := r.db.NewInsert().Model(op).Exec(ctx)
	return wrapErr("create operator", err)
}

// GetByID retrieves an operator by id
func (r *BunOperatorRepository) GetByID(ctx context.Context, id string) (*models.Operator, error) {
	op := new(models.Operator)
	if err := r.db.NewSelect().Model(op).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, wrapErr("get operator "+id, err)
	}
	return op, nil
}

// GetByEmail retrieves an operator by exact email
func (r *BunOperatorRepository) GetByEmail(ctx context.Context, email string) (*models.Operator, error) {
	op := new(models.Operator)
	if err := r.db.NewSelect().Model(op).Where("email = ?", email).Scan(ctx); err != nil {
		return nil, wrapErr("get operator by email", err)
	}
	return op, nil
}

// List retrieves operators, optionally restricted to one op level
func (r *BunOperatorRepository) List(ctx context.Context, filter OperatorFilter) ([]models.Operator, error) {
	ops := make([]models.Operator, 0)
	q := r.db.NewSelect().Model(&ops).Order("id ASC")
	if filter.OpLevel != 0 {
		q = q.Where("op_lvl = ?", filter.OpLevel)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, wrapErr("list operators", err)
	}
	return ops, nil
}

// Update applies a partial update and returns the stored result
func (r *BunOperatorRepository) Update(ctx context.Context, id string, fields Fields) (*models.Operator, error) {
	if err := applyUpdate(ctx, r.db, (*models.Operator)(nil), id, fields, operatorColumns); err != nil {
		return nil, wrapErr("update operator "+id, err)
	}
	return r.GetByID(ctx, id)
}

// Delete removes an operator
func (r *BunOperatorRepository) Delete(ctx context.Context, id string) error {
	return wrapErr("delete operator "+id, deleteByID(ctx, r.db, (*models.Operator)(nil), id))
}
