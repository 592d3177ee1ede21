package records

import (
	"context"

	"github.com/tablehost/restaurantapi/internal/db/bunx"
	"github.com/tablehost/restaurantapi/internal/db/models"
	"github.com/tablehost/restaurantapi/internal/domain"
	"github.com/tablehost/restaurantapi/internal/repository"
	"github.com/tablehost/restaurantapi/internal/services/validation"
)

// Inventory manages sellable items. Stock is informational only.
type Inventory struct {
	repo      repository.InventoryRepository
	validator validation.Validator
}

func NewInventory(repo repository.InventoryRepository, v validation.Validator) *Inventory {
	return &Inventory{repo: repo, validator: v}
}

func (s *Inventory) List(ctx context.Context) ([]models.InventoryItem, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, domain.ErrUpstream("list inventory", err)
	}
	return items, nil
}

func (s *Inventory) Get(ctx context.Context, id string) (*models.InventoryItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate("get inventory item", err, nothingFound(id))
	}
	return item, nil
}

func (s *Inventory) Create(ctx context.Context, body map[string]any) (*models.InventoryItem, error) {
	doc, err := s.validator.Validate(validation.KindInventory, validation.OpCreate, body)
	if err != nil {
		return nil, err
	}
	item := new(models.InventoryItem)
	if err := validation.Decode(doc, item); err != nil {
		return nil, err
	}
	item.ID = bunx.NewObjectID()

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, translate("create inventory item", err, "")
	}
	return item, nil
}

func (s *Inventory) Update(ctx context.Context, id string, body map[string]any) (*models.InventoryItem, error) {
	doc, err := s.validator.Validate(validation.KindInventory, validation.OpUpdate, body)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.Update(ctx, id, repository.Fields(doc))
	if err != nil {
		return nil, translate("update inventory item", err, nothingToUpdate(id))
	}
	return item, nil
}

func (s *Inventory) Delete(ctx context.Context, id string) error {
	return translate("delete inventory item", s.repo.Delete(ctx, id), nothingToDelete(id))
}
