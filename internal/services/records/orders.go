package records

import (
	"context"
	"errors"
	"strings"

	"github.com/tablehost/restaurantapi/internal/db/bunx"
	"github.com/tablehost/restaurantapi/internal/db/models"
	"github.com/tablehost/restaurantapi/internal/domain"
	"github.com/tablehost/restaurantapi/internal/repository"
	"github.com/tablehost/restaurantapi/internal/services/validation"
)

// Orders manages customer orders.
type Orders struct {
	repo      repository.OrderRepository
	validator validation.Validator
}

func NewOrders(repo repository.OrderRepository, v validation.Validator) *Orders {
	return &Orders{repo: repo, validator: v}
}

func (s *Orders) List(ctx context.Context) ([]models.Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, domain.ErrUpstream("list orders", err)
	}
	return orders, nil
}

// ListByOwner returns the orders placed by one customer.
func (s *Orders) ListByOwner(ctx context.Context, ownerID string) ([]models.Order, error) {
	orders, err := s.repo.ListByUser(ctx, strings.ToLower(ownerID))
	if err != nil {
		return nil, domain.ErrUpstream("list orders by owner", err)
	}
	return orders, nil
}

func (s *Orders) Get(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate("get order", err, "No order found with ID "+id+".")
	}
	return order, nil
}

// Create places an order for ownerID. New orders are unsold.
func (s *Orders) Create(ctx context.Context, ownerID string, body map[string]any) (*models.Order, error) {
	if !domain.IsObjectID(ownerID) {
		return nil, &domain.MalformedIdentifierError{Value: ownerID}
	}
	doc, err := s.validator.Validate(validation.KindOrder, validation.OpCreate, body)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:     bunx.NewObjectID(),
		UserID: strings.ToLower(ownerID),
	}
	if err := validation.Decode(doc, &order.Requests); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, translate("create order", err, "")
	}
	return order, nil
}

// Update replaces the requested item and amount, and optionally the sold flag.
func (s *Orders) Update(ctx context.Context, id string, body map[string]any) (*models.Order, error) {
	doc, err := s.validator.Validate(validation.KindOrder, validation.OpUpdate, body)
	if err != nil {
		return nil, err
	}
	order, err := s.repo.Update(ctx, id, repository.Fields(doc))
	if err != nil {
		return nil, translate("update order", err, nothingToUpdate(id))
	}
	return order, nil
}

func (s *Orders) Delete(ctx context.Context, id string) error {
	return translate("delete order", s.repo.Delete(ctx, id), nothingToDelete(id))
}

// OrderOwner implements policy.OwnerResolver.
func (s *Orders) OrderOwner(ctx context.Context, orderID string) (string, bool, error) {
	owner, err := s.repo.OwnerOf(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return owner, true, nil
}
