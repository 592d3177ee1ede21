package records

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/tablehost/restaurantapi/internal/db/bunx"
	"github.com/tablehost/restaurantapi/internal/db/models"
	"github.com/tablehost/restaurantapi/internal/domain"
	"github.com/tablehost/restaurantapi/internal/logging"
	"github.com/tablehost/restaurantapi/internal/repository"
	"github.com/tablehost/restaurantapi/internal/services/validation"
)

// Customers manages customer records.
type Customers struct {
	repo      repository.CustomerRepository
	validator validation.Validator
	logger    *zap.Logger
	now       func() time.Time
}

func NewCustomers(repo repository.CustomerRepository, v validation.Validator, logger *zap.Logger) *Customers {
	return &Customers{repo: repo, validator: v, logger: logging.OrNop(logger), now: time.Now}
}

func (s *Customers) List(ctx context.Context) ([]models.Customer, error) {
	cxs, err := s.repo.List(ctx)
	if err != nil {
		return nil, domain.ErrUpstream("list customers", err)
	}
	return cxs, nil
}

func (s *Customers) Get(ctx context.Context, id string) (*models.Customer, error) {
	cx, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate("get customer", err, "Customer not found by ID "+id+".")
	}
	return cx, nil
}

func (s *Customers) Create(ctx context.Context, body map[string]any) (*models.Customer, error) {
	doc, err := s.validator.Validate(validation.KindCustomer, validation.OpCreate, body)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, doc, ""); err != nil {
		return nil, err
	}

	cx := new(models.Customer)
	if err := validation.Decode(doc, cx); err != nil {
		return nil, err
	}
	cx.ID = bunx.NewObjectID()
	cx.CreationDate = s.now().UTC()

	if err := s.repo.Create(ctx, cx); err != nil {
		return nil, translate("create customer", err, "")
	}
	s.logger.Info("customer created", zap.String("customer_id", cx.ID))
	return cx, nil
}

func (s *Customers) Update(ctx context.Context, id string, body map[string]any) (*models.Customer, error) {
	doc, err := s.validator.Validate(validation.KindCustomer, validation.OpUpdate, body)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, doc, id); err != nil {
		return nil, err
	}

	cx, err := s.repo.Update(ctx, id, repository.Fields(doc))
	if err != nil {
		return nil, translate("update customer", err, nothingToUpdate(id))
	}
	return cx, nil
}

func (s *Customers) Delete(ctx context.Context, id string) error {
	return translate("delete customer", s.repo.Delete(ctx, id), nothingToDelete(id))
}

func (s *Customers) ensureEmailFree(ctx context.Context, doc map[string]any, selfID string) error {
	email, ok := doc["email"].(string)
	if !ok {
		return nil
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return domain.ErrUpstream("find customer by email", err)
	case existing.ID == selfID:
		return nil
	default:
		return domain.ErrConflict(duplicateEmailMessage)
	}
}
