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

// Operators manages admin and manager records.
type Operators struct {
	repo      repository.OperatorRepository
	validator validation.Validator
	logger    *zap.Logger
	now       func() time.Time
}

// NewOperators creates the operator service.
func NewOperators(repo repository.OperatorRepository, v validation.Validator, logger *zap.Logger) *Operators {
	return &Operators{repo: repo, validator: v, logger: logging.OrNop(logger), now: time.Now}
}

// List returns operators of one level, or all operators when opLevel is 0.
func (s *Operators) List(ctx context.Context, opLevel int) ([]models.Operator, error) {
	ops, err := s.repo.List(ctx, repository.OperatorFilter{OpLevel: opLevel})
	if err != nil {
		return nil, domain.ErrUpstream("list operators", err)
	}
	return ops, nil
}

func (s *Operators) Get(ctx context.Context, id string) (*models.Operator, error) {
	op, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate("get operator", err, nothingFound(id))
	}
	return op, nil
}

// Create validates body and inserts a new operator. Operators created here
// always carry isAdmin=true.
func (s *Operators) Create(ctx context.Context, body map[string]any) (*models.Operator, error) {
	doc, err := s.validator.Validate(validation.KindOperator, validation.OpCreate, body)
	if err != nil {
		return nil, err
	}

	if err := s.ensureEmailFree(ctx, doc, ""); err != nil {
		return nil, err
	}

	op := new(models.Operator)
	if err := validation.Decode(doc, op); err != nil {
		return nil, err
	}
	op.ID = bunx.NewObjectID()
	op.IsAdmin = true
	op.CreationDate = s.now().UTC()

	if err := s.repo.Create(ctx, op); err != nil {
		return nil, translate("create operator", err, "")
	}

	s.logger.Info("operator created", zap.String("operator_id", op.ID), zap.Int("op_lvl", op.OpLevel))
	return op, nil
}

// Update applies the validated fields of body and returns the updated record.
func (s *Operators) Update(ctx context.Context, id string, body map[string]any) (*models.Operator, error) {
	doc, err := s.validator.Validate(validation.KindOperator, validation.OpUpdate, body)
	if err != nil {
		return nil, err
	}

	if err := s.ensureEmailFree(ctx, doc, id); err != nil {
		return nil, err
	}

	op, err := s.repo.Update(ctx, id, repository.Fields(doc))
	if err != nil {
		return nil, translate("update operator", err, nothingToUpdate(id))
	}
	return op, nil
}

func (s *Operators) Delete(ctx context.Context, id string) error {
	return translate("delete operator", s.repo.Delete(ctx, id), nothingToDelete(id))
}

// ensureEmailFree reports a conflict when the email in doc belongs to an
// operator other than selfID.
func (s *Operators) ensureEmailFree(ctx context.Context, doc map[string]any, selfID string) error {
	email, ok := doc["email"].(string)
	if !ok {
		return nil
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return domain.ErrUpstream("find operator by email", err)
	case existing.ID == selfID:
		return nil
	default:
		return domain.ErrConflict(duplicateEmailMessage)
	}
}
