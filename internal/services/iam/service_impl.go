package iam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/tablehost/restaurantapi/internal/auth"
	"github.com/tablehost/restaurantapi/internal/db/bunx"
	"github.com/tablehost/restaurantapi/internal/db/models"
	"github.com/tablehost/restaurantapi/internal/domain"
	"github.com/tablehost/restaurantapi/internal/logging"
	"github.com/tablehost/restaurantapi/internal/repository"
	"github.com/tablehost/restaurantapi/internal/telemetry"
)

// iamService implements the Service interface.
type iamService struct {
	operators repository.OperatorRepository
	customers repository.CustomerRepository
	sessions  repository.SessionRepository

	logger  *zap.Logger
	metrics *telemetry.AuthMetrics
	now     func() time.Time
}

// Dependencies contains all dependencies for IAM service construction.
type Dependencies struct {
	Operators repository.OperatorRepository
	Customers repository.CustomerRepository
	Sessions  repository.SessionRepository

	// Optional
	Logger  *zap.Logger
	Metrics *telemetry.AuthMetrics
	Now     func() time.Time
}

// NewService creates the IAM service.
func NewService(deps Dependencies) (Service, error) {
	if deps.Operators == nil || deps.Customers == nil {
		return nil, fmt.Errorf("iam: operator and customer repositories are required")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("iam: session repository is required")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &iamService{
		operators: deps.Operators,
		customers: deps.Customers,
		sessions:  deps.Sessions,
		logger:    logging.OrNop(deps.Logger),
		metrics:   deps.Metrics,
		now:       now,
	}, nil
}

func (s *iamService) Establish(ctx context.Context, identity auth.ExternalIdentity, class auth.PrincipalClass) (p auth.Principal, err error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.TracerIAM, "iam.Establish",
		attribute.String(telemetry.AttrPrincipalClass, string(class)),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
		s.metrics.RecordLogin(ctx, string(class), err == nil)
	}()

	email := strings.ToLower(strings.TrimSpace(identity.Email))
	if email == "" {
		return auth.Anonymous, domain.ErrBadRequest("identity provider returned no email address")
	}

	switch class {
	case auth.ClassOperator:
		p, err = s.establishOperator(ctx, identity, email)
	case auth.ClassCustomer:
		p, err = s.establishCustomer(ctx, identity, email)
	default:
		return auth.Anonymous, fmt.Errorf("iam: unknown principal class %q", class)
	}
	if err != nil {
		return auth.Anonymous, err
	}

	span.SetAttributes(attribute.String(telemetry.AttrPrincipalID, p.ID))
	return p, nil
}

func (s *iamService) establishOperator(ctx context.Context, identity auth.ExternalIdentity, email string) (auth.Principal, error) {
	existing, err := s.operators.GetByEmail(ctx, email)
	if err == nil {
		return operatorPrincipal(existing), nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return auth.Anonymous, domain.ErrUpstream("find operator", err)
	}

	op := &models.Operator{
		ID:            bunx.NewObjectID(),
		DisplayName:   displayNameOf(identity),
		FirstName:     firstNameOf(identity),
		LastName:      strings.ToLower(identity.FamilyName),
		Email:         email,
		ProfilePicURI: identity.PictureURL,
		OpLevel:       auth.LevelManager,
		IsAdmin:       true,
		CreationDate:  s.now().UTC(),
	}
	if err := s.operators.Create(ctx, op); err != nil {
		if !errors.Is(err, repository.ErrDuplicateKey) {
			return auth.Anonymous, domain.ErrUpstream("create operator", err)
		}
		// Lost a concurrent first login; the winner's record is authoritative.
		winner, rerr := s.operators.GetByEmail(ctx, email)
		if rerr != nil {
			return auth.Anonymous, domain.ErrUpstream("find operator", rerr)
		}
		return operatorPrincipal(winner), nil
	}

	s.logger.Info("operator created on first login",
		zap.String("operator_id", op.ID),
		zap.Int("op_lvl", op.OpLevel),
	)
	return operatorPrincipal(op), nil
}

func (s *iamService) establishCustomer(ctx context.Context, identity auth.ExternalIdentity, email string) (auth.Principal, error) {
	existing, err := s.customers.GetByEmail(ctx, email)
	if err == nil {
		return customerPrincipal(existing), nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return auth.Anonymous, domain.ErrUpstream("find customer", err)
	}

	cx := &models.Customer{
		ID:            bunx.NewObjectID(),
		DisplayName:   displayNameOf(identity),
		FirstName:     firstNameOf(identity),
		LastName:      strings.ToLower(identity.FamilyName),
		Email:         email,
		ProfilePicURI: identity.PictureURL,
		CreationDate:  s.now().UTC(),
	}
	if err := s.customers.Create(ctx, cx); err != nil {
		if !errors.Is(err, repository.ErrDuplicateKey) {
			return auth.Anonymous, domain.ErrUpstream("create customer", err)
		}
		winner, rerr := s.customers.GetByEmail(ctx, email)
		if rerr != nil {
			return auth.Anonymous, domain.ErrUpstream("find customer", rerr)
		}
		return customerPrincipal(winner), nil
	}

	s.logger.Info("customer created on first login", zap.String("customer_id", cx.ID))
	return customerPrincipal(cx), nil
}

func displayNameOf(identity auth.ExternalIdentity) string {
	name := identity.DisplayName
	if name == "" {
		name = strings.TrimSpace(identity.GivenName + " " + identity.FamilyName)
	}
	return strings.ToLower(name)
}

func firstNameOf(identity auth.ExternalIdentity) string {
	if identity.GivenName != "" {
		return strings.ToLower(identity.GivenName)
	}
	if fields := strings.Fields(identity.DisplayName); len(fields) > 0 {
		return strings.ToLower(fields[0])
	}
	return ""
}

func operatorPrincipal(op *models.Operator) auth.Principal {
	return auth.Principal{
		ID:          op.ID,
		Class:       auth.ClassOperator,
		OpLevel:     op.OpLevel,
		Email:       op.Email,
		DisplayName: op.DisplayName,
	}
}

func customerPrincipal(cx *models.Customer) auth.Principal {
	return auth.Principal{
		ID:          cx.ID,
		Class:       auth.ClassCustomer,
		Email:       cx.Email,
		DisplayName: cx.DisplayName,
	}
}

func (s *iamService) Resolve(ctx context.Context, token string) (auth.Principal, error) {
	if token == "" {
		return auth.Anonymous, nil
	}

	session, err := s.sessions.GetByTokenHash(ctx, auth.HashSessionToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return auth.Anonymous, nil
		}
		return auth.Anonymous, domain.ErrUpstream("resolve session", err)
	}

	var p auth.Principal
	if err := json.Unmarshal([]byte(session.Principal), &p); err != nil {
		s.logger.Warn("discarding unreadable session",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
		return auth.Anonymous, nil
	}
	return p, nil
}

// CreateSession generates a cryptographically secure token, stores its
// SHA-256 hash with the serialized principal and returns the unhashed token.
func (s *iamService) CreateSession(ctx context.Context, p auth.Principal) (token string, err error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.TracerSessions, "sessions.Create",
		attribute.String(telemetry.AttrPrincipalID, p.ID),
		attribute.String(telemetry.AttrPrincipalClass, string(p.Class)),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if p.IsAnonymous() {
		return "", fmt.Errorf("iam: cannot create a session for the anonymous principal")
	}
	if err := p.Validate(); err != nil {
		return "", fmt.Errorf("iam: %w", err)
	}

	token, tokenHash, err := auth.GenerateSessionToken()
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}

	payload, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode principal: %w", err)
	}

	now := s.now().UTC()
	session := &models.Session{
		ID:         bunx.NewObjectID(),
		TokenHash:  tokenHash,
		Principal:  string(payload),
		CreatedAt:  now,
		LastUsedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", domain.ErrUpstream("create session", err)
	}
	return token, nil
}

func (s *iamService) DestroySession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	ctx, span := telemetry.StartSpan(ctx, telemetry.TracerSessions, "sessions.Destroy")
	defer span.End()

	if err := s.sessions.DeleteByTokenHash(ctx, auth.HashSessionToken(token)); err != nil {
		telemetry.RecordError(span, err)
		return domain.ErrUpstream("destroy session", err)
	}
	return nil
}
