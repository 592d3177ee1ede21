package iam

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablehost/restaurantapi/internal/auth"
	"github.com/tablehost/restaurantapi/internal/db/models"
	"github.com/tablehost/restaurantapi/internal/domain"
	"github.com/tablehost/restaurantapi/internal/repository"
)

// mockOperatorRepository for testing
type mockOperatorRepository struct {
	mu        sync.Mutex
	byEmail   map[string]*models.Operator
	createErr error
	getErr    error
	// raceWinner is inserted by Create right before reporting a duplicate key.
	raceWinner *models.Operator
}

func newMockOperatorRepository() *mockOperatorRepository {
	return &mockOperatorRepository{byEmail: map[string]*models.Operator{}}
}

func (m *mockOperatorRepository) Create(ctx context.Context, op *models.Operator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.raceWinner != nil {
		m.byEmail[m.raceWinner.Email] = m.raceWinner
		return repository.ErrDuplicateKey
	}
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.byEmail[op.Email]; ok {
		return repository.ErrDuplicateKey
	}
	m.byEmail[op.Email] = op
	return nil
}

func (m *mockOperatorRepository) GetByID(ctx context.Context, id string) (*models.Operator, error) {
	return nil, repository.ErrNotFound
}

func (m *mockOperatorRepository) GetByEmail(ctx context.Context, email string) (*models.Operator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if op, ok := m.byEmail[email]; ok {
		return op, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockOperatorRepository) List(ctx context.Context, filter repository.OperatorFilter) ([]models.Operator, error) {
	return nil, nil
}

func (m *mockOperatorRepository) Update(ctx context.Context, id string, fields repository.Fields) (*models.Operator, error) {
	return nil, repository.ErrNotFound
}

func (m *mockOperatorRepository) Delete(ctx context.Context, id string) error {
	return repository.ErrNotFound
}

// mockCustomerRepository for testing
type mockCustomerRepository struct {
	byEmail map[string]*models.Customer
	creates int
}

func newMockCustomerRepository() *mockCustomerRepository {
	return &mockCustomerRepository{byEmail: map[string]*models.Customer{}}
}

func (m *mockCustomerRepository) Create(ctx context.Context, cx *models.Customer) error {
	if _, ok := m.byEmail[cx.Email]; ok {
		return repository.ErrDuplicateKey
	}
	m.creates++
	m.byEmail[cx.Email] = cx
	return nil
}

func (m *mockCustomerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	return nil, repository.ErrNotFound
}

func (m *mockCustomerRepository) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	if cx, ok := m.byEmail[email]; ok {
		return cx, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockCustomerRepository) List(ctx context.Context) ([]models.Customer, error) {
	return nil, nil
}

func (m *mockCustomerRepository) Update(ctx context.Context, id string, fields repository.Fields) (*models.Customer, error) {
	return nil, repository.ErrNotFound
}

func (m *mockCustomerRepository) Delete(ctx context.Context, id string) error {
	return repository.ErrNotFound
}

// mockSessionRepository for testing
type mockSessionRepository struct {
	sessions map[string]*models.Session // tokenHash → session
	getErr   error
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{sessions: map[string]*models.Session{}}
}

func (m *mockSessionRepository) Create(ctx context.Context, session *models.Session) error {
	m.sessions[session.TokenHash] = session
	return nil
}

func (m *mockSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if s, ok := m.sessions[tokenHash]; ok {
		return s, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockSessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	delete(m.sessions, tokenHash)
	return nil
}

type fixture struct {
	svc       Service
	operators *mockOperatorRepository
	customers *mockCustomerRepository
	sessions  *mockSessionRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		operators: newMockOperatorRepository(),
		customers: newMockCustomerRepository(),
		sessions:  newMockSessionRepository(),
	}
	svc, err := NewService(Dependencies{
		Operators: f.operators,
		Customers: f.customers,
		Sessions:  f.sessions,
		Now:       func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

var grace = auth.ExternalIdentity{
	Email:       "Grace@Example.com ",
	DisplayName: "Grace Hopper",
	GivenName:   "Grace",
	FamilyName:  "Hopper",
	PictureURL:  "https://example.com/grace.png",
}

func TestEstablish_FirstCustomerLoginCreatesCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Establish(ctx, grace, auth.ClassCustomer)
	require.NoError(t, err)

	assert.Equal(t, auth.ClassCustomer, p.Class)
	assert.Zero(t, p.OpLevel, "customers carry no op level")
	assert.Len(t, p.ID, 24)
	assert.Equal(t, "grace@example.com", p.Email)

	stored := f.customers.byEmail["grace@example.com"]
	require.NotNil(t, stored)
	assert.Equal(t, "grace hopper", stored.DisplayName)
	assert.Equal(t, "grace", stored.FirstName)
	assert.Equal(t, "hopper", stored.LastName)
	assert.Equal(t, "https://example.com/grace.png", stored.ProfilePicURI)
	assert.False(t, stored.CreationDate.IsZero())
}

func TestEstablish_SameEmailTwiceReturnsSamePrincipal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Establish(ctx, grace, auth.ClassCustomer)
	require.NoError(t, err)
	second, err := f.svc.Establish(ctx, grace, auth.ClassCustomer)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.customers.creates)
}

func TestEstablish_OperatorSignupIsManager(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Establish(context.Background(), grace, auth.ClassOperator)
	require.NoError(t, err)

	assert.Equal(t, auth.ClassOperator, p.Class)
	assert.Equal(t, auth.LevelManager, p.OpLevel)
	stored := f.operators.byEmail["grace@example.com"]
	require.NotNil(t, stored)
	assert.True(t, stored.IsAdmin)
}

func TestEstablish_ExistingOperatorKeepsLevel(t *testing.T) {
	f := newFixture(t)
	f.operators.byEmail["grace@example.com"] = &models.Operator{
		ID:          "0123456789abcdef01234567",
		DisplayName: "grace",
		Email:       "grace@example.com",
		OpLevel:     auth.LevelAdmin,
	}

	p, err := f.svc.Establish(context.Background(), grace, auth.ClassOperator)
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef01234567", p.ID)
	assert.Equal(t, auth.LevelAdmin, p.OpLevel)
}

func TestEstablish_DuplicateInsertReturnsWinner(t *testing.T) {
	f := newFixture(t)
	f.operators.raceWinner = &models.Operator{
		ID:      "fedcba9876543210fedcba98",
		Email:   "grace@example.com",
		OpLevel: auth.LevelManager,
	}

	p, err := f.svc.Establish(context.Background(), grace, auth.ClassOperator)
	require.NoError(t, err)
	assert.Equal(t, "fedcba9876543210fedcba98", p.ID)
}

func TestEstablish_Errors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(f *fixture)
		identity auth.ExternalIdentity
		class    auth.PrincipalClass
		check    func(t *testing.T, err error)
	}{
		{
			name:     "missing email",
			identity: auth.ExternalIdentity{DisplayName: "nobody"},
			class:    auth.ClassCustomer,
			check: func(t *testing.T, err error) {
				var bad *domain.BadRequestError
				assert.True(t, errors.As(err, &bad))
			},
		},
		{
			name:     "unknown class",
			identity: grace,
			class:    auth.PrincipalClass("waiter"),
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "unknown principal class")
			},
		},
		{
			name:     "lookup failure",
			setup:    func(f *fixture) { f.operators.getErr = errors.New("connection reset") },
			identity: grace,
			class:    auth.ClassOperator,
			check: func(t *testing.T, err error) {
				var up *domain.UpstreamError
				require.True(t, errors.As(err, &up))
				assert.Equal(t, "find operator", up.Op)
			},
		},
		{
			name:     "insert failure",
			setup:    func(f *fixture) { f.operators.createErr = errors.New("disk full") },
			identity: grace,
			class:    auth.ClassOperator,
			check: func(t *testing.T, err error) {
				var up *domain.UpstreamError
				require.True(t, errors.As(err, &up))
				assert.Equal(t, "create operator", up.Op)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}
			p, err := f.svc.Establish(context.Background(), tt.identity, tt.class)
			require.Error(t, err)
			assert.True(t, p.IsAnonymous())
			tt.check(t, err)
		})
	}
}

func TestEstablish_FirstNameFallsBackToDisplayName(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Establish(context.Background(), auth.ExternalIdentity{
		Email:       "linus@example.com",
		DisplayName: "Linus Torvalds",
	}, auth.ClassCustomer)
	require.NoError(t, err)
	assert.Equal(t, "linus", f.customers.byEmail["linus@example.com"].FirstName)
}

func TestSessions_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Establish(ctx, grace, auth.ClassOperator)
	require.NoError(t, err)

	token, err := f.svc.CreateSession(ctx, p)
	require.NoError(t, err)
	assert.Len(t, token, 64)

	stored, ok := f.sessions.sessions[auth.HashSessionToken(token)]
	require.True(t, ok, "sessions are stored by token hash")
	assert.NotContains(t, stored.Principal, token)

	resolved, err := f.svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, p, resolved)

	require.NoError(t, f.svc.DestroySession(ctx, token))
	resolved, err = f.svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.True(t, resolved.IsAnonymous())

	// Destroying twice is a no-op.
	require.NoError(t, f.svc.DestroySession(ctx, token))
}

func TestResolve_ReturnsStoredPrincipalVerbatim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := auth.Principal{ID: "0123456789abcdef01234567", Class: auth.ClassOperator, OpLevel: auth.LevelAdmin, Email: "a@example.com"}
	token, err := f.svc.CreateSession(ctx, p)
	require.NoError(t, err)

	// The operator record changing or vanishing does not affect the session.
	f.operators.byEmail = map[string]*models.Operator{}

	resolved, err := f.svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, auth.LevelAdmin, resolved.OpLevel)
}

func TestResolve_AnonymousCases(t *testing.T) {
	tests := []struct {
		name  string
		token string
		setup func(f *fixture)
	}{
		{name: "empty token", token: ""},
		{name: "unknown token", token: "deadbeef"},
		{
			name:  "unreadable payload",
			token: "corrupt",
			setup: func(f *fixture) {
				f.sessions.sessions[auth.HashSessionToken("corrupt")] = &models.Session{ID: "x", Principal: "{not json"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}
			p, err := f.svc.Resolve(context.Background(), tt.token)
			require.NoError(t, err)
			assert.Equal(t, auth.Anonymous, p)
		})
	}
}

func TestResolve_StoreFailureIsUpstream(t *testing.T) {
	f := newFixture(t)
	f.sessions.getErr = errors.New("timeout")

	p, err := f.svc.Resolve(context.Background(), "sometoken")
	require.Error(t, err)
	assert.True(t, p.IsAnonymous())
	var up *domain.UpstreamError
	assert.True(t, errors.As(err, &up))
}

func TestCreateSession_RejectsInvalidPrincipals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateSession(ctx, auth.Anonymous)
	assert.Error(t, err)

	_, err = f.svc.CreateSession(ctx, auth.Principal{ID: "0123456789abcdef01234567", Class: auth.ClassOperator, OpLevel: 7})
	assert.Error(t, err)
	assert.Empty(t, f.sessions.sessions)
}

func TestNewService_RequiresRepositories(t *testing.T) {
	_, err := NewService(Dependencies{})
	assert.Error(t, err)
}
