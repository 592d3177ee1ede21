package policy

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablehost/restaurantapi/internal/auth"
	"github.com/tablehost/restaurantapi/internal/domain"
)

const (
	adminID    = "aaaaaaaaaaaaaaaaaaaaaaaa"
	managerID  = "bbbbbbbbbbbbbbbbbbbbbbbb"
	customerX  = "cccccccccccccccccccccccc"
	customerY  = "dddddddddddddddddddddddd"
	orderOfY   = "0123456789abcdef01234567"
	orderNoOne = "fedcba9876543210fedcba98"
)

var (
	admin    = auth.Principal{ID: adminID, Class: auth.ClassOperator, OpLevel: auth.LevelAdmin, Email: "admin@example.com"}
	manager  = auth.Principal{ID: managerID, Class: auth.ClassOperator, OpLevel: auth.LevelManager, Email: "manager@example.com"}
	custX    = auth.Principal{ID: customerX, Class: auth.ClassCustomer, Email: "x@example.com"}
	custY    = auth.Principal{ID: customerY, Class: auth.ClassCustomer, Email: "y@example.com"}
	everyone = []auth.Principal{auth.Anonymous, admin, manager, custX, custY}
)

// mockOwnerResolver is an in-memory OwnerResolver that records lookups.
type mockOwnerResolver struct {
	owners map[string]string
	err    error
	calls  []string
}

func (m *mockOwnerResolver) OrderOwner(_ context.Context, orderID string) (string, bool, error) {
	m.calls = append(m.calls, orderID)
	if m.err != nil {
		return "", false, m.err
	}
	owner, ok := m.owners[orderID]
	return owner, ok, nil
}

func newTestEngine(t *testing.T) (*Engine, *mockOwnerResolver) {
	t.Helper()
	tiers, err := auth.NewTierEnforcer()
	require.NoError(t, err)
	owners := &mockOwnerResolver{owners: map[string]string{orderOfY: customerY}}
	return NewEngine(tiers, owners, nil, nil), owners
}

func orderRequest(p auth.Principal, id string) *Request {
	return &Request{Principal: p, Resource: domain.ResourceRef{Collection: domain.CollectionOrders, ID: id}}
}

func TestRequireSession_DeniesEveryProtectedChainWithoutSession(t *testing.T) {
	e, owners := newTestEngine(t)
	ctx := context.Background()

	chains := map[string]Rule{
		"admin list":     Chain(RequireSession, e.RequireOperatorAny, e.RequireOperatorLevel1),
		"admin item":     Chain(ValidPathID, RequireSession, e.RequireOperatorAny, e.RequireOperatorLevel1),
		"user list":      Chain(RequireSession, e.RequireOperatorAny),
		"user read":      Chain(ValidPathID, RequireSession, e.RequireOperatorOrSelf),
		"user write":     Chain(ValidPathID, RequireSession, e.RequireSelfOrLevel1),
		"user create":    Chain(RequireSession, e.RequireSelfOrLevel1),
		"order by owner": Chain(ValidQueryOwnerID, RequireSession, e.RequireOperatorOrMatchingQueryOwner),
		"order item":     Chain(ValidPathID, RequireSession, e.RequireOperatorOrResourceOwner),
		"inventory edit": Chain(ValidPathID, RequireSession, e.RequireOperatorAny),
	}

	for name, chain := range chains {
		t.Run(name, func(t *testing.T) {
			req := orderRequest(auth.Anonymous, orderOfY)
			req.Query = url.Values{"user_id": {customerY}}
			d, err := e.Evaluate(ctx, req, chain)
			require.NoError(t, err)
			assert.False(t, d.Allowed)
			assert.Equal(t, ReasonNoSession, d.Reason)
			assert.Equal(t, RuleRequireSession, d.Rule)
		})
	}
	assert.Empty(t, owners.calls, "no owner lookup for anonymous requests")
}

func TestRequireOperatorLevel1(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		p    auth.Principal
		want bool
	}{
		{admin, true},
		{manager, false},
		{custX, false},
		{auth.Anonymous, false},
	}
	for _, tt := range tests {
		d, err := e.RequireOperatorLevel1(ctx, &Request{Principal: tt.p})
		require.NoError(t, err)
		assert.Equal(t, tt.want, d.Allowed, "principal %q", tt.p.ID)
		if !tt.want {
			assert.Equal(t, ReasonInsufficientLevel, d.Reason)
		}
	}
}

func TestRequireOperatorAny(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	for _, p := range everyone {
		d, err := e.RequireOperatorAny(ctx, &Request{Principal: p})
		require.NoError(t, err)
		assert.Equal(t, p.IsOperator(), d.Allowed, "principal %q", p.ID)
	}
}

func TestRequireSelfOrLevel1_Customers(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		p      auth.Principal
		pathID string
		want   bool
	}{
		{"customer on own id", custX, customerX, true},
		{"customer on own id uppercased", custX, "CCCCCCCCCCCCCCCCCCCCCCCC", true},
		{"customer on other id", custX, customerY, false},
		{"customer without path id", custX, "", false},
		{"manager on other id", manager, customerX, false},
		{"manager on own id", manager, managerID, true},
		{"admin on any id", admin, customerY, true},
		{"admin without path id", admin, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{Principal: tt.p, Resource: domain.ResourceRef{Collection: domain.CollectionCustomers, ID: tt.pathID}}
			d, err := e.RequireSelfOrLevel1(ctx, req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Allowed)
			if !tt.want {
				assert.Equal(t, ReasonInsufficientLevel, d.Reason)
			}
		})
	}
}

func TestRequireOperatorOrSelf(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	read := func(p auth.Principal, id string) bool {
		d, err := e.RequireOperatorOrSelf(ctx, &Request{Principal: p, Resource: domain.ResourceRef{ID: id}})
		require.NoError(t, err)
		return d.Allowed
	}
	assert.True(t, read(manager, customerX))
	assert.True(t, read(custX, customerX))
	assert.False(t, read(custX, customerY))
}

func TestRequireOperatorOrMatchingQueryOwner(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		p     auth.Principal
		query url.Values
		want  bool
	}{
		{"manager for anyone", manager, url.Values{"user_id": {customerY}}, true},
		{"customer for self", custX, url.Values{"user_id": {customerX}}, true},
		{"customer for self mixed case", custX, url.Values{"user_id": {"CcCcCcCcCcCcCcCcCcCcCcCc"}}, true},
		{"customer for other", custX, url.Values{"user_id": {customerY}}, false},
		{"customer without query", custX, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := e.RequireOperatorOrMatchingQueryOwner(ctx, &Request{Principal: tt.p, Query: tt.query})
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Allowed)
		})
	}
}

func TestRequireOperatorOrResourceOwner(t *testing.T) {
	ctx := context.Background()

	t.Run("owner allowed", func(t *testing.T) {
		e, owners := newTestEngine(t)
		d, err := e.RequireOperatorOrResourceOwner(ctx, orderRequest(custY, orderOfY))
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, []string{orderOfY}, owners.calls)
	})

	t.Run("non-owner customer denied although the order exists", func(t *testing.T) {
		e, _ := newTestEngine(t)
		d, err := e.RequireOperatorOrResourceOwner(ctx, orderRequest(custX, orderOfY))
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonNotOwner, d.Reason)

		var forbidden *domain.ForbiddenError
		require.ErrorAs(t, d.Err(), &forbidden)
		assert.Equal(t, "NotOwner", forbidden.Reason)
	})

	t.Run("missing order denied", func(t *testing.T) {
		e, _ := newTestEngine(t)
		d, err := e.RequireOperatorOrResourceOwner(ctx, orderRequest(custX, orderNoOne))
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonNotOwner, d.Reason)
	})

	t.Run("operators skip the lookup", func(t *testing.T) {
		e, owners := newTestEngine(t)
		for _, p := range []auth.Principal{admin, manager} {
			d, err := e.RequireOperatorOrResourceOwner(ctx, orderRequest(p, orderNoOne))
			require.NoError(t, err)
			assert.True(t, d.Allowed)
		}
		assert.Empty(t, owners.calls)
	})

	t.Run("lookup failure is an error not a deny", func(t *testing.T) {
		e, owners := newTestEngine(t)
		owners.err = errors.New("connection reset")
		_, err := e.RequireOperatorOrResourceOwner(ctx, orderRequest(custX, orderOfY))
		require.Error(t, err)

		var upstream *domain.UpstreamError
		assert.ErrorAs(t, err, &upstream)
		assert.ErrorIs(t, err, owners.err)
	})

	t.Run("malformed id never looked up", func(t *testing.T) {
		e, owners := newTestEngine(t)
		d, err := e.RequireOperatorOrResourceOwner(ctx, orderRequest(custX, "ABC123"))
		require.NoError(t, err)
		assert.Equal(t, ReasonInvalidResourceID, d.Reason)
		assert.Empty(t, owners.calls)
	})
}

func TestEvaluate_MalformedIdentifierRejectedBeforeLookup(t *testing.T) {
	e, owners := newTestEngine(t)
	ctx := context.Background()
	chain := Chain(ValidPathID, RequireSession, e.RequireOperatorOrResourceOwner)

	for _, p := range everyone {
		for _, id := range []string{"ABC123", "", "zzzzzzzzzzzzzzzzzzzzzzzz", orderOfY + "0"} {
			d, err := e.Evaluate(ctx, orderRequest(p, id), chain)
			require.NoError(t, err)
			assert.False(t, d.Allowed)
			assert.Equal(t, ReasonInvalidResourceID, d.Reason)
			assert.Equal(t, RuleValidPathID, d.Rule)

			var malformed *domain.MalformedIdentifierError
			require.ErrorAs(t, d.Err(), &malformed)
			assert.Equal(t, id, malformed.Value)
		}
	}
	assert.Empty(t, owners.calls)
}

func TestEvaluate_FirstDenyWins(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	var ran []string
	trace := func(name string, allow bool) Rule {
		return func(context.Context, *Request) (Decision, error) {
			ran = append(ran, name)
			if allow {
				return Allow(name), nil
			}
			return Deny(name, ReasonInsufficientLevel), nil
		}
	}

	d, err := e.Evaluate(ctx, &Request{}, trace("a", true), trace("b", false), trace("c", false))
	require.NoError(t, err)
	assert.Equal(t, "b", d.Rule)
	assert.Equal(t, []string{"a", "b"}, ran)

	d, err = e.Evaluate(ctx, &Request{})
	require.NoError(t, err)
	assert.True(t, d.Allowed, "empty chain allows")
}

func TestDecision_Err(t *testing.T) {
	assert.NoError(t, Allow("x").Err())

	var unauth *domain.UnauthenticatedError
	assert.ErrorAs(t, Deny(RuleRequireSession, ReasonNoSession).Err(), &unauth)

	var forbidden *domain.ForbiddenError
	require.ErrorAs(t, Deny(RuleRequireOperatorAny, ReasonInsufficientLevel).Err(), &forbidden)
	assert.Equal(t, "InsufficientLevel", forbidden.Reason)
}
