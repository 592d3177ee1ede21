package records

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablehost/restaurantapi/internal/db/bunx"
	"github.com/tablehost/restaurantapi/internal/domain"
	"github.com/tablehost/restaurantapi/internal/migrations"
	"github.com/tablehost/restaurantapi/internal/repository"
	"github.com/tablehost/restaurantapi/internal/services/validation"
)

type services struct {
	operators *Operators
	customers *Customers
	inventory *Inventory
	orders    *Orders
}

func setup(t *testing.T) *services {
	t.Helper()
	ctx := context.Background()

	db, err := bunx.NewDB(ctx, bunx.Options{DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = migrations.Apply(ctx, db)
	require.NoError(t, err)

	v, err := validation.NewSchemaValidator(16)
	require.NoError(t, err)

	return &services{
		operators: NewOperators(repository.NewBunOperatorRepository(db), v, nil),
		customers: NewCustomers(repository.NewBunCustomerRepository(db), v, nil),
		inventory: NewInventory(repository.NewBunInventoryRepository(db), v),
		orders:    NewOrders(repository.NewBunOrderRepository(db), v),
	}
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	var sc domain.StatusCoder
	require.True(t, errors.As(err, &sc), "error %v carries no status", err)
	assert.Equal(t, status, sc.StatusCode())
}

func operatorBody(email string, level int) map[string]any {
	return map[string]any{
		"displayName": "Ada Lovelace",
		"fname":       "Ada",
		"email":       email,
		"op_lvl":      level,
	}
}

func TestOperators_CreateGetList(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	op, err := s.operators.Create(ctx, operatorBody("ada@example.com", 1))
	require.NoError(t, err)
	assert.Len(t, op.ID, 24)
	assert.True(t, op.IsAdmin)
	assert.False(t, op.CreationDate.IsZero())
	assert.Equal(t, "ada lovelace", op.DisplayName)

	got, err := s.operators.Get(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, op.Email, got.Email)

	_, err = s.operators.Create(ctx, operatorBody("bob@example.com", 2))
	require.NoError(t, err)

	admins, err := s.operators.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, op.ID, admins[0].ID)

	managers, err := s.operators.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, managers, 1)
}

func TestOperators_CreateDuplicateEmail(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	_, err := s.operators.Create(ctx, operatorBody("ada@example.com", 1))
	require.NoError(t, err)

	_, err = s.operators.Create(ctx, operatorBody("ADA@example.com", 2))
	requireStatus(t, err, 409)
}

func TestOperators_Update(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	ada, err := s.operators.Create(ctx, operatorBody("ada@example.com", 1))
	require.NoError(t, err)
	bob, err := s.operators.Create(ctx, operatorBody("bob@example.com", 2))
	require.NoError(t, err)

	t.Run("own email is not a conflict", func(t *testing.T) {
		updated, err := s.operators.Update(ctx, ada.ID, map[string]any{"email": "ada@example.com", "fname": "Augusta"})
		require.NoError(t, err)
		assert.Equal(t, "augusta", updated.FirstName)
	})

	t.Run("another operator's email conflicts", func(t *testing.T) {
		_, err := s.operators.Update(ctx, ada.ID, map[string]any{"email": bob.Email})
		requireStatus(t, err, 409)
	})

	t.Run("absent operator", func(t *testing.T) {
		_, err := s.operators.Update(ctx, "aaaaaaaaaaaaaaaaaaaaaaaa", map[string]any{"fname": "Nobody"})
		requireStatus(t, err, 404)
	})

	t.Run("invalid body", func(t *testing.T) {
		_, err := s.operators.Update(ctx, ada.ID, map[string]any{"op_lvl": 5})
		requireStatus(t, err, 422)
	})
}

func TestOperators_Delete(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	op, err := s.operators.Create(ctx, operatorBody("ada@example.com", 1))
	require.NoError(t, err)

	require.NoError(t, s.operators.Delete(ctx, op.ID))
	requireStatus(t, s.operators.Delete(ctx, op.ID), 404)

	_, err = s.operators.Get(ctx, op.ID)
	requireStatus(t, err, 404)
}

func TestCustomers_Lifecycle(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	cxs, err := s.customers.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, cxs)

	cx, err := s.customers.Create(ctx, map[string]any{
		"displayName": "Grace",
		"fname":       "Grace",
		"email":       "grace@example.com",
	})
	require.NoError(t, err)

	_, err = s.customers.Create(ctx, map[string]any{
		"displayName": "Other",
		"fname":       "Other",
		"email":       "grace@example.com",
	})
	requireStatus(t, err, 409)

	updated, err := s.customers.Update(ctx, cx.ID, map[string]any{"displayName": "Grace Hopper"})
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", updated.DisplayName)

	require.NoError(t, s.customers.Delete(ctx, cx.ID))
	_, err = s.customers.Get(ctx, cx.ID)
	requireStatus(t, err, 404)
}

func TestInventory_Lifecycle(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	item, err := s.inventory.Create(ctx, map[string]any{
		"productName": "Espresso",
		"description": "Double shot",
		"price":       3,
		"stock":       10,
	})
	require.NoError(t, err)

	updated, err := s.inventory.Update(ctx, item.ID, map[string]any{"stock": 4, "price": ""})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Stock)
	assert.Equal(t, 3, updated.Price, "empty optional fields leave the value alone")

	items, err := s.inventory.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = s.inventory.Create(ctx, map[string]any{"productName": "Free"})
	requireStatus(t, err, 422)
}

func TestOrders_Lifecycle(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	owner := "0123456789abcdef01234567"
	order, err := s.orders.Create(ctx, owner, map[string]any{"itemName": "Latte", "amount": 2})
	require.NoError(t, err)
	assert.Equal(t, owner, order.UserID)
	assert.Equal(t, "latte", order.Requests.ItemName)
	assert.Equal(t, 2, order.Requests.Amount)
	assert.False(t, order.Sold)

	byOwner, err := s.orders.ListByOwner(ctx, "0123456789ABCDEF01234567")
	require.NoError(t, err)
	assert.Len(t, byOwner, 1)

	updated, err := s.orders.Update(ctx, order.ID, map[string]any{"itemName": "Mocha", "amount": 1, "sold": true})
	require.NoError(t, err)
	assert.Equal(t, "mocha", updated.Requests.ItemName)
	assert.True(t, updated.Sold)

	gotOwner, found, err := s.orders.OrderOwner(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, owner, gotOwner)

	require.NoError(t, s.orders.Delete(ctx, order.ID))
	_, found, err = s.orders.OrderOwner(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestOrders_CreateRejectsMalformedOwner(t *testing.T) {
	s := setup(t)

	_, err := s.orders.Create(context.Background(), "ABC123", map[string]any{"itemName": "latte", "amount": 1})
	requireStatus(t, err, 400)
}
