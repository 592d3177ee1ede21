package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablehost/restaurantapi/internal/db/bunx"
	"github.com/tablehost/restaurantapi/internal/db/models"
)

func TestBunOrderRepository(t *testing.T) {
	repo := NewBunOrderRepository(setupTestDB(t))
	ctx := context.Background()

	alice := bunx.NewObjectID()
	bob := bunx.NewObjectID()

	o1 := &models.Order{ID: bunx.NewObjectID(), UserID: alice, Requests: models.OrderRequest{ItemName: "burger", Amount: 2}}
	o2 := &models.Order{ID: bunx.NewObjectID(), UserID: alice, Requests: models.OrderRequest{ItemName: "fries", Amount: 1}}
	o3 := &models.Order{ID: bunx.NewObjectID(), UserID: bob, Requests: models.OrderRequest{ItemName: "soda", Amount: 3}}
	for _, o := range []*models.Order{o1, o2, o3} {
		require.NoError(t, repo.Create(ctx, o))
	}

	t.Run("owner lookup", func(t *testing.T) {
		owner, err := repo.OwnerOf(ctx, o3.ID)
		require.NoError(t, err)
		assert.Equal(t, bob, owner)

		_, err = repo.OwnerOf(ctx, bunx.NewObjectID())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list by user", func(t *testing.T) {
		orders, err := repo.ListByUser(ctx, alice)
		require.NoError(t, err)
		assert.Len(t, orders, 2)

		none, err := repo.ListByUser(ctx, bunx.NewObjectID())
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("embedded request round trip", func(t *testing.T) {
		got, err := repo.GetByID(ctx, o1.ID)
		require.NoError(t, err)
		assert.Equal(t, "burger", got.Requests.ItemName)
		assert.Equal(t, 2, got.Requests.Amount)
		assert.False(t, got.Sold)
	})

	t.Run("update", func(t *testing.T) {
		got, err := repo.Update(ctx, o1.ID, Fields{"itemName": "cheeseburger", "amount": 4, "sold": true})
		require.NoError(t, err)
		assert.Equal(t, "cheeseburger", got.Requests.ItemName)
		assert.Equal(t, 4, got.Requests.Amount)
		assert.True(t, got.Sold)
		assert.Equal(t, alice, got.UserID)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, o2.ID))
		_, err := repo.GetByID(ctx, o2.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list all", func(t *testing.T) {
		orders, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, orders, 2)
	})
}
