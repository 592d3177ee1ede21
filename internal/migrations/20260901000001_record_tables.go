package migrations

import (
	"context"
	"fmt"

	"github.com/tablehost/restaurantapi/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20260901000001, down_20260901000001)
}

// up_20260901000001 creates the four document collections.
func up_20260901000001(ctx context.Context, db *bun.DB) error {
	tables := []struct {
		name  string
		model any
	}{
		{"operators", (*models.Operator)(nil)},
		{"customers", (*models.Customer)(nil)},
		{"inventory", (*models.InventoryItem)(nil)},
		{"orders", (*models.Order)(nil)},
	}
	for _, tbl := range tables {
		fmt.Printf(" [up] creating %s table...", tbl.name)
		if _, err := db.NewCreateTable().Model(tbl.model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create %s table: %w", tbl.name, err)
		}
		fmt.Println(" OK")
	}

	// Owner lookups and /order/customer listings.
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id)`); err != nil {
		return fmt.Errorf("failed to create orders user_id index: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_operators_op_lvl ON operators(op_lvl)`); err != nil {
		return fmt.Errorf("failed to create operators op_lvl index: %w", err)
	}
	return nil
}

func down_20260901000001(ctx context.Context, db *bun.DB) error {
	for _, model := range []any{
		(*models.Order)(nil),
		(*models.InventoryItem)(nil),
		(*models.Customer)(nil),
		(*models.Operator)(nil),
	} {
		if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	return nil
}
