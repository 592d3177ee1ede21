package migrations

import (
	"context"
	"fmt"

	"github.com/tablehost/restaurantapi/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20260901000002, down_20260901000002)
}

func up_20260901000002(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] creating sessions table...")
	if _, err := db.NewCreateTable().Model((*models.Session)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	fmt.Println(" OK")
	return nil
}

func down_20260901000002(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDropTable().Model((*models.Session)(nil)).IfExists().Exec(ctx)
	return err
}
