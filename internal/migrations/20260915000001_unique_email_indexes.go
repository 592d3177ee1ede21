package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20260915000001, down_20260915000001)
}

// up_20260915000001 makes first-login creation safe under concurrency: a second
// insert for the same email fails with a unique violation instead of producing a
// duplicate principal.
func up_20260915000001(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] adding unique email indexes...")
	for _, stmt := range []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_operators_email ON operators(email)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_email ON customers(email)`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create unique email index: %w", err)
		}
	}
	fmt.Println(" OK")
	return nil
}

func down_20260915000001(ctx context.Context, db *bun.DB) error {
	for _, stmt := range []string{
		`DROP INDEX IF EXISTS idx_operators_email`,
		`DROP INDEX IF EXISTS idx_customers_email`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
