package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/uptrace/bun"
)

// applyUpdate runs a single UPDATE ... SET for the recognized fields of one row.
// columns maps JSON field names to column names. Returns ErrNotFound when no row
// matched. With no recognized fields it only checks the row exists.
func applyUpdate(ctx context.Context, db bun.IDB, model any, id string, fields Fields, columns map[string]string) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if _, ok := columns[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	if len(keys) == 0 {
		exists, err := db.NewSelect().Model(model).Where("id = ?", id).Exists(ctx)
		if err != nil {
			return fmt.Errorf("check row exists: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return nil
	}

	q := db.NewUpdate().Model(model).Where("id = ?", id)
	for _, k := range keys {
		q = q.Set("? = ?", bun.Ident(columns[k]), fields[k])
	}
	result, err := q.Exec(ctx)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		}
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// deleteByID deletes one row and returns ErrNotFound when nothing was deleted.
func deleteByID(ctx context.Context, db bun.IDB, model any, id string) error {
	result, err := db.NewDelete().Model(model).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
