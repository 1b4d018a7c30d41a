// Package migrations embeds the SQL schema and applies it in file order.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/nekogravitycat/room-booking-backend/internal/db"
)

//go:embed *.sql
var files embed.FS

const createVersionTable = `
	CREATE TABLE IF NOT EXISTS public.schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// Names returns the embedded migration files in the order they are applied.
func Names() ([]string, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Apply runs every migration not yet recorded in schema_migrations. Each file runs in its
// own transaction together with its version row. It returns the files applied by this call.
func Apply(ctx context.Context, conn db.TxBeginner) ([]string, error) {
	names, err := Names()
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	err = db.InTx(ctx, conn, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, createVersionTable)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	var applied []string
	for _, name := range names {
		sql, err := files.ReadFile(name)
		if err != nil {
			return applied, fmt.Errorf("read %s: %w", name, err)
		}

		ran := false
		err = db.InTx(ctx, conn, func(tx pgx.Tx) error {
			tag, err := tx.Exec(ctx,
				`INSERT INTO public.schema_migrations (version) VALUES ($1) ON CONFLICT DO NOTHING`, name)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return nil
			}
			if _, err := tx.Exec(ctx, string(sql)); err != nil {
				return err
			}
			ran = true
			return nil
		})
		if err != nil {
			return applied, fmt.Errorf("apply %s: %w", name, err)
		}
		if ran {
			applied = append(applied, name)
		}
	}

	return applied, nil
}
