// Package softdelete is the one place that knows how retired rows are marked and filtered.
//
// Records are never physically removed. A row is retired once deleted_at is set, and every
// read path must combine its predicates with Live so retired rows stay invisible.
package softdelete

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
)

const column = "deleted_at"

// Marker is embedded by entities that support soft deletion.
type Marker struct {
	DeletedAt *time.Time
}

// Retired reports whether the record has been soft-deleted.
func (m Marker) Retired() bool {
	return m.DeletedAt != nil
}

// Live returns the predicate selecting rows that are not retired.
// alias is the table alias used in the query, or empty for an unqualified column.
func Live(alias string) squirrel.Sqlizer {
	return squirrel.Eq{qualified(alias): nil}
}

// Execer is satisfied by *pgxpool.Pool and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// retireQuery builds the statement that retires the live row of table with the given id.
func retireQuery(table, id string) (string, []any, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return psql.Update(table).
		Set(column, squirrel.Expr("now()")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Where(Live("")).
		ToSql()
}

// Retire stamps deleted_at on the live row of table with the given id.
// It returns false when there was no live row to retire.
func Retire(ctx context.Context, db Execer, table, id string) (bool, error) {
	query, args, err := retireQuery(table, id)
	if err != nil {
		return false, fmt.Errorf("build retire query for %s failed: %w", table, err)
	}

	ct, err := db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("retire %s row failed: %w", table, err)
	}
	return ct.RowsAffected() > 0, nil
}

func qualified(alias string) string {
	if alias == "" {
		return column
	}
	return alias + "." + column
}
