package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/room-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/softdelete"
)

const usersTable = "public.users"

// Repository defines methods for accessing user data from storage.
type Repository interface {
	// GetByLogin finds a live user whose username or email equals login.
	GetByLogin(ctx context.Context, login string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, u *User) error
	UpdateLastLogin(ctx context.Context, id string, t time.Time) error
	UpdatePassword(ctx context.Context, id, hash string) error
	List(ctx context.Context, filter UserFilter) ([]*User, int, error)
	Update(ctx context.Context, u *User) error
	SoftDelete(ctx context.Context, id string) error
}

type pgxUserRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a new Repository implementation using pgxpool.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxUserRepository{
		pool: pool,
	}
}

var userColumns = []string{
	"u.id",
	"u.username",
	"u.email",
	"u.password_hash",
	"u.full_name",
	"u.role",
	"u.created_at",
	"u.updated_at",
	"u.last_login_at",
	"u.deleted_at",
}

// selectUsers is the base query of every read; it never returns retired users.
func selectUsers(extra ...string) squirrel.SelectBuilder {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return psql.Select(append(userColumns, extra...)...).
		From(usersTable + " u").
		Where(softdelete.Live("u"))
}

func scanUser(row pgx.Row, extra ...any) (*User, error) {
	var u User
	dest := []any{
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.FullName,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.LastLoginAt,
		&u.DeletedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &u, nil
}

// mapUniqueViolation turns a unique index violation into the matching domain error.
func mapUniqueViolation(err error) error {
	var e *pgconn.PgError
	if !errors.As(err, &e) || e.Code != pgerrcode.UniqueViolation {
		return nil
	}
	if strings.Contains(e.ConstraintName, "username") {
		return ErrUsernameTaken
	}
	return ErrEmailAlreadyUsed
}

func (r *pgxUserRepository) GetByLogin(ctx context.Context, login string) (*User, error) {
	query, args, err := selectUsers().
		Where("(lower(u.username) = lower(?) OR lower(u.email) = lower(?))", login, login).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByLogin query failed: %w", err)
	}

	u, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("GetByLogin query failed: %w", err)
	}
	return u, nil
}

func (r *pgxUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	query, args, err := selectUsers().Where(squirrel.Eq{"u.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query failed: %w", err)
	}

	u, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("GetByID query failed: %w", err)
	}
	return u, nil
}

func (r *pgxUserRepository) Create(ctx context.Context, u *User) error {
	const query = `
		INSERT INTO public.users (username, email, password_hash, full_name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.pool.QueryRow(
		ctx,
		query,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.FullName,
		u.Role,
	).Scan(&u.ID, &u.CreatedAt); err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("Create user failed: %w", err)
	}

	return nil
}

func (r *pgxUserRepository) UpdateLastLogin(ctx context.Context, id string, t time.Time) error {
	const query = `
		UPDATE public.users
		SET last_login_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`

	ct, err := r.pool.Exec(ctx, query, t, id)
	if err != nil {
		return fmt.Errorf("UpdateLastLogin failed: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *pgxUserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	const query = `
		UPDATE public.users
		SET password_hash = $1, updated_at = now()
		WHERE id = $2 AND deleted_at IS NULL
	`

	ct, err := r.pool.Exec(ctx, query, hash, id)
	if err != nil {
		return fmt.Errorf("UpdatePassword failed: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *pgxUserRepository) List(ctx context.Context, filter UserFilter) ([]*User, int, error) {
	query := selectUsers("count(*) OVER() AS total_count")

	// Dynamic filtering
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"u.username": pattern},
			squirrel.ILike{"u.email": pattern},
			squirrel.ILike{"u.full_name": pattern},
		})
	}
	if filter.Role != "" {
		query = query.Where(squirrel.Eq{"u.role": filter.Role})
	}

	// Pagination
	page := request.ListParams{Page: filter.Page, PageSize: filter.PageSize}
	page.Normalize()

	sql, args, err := query.OrderBy("u.created_at DESC").
		Limit(uint64(page.PageSize)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list users query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users failed: %w", err)
	}
	defer rows.Close()

	var users []*User
	var total int

	for rows.Next() {
		u, err := scanUser(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user failed: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list users failed: %w", err)
	}

	return users, total, nil
}

func (r *pgxUserRepository) Update(ctx context.Context, u *User) error {
	const query = `
		UPDATE public.users
		SET username = $1, email = $2, full_name = $3, role = $4, updated_at = now()
		WHERE id = $5 AND deleted_at IS NULL
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query, u.Username, u.Email, u.FullName, u.Role, u.ID).Scan(&u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if mapped := mapUniqueViolation(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("update user failed: %w", err)
	}

	return nil
}

func (r *pgxUserRepository) SoftDelete(ctx context.Context, id string) error {
	ok, err := softdelete.Retire(ctx, r.pool, usersTable, id)
	if err != nil {
		return fmt.Errorf("delete user failed: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
