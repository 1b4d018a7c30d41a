package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/room-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/softdelete"
)

const roomsTable = "public.rooms"

type Repository interface {
	Create(ctx context.Context, room *Room) error
	GetByID(ctx context.Context, id string) (*Room, error)
	// Lookup reports whether a row with id exists at all, and whether it is live.
	Lookup(ctx context.Context, id string) (exists, live bool, err error)
	List(ctx context.Context, filter Filter) ([]*Room, int, error)
	ListByStatus(ctx context.Context, status Status) ([]*Room, error)
	Update(ctx context.Context, room *Room) error
	SoftDelete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var roomColumns = []string{
	"id", "name", "location", "capacity", "description", "status",
	"created_at", "updated_at", "deleted_at",
}

func selectRooms(extra ...string) squirrel.SelectBuilder {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return psql.Select(append(roomColumns, extra...)...).
		From(roomsTable).
		Where(softdelete.Live(""))
}

func scanRoom(row pgx.Row, extra ...any) (*Room, error) {
	var r Room
	dest := []any{
		&r.ID, &r.Name, &r.Location, &r.Capacity, &r.Description, &r.Status,
		&r.CreatedAt, &r.UpdatedAt, &r.DeletedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *pgxRepository) Create(ctx context.Context, room *Room) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert(roomsTable).
		Columns("name", "location", "capacity", "description", "status").
		Values(room.Name, room.Location, room.Capacity, room.Description, room.Status).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create room query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&room.ID, &room.CreatedAt); err != nil {
		return fmt.Errorf("create room failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Room, error) {
	query, args, err := selectRooms().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get room query failed: %w", err)
	}

	room, err := scanRoom(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get room failed: %w", err)
	}
	return room, nil
}

func (r *pgxRepository) Lookup(ctx context.Context, id string) (bool, bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("deleted_at IS NULL").
		From(roomsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, false, fmt.Errorf("build lookup room query failed: %w", err)
	}

	var live bool
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&live); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("lookup room failed: %w", err)
	}
	return true, live, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Room, int, error) {
	query := selectRooms("count(*) OVER() AS total_count")

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"location": pattern},
			squirrel.ILike{"description": pattern},
		})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.MinCapacity > 0 {
		query = query.Where(squirrel.GtOrEq{"capacity": filter.MinCapacity})
	}

	page := request.ListParams{Page: filter.Page, PageSize: filter.PageSize}
	page.Normalize()
	query = query.OrderBy("name ASC").
		Limit(uint64(page.PageSize)).
		Offset(uint64(page.Offset()))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list rooms query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list rooms failed: %w", err)
	}
	defer rows.Close()

	var rooms []*Room
	var total int
	for rows.Next() {
		room, err := scanRoom(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan room failed: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list rooms failed: %w", err)
	}

	return rooms, total, nil
}

func (r *pgxRepository) ListByStatus(ctx context.Context, status Status) ([]*Room, error) {
	sql, args, err := selectRooms().
		Where(squirrel.Eq{"status": status}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list rooms by status query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list rooms by status failed: %w", err)
	}
	defer rows.Close()

	var rooms []*Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room failed: %w", err)
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (r *pgxRepository) Update(ctx context.Context, room *Room) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update(roomsTable).
		Set("name", room.Name).
		Set("location", room.Location).
		Set("capacity", room.Capacity).
		Set("description", room.Description).
		Set("status", room.Status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": room.ID}).
		Where(softdelete.Live("")).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update room query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&room.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update room failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) SoftDelete(ctx context.Context, id string) error {
	ok, err := softdelete.Retire(ctx, r.pool, roomsTable, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
