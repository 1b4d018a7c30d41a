package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/room-booking-backend/internal/db"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/softdelete"
)

const bookingsTable = "public.bookings"

// errStatusChanged is returned by Update when the booking left pending between read and write.
var errStatusChanged = errors.New("booking is no longer pending")

type Repository interface {
	ApprovedFinder

	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	History(ctx context.Context, filter HistoryFilter) ([]*Booking, int, error)

	// ScanForRoom calls fn for each live booking of the room in query order until fn returns false.
	ScanForRoom(ctx context.Context, roomID string, q RoomQuery, fn func(*Booking) bool) error

	// Update writes the editable fields, but only while the stored booking is still pending.
	// It refreshes UpdatedAt and RoomName on b.
	Update(ctx context.Context, booking *Booking) error
	// UpdateStatus writes status and rejection reason of a live booking.
	UpdateStatus(ctx context.Context, booking *Booking) error
	SoftDelete(ctx context.Context, id string) error

	// GetByIDForUpdate reads a live booking and locks its row until the transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*Booking, error)
	// LockRoom locks the live room row, serializing approvals for that room.
	LockRoom(ctx context.Context, roomID string) error

	// WithTx runs fn with a repository bound to a single transaction.
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
	q    db.Querier
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool, q: pool}
}

var bookingColumns = []string{
	"b.id", "b.room_id", "COALESCE(r.name, '')",
	"b.requester_name", "b.requester_email", "b.requester_phone", "b.purpose",
	"b.start_time", "b.end_time", "b.status", "b.rejection_reason",
	"b.created_at", "b.updated_at", "b.deleted_at",
}

func selectBookings(extra ...string) squirrel.SelectBuilder {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return psql.Select(append(bookingColumns, extra...)...).
		From(bookingsTable + " b").
		LeftJoin("public.rooms r ON r.id = b.room_id").
		Where(softdelete.Live("b"))
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	dest := []any{
		&b.ID, &b.RoomID, &b.RoomName,
		&b.Requester.Name, &b.Requester.Email, &b.Requester.Phone, &b.Purpose,
		&b.StartTime, &b.EndTime, &b.Status, &b.RejectionReason,
		&b.CreatedAt, &b.UpdatedAt, &b.DeletedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert(bookingsTable).
		Columns("room_id", "requester_name", "requester_email", "requester_phone",
			"purpose", "start_time", "end_time", "status").
		Values(b.RoomID, b.Requester.Name, b.Requester.Email, b.Requester.Phone,
			b.Purpose, b.StartTime, b.EndTime, b.Status).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := r.q.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt); err != nil {
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	return r.getByID(ctx, id, "")
}

func (r *pgxRepository) GetByIDForUpdate(ctx context.Context, id string) (*Booking, error) {
	return r.getByID(ctx, id, "FOR UPDATE OF b")
}

func (r *pgxRepository) getByID(ctx context.Context, id, suffix string) (*Booking, error) {
	builder := selectBookings().Where(squirrel.Eq{"b.id": id})
	if suffix != "" {
		builder = builder.Suffix(suffix)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) LockRoom(ctx context.Context, roomID string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id").
		From("public.rooms").
		Where(squirrel.Eq{"id": roomID}).
		Where(softdelete.Live("")).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("build lock room query failed: %w", err)
	}

	var id string
	if err := r.q.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRoomNotFound
		}
		return fmt.Errorf("lock room failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return r.listPage(ctx, listQuery(filter), "list bookings")
}

// listQuery builds the admin listing: search over requester, purpose and room name, newest first.
func listQuery(filter Filter) squirrel.SelectBuilder {
	query := selectBookings("count(*) OVER() AS total_count")

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"b.requester_name": pattern},
			squirrel.ILike{"b.requester_email": pattern},
			squirrel.ILike{"b.purpose": pattern},
			squirrel.ILike{"r.name": pattern},
		})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}
	if filter.RoomID != "" {
		query = query.Where(squirrel.Eq{"b.room_id": filter.RoomID})
	}

	return paginate(query.OrderBy("b.created_at DESC"), filter.Page, filter.PageSize)
}

func (r *pgxRepository) History(ctx context.Context, filter HistoryFilter) ([]*Booking, int, error) {
	return r.listPage(ctx, historyQuery(filter), "list booking history")
}

// historyQuery orders by start time, latest first. Email and room are optional filters.
func historyQuery(filter HistoryFilter) squirrel.SelectBuilder {
	query := selectBookings("count(*) OVER() AS total_count")

	if filter.Email != "" {
		query = query.Where("lower(b.requester_email) = lower(?)", filter.Email)
	}
	if filter.RoomID != "" {
		query = query.Where(squirrel.Eq{"b.room_id": filter.RoomID})
	}

	return paginate(query.OrderBy("b.start_time DESC"), filter.Page, filter.PageSize)
}

func paginate(query squirrel.SelectBuilder, page, pageSize int) squirrel.SelectBuilder {
	p := request.ListParams{Page: page, PageSize: pageSize}
	p.Normalize()
	return query.Limit(uint64(p.PageSize)).Offset(uint64(p.Offset()))
}

func (r *pgxRepository) listPage(ctx context.Context, query squirrel.SelectBuilder, op string) ([]*Booking, int, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build %s query failed: %w", op, err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s failed: %w", op, err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int

	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s failed: %w", op, err)
	}

	return bookings, total, nil
}

func roomQuery(roomID string, q RoomQuery) squirrel.SelectBuilder {
	query := selectBookings().Where(squirrel.Eq{"b.room_id": roomID})

	if q.Window != nil {
		// Half-open overlap: existing.start < window.end AND window.start < existing.end
		query = query.
			Where(squirrel.Lt{"b.start_time": q.Window.End}).
			Where(squirrel.Gt{"b.end_time": q.Window.Start})
	}
	if q.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": q.Status})
	}

	switch q.Order {
	case OrderByCreatedDesc:
		return query.OrderBy("b.created_at DESC", "b.id")
	default:
		return query.OrderBy("b.start_time ASC", "b.id")
	}
}

func (r *pgxRepository) ScanForRoom(ctx context.Context, roomID string, q RoomQuery, fn func(*Booking) bool) error {
	sql, args, err := roomQuery(roomID, q).ToSql()
	if err != nil {
		return fmt.Errorf("build room bookings query failed: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("list room bookings failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return fmt.Errorf("scan booking failed: %w", err)
		}
		if !fn(b) {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("list room bookings failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) ApprovedInWindow(ctx context.Context, roomID string, window Interval) ([]*Booking, error) {
	var out []*Booking
	err := r.ScanForRoom(ctx, roomID, RoomQuery{Window: &window, Status: StatusApproved}, func(b *Booking) bool {
		out = append(out, b)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *pgxRepository) Update(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update(bookingsTable).
		Set("room_id", b.RoomID).
		Set("requester_name", b.Requester.Name).
		Set("requester_email", b.Requester.Email).
		Set("requester_phone", b.Requester.Phone).
		Set("purpose", b.Purpose).
		Set("start_time", b.StartTime).
		Set("end_time", b.EndTime).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID, "status": StatusPending}).
		Where(softdelete.Live("")).
		Suffix("RETURNING updated_at, COALESCE((SELECT r.name FROM public.rooms r WHERE r.id = bookings.room_id), '')").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	if err := r.q.QueryRow(ctx, query, args...).Scan(&b.UpdatedAt, &b.RoomName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errStatusChanged
		}
		return fmt.Errorf("update booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update(bookingsTable).
		Set("status", b.Status).
		Set("rejection_reason", b.RejectionReason).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		Where(softdelete.Live("")).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking status query failed: %w", err)
	}

	if err := r.q.QueryRow(ctx, query, args...).Scan(&b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ExclusionViolation {
			return ErrSlotTaken.WithCause(err)
		}
		return fmt.Errorf("update booking status failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) SoftDelete(ctx context.Context, id string) error {
	ok, err := softdelete.Retire(ctx, r.q, bookingsTable, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) WithTx(ctx context.Context, fn func(tx Repository) error) error {
	if r.pool == nil {
		// Already bound to a transaction.
		return fn(r)
	}
	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&pgxRepository{q: tx})
	})
}
