package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomQueryFiltersRetiredAndOverlap(t *testing.T) {
	window := Interval{Start: at(9, 0), End: at(12, 0)}

	sql, args, err := roomQuery("room-1", RoomQuery{Window: &window, Status: StatusApproved}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "b.deleted_at IS NULL")
	assert.Contains(t, sql, "b.start_time < $")
	assert.Contains(t, sql, "b.end_time > $")
	assert.Contains(t, sql, "ORDER BY b.start_time ASC")
	assert.Equal(t, []any{"room-1", window.End, window.Start, StatusApproved}, args)
}

func TestRoomQueryAdminOrder(t *testing.T) {
	sql, args, err := roomQuery("room-1", RoomQuery{Order: OrderByCreatedDesc}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "ORDER BY b.created_at DESC")
	assert.NotContains(t, sql, "b.start_time <")
	assert.Equal(t, []any{"room-1"}, args)
}

func TestPaginateDefaults(t *testing.T) {
	sql, _, err := paginate(selectBookings(), 0, 0).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "LIMIT 20 OFFSET 0")

	sql, _, err = paginate(selectBookings(), 3, 10).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "LIMIT 10 OFFSET 20")
}

func TestListQuerySearchesRoomName(t *testing.T) {
	sql, args, err := listQuery(Filter{Search: "aula", Status: StatusPending}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "LEFT JOIN public.rooms r")
	assert.Contains(t, sql, "r.name ILIKE $")
	assert.Contains(t, sql, "ORDER BY b.created_at DESC")
	assert.Equal(t, []any{"%aula%", "%aula%", "%aula%", "%aula%", StatusPending}, args)
}

func TestHistoryQueryEmailOptional(t *testing.T) {
	sql, args, err := historyQuery(HistoryFilter{}).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "requester_email")
	assert.Contains(t, sql, "ORDER BY b.start_time DESC")
	assert.Empty(t, args)

	sql, args, err = historyQuery(HistoryFilter{Email: "Siti@Example.com"}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "lower(b.requester_email) = lower($1)")
	assert.Equal(t, []any{"Siti@Example.com"}, args)
}
