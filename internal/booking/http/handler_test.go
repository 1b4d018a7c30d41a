package http

import (
	"bytes"
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/room-booking-backend/internal/booking"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/validation"
)

const (
	bookingID = "7d0c6f0e-4a8f-4d8e-9a55-3a2f5f4d2c11"
	roomID    = "0b8a4a44-8f44-4c55-b9f3-2b9a0c6e7d21"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Create(ctx context.Context, req booking.CreateRequest) (*booking.Booking, error) {
	args := m.Called(ctx, req)
	b, _ := args.Get(0).(*booking.Booking)
	return b, args.Error(1)
}

func (m *mockService) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*booking.Booking)
	return b, args.Error(1)
}

func (m *mockService) List(ctx context.Context, filter booking.Filter) ([]*booking.Booking, int, error) {
	args := m.Called(ctx, filter)
	bs, _ := args.Get(0).([]*booking.Booking)
	return bs, args.Int(1), args.Error(2)
}

func (m *mockService) History(ctx context.Context, filter booking.HistoryFilter) ([]*booking.Booking, int, error) {
	args := m.Called(ctx, filter)
	bs, _ := args.Get(0).([]*booking.Booking)
	return bs, args.Int(1), args.Error(2)
}

func (m *mockService) ListForRoom(ctx context.Context, roomID string, q booking.RoomQuery) iter.Seq2[*booking.Booking, error] {
	args := m.Called(ctx, roomID, q)
	return args.Get(0).(iter.Seq2[*booking.Booking, error])
}

func (m *mockService) Update(ctx context.Context, id string, req booking.UpdateRequest) (*booking.Booking, error) {
	args := m.Called(ctx, id, req)
	b, _ := args.Get(0).(*booking.Booking)
	return b, args.Error(1)
}

func (m *mockService) Decide(ctx context.Context, id string, req booking.DecideRequest) (*booking.Booking, error) {
	args := m.Called(ctx, id, req)
	b, _ := args.Get(0).(*booking.Booking)
	return b, args.Error(1)
}

func (m *mockService) SoftDelete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func setupRouter(t *testing.T, svc booking.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.RegisterGin())

	r := gin.New()
	pass := func(c *gin.Context) { c.Next() }
	RegisterRoutes(r.Group("/v1"), NewHandler(svc), pass, pass)
	return r
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sampleBooking(status booking.Status) *booking.Booking {
	return &booking.Booking{
		ID:        bookingID,
		RoomID:    roomID,
		RoomName:  "Ruang Rapat 1",
		Requester: booking.Requester{Name: "Siti", Email: "siti@example.com"},
		Purpose:   "Sync",
		StartTime: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		Status:    status,
		CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateConvertsTimesToUTC(t *testing.T) {
	svc := new(mockService)
	r := setupRouter(t, svc)

	svc.On("Create", mock.Anything, mock.MatchedBy(func(req booking.CreateRequest) bool {
		return req.StartTime.Equal(time.Date(2025, 3, 10, 2, 0, 0, 0, time.UTC)) &&
			req.StartTime.Location() == time.UTC &&
			req.RoomID == roomID
	})).Return(sampleBooking(booking.StatusPending), nil)

	w := doJSON(r, http.MethodPost, "/v1/bookings", map[string]any{
		"room_id":         roomID,
		"requester_name":  "Siti",
		"requester_email": "siti@example.com",
		"purpose":         "Sync",
		"start_time":      "2025-03-10T09:00:00+07:00",
		"end_time":        "2025-03-10T12:00:00+07:00",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "Ruang Rapat 1", resp.Room.Name)
	svc.AssertExpectations(t)
}

func TestCreateRejectsInvalidBody(t *testing.T) {
	svc := new(mockService)
	r := setupRouter(t, svc)

	w := doJSON(r, http.MethodPost, "/v1/bookings", map[string]any{
		"room_id":         "not-a-uuid",
		"requester_email": "siti@example.com",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDomainErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "slot taken", err: booking.ErrSlotTaken, want: http.StatusConflict},
		{name: "invalid state", err: booking.ErrInvalidState, want: http.StatusConflict},
		{name: "missing reason", err: booking.ErrMissingReason, want: http.StatusBadRequest},
		{name: "not found", err: booking.ErrNotFound, want: http.StatusNotFound},
		{name: "room not found", err: booking.ErrRoomNotFound, want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			r := setupRouter(t, svc)
			svc.On("Decide", mock.Anything, bookingID, mock.Anything).Return(nil, tt.err)

			w := doJSON(r, http.MethodPut, "/v1/bookings/"+bookingID+"/status", map[string]any{
				"status": "approved",
			})

			assert.Equal(t, tt.want, w.Code)
			var body response.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.err.Error(), body.Error)
		})
	}
}

func TestDecideRejectsPendingAsDecision(t *testing.T) {
	svc := new(mockService)
	r := setupRouter(t, svc)

	w := doJSON(r, http.MethodPut, "/v1/bookings/"+bookingID+"/status", map[string]any{
		"status": "pending",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Decide", mock.Anything, mock.Anything, mock.Anything)
}

func TestDecidePassesReason(t *testing.T) {
	svc := new(mockService)
	r := setupRouter(t, svc)

	rejected := sampleBooking(booking.StatusRejected)
	reason := "room closed"
	rejected.RejectionReason = &reason

	svc.On("Decide", mock.Anything, bookingID, booking.DecideRequest{
		Status: booking.StatusRejected,
		Reason: reason,
	}).Return(rejected, nil)

	w := doJSON(r, http.MethodPut, "/v1/bookings/"+bookingID+"/status", map[string]any{
		"status":           "rejected",
		"rejection_reason": reason,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"rejection_reason":"room closed"`)
	svc.AssertExpectations(t)
}

func TestUpdatePassesOnlySuppliedFields(t *testing.T) {
	svc := new(mockService)
	r := setupRouter(t, svc)

	svc.On("Update", mock.Anything, bookingID, mock.MatchedBy(func(req booking.UpdateRequest) bool {
		return req.Purpose != nil && *req.Purpose == "Retro" &&
			req.StartTime == nil && req.RoomID == nil
	})).Return(sampleBooking(booking.StatusPending), nil)

	w := doJSON(r, http.MethodPatch, "/v1/bookings/"+bookingID, map[string]any{"purpose": "Retro"})

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestDelete(t *testing.T) {
	svc := new(mockService)
	r := setupRouter(t, svc)
	svc.On("SoftDelete", mock.Anything, bookingID).Return(nil).Once()
	svc.On("SoftDelete", mock.Anything, bookingID).Return(booking.ErrNotFound).Once()

	assert.Equal(t, http.StatusNoContent, doJSON(r, http.MethodDelete, "/v1/bookings/"+bookingID, nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodDelete, "/v1/bookings/"+bookingID, nil).Code)
}

func TestGetInvalidID(t *testing.T) {
	svc := new(mockService)
	r := setupRouter(t, svc)

	w := doJSON(r, http.MethodGet, "/v1/bookings/123", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListUsesDefaultPaging(t *testing.T) {
	svc := new(mockService)
	r := setupRouter(t, svc)

	svc.On("List", mock.Anything, booking.Filter{
		Status:   booking.StatusApproved,
		Page:     1,
		PageSize: 20,
	}).Return([]*booking.Booking{sampleBooking(booking.StatusApproved)}, 1, nil)

	w := doJSON(r, http.MethodGet, "/v1/bookings?status=approved", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var page response.PageResponse[BookingResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
	assert.Len(t, page.Items, 1)
}

func TestHistory(t *testing.T) {
	t.Run("email is optional", func(t *testing.T) {
		svc := new(mockService)
		r := setupRouter(t, svc)
		svc.On("History", mock.Anything, booking.HistoryFilter{Page: 1, PageSize: 20}).
			Return([]*booking.Booking{sampleBooking(booking.StatusApproved)}, 1, nil)

		w := doJSON(r, http.MethodGet, "/v1/bookings/history", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("filters by email", func(t *testing.T) {
		svc := new(mockService)
		r := setupRouter(t, svc)
		svc.On("History", mock.Anything, booking.HistoryFilter{Email: "siti@example.com", Page: 1, PageSize: 20}).
			Return([]*booking.Booking{}, 0, nil)

		w := doJSON(r, http.MethodGet, "/v1/bookings/history?email=siti@example.com", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("malformed email", func(t *testing.T) {
		svc := new(mockService)
		r := setupRouter(t, svc)

		w := doJSON(r, http.MethodGet, "/v1/bookings/history?email=not-an-email", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "History", mock.Anything, mock.Anything)
	})
}

func TestSchedule(t *testing.T) {
	svc := new(mockService)
	r := setupRouter(t, svc)

	seq := func(yield func(*booking.Booking, error) bool) {
		yield(sampleBooking(booking.StatusApproved), nil)
	}
	svc.On("ListForRoom", mock.Anything, roomID, mock.MatchedBy(func(q booking.RoomQuery) bool {
		return q.Window != nil && q.Order == booking.OrderByStart
	})).Return(iter.Seq2[*booking.Booking, error](seq))

	w := doJSON(r, http.MethodGet,
		"/v1/rooms/"+roomID+"/schedule?start=2025-03-10T00:00:00Z&end=2025-03-11T00:00:00Z", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var list response.ListResponse[BookingResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Items, 1)
}

func TestScheduleRejectsOpenWindow(t *testing.T) {
	svc := new(mockService)
	r := setupRouter(t, svc)

	w := doJSON(r, http.MethodGet, "/v1/rooms/"+roomID+"/schedule?start=2025-03-10T00:00:00Z", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
