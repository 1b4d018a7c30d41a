package booking

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/nekogravitycat/room-booking-backend/internal/pkg/events"
)

type fakeRoom struct {
	name   string
	exists bool
	active bool
}

// memStore is an in-memory Repository. Row locks taken inside WithTx are held
// until the transaction function returns, like Postgres row locks.
type memStore struct {
	mu       sync.Mutex
	bookings map[string]*Booking
	rooms    map[string]fakeRoom
	locks    map[string]*sync.Mutex
	seq      int
	clock    time.Time

	// hooks for failure injection
	beforeUpdate func()
}

func newMemStore() *memStore {
	return &memStore{
		bookings: make(map[string]*Booking),
		rooms:    make(map[string]fakeRoom),
		locks:    make(map[string]*sync.Mutex),
		clock:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) addRoom(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[id] = fakeRoom{name: "Ruang " + id, exists: true, active: true}
}

func (s *memStore) retireRoom(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[id] = fakeRoom{name: "Ruang " + id, exists: true, active: false}
}

func (s *memStore) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

func (s *memStore) RoomExists(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[id].exists, nil
}

func (s *memStore) IsRoomActive(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[id].active, nil
}

func clone(b *Booking) *Booking {
	c := *b
	return &c
}

type memRepo struct {
	s    *memStore
	held *[]*sync.Mutex // non-nil inside a transaction
}

func newMemRepo(s *memStore) *memRepo {
	return &memRepo{s: s}
}

func (r *memRepo) Create(_ context.Context, b *Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.seq++
	b.ID = fmt.Sprintf("b-%03d", r.s.seq)
	b.CreatedAt = r.s.clock.Add(time.Duration(r.s.seq) * time.Second)
	b.RoomName = r.s.rooms[b.RoomID].name
	r.s.bookings[b.ID] = clone(b)
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok || b.Retired() {
		return nil, ErrNotFound
	}
	return clone(b), nil
}

func (r *memRepo) lock(key string) {
	if r.held == nil {
		return
	}
	l := r.s.lockFor(key)
	l.Lock()
	*r.held = append(*r.held, l)
}

func (r *memRepo) GetByIDForUpdate(ctx context.Context, id string) (*Booking, error) {
	r.lock("booking:" + id)
	return r.GetByID(ctx, id)
}

func (r *memRepo) LockRoom(ctx context.Context, roomID string) error {
	active, _ := r.s.IsRoomActive(ctx, roomID)
	if !active {
		return ErrRoomNotFound
	}
	r.lock("room:" + roomID)
	return nil
}

func (r *memRepo) live() []*Booking {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*Booking
	for _, b := range r.s.bookings {
		if !b.Retired() {
			out = append(out, clone(b))
		}
	}
	return out
}

func (r *memRepo) List(_ context.Context, f Filter) ([]*Booking, int, error) {
	var out []*Booking
	for _, b := range r.live() {
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.RoomID != "" && b.RoomID != f.RoomID {
			continue
		}
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b *Booking) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, len(out), nil
}

func (r *memRepo) History(_ context.Context, f HistoryFilter) ([]*Booking, int, error) {
	var out []*Booking
	for _, b := range r.live() {
		if f.Email != "" && b.Requester.Email != f.Email {
			continue
		}
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b *Booking) int { return b.StartTime.Compare(a.StartTime) })
	return out, len(out), nil
}

func (r *memRepo) ScanForRoom(_ context.Context, roomID string, q RoomQuery, fn func(*Booking) bool) error {
	var out []*Booking
	for _, b := range r.live() {
		if b.RoomID != roomID {
			continue
		}
		if q.Status != "" && b.Status != q.Status {
			continue
		}
		if q.Window != nil && !q.Window.Overlaps(b.Interval()) {
			continue
		}
		out = append(out, b)
	}
	if q.Order == OrderByCreatedDesc {
		slices.SortFunc(out, func(a, b *Booking) int { return b.CreatedAt.Compare(a.CreatedAt) })
	} else {
		slices.SortFunc(out, func(a, b *Booking) int { return a.StartTime.Compare(b.StartTime) })
	}
	for _, b := range out {
		if !fn(b) {
			return nil
		}
	}
	return nil
}

func (r *memRepo) ApprovedInWindow(ctx context.Context, roomID string, window Interval) ([]*Booking, error) {
	var out []*Booking
	err := r.ScanForRoom(ctx, roomID, RoomQuery{Window: &window, Status: StatusApproved}, func(b *Booking) bool {
		out = append(out, b)
		return true
	})
	return out, err
}

func (r *memRepo) Update(_ context.Context, b *Booking) error {
	if r.s.beforeUpdate != nil {
		r.s.beforeUpdate()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.bookings[b.ID]
	if !ok || cur.Retired() || cur.Status != StatusPending {
		return errStatusChanged
	}
	now := r.s.clock
	b.UpdatedAt = &now
	b.RoomName = r.s.rooms[b.RoomID].name
	updated := clone(b)
	updated.Status = cur.Status
	r.s.bookings[b.ID] = updated
	return nil
}

func (r *memRepo) UpdateStatus(_ context.Context, b *Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.bookings[b.ID]
	if !ok || cur.Retired() {
		return ErrNotFound
	}
	now := r.s.clock
	b.UpdatedAt = &now
	cur.Status = b.Status
	cur.RejectionReason = b.RejectionReason
	cur.UpdatedAt = &now
	return nil
}

func (r *memRepo) SoftDelete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok || b.Retired() {
		return ErrNotFound
	}
	now := r.s.clock
	b.DeletedAt = &now
	return nil
}

func (r *memRepo) WithTx(_ context.Context, fn func(tx Repository) error) error {
	if r.held != nil {
		return fn(r)
	}
	var held []*sync.Mutex
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}()
	return fn(&memRepo{s: r.s, held: &held})
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
