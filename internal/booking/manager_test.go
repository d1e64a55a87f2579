package booking

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubReservationStore records calls; CreateTx hands out sequential
// reservation ids.
type stubReservationStore struct {
	nextID     uint64
	createdFor []uint64

	listUserID uint64
	listLimit  int
	listOffset int
	listResult []ReservationDetail
}

func (s *stubReservationStore) CreateTx(_ context.Context, _ *sql.Tx, userID uint64) (uint64, time.Time, error) {
	s.nextID++
	s.createdFor = append(s.createdFor, userID)
	return s.nextID, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), nil
}

func (s *stubReservationStore) ListByUser(_ context.Context, userID uint64, limit, offset int) ([]ReservationDetail, error) {
	s.listUserID = userID
	s.listLimit = limit
	s.listOffset = offset
	return s.listResult, nil
}

func newManagerFixture(t *testing.T, info PerformanceInfo) (*Manager, sqlmock.Sqlmock, *stubReservationStore, *stubTicketStore) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	perfs := &stubPerformanceStore{id: info.ID, info: info}
	reservations := &stubReservationStore{}
	tickets := newStubTicketStore()
	return NewManager(db, perfs, reservations, tickets), mock, reservations, tickets
}

func TestCreateReservationEmpty(t *testing.T) {
	m, mock, _, _ := newManagerFixture(t, PerformanceInfo{ID: 1, Rows: 5, SeatsInRow: 5})

	_, err := m.CreateReservation(context.Background(), 7, nil)
	assert.ErrorIs(t, err, ErrEmptyReservation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservationSuccess(t *testing.T) {
	info := PerformanceInfo{
		ID: 1, Rows: 5, SeatsInRow: 5,
		ShowTime: time.Date(2025, 7, 4, 19, 30, 0, 0, time.UTC),
		PlayTitle: "Hamlet", HallName: "Main Stage",
	}
	m, mock, reservations, tickets := newManagerFixture(t, info)
	mock.ExpectBegin()
	mock.ExpectCommit()

	detail, err := m.CreateReservation(context.Background(), 7, []SeatRequest{
		{PerformanceID: 1, Row: 2, Seat: 3},
		{PerformanceID: 1, Row: 2, Seat: 4},
	})
	require.NoError(t, err)
	require.Len(t, detail.Tickets, 2)

	assert.Equal(t, []uint64{7}, reservations.createdFor)
	// ticket order follows request order
	assert.Equal(t, uint32(3), detail.Tickets[0].Seat)
	assert.Equal(t, uint32(4), detail.Tickets[1].Seat)
	assert.Equal(t, "Hamlet", detail.Tickets[0].Performance.PlayTitle)
	assert.Equal(t, "Main Stage", detail.Tickets[0].Performance.TheatreHall)
	assert.Equal(t, uint32(25), detail.Tickets[0].Performance.HallCapacity)
	assert.Equal(t, uint32(23), detail.Tickets[0].Performance.TicketsAvailable)

	taken, err := tickets.SeatTakenTx(context.Background(), nil, 1, 2, 3)
	require.NoError(t, err)
	assert.True(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservationSeatOutOfRange(t *testing.T) {
	m, mock, reservations, tickets := newManagerFixture(t, PerformanceInfo{ID: 1, Rows: 3, SeatsInRow: 3})
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := m.CreateReservation(context.Background(), 7, []SeatRequest{
		{PerformanceID: 1, Row: 1, Seat: 1},
		{PerformanceID: 1, Row: 4, Seat: 1},
	})
	assert.ErrorIs(t, err, ErrSeatOutOfRange)
	// nothing persisted, even for the valid first seat
	assert.Empty(t, reservations.createdFor)
	assert.Empty(t, tickets.taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservationSeatTaken(t *testing.T) {
	m, mock, reservations, tickets := newManagerFixture(t, PerformanceInfo{ID: 1, Rows: 3, SeatsInRow: 3})
	tickets.taken[tickets.key(1, 2, 2)] = true
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := m.CreateReservation(context.Background(), 7, []SeatRequest{
		{PerformanceID: 1, Row: 2, Seat: 2},
	})
	assert.ErrorIs(t, err, ErrSeatTaken)
	assert.Empty(t, reservations.createdFor)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservationUnknownPerformance(t *testing.T) {
	m, mock, _, _ := newManagerFixture(t, PerformanceInfo{ID: 1, Rows: 3, SeatsInRow: 3})
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := m.CreateReservation(context.Background(), 7, []SeatRequest{
		{PerformanceID: 99, Row: 1, Seat: 1},
	})
	assert.ErrorIs(t, err, ErrPerformanceNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservationDuplicateWithinRequest(t *testing.T) {
	// the pre-check passes for both, but the second insert collides the
	// same way a concurrent transaction would
	m, mock, _, _ := newManagerFixture(t, PerformanceInfo{ID: 1, Rows: 3, SeatsInRow: 3})
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := m.CreateReservation(context.Background(), 7, []SeatRequest{
		{PerformanceID: 1, Row: 1, Seat: 1},
		{PerformanceID: 1, Row: 1, Seat: 1},
	})
	assert.ErrorIs(t, err, ErrSeatTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListReservationsPagination(t *testing.T) {
	m, _, reservations, _ := newManagerFixture(t, PerformanceInfo{ID: 1, Rows: 3, SeatsInRow: 3})
	reservations.listResult = []ReservationDetail{{ID: 1}}

	cases := []struct {
		name       string
		page       int
		pageSize   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", 0, 0, DefaultPageSize, 0},
		{"explicit", 3, 10, 10, 20},
		{"capped", 1, 500, MaxPageSize, 0},
		{"negative page", -4, 2, 2, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.ListReservations(context.Background(), 7, tc.page, tc.pageSize)
			require.NoError(t, err)
			assert.Equal(t, uint64(7), reservations.listUserID)
			assert.Equal(t, tc.wantLimit, reservations.listLimit)
			assert.Equal(t, tc.wantOffset, reservations.listOffset)
		})
	}
}
