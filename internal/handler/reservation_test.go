package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-booking/internal/booking"
	"github.com/iliyamo/theatre-booking/internal/queue"
)

// fakePerformanceStore serves one hardcoded performance.
type fakePerformanceStore struct {
	info booking.PerformanceInfo
}

func (f *fakePerformanceStore) Seating(_ context.Context, id uint64) (booking.PerformanceInfo, error) {
	if id != f.info.ID {
		return booking.PerformanceInfo{}, booking.ErrPerformanceNotFound
	}
	return f.info, nil
}

func (f *fakePerformanceStore) SeatingTx(ctx context.Context, _ *sql.Tx, id uint64) (booking.PerformanceInfo, error) {
	return f.Seating(ctx, id)
}

// fakeReservationStore returns canned data.
type fakeReservationStore struct {
	listLimit  int
	listOffset int
}

func (f *fakeReservationStore) CreateTx(_ context.Context, _ *sql.Tx, _ uint64) (uint64, time.Time, error) {
	return 1, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), nil
}

func (f *fakeReservationStore) ListByUser(_ context.Context, _ uint64, limit, offset int) ([]booking.ReservationDetail, error) {
	f.listLimit = limit
	f.listOffset = offset
	return []booking.ReservationDetail{}, nil
}

// fakeTicketStore marks one seat as taken.
type fakeTicketStore struct {
	takenRow  uint32
	takenSeat uint32
	nextID    uint64
}

func (f *fakeTicketStore) SeatTakenTx(_ context.Context, _ *sql.Tx, _ uint64, row, seat uint32) (bool, error) {
	return row == f.takenRow && seat == f.takenSeat, nil
}

func (f *fakeTicketStore) InsertTx(_ context.Context, _ *sql.Tx, _, _ uint64, _, _ uint32) (uint64, error) {
	f.nextID++
	return f.nextID, nil
}

func (f *fakeTicketStore) CountByPerformance(_ context.Context, _ uint64) (uint32, error) {
	return 1, nil
}

func (f *fakeTicketStore) CountByPerformanceTx(_ context.Context, _ *sql.Tx, _ uint64) (uint32, error) {
	return 1, nil
}

type reservationFixture struct {
	handler      *ReservationHandler
	mock         sqlmock.Sqlmock
	reservations *fakeReservationStore
	published    []queue.ReservationCreatedEvent
}

func newReservationFixture(t *testing.T) *reservationFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	perfs := &fakePerformanceStore{info: booking.PerformanceInfo{
		ID: 1, Rows: 5, SeatsInRow: 5,
		PlayTitle: "Hamlet", HallName: "Main Stage",
		ShowTime: time.Date(2025, 7, 4, 19, 30, 0, 0, time.UTC),
	}}
	reservations := &fakeReservationStore{}
	tickets := &fakeTicketStore{takenRow: 4, takenSeat: 4}

	fx := &reservationFixture{
		mock:         mock,
		reservations: reservations,
	}
	fx.handler = NewReservationHandler(booking.NewManager(db, perfs, reservations, tickets))
	fx.handler.PublishEvent = func(_ context.Context, ev queue.ReservationCreatedEvent) error {
		fx.published = append(fx.published, ev)
		return nil
	}
	return fx
}

func doReservationRequest(method, target, body string, userID uint64) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user_id", userID)
	}
	return c, rec
}

func TestCreateReservationRequiresAuth(t *testing.T) {
	fx := newReservationFixture(t)

	c, rec := doReservationRequest(http.MethodPost, "/api/v1/reservations",
		`{"tickets":[{"performance":1,"row":1,"seat":1}]}`, 0)
	require.NoError(t, fx.handler.Create(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateReservationSuccess(t *testing.T) {
	fx := newReservationFixture(t)
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	c, rec := doReservationRequest(http.MethodPost, "/api/v1/reservations",
		`{"tickets":[{"performance":1,"row":1,"seat":1},{"performance":1,"row":1,"seat":2}]}`, 7)
	require.NoError(t, fx.handler.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"play_title":"Hamlet"`)

	require.Len(t, fx.published, 1)
	assert.Equal(t, uint64(7), fx.published[0].UserID)
	assert.Len(t, fx.published[0].Tickets, 2)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestCreateReservationSeatTaken(t *testing.T) {
	fx := newReservationFixture(t)
	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()

	c, rec := doReservationRequest(http.MethodPost, "/api/v1/reservations",
		`{"tickets":[{"performance":1,"row":4,"seat":4}]}`, 7)
	require.NoError(t, fx.handler.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, fx.published)
}

func TestCreateReservationSeatOutOfRange(t *testing.T) {
	fx := newReservationFixture(t)
	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()

	c, rec := doReservationRequest(http.MethodPost, "/api/v1/reservations",
		`{"tickets":[{"performance":1,"row":6,"seat":1}]}`, 7)
	require.NoError(t, fx.handler.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateReservationEmptyBody(t *testing.T) {
	fx := newReservationFixture(t)

	c, rec := doReservationRequest(http.MethodPost, "/api/v1/reservations",
		`{"tickets":[]}`, 7)
	require.NoError(t, fx.handler.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListReservationsCapsPageSize(t *testing.T) {
	fx := newReservationFixture(t)

	c, rec := doReservationRequest(http.MethodGet, "/api/v1/reservations?page=2&page_size=500", "", 7)
	require.NoError(t, fx.handler.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, booking.MaxPageSize, fx.reservations.listLimit)
	assert.Equal(t, booking.MaxPageSize, fx.reservations.listOffset)
	assert.Contains(t, rec.Body.String(), `"page_size":20`)
}

func TestListReservationsDefaults(t *testing.T) {
	fx := newReservationFixture(t)

	c, rec := doReservationRequest(http.MethodGet, "/api/v1/reservations", "", 7)
	require.NoError(t, fx.handler.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, booking.DefaultPageSize, fx.reservations.listLimit)
	assert.Equal(t, 0, fx.reservations.listOffset)
}
