package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-booking/internal/booking"
)

func TestInsertTxTranslatesDuplicateKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewReservationRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO tickets").
		WithArgs(uint64(5), uint64(9), uint32(2), uint32(3)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)

	_, err = repo.InsertTx(context.Background(), tx, 5, 9, 2, 3)
	assert.ErrorIs(t, err, booking.ErrSeatTaken)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertTxReturnsTicketID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewReservationRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO tickets").
		WithArgs(uint64(5), uint64(9), uint32(2), uint32(3)).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)

	id, err := repo.InsertTx(context.Background(), tx, 5, 9, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatTakenTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewReservationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1 FROM tickets").
		WithArgs(uint64(9), uint32(2), uint32(3)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery("SELECT 1 FROM tickets").
		WithArgs(uint64(9), uint32(2), uint32(4)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	taken, err := repo.SeatTakenTx(context.Background(), tx, 9, 2, 3)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.SeatTakenTx(context.Background(), tx, 9, 2, 4)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestCreateTxReadsBackTimestamp(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewReservationRepo(db)

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reservations").
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery("SELECT created_at FROM reservations").
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)

	id, createdAt, err := repo.CreateTx(context.Background(), tx, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), id)
	assert.Equal(t, created, createdAt)
	require.NoError(t, tx.Commit())
}

func TestListByUserAssemblesTickets(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewReservationRepo(db)

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	show := time.Date(2025, 7, 4, 19, 30, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, created_at FROM reservations").
		WithArgs(uint64(7), 4, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
			AddRow(uint64(1), created).
			AddRow(uint64(2), created.Add(time.Hour)))
	mock.ExpectQuery("SELECT t.reservation_id, t.id").
		WithArgs(uint64(1), uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{
			"reservation_id", "id", "row", "seat",
			"performance_id", "show_time", "title", "name", "capacity", "tickets_available",
		}).
			AddRow(uint64(1), uint64(10), uint32(2), uint32(3), uint64(9), show, "Hamlet", "Main Stage", uint32(25), uint32(20)).
			AddRow(uint64(1), uint64(11), uint32(2), uint32(4), uint64(9), show, "Hamlet", "Main Stage", uint32(25), uint32(20)).
			AddRow(uint64(2), uint64(12), uint32(1), uint32(1), uint64(9), show, "Hamlet", "Main Stage", uint32(25), uint32(20)))

	details, err := repo.ListByUser(context.Background(), 7, 4, 0)
	require.NoError(t, err)
	require.Len(t, details, 2)

	assert.Equal(t, uint64(1), details[0].ID)
	require.Len(t, details[0].Tickets, 2)
	// ticket id order matches insertion order
	assert.Equal(t, uint64(10), details[0].Tickets[0].ID)
	assert.Equal(t, uint64(11), details[0].Tickets[1].ID)
	assert.Equal(t, "Hamlet", details[0].Tickets[0].Performance.PlayTitle)
	assert.Equal(t, uint32(20), details[0].Tickets[0].Performance.TicketsAvailable)

	require.Len(t, details[1].Tickets, 1)
	assert.Equal(t, uint64(12), details[1].Tickets[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByUserEmptyPage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewReservationRepo(db)

	mock.ExpectQuery("SELECT id, created_at FROM reservations").
		WithArgs(uint64(7), 4, 8).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}))

	details, err := repo.ListByUser(context.Background(), 7, 4, 8)
	require.NoError(t, err)
	assert.Empty(t, details)
	assert.NoError(t, mock.ExpectationsWereMet())
}
