package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-booking/internal/booking"
)

func TestPerformanceListAnnotatesAvailability(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPerformanceRepo(db)

	show := time.Date(2025, 7, 4, 19, 30, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT p.id, p.show_time, pl.title, th.name").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "show_time", "title", "name", "capacity", "tickets_available",
		}).AddRow(uint64(1), show, "Hamlet", "Main Stage", uint32(25), uint32(22)))

	rows, err := repo.List(context.Background(), PerformanceFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Hamlet", rows[0].PlayTitle)
	assert.Equal(t, uint32(25), rows[0].HallCapacity)
	assert.Equal(t, uint32(22), rows[0].TicketsAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPerformanceListFiltersByDateAndPlay(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPerformanceRepo(db)

	day := time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT p.id, p.show_time, pl.title, th.name").
		WithArgs("2025-07-04", uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "show_time", "title", "name", "capacity", "tickets_available",
		}))

	rows, err := repo.List(context.Background(), PerformanceFilter{Date: &day, PlayID: 3})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatingTranslatesMissingPerformance(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPerformanceRepo(db)

	mock.ExpectQuery("SELECT p.id, p.show_time, pl.title, th.name").
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "show_time", "title", "name", "rows", "seats_in_row"}))

	_, err = repo.Seating(context.Background(), 99)
	assert.ErrorIs(t, err, booking.ErrPerformanceNotFound)
}

func TestSeatingLoadsGrid(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPerformanceRepo(db)

	show := time.Date(2025, 7, 4, 19, 30, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT p.id, p.show_time, pl.title, th.name").
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "show_time", "title", "name", "rows", "seats_in_row"}).
			AddRow(uint64(1), show, "Hamlet", "Main Stage", uint32(5), uint32(5)))

	info, err := repo.Seating(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Hamlet", info.PlayTitle)
	assert.Equal(t, "Main Stage", info.HallName)
	assert.Equal(t, uint32(25), info.Capacity())
}
