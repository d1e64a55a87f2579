package booking

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSeat(t *testing.T) {
	info := PerformanceInfo{Rows: 10, SeatsInRow: 12}

	cases := []struct {
		name    string
		row     uint32
		seat    uint32
		wantErr error
	}{
		{"first seat", 1, 1, nil},
		{"last seat", 10, 12, nil},
		{"middle", 5, 6, nil},
		{"row zero", 0, 1, ErrSeatOutOfRange},
		{"seat zero", 1, 0, ErrSeatOutOfRange},
		{"row too high", 11, 1, ErrSeatOutOfRange},
		{"seat too high", 1, 13, ErrSeatOutOfRange},
		{"both out", 99, 99, ErrSeatOutOfRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSeat(tc.row, tc.seat, info)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestPerformanceInfoCapacity(t *testing.T) {
	assert.Equal(t, uint32(120), PerformanceInfo{Rows: 10, SeatsInRow: 12}.Capacity())
	assert.Equal(t, uint32(0), PerformanceInfo{}.Capacity())
}

func TestRemainingClampsAtZero(t *testing.T) {
	assert.Equal(t, uint32(7), remaining(10, 3))
	assert.Equal(t, uint32(0), remaining(10, 10))
	// taken can exceed capacity after a hall is shrunk
	assert.Equal(t, uint32(0), remaining(10, 15))
}

// stubPerformanceStore serves a fixed seating grid for one performance
// id and ErrPerformanceNotFound for everything else.
type stubPerformanceStore struct {
	id   uint64
	info PerformanceInfo
}

func (s *stubPerformanceStore) Seating(_ context.Context, id uint64) (PerformanceInfo, error) {
	if id != s.id {
		return PerformanceInfo{}, ErrPerformanceNotFound
	}
	return s.info, nil
}

func (s *stubPerformanceStore) SeatingTx(ctx context.Context, _ *sql.Tx, id uint64) (PerformanceInfo, error) {
	return s.Seating(ctx, id)
}

// stubTicketStore tracks taken seats in memory.
type stubTicketStore struct {
	taken  map[[3]uint64]bool
	nextID uint64
}

func newStubTicketStore() *stubTicketStore {
	return &stubTicketStore{taken: map[[3]uint64]bool{}}
}

func (s *stubTicketStore) key(perf uint64, row, seat uint32) [3]uint64 {
	return [3]uint64{perf, uint64(row), uint64(seat)}
}

func (s *stubTicketStore) SeatTakenTx(_ context.Context, _ *sql.Tx, perf uint64, row, seat uint32) (bool, error) {
	return s.taken[s.key(perf, row, seat)], nil
}

func (s *stubTicketStore) InsertTx(_ context.Context, _ *sql.Tx, _ uint64, perf uint64, row, seat uint32) (uint64, error) {
	k := s.key(perf, row, seat)
	if s.taken[k] {
		return 0, ErrSeatTaken
	}
	s.taken[k] = true
	s.nextID++
	return s.nextID, nil
}

func (s *stubTicketStore) CountByPerformance(_ context.Context, perf uint64) (uint32, error) {
	var n uint32
	for k := range s.taken {
		if k[0] == perf {
			n++
		}
	}
	return n, nil
}

func (s *stubTicketStore) CountByPerformanceTx(ctx context.Context, _ *sql.Tx, perf uint64) (uint32, error) {
	return s.CountByPerformance(ctx, perf)
}

func TestRemainingSeats(t *testing.T) {
	perfs := &stubPerformanceStore{id: 1, info: PerformanceInfo{ID: 1, Rows: 2, SeatsInRow: 3}}
	tickets := newStubTicketStore()
	tickets.taken[tickets.key(1, 1, 1)] = true
	tickets.taken[tickets.key(1, 1, 2)] = true

	a := NewAvailability(perfs, tickets)

	free, err := a.RemainingSeats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), free)

	_, err = a.RemainingSeats(context.Background(), 99)
	assert.ErrorIs(t, err, ErrPerformanceNotFound)
}

func TestEnsureSeatUnclaimed(t *testing.T) {
	perfs := &stubPerformanceStore{id: 1, info: PerformanceInfo{ID: 1, Rows: 2, SeatsInRow: 3}}
	tickets := newStubTicketStore()
	tickets.taken[tickets.key(1, 1, 1)] = true

	a := NewAvailability(perfs, tickets)

	assert.ErrorIs(t, a.EnsureSeatUnclaimed(context.Background(), nil, 1, 1, 1), ErrSeatTaken)
	assert.NoError(t, a.EnsureSeatUnclaimed(context.Background(), nil, 1, 1, 2))
}
