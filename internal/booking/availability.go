package booking

import (
	"context"
	"database/sql"
	"time"
)

// PerformanceInfo describes the seating universe of a performance:
// the hall grid plus the play title and hall name needed to shape
// reservation responses.
type PerformanceInfo struct {
	ID         uint64
	ShowTime   time.Time
	PlayTitle  string
	HallName   string
	Rows       uint32
	SeatsInRow uint32
}

// Capacity returns the total number of seats in the performance's hall.
func (i PerformanceInfo) Capacity() uint32 {
	return i.Rows * i.SeatsInRow
}

// PerformanceStore loads performance seating information.  The Tx
// variant reads inside an open transaction so validation and ticket
// inserts observe the same snapshot.
type PerformanceStore interface {
	Seating(ctx context.Context, performanceID uint64) (PerformanceInfo, error)
	SeatingTx(ctx context.Context, tx *sql.Tx, performanceID uint64) (PerformanceInfo, error)
}

// TicketStore persists and counts tickets.  InsertTx must translate a
// duplicate-key violation on (performance, row, seat) into
// ErrSeatTaken: the unique key is the authoritative double-booking
// guard, the SeatTakenTx pre-check only improves error ordering.
type TicketStore interface {
	SeatTakenTx(ctx context.Context, tx *sql.Tx, performanceID uint64, row, seat uint32) (bool, error)
	InsertTx(ctx context.Context, tx *sql.Tx, reservationID, performanceID uint64, row, seat uint32) (uint64, error)
	CountByPerformance(ctx context.Context, performanceID uint64) (uint32, error)
	CountByPerformanceTx(ctx context.Context, tx *sql.Tx, performanceID uint64) (uint32, error)
}

// ValidateSeat checks that a (row, seat) coordinate lies inside the
// hall grid.  Pure and stateless given the grid dimensions.
func ValidateSeat(row, seat uint32, info PerformanceInfo) error {
	if row < 1 || row > info.Rows {
		return ErrSeatOutOfRange
	}
	if seat < 1 || seat > info.SeatsInRow {
		return ErrSeatOutOfRange
	}
	return nil
}

// Availability computes remaining capacity for performances.  It is
// read-only; nothing here mutates state.
type Availability struct {
	performances PerformanceStore
	tickets      TicketStore
}

// NewAvailability constructs an Availability engine over the given stores.
func NewAvailability(performances PerformanceStore, tickets TicketStore) *Availability {
	if performances == nil || tickets == nil {
		panic("nil store passed to NewAvailability")
	}
	return &Availability{performances: performances, tickets: tickets}
}

// RemainingSeats returns hall capacity minus the number of issued
// tickets for the performance.  Never negative.
func (a *Availability) RemainingSeats(ctx context.Context, performanceID uint64) (uint32, error) {
	info, err := a.performances.Seating(ctx, performanceID)
	if err != nil {
		return 0, err
	}
	count, err := a.tickets.CountByPerformance(ctx, performanceID)
	if err != nil {
		return 0, err
	}
	return remaining(info.Capacity(), count), nil
}

// EnsureSeatUnclaimed fails with ErrSeatTaken when a ticket already
// occupies the seat.  It reads inside the caller's transaction; the
// unique key at insert time remains the final word, this check only
// gives conflicts a deterministic error before any write.
func (a *Availability) EnsureSeatUnclaimed(ctx context.Context, tx *sql.Tx, performanceID uint64, row, seat uint32) error {
	taken, err := a.tickets.SeatTakenTx(ctx, tx, performanceID, row, seat)
	if err != nil {
		return err
	}
	if taken {
		return ErrSeatTaken
	}
	return nil
}

func remaining(capacity, taken uint32) uint32 {
	if taken >= capacity {
		return 0
	}
	return capacity - taken
}
