package model

import "time"

// Reservation groups one or more tickets booked by a user in a single
// atomic transaction.  Reservations are append-only: once created they
// are never updated, and there is no cancellation path.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user who made the reservation.
//  CreatedAt – creation timestamp, also the ordering key for listings.
type Reservation struct {
	ID        uint64    // reservations.id
	UserID    uint64    // reservations.user_id
	CreatedAt time.Time // reservations.created_at
}

// Ticket is a claim on exactly one seat for one performance.  The
// tuple (performance, row, seat) is unique across all tickets; the
// database enforces this with the uq_ticket_seat unique key, which is
// the authoritative guard against double booking.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – reservation the ticket belongs to.
//  PerformanceID – performance the seat is claimed for.
//  Row           – seating row, 1..hall.Rows.
//  Seat          – seat number within the row, 1..hall.SeatsInRow.
type Ticket struct {
	ID            uint64 // tickets.id
	ReservationID uint64 // tickets.reservation_id
	PerformanceID uint64 // tickets.performance_id
	Row           uint32 // tickets.row
	Seat          uint32 // tickets.seat
}
