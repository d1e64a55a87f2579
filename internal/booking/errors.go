// Package booking implements the seat-availability rules and the
// transactional creation of reservations.  It is deliberately free of
// HTTP and persistence-framework concerns: data access happens through
// small store interfaces so the rules can be exercised against any
// backing implementation.
package booking

import "errors"

// ErrSeatOutOfRange is returned when a requested row or seat lies
// outside the hall grid.  User-correctable input error.
var ErrSeatOutOfRange = errors.New("seat is outside the hall grid")

// ErrSeatTaken is returned when the requested seat is already held by
// another ticket for the same performance.  This is a validation
// failure, not a server fault, regardless of whether it is detected by
// the in-transaction pre-check or by the unique key at insert time.
var ErrSeatTaken = errors.New("seat is already taken")

// ErrEmptyReservation is returned when a reservation is requested with
// zero tickets.  Detected before any persistence happens.
var ErrEmptyReservation = errors.New("reservation must contain at least one ticket")

// ErrPerformanceNotFound is returned when a ticket references a
// performance that does not exist.
var ErrPerformanceNotFound = errors.New("performance not found")
