package model

import "time"

// TheatreHall represents a seating grid where performances take place.
// The grid is defined by the number of rows and the number of seats in
// each row.  Capacity is always derived from those two values and is
// never stored in the database, so it cannot drift out of sync.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – human readable hall name.
//  Rows       – number of seating rows (must be positive).
//  SeatsInRow – number of seats per row (must be positive).
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type TheatreHall struct {
	ID         uint64    // theatre_halls.id
	Name       string    // theatre_halls.name
	Rows       uint32    // theatre_halls.rows
	SeatsInRow uint32    // theatre_halls.seats_in_row
	CreatedAt  time.Time // theatre_halls.created_at
	UpdatedAt  time.Time // theatre_halls.updated_at
}

// Capacity returns the total number of seats in the hall.
func (h TheatreHall) Capacity() uint32 {
	return h.Rows * h.SeatsInRow
}
