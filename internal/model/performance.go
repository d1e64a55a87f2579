package model

import "time"

// Performance is a scheduled showing of a play in a theatre hall at a
// specific time.  Together with the hall it defines the seating
// universe for tickets: rows 1..hall.Rows and seats 1..hall.SeatsInRow.
//
// Fields:
//  ID            – primary key identifier.
//  PlayID        – play being performed.
//  TheatreHallID – hall where the performance takes place.
//  ShowTime      – when the performance starts (stored in UTC).
type Performance struct {
	ID            uint64    // performances.id
	PlayID        uint64    // performances.play_id
	TheatreHallID uint64    // performances.theatre_hall_id
	ShowTime      time.Time // performances.show_time
}
