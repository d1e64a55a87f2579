// Package queue defines the reservation event contract and the
// RabbitMQ consumer that records reservation activity.
package queue

import "time"

// ReservationCreatedQueue is the durable queue reservation events are
// published to and consumed from.
const ReservationCreatedQueue = "reservation.created"

// EventTicket is one booked seat inside a reservation event.
type EventTicket struct {
	PerformanceID uint64 `json:"performance_id"`
	Row           uint32 `json:"row"`
	Seat          uint32 `json:"seat"`
}

// ReservationCreatedEvent is emitted after a reservation commits.
type ReservationCreatedEvent struct {
	ReservationID uint64        `json:"reservation_id"`
	UserID        uint64        `json:"user_id"`
	Tickets       []EventTicket `json:"tickets"`
	CreatedAt     time.Time     `json:"created_at"`
}
