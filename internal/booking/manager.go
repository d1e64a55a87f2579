package booking

import (
	"context"
	"database/sql"
	"time"
)

// Pagination policy for reservation listings.
const (
	DefaultPageSize = 4
	MaxPageSize     = 20
)

// SeatRequest is one requested ticket inside a reservation.
type SeatRequest struct {
	PerformanceID uint64 `json:"performance"`
	Row           uint32 `json:"row"`
	Seat          uint32 `json:"seat"`
}

// TicketPerformance is the performance annotation attached to each
// ticket in a reservation response.
type TicketPerformance struct {
	ID               uint64    `json:"id"`
	ShowTime         time.Time `json:"show_time"`
	PlayTitle        string    `json:"play_title"`
	TheatreHall      string    `json:"theatre_hall"`
	HallCapacity     uint32    `json:"theatre_hall_capacity"`
	TicketsAvailable uint32    `json:"tickets_available"`
}

// TicketDetail is one persisted ticket with its performance annotation.
type TicketDetail struct {
	ID          uint64            `json:"id"`
	Row         uint32            `json:"row"`
	Seat        uint32            `json:"seat"`
	Performance TicketPerformance `json:"performance"`
}

// ReservationDetail is the full representation of a reservation
// returned to the caller.  Tickets keep the order the requests were
// given in.
type ReservationDetail struct {
	ID        uint64         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Tickets   []TicketDetail `json:"tickets"`
}

// ReservationStore persists reservation rows and lists them per user.
type ReservationStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, userID uint64) (id uint64, createdAt time.Time, err error)
	ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]ReservationDetail, error)
}

// Manager creates reservations atomically and lists them.  It owns the
// transaction boundary: a reservation and all of its tickets commit as
// one unit, and any validation failure rolls the whole unit back.  No
// lock outlives a single CreateReservation call.
type Manager struct {
	db           *sql.DB
	performances PerformanceStore
	reservations ReservationStore
	tickets      TicketStore
	availability *Availability
}

// NewManager constructs a Manager.  All dependencies must be non-nil.
func NewManager(db *sql.DB, performances PerformanceStore, reservations ReservationStore, tickets TicketStore) *Manager {
	if db == nil || performances == nil || reservations == nil || tickets == nil {
		panic("nil dependency passed to NewManager")
	}
	return &Manager{
		db:           db,
		performances: performances,
		reservations: reservations,
		tickets:      tickets,
		availability: NewAvailability(performances, tickets),
	}
}

// CreateReservation atomically creates a reservation with one ticket
// per request.  Each request is validated against the hall grid and
// the current ticket set inside the transaction; the uq_ticket_seat
// unique key catches anything a concurrent transaction slips past the
// pre-check.  On any failure nothing is persisted.
func (m *Manager) CreateReservation(ctx context.Context, userID uint64, requests []SeatRequest) (*ReservationDetail, error) {
	if len(requests) == 0 {
		return nil, ErrEmptyReservation
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Validate every request before writing anything.  Seating info is
	// cached per performance since a reservation often books several
	// seats for the same one.
	infos := make(map[uint64]PerformanceInfo)
	for _, req := range requests {
		info, ok := infos[req.PerformanceID]
		if !ok {
			info, err = m.performances.SeatingTx(ctx, tx, req.PerformanceID)
			if err != nil {
				return nil, err
			}
			infos[req.PerformanceID] = info
		}
		if err := ValidateSeat(req.Row, req.Seat, info); err != nil {
			return nil, err
		}
		if err := m.availability.EnsureSeatUnclaimed(ctx, tx, req.PerformanceID, req.Row, req.Seat); err != nil {
			return nil, err
		}
	}

	resID, createdAt, err := m.reservations.CreateTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	detail := &ReservationDetail{
		ID:        resID,
		CreatedAt: createdAt,
		Tickets:   make([]TicketDetail, 0, len(requests)),
	}
	for _, req := range requests {
		ticketID, err := m.tickets.InsertTx(ctx, tx, resID, req.PerformanceID, req.Row, req.Seat)
		if err != nil {
			// Includes ErrSeatTaken when a concurrent transaction won
			// the unique key race between our pre-check and the insert.
			return nil, err
		}
		detail.Tickets = append(detail.Tickets, TicketDetail{
			ID:   ticketID,
			Row:  req.Row,
			Seat: req.Seat,
			Performance: TicketPerformance{
				ID:          req.PerformanceID,
				ShowTime:    infos[req.PerformanceID].ShowTime,
				PlayTitle:   infos[req.PerformanceID].PlayTitle,
				TheatreHall: infos[req.PerformanceID].HallName,
			},
		})
	}

	// Annotate capacity and the post-insert remaining count per
	// performance inside the same transaction.
	remainingByPerf := make(map[uint64]uint32, len(infos))
	for perfID, info := range infos {
		count, err := m.tickets.CountByPerformanceTx(ctx, tx, perfID)
		if err != nil {
			return nil, err
		}
		remainingByPerf[perfID] = remaining(info.Capacity(), count)
	}
	for i := range detail.Tickets {
		perfID := detail.Tickets[i].Performance.ID
		detail.Tickets[i].Performance.HallCapacity = infos[perfID].Capacity()
		detail.Tickets[i].Performance.TicketsAvailable = remainingByPerf[perfID]
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return detail, nil
}

// ListReservations returns the user's reservations ordered by creation
// time ascending.  Page numbers start at 1; pageSize defaults to
// DefaultPageSize and is capped at MaxPageSize.
func (m *Manager) ListReservations(ctx context.Context, userID uint64, page, pageSize int) ([]ReservationDetail, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	offset := (page - 1) * pageSize
	return m.reservations.ListByUser(ctx, userID, pageSize, offset)
}
