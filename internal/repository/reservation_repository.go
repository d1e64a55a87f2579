package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/theatre-booking/internal/booking"
)

// ReservationRepo persists reservations and their tickets.  It
// implements booking.ReservationStore and booking.TicketStore; the
// booking manager owns the transaction boundary and passes the open
// *sql.Tx into the Tx-suffixed methods.  All timestamps are stored in
// UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// mysqlDuplicateEntry is the server error number for a unique key
// violation.
const mysqlDuplicateEntry = 1062

// CreateTx inserts a reservation row within the scope of an existing
// transaction and returns the generated ID and creation timestamp.
// The caller must commit or roll back the transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, userID uint64) (uint64, time.Time, error) {
	res, err := tx.ExecContext(ctx, "INSERT INTO reservations (user_id) VALUES (?)", userID)
	if err != nil {
		return 0, time.Time{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, time.Time{}, err
	}
	// Query back the row to pick up the database-assigned timestamp.
	var createdAt time.Time
	if err := tx.QueryRowContext(ctx,
		"SELECT created_at FROM reservations WHERE id = ?", id).Scan(&createdAt); err != nil {
		return 0, time.Time{}, err
	}
	return uint64(id), createdAt, nil
}

// SeatTakenTx reports whether a ticket already occupies the seat for
// the performance, reading inside the open transaction.
func (r *ReservationRepo) SeatTakenTx(ctx context.Context, tx *sql.Tx, performanceID uint64, row, seat uint32) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM tickets WHERE performance_id = ? AND `row` = ? AND seat = ?",
		performanceID, row, seat).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// InsertTx inserts one ticket and returns its generated ID.  A
// duplicate-key violation on uq_ticket_seat means another transaction
// booked the seat first; it is translated to booking.ErrSeatTaken so
// the insert itself acts as the authoritative availability check.
func (r *ReservationRepo) InsertTx(ctx context.Context, tx *sql.Tx, reservationID, performanceID uint64, row, seat uint32) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO tickets (reservation_id, performance_id, `row`, seat) VALUES (?, ?, ?, ?)",
		reservationID, performanceID, row, seat)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return 0, booking.ErrSeatTaken
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// CountByPerformance returns the number of issued tickets for a
// performance.
func (r *ReservationRepo) CountByPerformance(ctx context.Context, performanceID uint64) (uint32, error) {
	return countTickets(r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tickets WHERE performance_id = ?", performanceID))
}

// CountByPerformanceTx is CountByPerformance inside an open
// transaction, so freshly inserted tickets are visible to the count.
func (r *ReservationRepo) CountByPerformanceTx(ctx context.Context, tx *sql.Tx, performanceID uint64) (uint32, error) {
	return countTickets(tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tickets WHERE performance_id = ?", performanceID))
}

func countTickets(row *sql.Row) (uint32, error) {
	var n uint32
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ListByUser returns one page of the user's reservations ordered by
// creation time ascending, each ticket annotated with its
// performance's play title, hall name, hall capacity and the
// remaining-seat count at read time.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]booking.ReservationDetail, error) {
	const q = `SELECT id, created_at FROM reservations
	           WHERE user_id = ?
	           ORDER BY created_at, id
	           LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]booking.ReservationDetail, 0, limit)
	index := make(map[uint64]int)
	for rows.Next() {
		var d booking.ReservationDetail
		if err := rows.Scan(&d.ID, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Tickets = []booking.TicketDetail{}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}

	// Load tickets for the whole page in one query.  Ticket id order
	// matches insertion order, which is the order requests were given.
	ids := make([]interface{}, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
	}
	ticketQuery := `SELECT t.reservation_id, t.id, t.` + "`row`" + `, t.seat,
	                       p.id, p.show_time, pl.title, th.name,
	                       th.` + "`rows`" + ` * th.seats_in_row AS capacity,
	                       th.` + "`rows`" + ` * th.seats_in_row -
	                         (SELECT COUNT(*) FROM tickets t2 WHERE t2.performance_id = p.id) AS tickets_available
	                FROM tickets t
	                JOIN performances p ON p.id = t.performance_id
	                JOIN plays pl ON pl.id = p.play_id
	                JOIN theatre_halls th ON th.id = p.theatre_hall_id
	                WHERE t.reservation_id IN (` + placeholders(len(ids)) + `)
	                ORDER BY t.reservation_id, t.id`
	trows, err := r.db.QueryContext(ctx, ticketQuery, ids...)
	if err != nil {
		return nil, err
	}
	defer trows.Close()
	for trows.Next() {
		var resID uint64
		var td booking.TicketDetail
		if err := trows.Scan(
			&resID, &td.ID, &td.Row, &td.Seat,
			&td.Performance.ID, &td.Performance.ShowTime,
			&td.Performance.PlayTitle, &td.Performance.TheatreHall,
			&td.Performance.HallCapacity, &td.Performance.TicketsAvailable,
		); err != nil {
			return nil, err
		}
		idx, ok := index[resID]
		if !ok {
			continue
		}
		details[idx].Tickets = append(details[idx].Tickets, td)
	}
	if err := trows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}
