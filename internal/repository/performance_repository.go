package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/theatre-booking/internal/booking"
	"github.com/iliyamo/theatre-booking/internal/model"
)

// PerformanceRepo provides CRUD and query operations for performances.
// List rows are annotated with the remaining seat count so clients can
// see availability without an extra round trip.
type PerformanceRepo struct {
	db *sql.DB
}

// NewPerformanceRepo constructs a PerformanceRepo with the given DB handle.
func NewPerformanceRepo(db *sql.DB) *PerformanceRepo {
	return &PerformanceRepo{db: db}
}

// PerformanceFilter narrows List results.  Date matches the calendar
// day component of show_time exactly; PlayID is an exact match.  Both
// are optional and compose with AND semantics.
type PerformanceFilter struct {
	Date   *time.Time
	PlayID uint64
}

// PerformanceListRow is the list projection of a performance.
type PerformanceListRow struct {
	ID               uint64    `json:"id"`
	ShowTime         time.Time `json:"show_time"`
	PlayTitle        string    `json:"play_title"`
	TheatreHall      string    `json:"theatre_hall"`
	HallCapacity     uint32    `json:"theatre_hall_capacity"`
	TicketsAvailable uint32    `json:"tickets_available"`
}

// SeatRef identifies a single taken seat within a performance.
type SeatRef struct {
	Row  uint32 `json:"row"`
	Seat uint32 `json:"seat"`
}

// PerformanceDetail is the detail projection: the full play and hall
// plus the list of currently taken seats.
type PerformanceDetail struct {
	ID          uint64             `json:"id"`
	ShowTime    time.Time          `json:"show_time"`
	Play        *model.Play        `json:"-"`
	Hall        *model.TheatreHall `json:"-"`
	TakenPlaces []SeatRef          `json:"taken_places"`
}

// Create inserts a performance and populates the generated ID.
func (r *PerformanceRepo) Create(ctx context.Context, p *model.Performance) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO performances (play_id, theatre_hall_id, show_time) VALUES (?, ?, ?)",
		p.PlayID, p.TheatreHallID, p.ShowTime.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByID returns the raw performance row or ErrPerformanceNotFound.
func (r *PerformanceRepo) GetByID(ctx context.Context, id uint64) (*model.Performance, error) {
	var p model.Performance
	err := r.db.QueryRowContext(ctx,
		"SELECT id, play_id, theatre_hall_id, show_time FROM performances WHERE id = ?", id).
		Scan(&p.ID, &p.PlayID, &p.TheatreHallID, &p.ShowTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPerformanceNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns performances matching the filter, each annotated with
// the number of tickets still available.  The count comes from an
// aggregate over tickets; the uq_ticket_seat key remains the real
// overbooking guard, so a slightly stale count here is acceptable.
func (r *PerformanceRepo) List(ctx context.Context, f PerformanceFilter) ([]PerformanceListRow, error) {
	query := `SELECT p.id, p.show_time, pl.title, th.name,
	                 th.` + "`rows`" + ` * th.seats_in_row AS capacity,
	                 th.` + "`rows`" + ` * th.seats_in_row - COUNT(t.id) AS tickets_available
	          FROM performances p
	          JOIN plays pl ON pl.id = p.play_id
	          JOIN theatre_halls th ON th.id = p.theatre_hall_id
	          LEFT JOIN tickets t ON t.performance_id = p.id`
	where := ""
	args := []interface{}{}
	if f.Date != nil {
		where = " WHERE DATE(p.show_time) = ?"
		args = append(args, f.Date.Format("2006-01-02"))
	}
	if f.PlayID != 0 {
		if where == "" {
			where = " WHERE p.play_id = ?"
		} else {
			where += " AND p.play_id = ?"
		}
		args = append(args, f.PlayID)
	}
	query += where
	query += ` GROUP BY p.id, p.show_time, pl.title, th.name, th.` + "`rows`" + `, th.seats_in_row
	           ORDER BY p.show_time, p.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]PerformanceListRow, 0)
	for rows.Next() {
		var row PerformanceListRow
		if err := rows.Scan(&row.ID, &row.ShowTime, &row.PlayTitle, &row.TheatreHall,
			&row.HallCapacity, &row.TicketsAvailable); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDetail returns a performance with its play, hall and the taken
// (row, seat) pairs.  Returns ErrPerformanceNotFound when absent.
func (r *PerformanceRepo) GetDetail(ctx context.Context, id uint64, plays *PlayRepo, halls *TheatreHallRepo) (*PerformanceDetail, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	play, err := plays.GetByID(ctx, p.PlayID)
	if err != nil {
		return nil, err
	}
	hall, err := halls.GetByID(ctx, p.TheatreHallID)
	if err != nil {
		return nil, err
	}

	det := &PerformanceDetail{
		ID:          p.ID,
		ShowTime:    p.ShowTime,
		Play:        play,
		Hall:        hall,
		TakenPlaces: []SeatRef{},
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT `row`, seat FROM tickets WHERE performance_id = ? ORDER BY `row`, seat", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var s SeatRef
		if err := rows.Scan(&s.Row, &s.Seat); err != nil {
			return nil, err
		}
		det.TakenPlaces = append(det.TakenPlaces, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return det, nil
}

// Update rewrites a performance.  Returns ErrPerformanceNotFound when
// absent.
func (r *PerformanceRepo) Update(ctx context.Context, p *model.Performance) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE performances SET play_id = ?, theatre_hall_id = ?, show_time = ? WHERE id = ?",
		p.PlayID, p.TheatreHallID, p.ShowTime.UTC(), p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM performances WHERE id = ?", p.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrPerformanceNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes a performance.  Returns ErrPerformanceNotFound when
// absent.
func (r *PerformanceRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM performances WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPerformanceNotFound
	}
	return nil
}

// seatingQuery loads the seating universe of a performance together
// with the play title and hall name used in reservation responses.
const seatingQuery = `SELECT p.id, p.show_time, pl.title, th.name, th.` + "`rows`" + `, th.seats_in_row
	FROM performances p
	JOIN plays pl ON pl.id = p.play_id
	JOIN theatre_halls th ON th.id = p.theatre_hall_id
	WHERE p.id = ?`

// Seating implements booking.PerformanceStore outside a transaction.
func (r *PerformanceRepo) Seating(ctx context.Context, id uint64) (booking.PerformanceInfo, error) {
	return scanSeating(r.db.QueryRowContext(ctx, seatingQuery, id))
}

// SeatingTx implements booking.PerformanceStore within a transaction,
// so the seat validation below reads the same snapshot the ticket
// inserts will commit against.
func (r *PerformanceRepo) SeatingTx(ctx context.Context, tx *sql.Tx, id uint64) (booking.PerformanceInfo, error) {
	return scanSeating(tx.QueryRowContext(ctx, seatingQuery, id))
}

func scanSeating(row *sql.Row) (booking.PerformanceInfo, error) {
	var info booking.PerformanceInfo
	err := row.Scan(&info.ID, &info.ShowTime, &info.PlayTitle, &info.HallName,
		&info.Rows, &info.SeatsInRow)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return booking.PerformanceInfo{}, booking.ErrPerformanceNotFound
		}
		return booking.PerformanceInfo{}, err
	}
	return info, nil
}
