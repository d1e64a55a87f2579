package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// TheatreHallRepo provides CRUD operations for theatre halls.  Halls
// are plain reference data: the only rule enforced here is that the
// seating grid dimensions are stored as given; positivity checks live
// in the handler because they are input validation, not persistence
// concerns.
type TheatreHallRepo struct {
	db *sql.DB
}

// NewTheatreHallRepo constructs a TheatreHallRepo with the given DB handle.
func NewTheatreHallRepo(db *sql.DB) *TheatreHallRepo {
	return &TheatreHallRepo{db: db}
}

// Create inserts a new hall and populates the generated ID along with
// the database-assigned timestamps.
func (r *TheatreHallRepo) Create(ctx context.Context, h *model.TheatreHall) error {
	const qInsert = "INSERT INTO theatre_halls (name, `rows`, seats_in_row) VALUES (?, ?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, h.Name, h.Rows, h.SeatsInRow)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)

	const qSelect = "SELECT id, name, `rows`, seats_in_row, created_at, updated_at FROM theatre_halls WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, h.ID).
		Scan(&h.ID, &h.Name, &h.Rows, &h.SeatsInRow, &h.CreatedAt, &h.UpdatedAt)
}

// GetByID retrieves a hall by its ID.  It returns ErrHallNotFound when
// no row exists.
func (r *TheatreHallRepo) GetByID(ctx context.Context, id uint64) (*model.TheatreHall, error) {
	const q = "SELECT id, name, `rows`, seats_in_row, created_at, updated_at FROM theatre_halls WHERE id = ?"
	var h model.TheatreHall
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&h.ID, &h.Name, &h.Rows, &h.SeatsInRow, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHallNotFound
		}
		return nil, err
	}
	return &h, nil
}

// List returns all halls ordered by id.
func (r *TheatreHallRepo) List(ctx context.Context) ([]*model.TheatreHall, error) {
	const q = "SELECT id, name, `rows`, seats_in_row, created_at, updated_at FROM theatre_halls ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.TheatreHall, 0)
	for rows.Next() {
		h := new(model.TheatreHall)
		if err := rows.Scan(&h.ID, &h.Name, &h.Rows, &h.SeatsInRow, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites the hall's name and grid dimensions.  Returns
// ErrHallNotFound when the hall does not exist.
func (r *TheatreHallRepo) Update(ctx context.Context, h *model.TheatreHall) error {
	const q = "UPDATE theatre_halls SET name = ?, `rows` = ?, seats_in_row = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	res, err := r.db.ExecContext(ctx, q, h.Name, h.Rows, h.SeatsInRow, h.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrHallNotFound
	}
	return nil
}

// Delete removes a hall.  Returns ErrHallNotFound when nothing was
// deleted.
func (r *TheatreHallRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM theatre_halls WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrHallNotFound
	}
	return nil
}
