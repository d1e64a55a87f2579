package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// ActorRepo provides CRUD operations for actors.
type ActorRepo struct {
	db *sql.DB
}

// NewActorRepo constructs an ActorRepo with the given DB handle.
func NewActorRepo(db *sql.DB) *ActorRepo {
	return &ActorRepo{db: db}
}

// Create inserts an actor and populates the generated ID.
func (r *ActorRepo) Create(ctx context.Context, a *model.Actor) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO actors (first_name, last_name) VALUES (?, ?)",
		a.FirstName, a.LastName)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByID returns an actor or ErrActorNotFound.
func (r *ActorRepo) GetByID(ctx context.Context, id uint64) (*model.Actor, error) {
	var a model.Actor
	err := r.db.QueryRowContext(ctx,
		"SELECT id, first_name, last_name FROM actors WHERE id = ?", id).
		Scan(&a.ID, &a.FirstName, &a.LastName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrActorNotFound
		}
		return nil, err
	}
	return &a, nil
}

// List returns all actors ordered by id.
func (r *ActorRepo) List(ctx context.Context) ([]*model.Actor, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, first_name, last_name FROM actors ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Actor, 0)
	for rows.Next() {
		a := new(model.Actor)
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites an actor's name fields.  Returns ErrActorNotFound
// when absent.
func (r *ActorRepo) Update(ctx context.Context, a *model.Actor) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE actors SET first_name = ?, last_name = ? WHERE id = ?",
		a.FirstName, a.LastName, a.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrActorNotFound
	}
	return nil
}

// Delete removes an actor.  Returns ErrActorNotFound when absent.
func (r *ActorRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM actors WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrActorNotFound
	}
	return nil
}
