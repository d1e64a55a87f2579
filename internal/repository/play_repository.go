package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// PlayRepo provides CRUD operations for plays together with their
// genre and actor links.  The many-to-many rows live in play_genres
// and play_actors and are rewritten as a whole on update.
type PlayRepo struct {
	db *sql.DB
}

// NewPlayRepo constructs a PlayRepo with the given DB handle.
func NewPlayRepo(db *sql.DB) *PlayRepo {
	return &PlayRepo{db: db}
}

// PlayFilter narrows List results.  Title is an exact match; GenreIDs
// and ActorIDs are OR lists (a play matches when linked to any of the
// given ids).  All filters compose with AND semantics.
type PlayFilter struct {
	Title    string
	GenreIDs []uint64
	ActorIDs []uint64
}

// PlayListRow is the list projection of a play: genre and actor names
// flattened to strings, no descriptions of related entities.
type PlayListRow struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Genres      []string `json:"genres"`
	Actors      []string `json:"actors"`
}

// Create inserts a play and its genre/actor links in one transaction.
func (r *PlayRepo) Create(ctx context.Context, p *model.Play, genreIDs, actorIDs []uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO plays (title, description) VALUES (?, ?)", p.Title, p.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)

	if err := insertLinksTx(ctx, tx, "play_genres", "genre_id", p.ID, genreIDs); err != nil {
		return err
	}
	if err := insertLinksTx(ctx, tx, "play_actors", "actor_id", p.ID, actorIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// insertLinksTx bulk inserts join-table rows for a play.
func insertLinksTx(ctx context.Context, tx *sql.Tx, table, column string, playID uint64, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	query := "INSERT INTO " + table + " (play_id, " + column + ") VALUES "
	args := make([]interface{}, 0, len(ids)*2)
	for i, id := range ids {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, playID, id)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// GetByID returns a play with its genres and actors fully loaded.
// Returns ErrPlayNotFound when absent.
func (r *PlayRepo) GetByID(ctx context.Context, id uint64) (*model.Play, error) {
	var p model.Play
	err := r.db.QueryRowContext(ctx,
		"SELECT id, title, description FROM plays WHERE id = ?", id).
		Scan(&p.ID, &p.Title, &p.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayNotFound
		}
		return nil, err
	}

	p.Genres = make([]model.Genre, 0)
	grows, err := r.db.QueryContext(ctx,
		`SELECT g.id, g.name FROM genres g
		 JOIN play_genres pg ON pg.genre_id = g.id
		 WHERE pg.play_id = ? ORDER BY g.id`, id)
	if err != nil {
		return nil, err
	}
	defer grows.Close()
	for grows.Next() {
		var g model.Genre
		if err := grows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		p.Genres = append(p.Genres, g)
	}
	if err := grows.Err(); err != nil {
		return nil, err
	}

	p.Actors = make([]model.Actor, 0)
	arows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.first_name, a.last_name FROM actors a
		 JOIN play_actors pa ON pa.actor_id = a.id
		 WHERE pa.play_id = ? ORDER BY a.id`, id)
	if err != nil {
		return nil, err
	}
	defer arows.Close()
	for arows.Next() {
		var a model.Actor
		if err := arows.Scan(&a.ID, &a.FirstName, &a.LastName); err != nil {
			return nil, err
		}
		p.Actors = append(p.Actors, a)
	}
	if err := arows.Err(); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns plays matching the filter.  Joins against the link
// tables can multiply rows, so the play query is kept DISTINCT and
// names are loaded in follow-up queries.
func (r *PlayRepo) List(ctx context.Context, f PlayFilter) ([]PlayListRow, error) {
	where := []string{}
	args := []interface{}{}

	if f.Title != "" {
		where = append(where, "p.title = ?")
		args = append(args, f.Title)
	}
	if len(f.GenreIDs) > 0 {
		where = append(where, "pg.genre_id IN ("+placeholders(len(f.GenreIDs))+")")
		for _, id := range f.GenreIDs {
			args = append(args, id)
		}
	}
	if len(f.ActorIDs) > 0 {
		where = append(where, "pa.actor_id IN ("+placeholders(len(f.ActorIDs))+")")
		for _, id := range f.ActorIDs {
			args = append(args, id)
		}
	}

	query := `SELECT DISTINCT p.id, p.title, p.description
	          FROM plays p
	          LEFT JOIN play_genres pg ON pg.play_id = p.id
	          LEFT JOIN play_actors pa ON pa.play_id = p.id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]PlayListRow, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var row PlayListRow
		if err := rows.Scan(&row.ID, &row.Title, &row.Description); err != nil {
			return nil, err
		}
		row.Genres = []string{}
		row.Actors = []string{}
		index[row.ID] = len(out)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]interface{}, 0, len(out))
	for _, row := range out {
		ids = append(ids, row.ID)
	}
	ph := placeholders(len(out))

	grows, err := r.db.QueryContext(ctx,
		`SELECT pg.play_id, g.name FROM play_genres pg
		 JOIN genres g ON g.id = pg.genre_id
		 WHERE pg.play_id IN (`+ph+`) ORDER BY pg.play_id, g.id`, ids...)
	if err != nil {
		return nil, err
	}
	defer grows.Close()
	for grows.Next() {
		var pid uint64
		var name string
		if err := grows.Scan(&pid, &name); err != nil {
			return nil, err
		}
		if i, ok := index[pid]; ok {
			out[i].Genres = append(out[i].Genres, name)
		}
	}
	if err := grows.Err(); err != nil {
		return nil, err
	}

	arows, err := r.db.QueryContext(ctx,
		`SELECT pa.play_id, a.first_name, a.last_name FROM play_actors pa
		 JOIN actors a ON a.id = pa.actor_id
		 WHERE pa.play_id IN (`+ph+`) ORDER BY pa.play_id, a.id`, ids...)
	if err != nil {
		return nil, err
	}
	defer arows.Close()
	for arows.Next() {
		var pid uint64
		var first, last string
		if err := arows.Scan(&pid, &first, &last); err != nil {
			return nil, err
		}
		if i, ok := index[pid]; ok {
			out[i].Actors = append(out[i].Actors, first+" "+last)
		}
	}
	if err := arows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites a play and replaces its genre/actor links inside a
// transaction.  Returns ErrPlayNotFound when the play does not exist.
func (r *PlayRepo) Update(ctx context.Context, p *model.Play, genreIDs, actorIDs []uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"UPDATE plays SET title = ?, description = ? WHERE id = ?",
		p.Title, p.Description, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Row may exist with identical values; confirm before failing.
		var one int
		if err := tx.QueryRowContext(ctx, "SELECT 1 FROM plays WHERE id = ?", p.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrPlayNotFound
			}
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM play_genres WHERE play_id = ?", p.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM play_actors WHERE play_id = ?", p.ID); err != nil {
		return err
	}
	if err := insertLinksTx(ctx, tx, "play_genres", "genre_id", p.ID, genreIDs); err != nil {
		return err
	}
	if err := insertLinksTx(ctx, tx, "play_actors", "actor_id", p.ID, actorIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes a play; link rows cascade.  Returns ErrPlayNotFound
// when absent.
func (r *PlayRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM plays WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPlayNotFound
	}
	return nil
}

// placeholders returns a comma separated list of n "?" markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
