// internal/wizard/repository.go
//
// Document-store persistence for wizard sessions.
//
// Context
// -------
// Sessions are read and written as whole documents: the ordered turn list
// is serialized to one JSON column, no partial-field updates.  Concurrent
// writers (two tabs on the same session) race with last-write-wins; the
// data is the owner's working notes, so no conflict resolution is
// attempted.  Save failures must never block local progression—callers
// log them and carry on.
//
// Schema
// ------
//	wizard_session (
//	    id         VARCHAR(36) PRIMARY KEY,
//	    owner      VARCHAR(128) NOT NULL,
//	    step       VARCHAR(32)  NOT NULL,
//	    turns      JSON         NOT NULL,
//	    created_at DATETIME     NOT NULL,
//	    updated_at DATETIME     NOT NULL,
//	    KEY owner_step_updated (owner, step, updated_at)
//	)

package wizard

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNoSession is returned by LoadLatest when the owner has no stored
// session for the step.
var ErrNoSession = errors.New("wizard: no stored session")

// Repository persists sessions through a sqlx pool.
type Repository struct {
	db *sqlx.DB
}

// NewRepository wraps an open pool.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// sessionRow is the flat scan target; turns stay raw until decoded.
type sessionRow struct {
	ID        string    `db:"id"`
	Owner     string    `db:"owner"`
	Step      string    `db:"step"`
	Turns     []byte    `db:"turns"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Create inserts a fresh session document.
func (r *Repository) Create(ctx context.Context, s *Session) error {
	turns, err := json.Marshal(s.Turns)
	if err != nil {
		return fmt.Errorf("wizard: encode turns: %w", err)
	}

	const q = `INSERT INTO wizard_session (id, owner, step, turns, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, s.ID, s.Owner, s.Step, turns, s.CreatedAt, s.UpdatedAt); err != nil {
		return fmt.Errorf("wizard: insert session: %w", err)
	}
	return nil
}

// Save upserts the whole turn list for an existing session.
func (r *Repository) Save(ctx context.Context, s *Session) error {
	turns, err := json.Marshal(s.Turns)
	if err != nil {
		return fmt.Errorf("wizard: encode turns: %w", err)
	}

	const q = `UPDATE wizard_session SET turns = ?, updated_at = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, turns, s.UpdatedAt, s.ID); err != nil {
		return fmt.Errorf("wizard: save session: %w", err)
	}
	return nil
}

// LoadByID returns one session document.  Owner is part of the key so a
// caller can never reach another owner's session by guessing ids.
func (r *Repository) LoadByID(ctx context.Context, id, owner string) (*Session, error) {
	const q = `SELECT id, owner, step, turns, created_at, updated_at
	             FROM wizard_session
	            WHERE id = ? AND owner = ?`

	var row sessionRow
	err := r.db.GetContext(ctx, &row, q, id, owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("wizard: load session: %w", err)
	}
	return decodeRow(row)
}

// LoadLatest returns the most recently updated session for owner + step.
// A stored document that no longer decodes is reported as ErrNoSession so
// the caller falls back to a fresh session instead of failing.
func (r *Repository) LoadLatest(ctx context.Context, owner, step string) (*Session, error) {
	const q = `SELECT id, owner, step, turns, created_at, updated_at
	             FROM wizard_session
	            WHERE owner = ? AND step = ?
	            ORDER BY updated_at DESC
	            LIMIT 1`

	var row sessionRow
	err := r.db.GetContext(ctx, &row, q, owner, step)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("wizard: load latest: %w", err)
	}
	return decodeRow(row)
}

func decodeRow(row sessionRow) (*Session, error) {
	var turns []Turn
	if err := json.Unmarshal(row.Turns, &turns); err != nil || len(turns) == 0 {
		return nil, ErrNoSession
	}

	s := &Session{
		ID:        row.ID,
		Owner:     row.Owner,
		Step:      row.Step,
		Turns:     turns,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	s.Resume()
	return s, nil
}
