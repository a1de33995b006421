// Package repo persists session state in the workspace SQLite database.
package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"studyboard/internal/domain"
)

type Repo struct {
	DB  *sql.DB
	Now func() time.Time
}

var ErrNotFound = errors.New("not found")

// sessionRecord is the serialized actor kept under a session key.
type sessionRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Password  string `json:"password,omitempty"`
}

func (r Repo) now() string {
	if r.Now != nil {
		return r.Now().UTC().Format(time.RFC3339)
	}
	return time.Now().UTC().Format(time.RFC3339)
}

// SaveSession writes actor under key, replacing any previous value.
func (r Repo) SaveSession(ctx context.Context, key string, actor domain.Actor) error {
	if key == "" {
		return errors.New("session key required")
	}
	payload, err := json.Marshal(sessionRecord{
		ID:        actor.ID,
		Name:      actor.Name,
		Role:      string(actor.Role),
		AvatarURL: actor.AvatarURL,
		Password:  actor.Password,
	})
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `INSERT INTO session_state(key,value_json,updated_at) VALUES (?,?,?)
ON CONFLICT(key) DO UPDATE SET value_json=excluded.value_json, updated_at=excluded.updated_at`, key, string(payload), r.now())
	return err
}

// LoadSession returns the actor stored under key, or ErrNotFound.
func (r Repo) LoadSession(ctx context.Context, key string) (domain.Actor, error) {
	var payload string
	err := r.DB.QueryRowContext(ctx, `SELECT value_json FROM session_state WHERE key=?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Actor{}, ErrNotFound
	}
	if err != nil {
		return domain.Actor{}, err
	}
	var rec sessionRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return domain.Actor{}, fmt.Errorf("decode session %s: %w", key, err)
	}
	return domain.Actor{
		ID:        rec.ID,
		Name:      rec.Name,
		Role:      domain.Role(rec.Role),
		AvatarURL: rec.AvatarURL,
		Password:  rec.Password,
	}, nil
}

// DeleteSession erases key. Deleting a missing key is not an error.
func (r Repo) DeleteSession(ctx context.Context, key string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM session_state WHERE key=?`, key)
	return err
}

// SessionUpdatedAt reports when key was last written.
func (r Repo) SessionUpdatedAt(ctx context.Context, key string) (time.Time, error) {
	var ts string
	err := r.DB.QueryRowContext(ctx, `SELECT updated_at FROM session_state WHERE key=?`, key).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, ts)
}
