// Package keyring keeps generated keys in a local sqlite database.
package keyring

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fortio.org/safecast"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"rsaforge/internal/keyfile"
)

// ErrNotFound indicates an unknown key id.
var ErrNotFound = errors.New("key not found")

const schema = `
CREATE TABLE IF NOT EXISTS keys (
	id TEXT PRIMARY KEY,
	bits INTEGER NOT NULL,
	created DATETIME NOT NULL,
	label TEXT NOT NULL DEFAULT '',
	payload BLOB NOT NULL
);`

// Entry is a key ring listing row.
type Entry struct {
	ID      string
	Bits    int
	Created time.Time
	Label   string
	Private bool
}

// Ring is an open key ring. It is safe for concurrent use.
type Ring struct {
	db *sql.DB
}

// Open opens (creating if needed) the key ring at path.
func Open(path string) (*Ring, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close() //nolint:errcheck
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Ring{db: db}, nil
}

// Close releases the database handle.
func (r *Ring) Close() error { return r.db.Close() }

// Put stores p, replacing any key with the same id. An empty id gets a new
// random one, which is written back into p.
func (r *Ring) Put(ctx context.Context, p *keyfile.Payload) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	} else if _, err := uuid.Parse(p.ID); err != nil {
		return fmt.Errorf("key id %q: %w", p.ID, err)
	}
	data, err := keyfile.Marshal(p)
	if err != nil {
		return err
	}
	bits, err := safecast.Conv[int64](p.Bits)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO keys (id, bits, created, label, payload) VALUES (?, ?, ?, ?, ?)",
		p.ID, bits, p.Created.UTC(), p.Label, data)
	return err
}

// Get loads the key with the given id.
func (r *Ring) Get(ctx context.Context, id string) (*keyfile.Payload, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, "SELECT payload FROM keys WHERE id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return keyfile.Unmarshal(data)
}

// List returns all keys, newest first.
func (r *Ring) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, bits, created, label, payload FROM keys ORDER BY created DESC, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e    Entry
			bits int64
			data []byte
		)
		if err := rows.Scan(&e.ID, &bits, &e.Created, &e.Label, &data); err != nil {
			return nil, err
		}
		if e.Bits, err = safecast.Conv[int](bits); err != nil {
			return nil, err
		}
		p, err := keyfile.Unmarshal(data)
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", e.ID, err)
		}
		e.Private = p.HasPrivate()
		out = append(out, e)
	}
	return out, rows.Err()
}

// Delete removes the key with the given id.
func (r *Ring) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM keys WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}
