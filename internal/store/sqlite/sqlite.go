package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MrSnakeDoc/docs/internal/store"
)

const schema = `CREATE TABLE IF NOT EXISTS app_state (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Backend stores the state document as one row of an SQLite table.
type Backend struct {
	db  *sql.DB
	key string
}

// New opens (or creates) the SQLite database at path and prepares the table.
func New(path, key string) (*Backend, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if key == "" {
		return nil, errors.New("storage key is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; also makes Update transactions strictly serial.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Backend{db: db, key: key}, nil
}

func (b *Backend) Name() string { return "sqlite" }

func (b *Backend) Read(ctx context.Context) ([]byte, error) {
	return readValue(ctx, b.db, b.key)
}

func (b *Backend) Write(ctx context.Context, data []byte) error {
	return writeValue(ctx, b.db, b.key, data)
}

func (b *Backend) Update(ctx context.Context, fn store.UpdateFunc) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := readValue(ctx, tx, b.key)
	found := true
	if errors.Is(err, store.ErrBlobNotFound) {
		found = false
	} else if err != nil {
		return err
	}

	next, err := fn(current, found)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}

	if err := writeValue(ctx, tx, b.key, next); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (b *Backend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

func (b *Backend) Close() error {
	return b.db.Close()
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func readValue(ctx context.Context, q querier, key string) ([]byte, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrBlobNotFound
		}
		return nil, fmt.Errorf("read state: %w", err)
	}
	return []byte(value), nil
}

func writeValue(ctx context.Context, q querier, key string, data []byte) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}
