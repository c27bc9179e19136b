// Package database opens and migrates the service's sqlite databases.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

//go:embed schemas/*.sql
var schemaFS embed.FS

// Profile selects the durability/speed tradeoff of a database.
type Profile string

const (
	// ProfileDurable fsyncs every commit. Used for user accounts.
	ProfileDurable Profile = "durable"
	// ProfileStandard fsyncs at checkpoints. Used for settings.
	ProfileStandard Profile = "standard"
)

// DB wraps a sqlite connection pool together with its identity.
type DB struct {
	conn    *sql.DB
	path    string
	profile Profile
	name    string
}

// Config holds database configuration
type Config struct {
	Path    string
	Profile Profile
	Name    string // also selects the schema file applied by Migrate
}

// New opens the database, creating its directory when needed, and pings it.
func New(cfg Config) (*DB, error) {
	if !strings.HasPrefix(cfg.Path, "file:") {
		absPath, err := filepath.Abs(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		cfg.Path = absPath
	}

	if cfg.Profile == "" {
		cfg.Profile = ProfileStandard
	}

	conn, err := sql.Open("sqlite", connectionString(cfg.Path, cfg.Profile))
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Name, err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(12 * time.Hour)
	conn.SetConnMaxIdleTime(15 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", cfg.Name, err)
	}

	return &DB{
		conn:    conn,
		path:    cfg.Path,
		profile: cfg.Profile,
		name:    cfg.Name,
	}, nil
}

func connectionString(path string, profile Profile) string {
	pragmas := []string{"journal_mode(WAL)", "busy_timeout(5000)"}

	switch profile {
	case ProfileDurable:
		pragmas = append(pragmas, "synchronous(FULL)")
	default:
		pragmas = append(pragmas, "synchronous(NORMAL)", "temp_store(MEMORY)")
	}

	pragmas = append(pragmas,
		"foreign_keys(1)",
		"wal_autocheckpoint(1000)",
		"cache_size(-16000)",
	)

	var b strings.Builder
	b.WriteString(path)
	for i, p := range pragmas {
		if i == 0 {
			b.WriteString("?")
		} else {
			b.WriteString("&")
		}
		b.WriteString("_pragma=")
		b.WriteString(p)
	}
	return b.String()
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying pool for repositories.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Name returns the database name
func (db *DB) Name() string {
	return db.name
}

// Profile returns the database profile
func (db *DB) Profile() Profile {
	return db.profile
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Migrate applies schemas/<name>.sql. Databases without a schema file are left untouched.
// Every statement in a schema file is idempotent (CREATE ... IF NOT EXISTS).
func (db *DB) Migrate() error {
	content, err := schemaFS.ReadFile("schemas/" + db.name + ".sql")
	if err != nil {
		return nil
	}

	return WithTransaction(db.conn, func(tx *sql.Tx) error {
		if _, err := tx.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to apply schema for %s: %w", db.name, err)
		}
		return nil
	})
}

// WithTransaction runs fn inside a transaction, rolling back on error or panic.
func WithTransaction(conn *sql.DB, fn func(*sql.Tx) error) (err error) {
	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// QuickCheck pings the database.
func (db *DB) QuickCheck(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// CheckpointResult is the row returned by PRAGMA wal_checkpoint.
type CheckpointResult struct {
	Busy         int
	LogFrames    int
	Checkpointed int
}

// WALCheckpoint runs a WAL checkpoint in the given mode (PASSIVE, FULL, RESTART, TRUNCATE).
func (db *DB) WALCheckpoint(ctx context.Context, mode string) (*CheckpointResult, error) {
	switch mode {
	case "":
		mode = "PASSIVE"
	case "PASSIVE", "FULL", "RESTART", "TRUNCATE":
	default:
		return nil, fmt.Errorf("unknown checkpoint mode %q", mode)
	}

	var res CheckpointResult
	row := db.conn.QueryRowContext(ctx, fmt.Sprintf("PRAGMA wal_checkpoint(%s)", mode))
	if err := row.Scan(&res.Busy, &res.LogFrames, &res.Checkpointed); err != nil {
		return nil, fmt.Errorf("WAL checkpoint failed for %s: %w", db.name, err)
	}
	return &res, nil
}

// Stats describes the on-disk footprint of a database.
type Stats struct {
	Name         string `json:"name"`
	SizeBytes    int64  `json:"size_bytes"`
	WALSizeBytes int64  `json:"wal_size_bytes"`
	PageCount    int64  `json:"page_count"`
	PageSize     int64  `json:"page_size"`
}

// GetStats reads file sizes and page counters.
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{Name: db.name}

	if fi, err := os.Stat(db.path); err == nil {
		stats.SizeBytes = fi.Size()
	}
	if fi, err := os.Stat(db.path + "-wal"); err == nil {
		stats.WALSizeBytes = fi.Size()
	}

	if err := db.conn.QueryRow("PRAGMA page_count").Scan(&stats.PageCount); err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}
	if err := db.conn.QueryRow("PRAGMA page_size").Scan(&stats.PageSize); err != nil {
		return nil, fmt.Errorf("failed to get page size: %w", err)
	}

	return stats, nil
}
