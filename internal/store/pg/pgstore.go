// Package pg implements the account and achievement stores on PostgreSQL
// via database/sql over the pgx stdlib driver.
package pg

import (
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Store bundles the database handle shared by the concrete stores.
type Store struct {
	db *sql.DB
}

// Open connects to PostgreSQL and tunes the pool.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing handle (tests use sqlmock through this).
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the raw handle for readiness probes and migrations.
func (s *Store) DB() *sql.DB { return s.db }

// Accounts returns the account store backed by this database.
func (s *Store) Accounts() *AccountStore { return &AccountStore{db: s.db} }

// Records returns the achievement store backed by this database.
func (s *Store) Records() *RecordStore { return &RecordStore{db: s.db} }
