package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"courier/internal/config"
	"courier/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrUnavailable wraps any failure to establish the storage session:
// unreachable host, bad credentials, failed schema bootstrap.
var ErrUnavailable = errors.New("storage unavailable")

// ErrNotConnected is the soft failure every operation returns when the
// session is down. Callers mark the affected message and move on.
var ErrNotConnected = errors.New("storage not connected")

// Store is the relational gateway for received messages. Connect runs the
// embedded migrations, so the schema exists by the time the first save is
// attempted. All other operations degrade to ErrNotConnected instead of
// failing hard when the session is gone.
type Store struct {
	mu        sync.Mutex
	cfg       config.Database
	db        *sql.DB
	connected atomic.Bool
}

func New(cfg config.Database) *Store {
	return &Store{cfg: cfg}
}

// Configure replaces the connection parameters. Rejected while connected.
func (s *Store) Configure(cfg config.Database) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected.Load() {
		return errors.New("cannot reconfigure while connected")
	}
	s.cfg = cfg
	return nil
}

func (s *Store) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected.Load() {
		return nil
	}

	db, err := sql.Open("postgres", s.dsn())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	s.db = db
	s.connected.Store(true)
	return nil
}

// Disconnect closes the session. Idempotent.
func (s *Store) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connected.Store(false)
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// IsConnected probes the session instead of trusting the cached flag; a
// failed probe flips the flag false.
func (s *Store) IsConnected(ctx context.Context) bool {
	if !s.connected.Load() || s.db == nil {
		return false
	}
	if err := s.db.PingContext(ctx); err != nil {
		s.connected.Store(false)
		return false
	}
	return true
}

// Save inserts one row and writes the generated key back into msg.
func (s *Store) Save(ctx context.Context, msg *model.Message) error {
	if !s.IsConnected(ctx) {
		return ErrNotConnected
	}
	const query = `
		INSERT INTO received_messages (content, sender_ip, received_at, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	status := msg.Status
	if status == "" {
		status = model.StatusReceived
	}
	err := s.db.QueryRowContext(ctx, query, msg.Content, msg.SenderIP, msg.ReceivedAt, status).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// Recent returns every stored message, newest first. Empty when the session
// is down.
func (s *Store) Recent(ctx context.Context) ([]model.Message, error) {
	if !s.IsConnected(ctx) {
		return nil, nil
	}
	const query = `
		SELECT id, content, sender_ip, received_at, status
		FROM received_messages
		ORDER BY received_at DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var out []model.Message
	for rows.Next() {
		var msg model.Message
		var senderIP sql.NullString
		if err := rows.Scan(&msg.ID, &msg.Content, &senderIP, &msg.ReceivedAt, &msg.Status); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.SenderIP = senderIP.String
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return out, nil
}

func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	if !s.IsConnected(ctx) {
		return ErrNotConnected
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM received_messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete message %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete message %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("message %d not found", id)
	}
	return nil
}

func (s *Store) ClearAll(ctx context.Context) error {
	if !s.IsConnected(ctx) {
		return ErrNotConnected
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM received_messages`); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	return nil
}

// Count returns the stored row count, zero when the session is down.
func (s *Store) Count(ctx context.Context) (int, error) {
	if !s.IsConnected(ctx) {
		return 0, nil
	}
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM received_messages`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}

func (s *Store) dsn() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		s.cfg.Host, s.cfg.Port, s.cfg.Name, s.cfg.User, s.cfg.Password, s.cfg.SSLMode,
	)
}

func runMigrations(db *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
