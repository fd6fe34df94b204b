// Package repository persists the battle transcript: which battles were
// created and the lifecycle events each one produced. The transcript is an
// audit log; live battle state lives in the registry and is never
// rehydrated from here.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/oksmith/ai-rap-battle/internal/domain"
)

// Store is the transcript persistence interface.
type Store interface {
	CreateBattle(ctx context.Context, battle *domain.Battle) error
	CreateEvent(ctx context.Context, event *domain.BattleEvent) error
	GetEvents(ctx context.Context, battleID string, afterTs int64, limit int) ([]domain.BattleEvent, error)
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the transcript database.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS battles (
			battle_id TEXT PRIMARY KEY,
			participant_a TEXT NOT NULL,
			participant_b TEXT NOT NULL,
			total_rounds INTEGER NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS battle_events (
			event_id TEXT PRIMARY KEY,
			battle_id TEXT NOT NULL,
			ts INTEGER NOT NULL,
			type TEXT NOT NULL,
			payload TEXT,
			FOREIGN KEY (battle_id) REFERENCES battles(battle_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_battle_events_battle ON battle_events(battle_id, ts)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateBattle inserts the battle's identity row.
func (s *SQLiteStore) CreateBattle(ctx context.Context, battle *domain.Battle) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO battles (battle_id, participant_a, participant_b, total_rounds, created_at) VALUES (?, ?, ?, ?, ?)`,
		battle.ID, battle.ParticipantA, battle.ParticipantB, battle.TotalRounds, battle.CreatedAt)
	return err
}

// CreateEvent appends one transcript event.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event *domain.BattleEvent) error {
	payload := ""
	if event.Payload != nil {
		payload = string(event.Payload)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO battle_events (event_id, battle_id, ts, type, payload) VALUES (?, ?, ?, ?, ?)`,
		event.EventID, event.BattleID, event.Ts, event.Type, payload)
	return err
}

// GetEvents returns the battle's transcript in timestamp order.
func (s *SQLiteStore) GetEvents(ctx context.Context, battleID string, afterTs int64, limit int) ([]domain.BattleEvent, error) {
	query := `SELECT event_id, battle_id, ts, type, payload FROM battle_events WHERE battle_id = ?`
	args := []interface{}{battleID}

	if afterTs > 0 {
		query += ` AND ts > ?`
		args = append(args, afterTs)
	}

	// rowid breaks ties for events recorded within the same millisecond.
	query += ` ORDER BY ts ASC, rowid ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.BattleEvent
	for rows.Next() {
		var event domain.BattleEvent
		var payload sql.NullString
		if err := rows.Scan(&event.EventID, &event.BattleID, &event.Ts, &event.Type, &payload); err != nil {
			return nil, err
		}
		if payload.Valid && payload.String != "" {
			event.Payload = json.RawMessage(payload.String)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
