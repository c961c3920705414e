package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/wricardo/mcp-training/plantmerge/game/engine"
	"github.com/wricardo/mcp-training/plantmerge/game/service"
	"github.com/wricardo/mcp-training/plantmerge/game/session/migrations"
	"github.com/wricardo/mcp-training/plantmerge/logging"
)

// SQLitePersistence implements SessionPersistence on a SQLite database.
// The token overrides live in their own table, one row per touched token;
// the rest of the game state is stored as JSON next to a few queryable columns.
type SQLitePersistence struct {
	sqlDB         *sql.DB
	configManager service.ConfigManager
	logger        *zap.Logger
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// OpenSQLitePersistence opens the database at path and applies embedded migrations
func OpenSQLitePersistence(path string, configManager service.ConfigManager, logger *zap.Logger) (*SQLitePersistence, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLitePersistence{
		sqlDB:         sqlDB,
		configManager: configManager,
		logger:        logging.OrNop(logger).Named("session.sqlite"),
	}, nil
}

// Close closes the SQLite handle
func (sp *SQLitePersistence) Close() error {
	if sp == nil || sp.sqlDB == nil {
		return nil
	}
	return sp.sqlDB.Close()
}

// Save upserts the session row and replaces its token overrides in one transaction
func (sp *SQLitePersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	configID, err := configIDFromName(sp.configManager, session.Config.Name)
	if err != nil {
		return fmt.Errorf("failed to get config ID: %w", err)
	}

	state := session.Engine.GetState()

	// Overrides are stored as rows; tokens are derived on load
	rest := *state
	rest.TokenOverrides = nil
	rest.Tokens = nil
	stateJSON, err := json.Marshal(&rest)
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %w", err)
	}

	ctx := context.Background()
	tx, err := sp.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (
		   id, config_name, created_at, last_accessed_at,
		   player_lat, player_lng, held_value, mode, victory, state_json
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   config_name = excluded.config_name,
		   last_accessed_at = excluded.last_accessed_at,
		   player_lat = excluded.player_lat,
		   player_lng = excluded.player_lng,
		   held_value = excluded.held_value,
		   mode = excluded.mode,
		   victory = excluded.victory,
		   state_json = excluded.state_json`,
		session.ID,
		configID,
		toMillis(session.CreatedAt),
		toMillis(session.LastAccessedAt),
		state.PlayerPos.Lat,
		state.PlayerPos.Lng,
		state.HeldValue,
		string(state.Mode),
		state.Victory,
		string(stateJSON),
	); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM token_overrides WHERE session_id = ?`, session.ID); err != nil {
		return fmt.Errorf("clear token overrides: %w", err)
	}

	if len(state.TokenOverrides) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO token_overrides (session_id, token_key, value) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare token override insert: %w", err)
		}
		defer stmt.Close()

		for key, value := range state.TokenOverrides {
			if _, err := stmt.ExecContext(ctx, session.ID, key, value); err != nil {
				return fmt.Errorf("insert token override %s: %w", key, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save transaction: %w", err)
	}
	return nil
}

// Load retrieves a session and its token overrides
func (sp *SQLitePersistence) Load(id string) (*service.Session, error) {
	var (
		data      PersistedSessionData
		createdAt int64
		accessed  int64
		lat, lng  float64
		held      int
		mode      string
		victory   bool
		stateJSON string
	)

	err := sp.sqlDB.QueryRow(
		`SELECT id, config_name, created_at, last_accessed_at,
		        player_lat, player_lng, held_value, mode, victory, state_json
		   FROM sessions WHERE id = ?`, id,
	).Scan(&data.ID, &data.ConfigName, &createdAt, &accessed, &lat, &lng, &held, &mode, &victory, &stateJSON)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	data.CreatedAt = fromMillis(createdAt)
	data.LastAccessedAt = fromMillis(accessed)

	overrides, err := sp.loadOverrides(id)
	if err != nil {
		return nil, err
	}

	// The columns are authoritative; the JSON carries history and counters
	state, decodeErr := decodeState([]byte(stateJSON))
	if decodeErr != nil || state == nil {
		if decodeErr != nil {
			sp.logger.Warn("malformed state_json, keeping core columns only",
				zap.String("session_id", data.ID), zap.Error(decodeErr))
		}
		state = &engine.GameState{}
	}
	state.PlayerPos = engine.LatLng{Lat: lat, Lng: lng}
	state.HeldValue = held
	state.Mode = engine.MoveMode(mode)
	state.Victory = victory
	state.TokenOverrides = overrides

	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game state: %w", err)
	}
	data.GameState = raw

	return restoreSession(data, sp.configManager, sp.logger)
}

func (sp *SQLitePersistence) loadOverrides(id string) (engine.MemoryStore, error) {
	rows, err := sp.sqlDB.Query(`SELECT token_key, value FROM token_overrides WHERE session_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("query token overrides: %w", err)
	}
	defer rows.Close()

	overrides := engine.MemoryStore{}
	for rows.Next() {
		var key string
		var value int
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan token override: %w", err)
		}
		overrides[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token overrides: %w", err)
	}
	return overrides, nil
}

// Delete removes a session and its token overrides
func (sp *SQLitePersistence) Delete(id string) error {
	ctx := context.Background()
	tx, err := sp.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Not relying on the cascade: foreign_keys is per connection
	if _, err := tx.ExecContext(ctx, `DELETE FROM token_overrides WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("delete token overrides: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return tx.Commit()
}

// ListAll returns all persisted session IDs, most recently used first
func (sp *SQLitePersistence) ListAll() ([]string, error) {
	rows, err := sp.sqlDB.Query(`SELECT id FROM sessions ORDER BY last_accessed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists checks if a session row exists
func (sp *SQLitePersistence) Exists(id string) bool {
	var found int
	err := sp.sqlDB.QueryRow(`SELECT 1 FROM sessions WHERE id = ?`, id).Scan(&found)
	return err == nil
}

// CountOverrides returns how many token overrides are stored for a session
func (sp *SQLitePersistence) CountOverrides(id string) (int, error) {
	var n int
	if err := sp.sqlDB.QueryRow(`SELECT COUNT(*) FROM token_overrides WHERE session_id = ?`, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("count token overrides: %w", err)
	}
	return n, nil
}
