// Package storage provides SQLite-based persistence for game replays.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-tetris/internal/config"
	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/games/tetris"
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// Replay is a stored session: the inputs needed to re-simulate it and the
// counters it finished with.
type Replay struct {
	ID        int64
	GameID    string
	Seed      int64
	TickRate  int
	Preset    string
	Config    config.TetrisConfig
	Ticks     uint64
	Score     int
	Lines     int
	Level     int
	Events    []tetris.ReplayEvent // Only filled by ReplayByID
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS replays (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			seed INTEGER NOT NULL,
			tick_rate INTEGER NOT NULL,
			preset TEXT NOT NULL DEFAULT '',
			board_width INTEGER NOT NULL,
			board_height INTEGER NOT NULL,
			initial_fall_ms INTEGER NOT NULL,
			min_fall_ms INTEGER NOT NULL,
			fall_step_ms INTEGER NOT NULL,
			line_points INTEGER NOT NULL,
			lines_per_level INTEGER NOT NULL,
			ticks INTEGER NOT NULL,
			score INTEGER NOT NULL,
			lines INTEGER NOT NULL,
			level INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_replays_game_id ON replays(game_id);

		CREATE TABLE IF NOT EXISTS replay_events (
			replay_id INTEGER NOT NULL REFERENCES replays(id),
			tick INTEGER NOT NULL,
			action INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_replay_events_replay ON replay_events(replay_id, tick);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveReplay stores a replay and its events in one transaction.
// Returns the ID of the inserted replay.
func (s *Store) SaveReplay(r Replay) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	//nolint:errcheck // Rollback after Commit is a no-op
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO replays
		 (game_id, seed, tick_rate, preset, board_width, board_height,
		  initial_fall_ms, min_fall_ms, fall_step_ms, line_points, lines_per_level,
		  ticks, score, lines, level)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.GameID, r.Seed, r.TickRate, r.Preset,
		r.Config.Board.Width, r.Config.Board.Height,
		r.Config.Timing.InitialFallMs, r.Config.Timing.MinFallMs, r.Config.Timing.FallStepMs,
		r.Config.Scoring.LinePoints, r.Config.Scoring.LinesPerLevel,
		int64(r.Ticks), r.Score, r.Lines, r.Level,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save replay: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO replay_events (replay_id, tick, action) VALUES (?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("storage: cannot prepare event insert: %w", err)
	}
	defer stmt.Close()

	for _, ev := range r.Events {
		for _, a := range ev.Actions {
			if _, err := stmt.Exec(id, int64(ev.Tick), int(a)); err != nil {
				return 0, fmt.Errorf("storage: cannot save replay event: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit replay: %w", err)
	}
	return id, nil
}

const replayColumns = `id, game_id, seed, tick_rate, preset, board_width, board_height,
	initial_fall_ms, min_fall_ms, fall_step_ms, line_points, lines_per_level,
	ticks, score, lines, level, created_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanReplay(row rowScanner) (Replay, error) {
	var r Replay
	var ticks int64
	var createdAt any

	err := row.Scan(
		&r.ID, &r.GameID, &r.Seed, &r.TickRate, &r.Preset,
		&r.Config.Board.Width, &r.Config.Board.Height,
		&r.Config.Timing.InitialFallMs, &r.Config.Timing.MinFallMs, &r.Config.Timing.FallStepMs,
		&r.Config.Scoring.LinePoints, &r.Config.Scoring.LinesPerLevel,
		&ticks, &r.Score, &r.Lines, &r.Level, &createdAt,
	)
	if err != nil {
		return r, err
	}

	r.Ticks = uint64(ticks)
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

// parseTime handles the driver returning either time.Time or a string.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// ReplayByID loads a replay with its events.
// Returns nil, nil if no replay has that ID.
func (s *Store) ReplayByID(id int64) (*Replay, error) {
	r, err := scanReplay(s.db.QueryRow(
		"SELECT "+replayColumns+" FROM replays WHERE id = ?", id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query replay: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT tick, action FROM replay_events
		 WHERE replay_id = ?
		 ORDER BY tick, action`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query replay events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tick int64
		var action int
		if err := rows.Scan(&tick, &action); err != nil {
			return nil, fmt.Errorf("storage: cannot scan event row: %w", err)
		}

		// Rows are ordered, so actions of one tick are adjacent
		n := len(r.Events)
		if n > 0 && r.Events[n-1].Tick == uint64(tick) {
			r.Events[n-1].Actions = append(r.Events[n-1].Actions, core.Action(action))
			continue
		}
		r.Events = append(r.Events, tetris.ReplayEvent{
			Tick:    uint64(tick),
			Actions: []core.Action{core.Action(action)},
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return &r, nil
}

// RecentReplays returns the newest replays without their events.
func (s *Store) RecentReplays(limit int) ([]Replay, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		"SELECT "+replayColumns+" FROM replays ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query replays: %w", err)
	}
	defer rows.Close()

	var replays []Replay
	for rows.Next() {
		r, err := scanReplay(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		replays = append(replays, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return replays, nil
}

// DeleteReplay removes a replay and its events.
// Deleting a missing replay is not an error.
func (s *Store) DeleteReplay(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	//nolint:errcheck // Rollback after Commit is a no-op
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM replay_events WHERE replay_id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot delete replay events: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM replays WHERE id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot delete replay: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit delete: %w", err)
	}
	return nil
}

// FromRecording converts a finished session into a storable replay.
func FromRecording(gameID string, rec tetris.Recording) Replay {
	return Replay{
		GameID:   gameID,
		Seed:     rec.Seed,
		TickRate: rec.TickRate,
		Preset:   rec.Preset,
		Config:   rec.Config,
		Ticks:    rec.Ticks,
		Score:    rec.Final.Score,
		Lines:    rec.Final.Lines,
		Level:    rec.Final.Level,
		Events:   rec.Events,
	}
}

// Recording converts a stored replay back into a recording that
// tetris.Replay can verify. Only the final counters are known.
func (r Replay) Recording() tetris.Recording {
	return tetris.Recording{
		Seed:     r.Seed,
		TickRate: r.TickRate,
		Preset:   r.Preset,
		Config:   r.Config,
		Ticks:    r.Ticks,
		Events:   r.Events,
		Final: tetris.GameState{
			Score: r.Score,
			Lines: r.Lines,
			Level: r.Level,
		},
	}
}
