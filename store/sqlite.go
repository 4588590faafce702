package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/lixenwraith/forager/trial"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements DB on SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at path; ":memory:" gives a private in-memory store
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and writes serialized
	db.SetMaxOpenConns(1)

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates the schema
func (s *SQLiteStore) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS trials (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			started_at DATETIME NOT NULL,
			elapsed_ms REAL NOT NULL,
			aborted INTEGER NOT NULL DEFAULT 0,
			timed_out INTEGER NOT NULL DEFAULT 0,
			seed TEXT,
			score INTEGER NOT NULL,
			targets INTEGER NOT NULL,
			distractors INTEGER NOT NULL,
			collected_targets INTEGER NOT NULL,
			collected_distractors INTEGER NOT NULL,
			remaining_targets INTEGER NOT NULL,
			remaining_distractors INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS clicks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			trial_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			button TEXT NOT NULL,
			kind TEXT NOT NULL,
			reaction_ms REAL NOT NULL,
			at_ms REAL NOT NULL,
			hit INTEGER NOT NULL,
			removed INTEGER NOT NULL,
			scored INTEGER NOT NULL,
			instance_seq INTEGER NOT NULL,
			instance_kind TEXT NOT NULL,
			role TEXT NOT NULL,
			value INTEGER NOT NULL,
			distance REAL NOT NULL,
			FOREIGN KEY (trial_id) REFERENCES trials(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_clicks_trial ON clicks(trial_id, seq)`,
		`CREATE INDEX IF NOT EXISTS idx_trials_started ON trials(started_at DESC)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SaveResult stores the trial summary and its clicks in one transaction
func (s *SQLiteStore) SaveResult(res trial.Result) error {
	if res.ID == "" {
		return fmt.Errorf("result has no trial ID")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var seed sql.NullString
	if res.Seed != nil {
		seed = sql.NullString{String: strconv.FormatUint(*res.Seed, 10), Valid: true}
	}

	_, err = tx.Exec(`INSERT INTO trials (
		id, name, started_at, elapsed_ms, aborted, timed_out, seed, score,
		targets, distractors, collected_targets, collected_distractors,
		remaining_targets, remaining_distractors
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, res.Name, res.StartedAt.UTC(), millis(res.Elapsed), boolInt(res.Aborted), boolInt(res.TimedOut),
		seed, res.Score, res.Targets, res.Distractors, res.CollectedTargets, res.CollectedDistractors,
		res.RemainingTargets, res.RemainingDistractors,
	)
	if err != nil {
		return fmt.Errorf("insert trial: %w", err)
	}

	if len(res.Clicks) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO clicks (
			trial_id, seq, x, y, button, kind, reaction_ms, at_ms, hit, removed, scored,
			instance_seq, instance_kind, role, value, distance
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare click insert: %w", err)
		}
		defer stmt.Close()

		for _, c := range res.Clicks {
			_, err := stmt.Exec(res.ID, c.Seq, c.X, c.Y, c.Button.String(), c.Kind.String(),
				millis(c.ReactionTime), millis(c.At), boolInt(c.Hit), boolInt(c.Removed), boolInt(c.Scored),
				c.InstanceSeq, c.InstanceKind, c.Role.String(), c.Value, c.Distance)
			if err != nil {
				return fmt.Errorf("insert click %d: %w", c.Seq, err)
			}
		}
	}

	return tx.Commit()
}

const trialColumns = `t.id, t.name, t.started_at, t.elapsed_ms, t.aborted, t.timed_out, t.seed, t.score,
	t.targets, t.distractors, t.collected_targets, t.collected_distractors,
	t.remaining_targets, t.remaining_distractors, t.created_at,
	(SELECT COUNT(*) FROM clicks c WHERE c.trial_id = t.id)`

type scanner interface {
	Scan(dest ...any) error
}

func scanTrial(row scanner) (*Trial, error) {
	var tr Trial
	var aborted, timedOut int
	var seed sql.NullString

	err := row.Scan(&tr.ID, &tr.Name, &tr.StartedAt, &tr.ElapsedMs, &aborted, &timedOut, &seed, &tr.Score,
		&tr.Targets, &tr.Distractors, &tr.CollectedTargets, &tr.CollectedDistractors,
		&tr.RemainingTargets, &tr.RemainingDistractors, &tr.CreatedAt, &tr.ClickCount)
	if err != nil {
		return nil, err
	}

	tr.Aborted = aborted == 1
	tr.TimedOut = timedOut == 1
	if seed.Valid {
		v, err := strconv.ParseUint(seed.String, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("trial %s has invalid seed %q: %w", tr.ID, seed.String, err)
		}
		tr.Seed = &v
	}
	return &tr, nil
}

// GetTrial retrieves a trial by ID
func (s *SQLiteStore) GetTrial(id string) (*Trial, error) {
	row := s.db.QueryRow(`SELECT `+trialColumns+` FROM trials t WHERE t.id = ?`, id)
	tr, err := scanTrial(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get trial %s: %w", id, err)
	}
	return tr, nil
}

// ListTrials returns the most recent trials first; limit <= 0 selects 50
func (s *SQLiteStore) ListTrials(limit int) ([]Trial, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`SELECT `+trialColumns+` FROM trials t
		ORDER BY t.started_at DESC, t.id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list trials: %w", err)
	}
	defer rows.Close()

	trials := []Trial{}
	for rows.Next() {
		tr, err := scanTrial(rows)
		if err != nil {
			return nil, err
		}
		trials = append(trials, *tr)
	}
	return trials, rows.Err()
}

// ListClicks returns the clicks of a trial in input order
func (s *SQLiteStore) ListClicks(trialID string) ([]Click, error) {
	if _, err := s.GetTrial(trialID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT id, trial_id, seq, x, y, button, kind, reaction_ms, at_ms,
		hit, removed, scored, instance_seq, instance_kind, role, value, distance
		FROM clicks WHERE trial_id = ? ORDER BY seq`, trialID)
	if err != nil {
		return nil, fmt.Errorf("list clicks: %w", err)
	}
	defer rows.Close()

	clicks := []Click{}
	for rows.Next() {
		var c Click
		var hit, removed, scored int
		err := rows.Scan(&c.ID, &c.TrialID, &c.Seq, &c.X, &c.Y, &c.Button, &c.Kind, &c.ReactionMs, &c.AtMs,
			&hit, &removed, &scored, &c.InstanceSeq, &c.InstanceKind, &c.Role, &c.Value, &c.Distance)
		if err != nil {
			return nil, err
		}
		c.Hit, c.Removed, c.Scored = hit == 1, removed == 1, scored == 1
		clicks = append(clicks, c)
	}
	return clicks, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Compile-time interface check
var _ DB = (*SQLiteStore)(nil)
