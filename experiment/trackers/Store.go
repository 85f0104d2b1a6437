package trackers

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	ts "github.com/samuelfneumann/handreach/timestep"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	environment  TEXT NOT NULL,
	config_json  TEXT NOT NULL,
	seed         INTEGER NOT NULL,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS episodes (
	run_id        TEXT NOT NULL,
	episode       INTEGER NOT NULL,
	steps         INTEGER NOT NULL,
	ep_return     REAL NOT NULL,
	final_reward  REAL NOT NULL,
	PRIMARY KEY (run_id, episode),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// ErrNoRun is returned when episodes are tracked before a run is begun
var ErrNoRun = errors.New("no run begun")

// Run describes one run of an experiment
type Run struct {
	ID          uuid.UUID
	Environment string
	ConfigJSON  string
	Seed        uint64
	CreatedAt   time.Time
}

// Episode summarizes one finished episode of a run
type Episode struct {
	Episode     int
	Steps       int
	Return      float64
	FinalReward float64
}

// Store is a Tracker which records a summary row for every finished
// episode in a SQLite database. Episodes are cached by Track and
// written in a single transaction by Save. Every run of an experiment
// is identified by a random UUID.
type Store struct {
	db *sql.DB

	run     uuid.UUID
	episode int
	current Episode
	pending []Episode
}

// NewStore opens a SQLite database and runs migrations
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("newStore: open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("newStore: pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("newStore: pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("newStore: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun records a new run and directs all further episodes to it.
// Episodes of a previous run that have not been saved are discarded.
func (s *Store) BeginRun(environment, configJSON string,
	seed uint64) (uuid.UUID, error) {
	id := uuid.New()
	now := time.Now().UTC()

	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, environment, config_json, seed, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id.String(), environment, configJSON, int64(seed),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("beginRun: insert run: %w", err)
	}

	s.run = id
	s.episode = 0
	s.current = Episode{}
	s.pending = nil
	return id, nil
}

// Track accumulates the return of the current episode and caches its
// summary once the episode ends
func (s *Store) Track(t ts.TimeStep) error {
	if s.run == uuid.Nil {
		return fmt.Errorf("track: %w", ErrNoRun)
	}

	if t.First() {
		s.current = Episode{Episode: s.episode}
	}
	s.current.Return += t.Reward
	s.current.Steps = t.Number

	if t.Last() {
		s.current.FinalReward = t.Reward
		s.pending = append(s.pending, s.current)
		s.episode++
		s.current = Episode{Episode: s.episode}
	}
	return nil
}

// Save writes all cached episodes of the current run
func (s *Store) Save() error {
	if s.run == uuid.Nil {
		return fmt.Errorf("save: %w", ErrNoRun)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, e := range s.pending {
		_, err := tx.Exec(
			`INSERT INTO episodes (run_id, episode, steps, ep_return, final_reward)
			 VALUES (?, ?, ?, ?, ?)`,
			s.run.String(), e.Episode, e.Steps, e.Return, e.FinalReward,
		)
		if err != nil {
			return fmt.Errorf("save: insert episode %v: %w", e.Episode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save: commit: %w", err)
	}
	s.pending = nil
	return nil
}

// Runs returns every recorded run, oldest first
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT run_id, environment, config_json, seed, created_at
		 FROM runs ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("runs: query: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var id, created string
		var seed int64
		var r Run
		if err := rows.Scan(&id, &r.Environment, &r.ConfigJSON, &seed,
			&created); err != nil {
			return nil, fmt.Errorf("runs: scan: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("runs: parse id: %w", err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("runs: parse time: %w", err)
		}
		r.Seed = uint64(seed)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Episodes returns the saved episodes of run id, in order
func (s *Store) Episodes(id uuid.UUID) ([]Episode, error) {
	rows, err := s.db.Query(
		`SELECT episode, steps, ep_return, final_reward
		 FROM episodes WHERE run_id = ? ORDER BY episode`,
		id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("episodes: query: %w", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		var e Episode
		if err := rows.Scan(&e.Episode, &e.Steps, &e.Return,
			&e.FinalReward); err != nil {
			return nil, fmt.Errorf("episodes: scan: %w", err)
		}
		episodes = append(episodes, e)
	}
	return episodes, rows.Err()
}
