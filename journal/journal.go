// Package journal provides SQLite-based run recording: window statistics
// appended as the run progresses, plus a replaceable checkpoint of the
// latest population snapshot.
package journal

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/tetch/pond/telemetry"
)

// Journal wraps a SQLite connection scoped to a single run. Every write is
// tagged with the run id, so one database can hold many runs.
type Journal struct {
	conn  *sqlx.DB
	runID string
}

// Open opens or creates the journal database at path and registers a new
// run with the given seed. Returns nil if path is empty (journal disabled).
func Open(path string, seed int64) (*Journal, error) {
	if path == "" {
		return nil, nil
	}

	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	j := &Journal{conn: conn, runID: uuid.NewString()}
	if err := j.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}

	_, err = conn.Exec(
		"INSERT INTO runs (id, started_at, seed) VALUES (?, ?, ?)",
		j.runID, time.Now().UTC().Format(time.RFC3339), seed,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("register run: %w", err)
	}

	return j, nil
}

// RunID returns the run's unique identifier.
func (j *Journal) RunID() string {
	if j == nil {
		return ""
	}
	return j.runID
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.conn.Close()
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		seed INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS windows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		window_end INTEGER NOT NULL,
		sim_time REAL NOT NULL,
		population INTEGER NOT NULL,
		asleep INTEGER NOT NULL,
		max_generation INTEGER NOT NULL,
		births INTEGER NOT NULL,
		deaths INTEGER NOT NULL,
		matings INTEGER NOT NULL,
		discarded_events INTEGER NOT NULL,
		food_consumed REAL NOT NULL,
		nurtured REAL NOT NULL,
		energy_mean REAL NOT NULL,
		energy_p50 REAL NOT NULL,
		food_available REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS organisms (
		run_id TEXT NOT NULL,
		id INTEGER NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		heading REAL NOT NULL,
		energy REAL NOT NULL,
		age REAL NOT NULL,
		state TEXT NOT NULL,
		sex INTEGER NOT NULL,
		generation INTEGER NOT NULL,
		is_child INTEGER NOT NULL,
		home_id INTEGER NOT NULL,
		PRIMARY KEY (run_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_windows_run ON windows(run_id, window_end);
	`
	_, err := j.conn.Exec(schema)
	return err
}

// WriteWindow appends one window's statistics for this run.
func (j *Journal) WriteWindow(stats telemetry.WindowStats) error {
	if j == nil {
		return nil
	}
	_, err := j.conn.Exec(`INSERT INTO windows
		(run_id, window_end, sim_time, population, asleep, max_generation,
		 births, deaths, matings, discarded_events, food_consumed, nurtured,
		 energy_mean, energy_p50, food_available)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.runID, stats.WindowEndTick, stats.SimTimeSec, stats.Population,
		stats.Asleep, stats.MaxGeneration, stats.Births, stats.Deaths,
		stats.Matings, stats.Discards, stats.FoodConsumed, stats.Nurtured,
		stats.EnergyMean, stats.EnergyP50, stats.FoodAvailable,
	)
	if err != nil {
		return fmt.Errorf("write window: %w", err)
	}
	return nil
}

// SaveSnapshot replaces this run's organism checkpoint with the given
// snapshot (full replace).
func (j *Journal) SaveSnapshot(snap *telemetry.Snapshot) error {
	if j == nil {
		return nil
	}

	tx, err := j.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM organisms WHERE run_id = ?", j.runID); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO organisms
		(run_id, id, x, y, heading, energy, age, state, sex, generation, is_child, home_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, o := range snap.Organisms {
		isChild := 0
		if o.IsChild {
			isChild = 1
		}
		_, err := stmt.Exec(
			j.runID, o.ID, o.X, o.Y, o.Heading, o.Energy, o.Age,
			o.State, o.Sex, o.Generation, isChild, o.HomeID,
		)
		if err != nil {
			return fmt.Errorf("insert organism %d: %w", o.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Debug("snapshot checkpointed", "run", j.runID, "organisms", len(snap.Organisms))
	return nil
}

// WindowRecord mirrors a row of the windows table.
type WindowRecord struct {
	WindowEnd  int64   `db:"window_end"`
	SimTime    float64 `db:"sim_time"`
	Population int     `db:"population"`
	Births     int     `db:"births"`
	Deaths     int     `db:"deaths"`
}

// RecentWindows returns the most recent window records for this run,
// newest first.
func (j *Journal) RecentWindows(limit int) ([]WindowRecord, error) {
	if j == nil {
		return nil, nil
	}
	var records []WindowRecord
	err := j.conn.Select(&records, `SELECT window_end, sim_time, population, births, deaths
		FROM windows WHERE run_id = ? ORDER BY window_end DESC LIMIT ?`,
		j.runID, limit,
	)
	return records, err
}

// OrganismCount returns the number of organisms in this run's checkpoint.
func (j *Journal) OrganismCount() (int, error) {
	if j == nil {
		return 0, nil
	}
	var n int
	err := j.conn.Get(&n, "SELECT COUNT(*) FROM organisms WHERE run_id = ?", j.runID)
	return n, err
}
