package telemetry

import (
	"fmt"
	"io"
	"time"

	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/pthm-cable/nodlets/config"
)

// RunDB stores run metadata and window stats in SQLite, so many runs
// (e.g. tuning sweeps) can be compared with plain SQL.
type RunDB struct {
	conn *sqlx.DB
}

// RunRow is one row of the runs table.
type RunRow struct {
	ID         string  `db:"id"`
	Seed       int64   `db:"seed"`
	StartedAt  string  `db:"started_at"`
	FinishedAt *string `db:"finished_at"`
	Ticks      int64   `db:"ticks"`
	Deposited  float64 `db:"deposited"`
	ConfigYAML string  `db:"config_yaml"`
}

// WindowRow is one row of the windows table.
type WindowRow struct {
	RunID          string  `db:"run_id"`
	WindowEnd      int32   `db:"window_end"`
	SimTime        float64 `db:"sim_time"`
	Agents         int     `db:"agents"`
	Packets        int     `db:"packets"`
	Deposited      float64 `db:"deposited"`
	Throughput     float64 `db:"throughput"`
	PacketOverflow float64 `db:"packet_overflow"`
	CarriedMean    float64 `db:"carried_mean"`
	LedgerTotal    float64 `db:"ledger_total"`
}

// OpenRunDB opens or creates a SQLite database at the given path.
// Returns nil if path is empty (database disabled).
func OpenRunDB(path string) (*RunDB, error) {
	if path == "" {
		return nil, nil
	}
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &RunDB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (db *RunDB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		ticks INTEGER NOT NULL DEFAULT 0,
		deposited REAL NOT NULL DEFAULT 0,
		config_yaml TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS windows (
		run_id TEXT NOT NULL REFERENCES runs(id),
		window_end INTEGER NOT NULL,
		sim_time REAL NOT NULL,
		agents INTEGER NOT NULL,
		packets INTEGER NOT NULL,
		deposited REAL NOT NULL,
		throughput REAL NOT NULL,
		packet_overflow REAL NOT NULL,
		carried_mean REAL NOT NULL,
		ledger_total REAL NOT NULL,
		PRIMARY KEY (run_id, window_end)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		tick INTEGER NOT NULL,
		type TEXT NOT NULL,
		idx INTEGER NOT NULL,
		hub INTEGER NOT NULL,
		amount REAL NOT NULL,
		label TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_run_tick ON events(run_id, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// BeginRun records a new run with its seed and effective configuration.
func (db *RunDB) BeginRun(runID string, seed int64, cfg *config.Config) error {
	if db == nil {
		return nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_, err = db.conn.Exec(`INSERT INTO runs (id, seed, started_at, config_yaml) VALUES (?, ?, ?, ?)`,
		runID, seed, time.Now().UTC().Format(time.RFC3339), string(data))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// WriteWindow stores one window's stats.
func (db *RunDB) WriteWindow(runID string, s WindowStats) error {
	if db == nil {
		return nil
	}
	row := WindowRow{
		RunID:          runID,
		WindowEnd:      s.WindowEndTick,
		SimTime:        s.SimTimeSec,
		Agents:         s.Agents,
		Packets:        s.Packets,
		Deposited:      s.Deposited,
		Throughput:     s.Throughput,
		PacketOverflow: s.PacketOverflow,
		CarriedMean:    s.CarriedMean,
		LedgerTotal:    s.LedgerTotal,
	}
	_, err := db.conn.NamedExec(`INSERT OR REPLACE INTO windows
		(run_id, window_end, sim_time, agents, packets, deposited, throughput, packet_overflow, carried_mean, ledger_total)
		VALUES (:run_id, :window_end, :sim_time, :agents, :packets, :deposited, :throughput, :packet_overflow, :carried_mean, :ledger_total)`, row)
	if err != nil {
		return fmt.Errorf("insert window: %w", err)
	}
	return nil
}

// WriteEvents stores event records in one transaction.
func (db *RunDB) WriteEvents(records []EventRecord) error {
	if db == nil || len(records) == 0 {
		return nil
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, r := range records {
		if _, err := tx.Exec(`INSERT INTO events (run_id, tick, type, idx, hub, amount, label) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.RunID, r.Tick, r.Type, r.Index, r.Hub, r.Amount, r.Label); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}
	return tx.Commit()
}

// FinishRun stamps the run's final tick count and delivered total.
func (db *RunDB) FinishRun(runID string, ticks int64, deposited float64) error {
	if db == nil {
		return nil
	}
	_, err := db.conn.Exec(`UPDATE runs SET finished_at = ?, ticks = ?, deposited = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), ticks, deposited, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// Run loads a run row.
func (db *RunDB) Run(runID string) (RunRow, error) {
	var r RunRow
	err := db.conn.Get(&r, `SELECT * FROM runs WHERE id = ?`, runID)
	return r, err
}

// Windows loads a run's windows in tick order.
func (db *RunDB) Windows(runID string) ([]WindowRow, error) {
	var rows []WindowRow
	err := db.conn.Select(&rows, `SELECT * FROM windows WHERE run_id = ? ORDER BY window_end`, runID)
	return rows, err
}

// EventCount returns how many events of a type were stored for a run.
func (db *RunDB) EventCount(runID string, typ EventType) (int, error) {
	var n int
	err := db.conn.Get(&n, `SELECT COUNT(*) FROM events WHERE run_id = ? AND type = ?`, runID, typ.String())
	return n, err
}

// Report writes a run's summary and its windows as a plain-text table.
func (db *RunDB) Report(w io.Writer, runID string) error {
	r, err := db.Run(runID)
	if err != nil {
		return fmt.Errorf("load run %s: %w", runID, err)
	}
	windows, err := db.Windows(runID)
	if err != nil {
		return fmt.Errorf("load windows: %w", err)
	}
	milestones, err := db.EventCount(runID, EventMilestone)
	if err != nil {
		return fmt.Errorf("count milestones: %w", err)
	}

	finished := "unfinished"
	if r.FinishedAt != nil {
		finished = *r.FinishedAt
	}
	fmt.Fprintf(w, "run %s  seed %d  started %s  finished %s\n", r.ID, r.Seed, r.StartedAt, finished)
	fmt.Fprintf(w, "ticks %d  deposited %.0f  milestones %d  windows %d\n", r.Ticks, r.Deposited, milestones, len(windows))
	fmt.Fprintf(w, "%10s %9s %7s %8s %10s %10s %9s\n",
		"window_end", "sim_time", "agents", "packets", "deposited", "throughput", "overflow")
	for _, win := range windows {
		fmt.Fprintf(w, "%10d %9.1f %7d %8d %10.1f %10.2f %9.1f\n",
			win.WindowEnd, win.SimTime, win.Agents, win.Packets, win.Deposited, win.Throughput, win.PacketOverflow)
	}
	return nil
}

// Close closes the database connection.
func (db *RunDB) Close() error {
	if db == nil {
		return nil
	}
	return db.conn.Close()
}
