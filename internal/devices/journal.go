package devices

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Journal is a durable log of device actions backed by SQLite. It
// exists so the latest-state view can be rebuilt after a restart; the
// in-memory Table stays authoritative while the process runs.
type Journal struct {
	db *sql.DB
}

// OpenJournal opens (or creates) an action journal at the given
// database path.
func OpenJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS device_actions (
		id         TEXT PRIMARY KEY,
		room       TEXT NOT NULL,
		device     TEXT NOT NULL,
		state      TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Append writes one action to the journal.
func (j *Journal) Append(a Action) error {
	_, err := j.db.Exec(
		`INSERT INTO device_actions (id, room, device, state, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Room, a.Device, a.State, a.Timestamp.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("append action %s.%s: %w", a.Room, a.Device, err)
	}
	return nil
}

// LatestStates returns the most recent recorded state per room/device
// pair, for seeding a Table at startup. Rows are only ever appended,
// so rowid order is recording order.
func (j *Journal) LatestStates() (map[string]map[string]string, error) {
	rows, err := j.db.Query(
		`SELECT room, device, state FROM device_actions
		 ORDER BY rowid ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	states := make(map[string]map[string]string)
	for rows.Next() {
		var room, device, state string
		if err := rows.Scan(&room, &device, &state); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		if states[room] == nil {
			states[room] = make(map[string]string)
		}
		states[room][device] = state
	}
	return states, rows.Err()
}

// Seed preloads the latest-state view from a journal. Call before the
// table is in use.
func (t *Table) Seed(j *Journal) error {
	states, err := j.LatestStates()
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.states = states
	t.mu.Unlock()
	return nil
}
