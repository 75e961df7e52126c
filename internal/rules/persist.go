package rules

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// RuleLog is a durable append-only log of accepted rules backed by
// SQLite, so the rule store survives restarts.
type RuleLog struct {
	db *sql.DB
}

// OpenRuleLog opens (or creates) a rule log at the given database path.
func OpenRuleLog(dbPath string) (*RuleLog, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	l := &RuleLog{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return l, nil
}

// Close closes the database connection.
func (l *RuleLog) Close() error {
	return l.db.Close()
}

func (l *RuleLog) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS automation_rules (
		id         TEXT PRIMARY KEY,
		rule_text  TEXT NOT NULL,
		structured TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`
	_, err := l.db.Exec(schema)
	return err
}

// Append writes one rule to the log. The structured payload is stored
// as its normalized JSON form.
func (l *RuleLog) Append(r Rule) error {
	payload, err := json.Marshal(r.Structured.Fields)
	if err != nil {
		return fmt.Errorf("marshal rule %s: %w", r.ID, err)
	}

	_, err = l.db.Exec(
		`INSERT INTO automation_rules (id, rule_text, structured, created_at)
		 VALUES (?, ?, ?, ?)`,
		r.ID, r.Text, string(payload), r.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append rule %s: %w", r.ID, err)
	}
	return nil
}

// LoadAll returns all logged rules in creation order. Rows are only
// ever appended, so rowid order is creation order; sorting on the
// textual created_at would mis-sort sub-second timestamps. Rows whose
// structured payload no longer parses are dropped rather than aborting
// the load.
func (l *RuleLog) LoadAll() ([]Rule, error) {
	rows, err := l.db.Query(
		`SELECT id, rule_text, structured, created_at
		 FROM automation_rules ORDER BY rowid ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var rules []Rule
	for rows.Next() {
		var id, text, payload, createdAt string
		if err := rows.Scan(&id, &text, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}

		var fields map[string]any
		if err := json.Unmarshal([]byte(payload), &fields); err != nil {
			continue
		}
		structured, err := Parse(fields)
		if err != nil {
			continue
		}

		created, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			created = time.Time{}
		}

		rules = append(rules, Rule{
			ID:         id,
			Text:       text,
			Structured: structured,
			CreatedAt:  created,
		})
	}
	return rules, rows.Err()
}
