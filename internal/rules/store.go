package rules

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Rule is one stored automation rule: the user's original wording plus
// its parsed structured payload. Rules are append-only; there is no
// update or delete.
type Rule struct {
	ID         string
	Text       string
	Structured Structured
	CreatedAt  time.Time
}

// Store is the ordered, append-only rule collection. Safe for
// concurrent use.
type Store struct {
	mu      sync.RWMutex
	rules   []Rule
	log     *RuleLog
	nowFunc func() time.Time
	logger  *slog.Logger
}

// NewStore creates an empty rule store. A nil logger falls back to
// slog.Default().
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		nowFunc: time.Now,
		logger:  logger,
	}
}

// SetLog attaches a durable rule log. Append failures are logged, never
// surfaced: the in-memory store stays authoritative while the process
// runs.
func (s *Store) SetLog(log *RuleLog) {
	s.log = log
}

// Restore loads previously stored rules from the log, replacing the
// store contents. Call before the store is in use.
func (s *Store) Restore(log *RuleLog) error {
	rules, err := log.LoadAll()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.rules = rules
	s.mu.Unlock()

	if len(rules) > 0 {
		s.logger.Info("automation rules restored", "count", len(rules))
	}
	return nil
}

// Add validates a raw structured rule and appends it to the store.
func (s *Store) Add(text string, raw map[string]any) (Rule, error) {
	structured, err := Parse(raw)
	if err != nil {
		return Rule{}, err
	}

	rule := Rule{
		ID:         uuid.NewString(),
		Text:       text,
		Structured: structured,
		CreatedAt:  s.nowFunc(),
	}

	s.mu.Lock()
	s.rules = append(s.rules, rule)
	s.mu.Unlock()

	s.logger.Info("automation rule stored",
		"id", rule.ID, "kind", structured.Kind.String(), "text", text)

	if s.log != nil {
		if err := s.log.Append(rule); err != nil {
			s.logger.Warn("rule log append failed", "id", rule.ID, "error", err)
		}
	}

	return rule, nil
}

// All returns a copy of the stored rules in creation order.
func (s *Store) All() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Count returns the number of stored rules.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}
