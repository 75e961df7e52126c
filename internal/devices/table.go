// Package devices tracks device state per room. Actuation here is
// record-keeping: setting a state updates the latest-state view and the
// action log, and optionally announces the action — nothing is
// physically switched.
package devices

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Action records a single device actuation.
type Action struct {
	ID        string
	Room      string
	Device    string
	State     string
	Timestamp time.Time
}

// Announcer receives successful actuations, e.g. to publish them over
// MQTT. Implementations must not block for long; Announce is called
// inline on the actuation path.
type Announcer interface {
	Announce(ctx context.Context, action Action)
}

// Table is the mutable room→device→state mapping plus an append-only
// action log. Safe for concurrent use.
type Table struct {
	mu        sync.RWMutex
	states    map[string]map[string]string
	log       []Action
	journal   *Journal
	announcer Announcer
	nowFunc   func() time.Time
	logger    *slog.Logger
}

// NewTable creates an empty device state table. A nil logger falls back
// to slog.Default().
func NewTable(logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.Default()
	}
	return &Table{
		states:  make(map[string]map[string]string),
		nowFunc: time.Now,
		logger:  logger,
	}
}

// SetJournal attaches a durable action journal. Journal failures are
// logged, never surfaced: losing a journal row must not fail the
// actuation that callers already observed.
func (t *Table) SetJournal(j *Journal) {
	t.journal = j
}

// SetAnnouncer attaches an announcer for successful actuations.
func (t *Table) SetAnnouncer(a Announcer) {
	t.announcer = a
}

// Set records a device state change and returns the resulting action.
// The error return is part of the actuator contract; a record-only
// table always succeeds.
func (t *Table) Set(ctx context.Context, room, device, state string) (Action, error) {
	action := Action{
		ID:        uuid.NewString(),
		Room:      room,
		Device:    device,
		State:     state,
		Timestamp: t.nowFunc(),
	}

	t.mu.Lock()
	if t.states[room] == nil {
		t.states[room] = make(map[string]string)
	}
	t.states[room][device] = state
	t.log = append(t.log, action)
	t.mu.Unlock()

	t.logger.Info("device action", "room", room, "device", device, "state", state)

	if t.journal != nil {
		if err := t.journal.Append(action); err != nil {
			t.logger.Warn("action journal append failed", "error", err)
		}
	}
	if t.announcer != nil {
		t.announcer.Announce(ctx, action)
	}

	return action, nil
}

// Get returns the latest recorded state for a room/device pair.
func (t *Table) Get(room, device string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	state, ok := t.states[room][device]
	return state, ok
}

// Log returns a copy of the append-only action log, oldest first.
func (t *Table) Log() []Action {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Action, len(t.log))
	copy(out, t.log)
	return out
}
