// Package sensors holds the in-memory sensor reading time series and
// its query operations. The store is populated once at startup (CSV
// ingestion) and is read-only afterward; readings are kept sorted by
// timestamp so "latest" queries are a reverse scan.
package sensors

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Query failure reasons. The tool dispatch layer converts these into
// {"error": ...} result objects; nothing here is fatal.
var (
	// ErrNotLoaded means no sensor data has been ingested yet.
	ErrNotLoaded = errors.New("sensor data not loaded")

	// ErrNoData means no reading matched the query.
	ErrNoData = errors.New("no matching sensor data")
)

// Reading is one timestamped sensor value for a room/sensor pair.
// Readings are immutable once ingested.
type Reading struct {
	Room       string
	SensorName string
	Timestamp  time.Time
	Value      float64
}

// Store is the queryable sensor time series. Safe for concurrent reads;
// Load must complete before queries begin.
type Store struct {
	mu       sync.RWMutex
	readings []Reading
	loaded   bool
	logger   *slog.Logger
}

// NewStore creates an empty sensor store. A nil logger falls back to
// slog.Default().
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{logger: logger}
}

// Load replaces the store contents with the given readings, sorted by
// timestamp. Marks the store as loaded even when readings is empty.
func (s *Store) Load(readings []Reading) {
	sorted := make([]Reading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	s.mu.Lock()
	s.readings = sorted
	s.loaded = true
	s.mu.Unlock()

	s.logger.Info("sensor data loaded", "rows", len(sorted))
}

// Len returns the number of stored readings.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.readings)
}

// Latest returns the most recent reading for a room/sensor pair.
func (s *Store) Latest(room, sensorName string) (Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return Reading{}, ErrNotLoaded
	}

	for i := len(s.readings) - 1; i >= 0; i-- {
		r := s.readings[i]
		if r.Room == room && r.SensorName == sensorName {
			return r, nil
		}
	}
	return Reading{}, ErrNoData
}

// At returns the reading for a room/sensor pair at an exact timestamp.
func (s *Store) At(room, sensorName string, ts time.Time) (Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return Reading{}, ErrNotLoaded
	}

	for _, r := range s.readings {
		if r.Room == room && r.SensorName == sensorName && r.Timestamp.Equal(ts) {
			return r, nil
		}
	}
	return Reading{}, ErrNoData
}

// Average returns the mean value for a room/sensor pair over the
// inclusive [start, end] interval.
func (s *Store) Average(room, sensorName string, start, end time.Time) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return 0, ErrNotLoaded
	}

	var sum float64
	var n int
	for _, r := range s.readings {
		if r.Room != room || r.SensorName != sensorName {
			continue
		}
		if r.Timestamp.Before(start) || r.Timestamp.After(end) {
			continue
		}
		sum += r.Value
		n++
	}

	if n == 0 {
		return 0, ErrNoData
	}
	return sum / float64(n), nil
}

// LatestInPeriod returns the most recent reading for a room/sensor pair
// whose clock time-of-day falls inside the named period. The reading's
// calendar date is irrelevant; only its wall-clock time is matched.
func (s *Store) LatestInPeriod(room, sensorName string, period Period) (Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return Reading{}, ErrNotLoaded
	}
	if !period.Valid() {
		return Reading{}, ErrBadPeriod
	}

	for i := len(s.readings) - 1; i >= 0; i-- {
		r := s.readings[i]
		if r.Room == room && r.SensorName == sensorName && period.Contains(r.Timestamp) {
			return r, nil
		}
	}
	return Reading{}, ErrNoData
}
