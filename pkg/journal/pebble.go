package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

// PebbleJournal keeps an audit trail of events in a pebble database. Keys
// are KSUIDs, so iteration order is chronological.
type PebbleJournal struct {
	db     *pebble.DB
	logger *slog.Logger
	mutex  sync.Mutex
}

// OpenPebbleJournal opens (or creates) a journal in dir
func OpenPebbleJournal(dir string, logger *slog.Logger) (*PebbleJournal, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal at %s: %w", dir, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PebbleJournal{db: db, logger: logger}, nil
}

// Report appends the event to the journal. Storage failures are logged,
// not returned.
func (j *PebbleJournal) Report(ctx context.Context, e Event) {
	if _, err := j.Append(e); err != nil {
		j.logger.ErrorContext(ctx, "failed to journal event", "operation", e.Operation, "error", err)
	}
}

// Append stores the event and returns its ID
func (j *PebbleJournal) Append(e Event) (ksuid.KSUID, error) {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	id, err := ksuid.NewRandomWithTime(e.Time)
	if err != nil {
		return ksuid.Nil, err
	}
	e.ID = id.String()

	data, err := json.Marshal(e)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := j.db.Set(id.Bytes(), data, pebble.Sync); err != nil {
		return ksuid.Nil, err
	}
	return id, nil
}

// Get reads one event by ID
func (j *PebbleJournal) Get(id ksuid.KSUID) (*Event, error) {
	data, closer, err := j.db.Get(id.Bytes())
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event %s: %w", id, err)
	}
	return &e, nil
}

// Entries returns up to limit events, newest first. A limit of zero or less
// returns every event.
func (j *PebbleJournal) Entries(limit int) ([]Event, error) {
	iter, err := j.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var events []Event
	for valid := iter.Last(); valid; valid = iter.Prev() {
		if limit > 0 && len(events) >= limit {
			break
		}
		var e Event
		if err := json.Unmarshal(iter.Value(), &e); err != nil {
			continue // skip entries that do not decode
		}
		events = append(events, e)
	}
	return events, iter.Error()
}

// Close closes the underlying database
func (j *PebbleJournal) Close() error {
	return j.db.Close()
}
