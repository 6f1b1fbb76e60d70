// Package history records evaluated expressions and their results.
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxEntries is the number of entries a store keeps when no limit is
// configured.
const DefaultMaxEntries = 50

// DefaultPath is the JSON history file used when none is configured.
const DefaultPath = "history/calc_history.json"

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Sentinel errors.
var (
	// ErrStoreClosed is returned when operating on a closed store.
	ErrStoreClosed = errors.New("history store closed")
	// ErrUnknownBackend is returned by Open for an unrecognized backend name.
	ErrUnknownBackend = errors.New("unknown history backend")
)

// Entry is one evaluated expression.
type Entry struct {
	ID         string    `json:"id,omitempty"`
	Expression string    `json:"expression"`
	Result     float64   `json:"result"`
	Timestamp  time.Time `json:"timestamp"`
}

// entryJSON is the encoding of an Entry. JSON has no representation for
// infinities, so non-finite results are written as the strings "+Inf", "-Inf"
// and "NaN".
type entryJSON struct {
	ID         string          `json:"id,omitempty"`
	Expression string          `json:"expression"`
	Result     json.RawMessage `json:"result"`
	Timestamp  time.Time       `json:"timestamp"`
}

// MarshalJSON encodes e, writing a non-finite Result as a string.
func (e Entry) MarshalJSON() ([]byte, error) {
	var r []byte
	switch {
	case math.IsInf(e.Result, 0) || math.IsNaN(e.Result):
		r = strconv.AppendQuote(nil, strconv.FormatFloat(e.Result, 'g', -1, 64))
	default:
		r = strconv.AppendFloat(nil, e.Result, 'g', -1, 64)
	}
	return json.Marshal(entryJSON{ID: e.ID, Expression: e.Expression, Result: r, Timestamp: e.Timestamp})
}

// UnmarshalJSON decodes e, accepting a Result either as a number or as a
// string holding a number.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var v entryJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	var r float64
	switch {
	case len(v.Result) == 0 || bytes.Equal(v.Result, []byte("null")):
		// Missing result decodes as zero.
	case v.Result[0] == '"':
		var s string
		if err := json.Unmarshal(v.Result, &s); err != nil {
			return err
		}
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("history entry result: %w", err)
		}
		r = x
	default:
		if err := json.Unmarshal(v.Result, &r); err != nil {
			return err
		}
	}
	*e = Entry{ID: v.ID, Expression: v.Expression, Result: r, Timestamp: v.Timestamp}
	return nil
}

// Store persists history entries.
//
// Implementations keep at most a fixed number of entries, discarding the
// oldest ones first. All implementations are safe for concurrent use.
type Store interface {
	// Add records an entry. A zero ID or Timestamp is filled in.
	Add(ctx context.Context, e Entry) error

	// List returns all entries, oldest first.
	List(ctx context.Context) ([]Entry, error)

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Close releases resources held by the store. Closing twice is not an
	// error.
	Close() error
}

// Open creates the store for the named backend. An empty backend selects
// JSON. A max of zero or less selects DefaultMaxEntries.
func Open(backend, path string, max int) (Store, error) {
	switch backend {
	case "", BackendJSON:
		return NewJSONStore(path, max)
	case BackendSQLite:
		return NewSQLiteStore(path, max)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// fill completes the generated fields of e.
func fill(e Entry) Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return e
}

func limit(max int) int {
	if max <= 0 {
		return DefaultMaxEntries
	}
	return max
}
