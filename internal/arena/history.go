package arena

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
)

// RoundRecord is one line of match history. Players, holes, deltas and
// bankrolls are in seat order for that round, seat 0 being the small blind.
type RoundRecord struct {
	Match     string      `json:"match"`
	Round     int         `json:"round"`
	Players   [2]string   `json:"players"`
	Bounties  [2]string   `json:"bounties"`
	Holes     [2][]string `json:"holes"`
	Board     []string    `json:"board,omitempty"`
	Actions   []string    `json:"actions"`
	Deltas    [2]int      `json:"deltas"`
	Bankrolls [2]int      `json:"bankrolls"`
}

// History streams round records as JSON lines, all stamped with the same
// generated match id.
type History struct {
	match  string
	enc    *json.Encoder
	closer io.Closer
}

// NewHistory writes records to w. The caller keeps ownership of w.
func NewHistory(w io.Writer) *History {
	return &History{
		match: uuid.NewString(),
		enc:   json.NewEncoder(w),
	}
}

// OpenHistory creates or truncates the file at path and writes records
// there until Close.
func OpenHistory(path string) (*History, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open history file: %w", err)
	}
	h := NewHistory(f)
	h.closer = f
	return h, nil
}

// MatchID returns the id stamped on every record.
func (h *History) MatchID() string {
	return h.match
}

// Record appends one round to the history.
func (h *History) Record(rec RoundRecord) error {
	rec.Match = h.match
	return h.enc.Encode(rec)
}

// Close releases the underlying file, if Record was writing to one.
func (h *History) Close() error {
	if h.closer == nil {
		return nil
	}
	return h.closer.Close()
}
