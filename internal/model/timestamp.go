package model

import (
	"bytes"
	"fmt"
	"time"
)

// TimestampLayout is the wire format used by the remote API.
const TimestampLayout = "2006-01-02T15:04:05Z"

// Timestamp is a UTC instant encoded as TimestampLayout.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to whole seconds in UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Second)}
}

// MarshalJSON encodes the timestamp using TimestampLayout.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(TimestampLayout) + `"`), nil
}

// UnmarshalJSON accepts TimestampLayout and falls back to RFC 3339.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid timestamp %s", data)
	}
	raw := string(data[1 : len(data)-1])

	parsed, err := time.Parse(TimestampLayout, raw)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", raw, err)
		}
	}

	t.Time = parsed.UTC()
	return nil
}

// Display renders the timestamp with the given layout; a nil timestamp renders as "-".
func (t *Timestamp) Display(layout string) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Time.Format(layout)
}
