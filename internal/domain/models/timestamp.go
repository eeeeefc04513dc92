package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Timestamp is a UTC instant that also accepts bare calendar dates when decoding,
// which is how mating dates were captured by the original mobile forms.
type Timestamp struct {
	time.Time
}

// NewTimestamp normalises t to UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

// MarshalJSON encodes the instant as RFC 3339 with nanoseconds.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// UnmarshalJSON accepts RFC 3339 strings, YYYY-MM-DD dates, empty strings and null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if raw == "" {
		*t = Timestamp{}
		return nil
	}

	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		*t = NewTimestamp(parsed)
		return nil
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q", raw)
	}
	*t = NewTimestamp(parsed)
	return nil
}

// Date renders the calendar day.
func (t Timestamp) Date() string {
	return t.UTC().Format(dateLayout)
}
