package api

import (
	"encoding/json"
	"fmt"
	"time"
)

// timestamp accepts RFC 3339 timestamps and plain dates in request
// bodies. Dates are read as midnight UTC.
type timestamp struct{ time.Time }

func (t *timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("timestamp: %q is neither RFC 3339 nor YYYY-MM-DD", s)
}

func (t *timestamp) ptr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}
