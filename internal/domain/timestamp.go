package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const (
	DateLayout       = "2006-01-02"
	naiveLayout      = "2006-01-02T15:04:05.999999999"
	naiveParseLayout = "2006-01-02T15:04:05"
)

// Timestamp is a wire timestamp as the boundary sends it: usually a naive
// ISO-8601 value without a zone. Naive values are kept as wall-clock time and
// marshal back without a zone.
type Timestamp struct {
	time.Time
	zoned bool
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t, zoned: true}
}

// EndOfDay turns a calendar date into its end-of-day timestamp. The date is
// taken as-is, there is no zone conversion.
func EndOfDay(date string) (Timestamp, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return Timestamp{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}
	return Timestamp{Time: d.Add(23*time.Hour + 59*time.Minute + 59*time.Second)}, nil
}

func ParseTimestamp(s string) (Timestamp, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Timestamp{Time: t, zoned: true}, nil
	}
	for _, layout := range []string{naiveParseLayout, naiveLayout, DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
}

func (t Timestamp) String() string {
	if t.zoned {
		return t.Time.Format(time.RFC3339Nano)
	}
	return t.Time.Format(naiveLayout)
}

// Before reports whether t is before now. Naive timestamps are compared
// against now's wall clock in now's own location.
func (t Timestamp) Before(now time.Time) bool {
	if t.zoned {
		return t.Time.Before(now)
	}
	wall := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), time.UTC)
	return t.Time.Before(wall)
}

// Within reports whether t falls in [now, now+window].
func (t Timestamp) Within(now time.Time, window time.Duration) bool {
	return !t.Before(now) && t.Before(now.Add(window))
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
