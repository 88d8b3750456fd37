// Package timeparse accepts the timestamp shapes API clients actually send
// and converts them all to UTC instants.
package timeparse

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var ErrUnparseableTime = errors.New("unparseable timestamp")

var epochSecondsPattern = regexp.MustCompile(`^-?\d{10}$`)

const (
	layoutLocalDateTime = "2006-01-02T15:04:05"
	layoutLocalDate     = "2006-01-02"
)

// Parse tries, in order: ISO instant (Z), ISO offset date-time, ISO local
// date-time (assumed UTC), plain date (start of day UTC), and finally a
// 10-digit numeric string treated as epoch seconds.
func Parse(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: empty input", ErrUnparseableTime)
	}

	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(layoutLocalDateTime, trimmed); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(layoutLocalDate, trimmed); err == nil {
		return t.UTC(), nil
	}
	if epochSecondsPattern.MatchString(trimmed) {
		seconds, err := strconv.ParseInt(trimmed, 10, 64)
		if err == nil {
			return time.Unix(seconds, 0).UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableTime, s)
}

// Time is a JSON-flexible timestamp: strings go through Parse, numbers are
// epoch milliseconds, null and blank strings leave it zero.
type Time struct {
	time.Time
}

func (t *Time) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		return nil
	}

	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			return nil
		}
		parsed, err := Parse(s)
		if err != nil {
			return err
		}
		t.Time = parsed
		return nil
	}

	millis, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnparseableTime, trimmed)
	}
	t.Time = time.UnixMilli(millis).UTC()
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}
