package directline

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Timestamp is a time.Time that marshals as an ISO-8601 string with exactly
// six fractional digits. The service's own timestamps carry microsecond
// precision, and its native formatter is lossy past milliseconds, so the
// fraction is computed and written separately from the whole-second part.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps a time.Time.
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

const secondsLayout = "2006-01-02T15:04:05"

// MarshalJSON formats the whole seconds, then appends the microsecond
// fraction computed from the nanosecond field.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	u := t.UTC()
	s := fmt.Sprintf("%q", u.Format(secondsLayout)+fmt.Sprintf(".%06dZ", u.Nanosecond()/1000))
	return []byte(s), nil
}

// UnmarshalJSON parses the whole-second part, then adds the fractional
// component back as a time offset.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}

	parsed, err := parseISO8601Micro(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func parseISO8601Micro(s string) (time.Time, error) {
	base := s
	frac := ""

	if i := strings.IndexByte(s, '.'); i >= 0 {
		// fraction runs until the zone designator
		j := i + 1
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		frac = s[i+1 : j]
		base = s[:i] + s[j:]
	}

	whole, err := time.Parse(time.RFC3339, base)
	if err != nil {
		// some servers omit the zone entirely
		whole, err = time.Parse(secondsLayout, base)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
		}
	}
	whole = whole.Truncate(time.Second)

	if frac != "" {
		if len(frac) > 9 {
			frac = frac[:9]
		}
		n, err := strconv.Atoi(frac)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing timestamp fraction %q: %w", s, err)
		}
		for i := len(frac); i < 9; i++ {
			n *= 10
		}
		whole = whole.Add(time.Duration(n) * time.Nanosecond)
	}

	return whole, nil
}

// roundedUnix rounds a timestamp to the nearest whole second. Ordering and
// equality of activities compare at second granularity because the local
// and server clocks never agree below that.
func roundedUnix(t time.Time) int64 {
	return t.Round(time.Second).Unix()
}
