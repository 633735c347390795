package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// DateInput is a date as a client sent it. Epoch milliseconds and RFC 3339
// timestamps are fixed instants; a bare "YYYY-MM-DD" is a civil day that In
// resolves to midnight in the caller's location.
type DateInput struct {
	instant Millis
	day     time.Time
	civil   bool
}

// InstantInput wraps an already resolved instant.
func InstantInput(m Millis) DateInput {
	return DateInput{instant: m}
}

// DayInput is the civil day y-m-d.
func DayInput(y int, m time.Month, d int) DateInput {
	return DateInput{day: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), civil: true}
}

// In returns the instant the input denotes. Civil days become midnight in
// loc; a nil loc means UTC.
func (d DateInput) In(loc *time.Location) Millis {
	if !d.civil {
		return d.instant
	}
	if loc == nil {
		loc = time.UTC
	}
	y, m, day := d.day.Date()
	return MillisFromTime(time.Date(y, m, day, 0, 0, 0, 0, loc))
}

// UnmarshalJSON accepts a number of milliseconds, a numeric string,
// a "YYYY-MM-DD" date or an RFC 3339 timestamp.
func (d *DateInput) UnmarshalJSON(data []byte) error {
	parsed, ok, err := parseDateInput(data)
	if err != nil || !ok {
		return err
	}
	*d = parsed
	return nil
}

// parseDateInput reports ok=false for JSON null.
func parseDateInput(data []byte) (DateInput, bool, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return DateInput{}, false, nil
	}

	var d DateInput
	if data[0] != '"' {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return d, false, fmt.Errorf("invalid date %s: %w", data, err)
		}
		m, err := parseMillis(n.String())
		if err != nil {
			return d, false, err
		}
		d = InstantInput(m)
	} else {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return d, false, fmt.Errorf("invalid date %s: %w", data, err)
		}
		if s == "" {
			return d, false, fmt.Errorf("invalid date: empty string")
		}
		if t, err := time.Parse(dateLayout, s); err == nil {
			d = DayInput(t.Date())
		} else if t, err := time.Parse(time.RFC3339, s); err == nil {
			d = InstantInput(MillisFromTime(t))
		} else {
			m, err := parseMillis(s)
			if err != nil {
				return d, false, err
			}
			d = InstantInput(m)
		}
	}

	if at := d.In(time.UTC); !at.InRange() {
		return d, false, fmt.Errorf("invalid date %s: outside %s to %s", data,
			MinDate.Time(nil).Format(dateLayout), MaxDate.Time(nil).Format(dateLayout))
	}
	return d, true, nil
}

// maxMillisFloat is 2^63, the first float64 past math.MaxInt64.
const maxMillisFloat = float64(1 << 63)

func parseMillis(s string) (Millis, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Millis(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f >= maxMillisFloat || f < -maxMillisFloat {
		return 0, fmt.Errorf("invalid date %q: expected epoch milliseconds, YYYY-MM-DD or RFC 3339", s)
	}
	return Millis(int64(f)), nil
}
