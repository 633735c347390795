package models

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"
)

const dateLayout = "2006-01-02"

// Dates outside [MinDate, MaxDate) are rejected on input.
var (
	MinDate = MillisFromTime(time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC))
	MaxDate = MillisFromTime(time.Date(2201, time.January, 1, 0, 0, 0, 0, time.UTC))
)

// Millis is an instant stored as Unix epoch milliseconds, the representation
// the frontend and the carregamentos/safras tables use for dates.
type Millis int64

// MillisFromTime converts t to epoch milliseconds.
func MillisFromTime(t time.Time) Millis {
	return Millis(t.UnixMilli())
}

// Time returns the instant in the given location. A nil location means UTC.
func (m Millis) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(int64(m)).In(loc)
}

// Scan implements sql.Scanner for BIGINT columns.
func (m *Millis) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = 0
	case int64:
		*m = Millis(v)
	case int32:
		*m = Millis(v)
	case float64:
		*m = Millis(int64(v))
	default:
		return fmt.Errorf("failed to scan Millis: unsupported type %T", value)
	}
	return nil
}

// Value implements driver.Valuer.
func (m Millis) Value() (driver.Value, error) {
	return int64(m), nil
}

// MarshalJSON always emits a number.
func (m Millis) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(m), 10)), nil
}

// UnmarshalJSON accepts the formats of DateInput. A bare "YYYY-MM-DD" date
// is midnight UTC; request bodies that need farm-local days use DateInput.
func (m *Millis) UnmarshalJSON(data []byte) error {
	d, ok, err := parseDateInput(data)
	if err != nil || !ok {
		return err
	}
	*m = d.In(time.UTC)
	return nil
}

// InRange reports whether m falls inside the accepted civil range
// [MinDate, MaxDate).
func (m Millis) InRange() bool {
	return m >= MinDate && m < MaxDate
}
