package sqlite

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// dbTimeLayout is fixed width and always UTC so that text comparison in SQL
// orders the same way as time comparison.
const dbTimeLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTimeForDB formats a time.Time value in UTC for consistent database storage
func FormatTimeForDB(t time.Time) string {
	return t.UTC().Format(dbTimeLayout)
}

// FormatTimePtrForDB formats a *time.Time value, returning nil if the pointer is nil
func FormatTimePtrForDB(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return FormatTimeForDB(*t)
}

// ParseTimeFromDB parses a time string from the database. RFC3339 values
// written by hand or by older tooling are accepted as well.
func ParseTimeFromDB(s string) (time.Time, error) {
	if t, err := time.Parse(dbTimeLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// Timestamp is a time.Time stored as fixed-width UTC text
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t, normalised to UTC
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

// Value implements driver.Valuer
func (ts Timestamp) Value() (driver.Value, error) {
	return FormatTimeForDB(ts.Time), nil
}

// Scan implements sql.Scanner
func (ts *Timestamp) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		ts.Time = time.Time{}
		return nil
	case time.Time:
		ts.Time = v.UTC()
		return nil
	case string:
		t, err := ParseTimeFromDB(v)
		if err != nil {
			return err
		}
		ts.Time = t
		return nil
	case []byte:
		return ts.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", src)
	}
}
