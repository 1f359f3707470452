package types

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DateTimeFormat is the wire format for DateTime values.
const DateTimeFormat = "2006-01-02 15:04:05"

// DateTime is a time.Time that serializes as "yyyy-MM-dd HH:mm:ss" JSON.
type DateTime time.Time

// Now returns the current time as a DateTime.
func Now() DateTime {
	return DateTime(time.Now())
}

// NewDateTime wraps a time.Time.
func NewDateTime(t time.Time) DateTime {
	return DateTime(t)
}

// Time converts back to time.Time.
func (t DateTime) Time() time.Time {
	return time.Time(t)
}

// IsZero reports whether the value is the zero time.
func (t DateTime) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t DateTime) String() string {
	return time.Time(t).Format(DateTimeFormat)
}

// MarshalJSON implements json.Marshaler.
func (t DateTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf(`"%s"`, t.String())), nil
}

// UnmarshalJSON implements json.Unmarshaler. Accepts the wire format plus
// common RFC3339 variants.
func (t *DateTime) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" || string(data) == `""` {
		*t = DateTime{}
		return nil
	}

	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	formats := []string{
		DateTimeFormat,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	var parseErr error
	for _, format := range formats {
		parsed, err := time.Parse(format, str)
		if err == nil {
			*t = DateTime(parsed)
			return nil
		}
		parseErr = err
	}

	return fmt.Errorf("cannot parse datetime %q: %v", str, parseErr)
}

// Value implements driver.Valuer for GORM writes.
func (t DateTime) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return time.Time(t), nil
}

// Scan implements sql.Scanner for GORM reads.
func (t *DateTime) Scan(value any) error {
	if value == nil {
		*t = DateTime{}
		return nil
	}

	switch v := value.(type) {
	case time.Time:
		*t = DateTime(v)
		return nil
	case string:
		parsed, err := time.Parse(DateTimeFormat, v)
		if err != nil {
			parsed, err = time.Parse(time.RFC3339, v)
			if err != nil {
				return fmt.Errorf("cannot parse datetime string %q", v)
			}
		}
		*t = DateTime(parsed)
		return nil
	case []byte:
		return t.Scan(string(v))
	default:
		return fmt.Errorf("cannot convert %T to DateTime", value)
	}
}

// GormDataType tells GORM which column type to use.
func (t DateTime) GormDataType() string {
	return "datetime"
}
