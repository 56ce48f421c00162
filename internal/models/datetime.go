package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// LocalDateTimeLayout is the zone-less timestamp the storefront API sends and
// accepts. Parsing also tolerates fractional seconds.
const LocalDateTimeLayout = "2006-01-02T15:04:05"

var localDateTimeLayouts = []string{
	LocalDateTimeLayout,
	"2006-01-02T15:04",
	time.RFC3339Nano,
}

// LocalDateTime is a timestamp without a zone, read as UTC.
type LocalDateTime struct {
	time.Time
}

func NewLocalDateTime(t time.Time) LocalDateTime {
	return LocalDateTime{Time: t.UTC()}
}

// ParseLocalDateTime accepts "2006-01-02T15:04:05[.fraction]", a minute-only
// form, or RFC3339.
func ParseLocalDateTime(s string) (LocalDateTime, error) {
	for _, layout := range localDateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return LocalDateTime{Time: t.UTC()}, nil
		}
	}
	return LocalDateTime{}, fmt.Errorf("invalid local date-time %q", s)
}

func (d LocalDateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.UTC().Format(LocalDateTimeLayout + ".999999999"))
}

func (d *LocalDateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = LocalDateTime{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("local date-time: %w", err)
	}
	if s == "" {
		*d = LocalDateTime{}
		return nil
	}

	parsed, err := ParseLocalDateTime(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
