package api

import (
	"fmt"
	"strings"
	"time"
)

// LocalTimeLayout renders a timestamp without zone information.
const LocalTimeLayout = "2006-01-02T15:04:05"

var localTimeLayouts = []string{
	LocalTimeLayout,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
}

// LocalTime is a naive wall clock timestamp. Showtimes are local to the venue
// and never converted between zones.
type LocalTime struct {
	time.Time
}

func NewLocalTime(t time.Time) LocalTime {
	return LocalTime{Time: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)}
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(LocalTimeLayout) + `"`), nil
}

// UnmarshalJSON accepts ISO 8601 timestamps with or without seconds. An
// explicit offset is dropped and the wall clock kept.
func (t *LocalTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*t = LocalTime{}
		return nil
	}

	for _, layout := range localTimeLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			*t = NewLocalTime(parsed)
			return nil
		}
	}

	return fmt.Errorf("invalid timestamp %q", s)
}
