package timeresolver

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var DefaultURLParams = []string{"ShowDate"}

var (
	bareTimeRgx = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})(?:\s*(AM|PM))?`)
	dayMonthRgx = regexp.MustCompile(`(\d{1,2})\s+(?:of\s+)?([A-Za-z]{3})`)
	urlLayouts  = []string{"2-Jan-2006 3:04:05 PM", "2-Jan-2006 3:04 PM"}
)

type Resolver struct {
	urlParams []string
	runDate   time.Time
}

// New returns a Resolver anchored at runDate, the date used for labels
// without a year and as the fallback for unparseable labels.
func New(runDate time.Time, urlParams ...string) *Resolver {
	if len(urlParams) == 0 {
		urlParams = DefaultURLParams
	}

	return &Resolver{
		urlParams: urlParams,
		runDate:   dateOf(runDate),
	}
}

func (r *Resolver) RunDate() time.Time {
	return r.runDate
}

// Resolve returns the start time of one time entry. rawURL may be empty.
func (r *Resolver) Resolve(date time.Time, rawTime, rawURL string) (time.Time, bool) {
	if rawURL != "" {
		if t, ok := r.FromURL(rawURL); ok {
			return t, true
		}
	}

	hour, minute, ok := ParseClock(rawTime)
	if !ok {
		return time.Time{}, false
	}

	d := dateOf(date)

	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC), true
}

// FromURL extracts the exact timestamp a booking URL carries in one of the
// configured query parameters.
func (r *Resolver) FromURL(rawURL string) (time.Time, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return time.Time{}, false
	}

	query := u.Query()

	for _, param := range r.urlParams {
		value := strings.TrimSpace(query.Get(param))
		if value == "" {
			continue
		}

		value = strings.ToUpper(value)

		for _, layout := range urlLayouts {
			t, err := time.Parse(layout, value)
			if err == nil {
				return t, true
			}
		}
	}

	return time.Time{}, false
}

// ParseClock finds the first clock time in text. A 12-hour value needs an
// hour between 1 and 12, a 24-hour value one between 0 and 23.
func ParseClock(text string) (hour, minute int, ok bool) {
	m := bareTimeRgx.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}

	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])

	if minute > 59 {
		return 0, 0, false
	}

	switch strings.ToUpper(m[3]) {
	case "":
		if hour > 23 {
			return 0, 0, false
		}
	case "AM":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if hour != 12 {
			hour += 12
		}
	}

	return hour, minute, true
}

// NormalizeDate turns a source date label into a calendar date. ok is false
// when the label was not understood and the run date was used instead.
func (r *Resolver) NormalizeDate(label string) (time.Time, bool) {
	label = strings.TrimSpace(label)

	if len(label) >= len("2006-01-02") {
		if t, err := time.Parse(time.DateOnly, label[:len("2006-01-02")]); err == nil {
			rest := label[len("2006-01-02"):]
			if rest == "" || rest[0] == 'T' || rest[0] == ' ' {
				return t, true
			}
		}
	}

	switch strings.ToLower(label) {
	case "today":
		return r.runDate, true
	case "tomorrow":
		return r.runDate.AddDate(0, 0, 1), true
	}

	if m := dayMonthRgx.FindStringSubmatch(label); m != nil {
		if t, ok := r.dayMonth(m[1], m[2]); ok {
			return t, true
		}
	}

	return r.runDate, false
}

// dayMonth picks the year around the run date that puts the date closest to
// it, so a December run reads January labels as next year and a January run
// reads December labels as last year.
func (r *Resolver) dayMonth(day, month string) (time.Time, bool) {
	m, err := time.Parse("Jan", strings.ToUpper(month[:1])+strings.ToLower(month[1:]))
	if err != nil {
		return time.Time{}, false
	}

	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return time.Time{}, false
	}

	var (
		best  time.Time
		found bool
	)

	for _, year := range []int{r.runDate.Year() - 1, r.runDate.Year(), r.runDate.Year() + 1} {
		t := time.Date(year, m.Month(), d, 0, 0, 0, 0, time.UTC)
		if t.Day() != d {
			continue
		}

		if !found || distance(t, r.runDate) < distance(best, r.runDate) {
			best, found = t, true
		}
	}

	return best, found
}

func distance(a, b time.Time) time.Duration {
	if a.After(b) {
		return a.Sub(b)
	}
	return b.Sub(a)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
