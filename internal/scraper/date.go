package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pfrederiksen/mtb-routes/internal/route"
)

// Location is the timezone every publication date is normalized to.
var Location = route.Location

var bulgarianMonths = map[string]time.Month{
	"януари":    time.January,
	"февруари":  time.February,
	"март":      time.March,
	"април":     time.April,
	"май":       time.May,
	"юни":       time.June,
	"юли":       time.July,
	"август":    time.August,
	"септември": time.September,
	"октомври":  time.October,
	"ноември":   time.November,
	"декември":  time.December,
}

// Matches "Понеделник, 12 Май 2014 10:30"; the weekday is ignored.
var datePattern = regexp.MustCompile(`(\d{1,2})\s+(\p{L}+)\s+(\d{4})\s+(\d{1,2}):(\d{2})`)

// ParseDate parses a Bulgarian publication date into Location.
func ParseDate(text string) (time.Time, error) {
	normalized := cases.Lower(language.Bulgarian).String(strings.TrimSpace(text))
	m := datePattern.FindStringSubmatch(normalized)
	if m == nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", text)
	}

	month, ok := bulgarianMonths[m[2]]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown month %q in %q", m[2], text)
	}
	// The pattern guarantees digits, so Atoi cannot fail.
	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])

	if day < 1 || day > 31 || hour > 23 || minute > 59 {
		return time.Time{}, fmt.Errorf("date out of range %q", text)
	}

	t := time.Date(year, month, day, hour, minute, 0, 0, Location)
	if t.Day() != day {
		return time.Time{}, fmt.Errorf("no day %d in %s %d: %q", day, month, year, text)
	}
	return t, nil
}
