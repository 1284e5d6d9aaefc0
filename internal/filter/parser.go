package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pfrederiksen/mtb-routes/internal/fieldparse"
	"github.com/pfrederiksen/mtb-routes/internal/route"
)

var (
	yearPattern  = regexp.MustCompile(`^(\d{4})$`)
	monthPattern = regexp.MustCompile(`^(\d{4})-(\d{1,2})$`)
)

// ParseDateRange parses a publication date range.
//
// Supported formats:
//   - "2014" - the whole year
//   - "2014-05" - the whole month
//   - "2014-05-01..2014-06-15" - explicit days; either side may be empty
//
// Days are interpreted in loc. Start time is at 00:00:00, end time is at
// 23:59:59.
func ParseDateRange(input string, loc *time.Location) (*time.Time, *time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil, fmt.Errorf("date range cannot be empty")
	}

	if m := yearPattern.FindStringSubmatch(input); m != nil {
		year, _ := strconv.Atoi(m[1])
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		to := time.Date(year, time.December, 31, 23, 59, 59, 0, loc)
		return &from, &to, nil
	}

	if m := monthPattern.FindStringSubmatch(input); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return nil, nil, fmt.Errorf("invalid month: %s", m[2])
		}
		from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
		// Last day of month
		to := time.Date(year, time.Month(month)+1, 0, 23, 59, 59, 0, loc)
		return &from, &to, nil
	}

	start, end, ok := strings.Cut(input, "..")
	if !ok {
		return nil, nil, fmt.Errorf("invalid date range format. Use '2014', '2014-05' or '2014-05-01..2014-06-15'")
	}

	var from, to *time.Time
	if start = strings.TrimSpace(start); start != "" {
		t, err := time.ParseInLocation(time.DateOnly, start, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid start date %q: %w", start, err)
		}
		from = &t
	}
	if end = strings.TrimSpace(end); end != "" {
		t, err := time.ParseInLocation(time.DateOnly, end, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid end date %q: %w", end, err)
		}
		t = t.Add(24*time.Hour - time.Second)
		to = &t
	}
	if from == nil && to == nil {
		return nil, nil, fmt.Errorf("date range cannot be empty")
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, fmt.Errorf("start date must be before end date")
	}

	return from, to, nil
}

// ParseDifficulties reads difficulty codes the way route pages write them,
// Cyrillic letters included.
func ParseDifficulties(input string) ([]route.Difficulty, error) {
	codes, err := fieldparse.ParseDifficulty(input)
	if err != nil {
		return nil, fmt.Errorf("no difficulty codes in %q", input)
	}
	return codes, nil
}

// ParseLengthBound reads a length in kilometres such as "40" or "12,5 км".
func ParseLengthBound(input string) (*decimal.Decimal, error) {
	km, err := fieldparse.ParseLength(input)
	if err != nil {
		return nil, fmt.Errorf("invalid length %q", input)
	}
	return &km, nil
}
