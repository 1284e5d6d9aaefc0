package fieldparse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pfrederiksen/mtb-routes/internal/route"
)

// ErrNoMatch is wrapped by every parser failure.
var ErrNoMatch = errors.New("no match")

var (
	lengthPattern = regexp.MustCompile(`^(\d+(?:[.,]\d+)?) ?(?:км|km)?$`)

	ascentPattern = regexp.MustCompile(
		`^(?:\((изкачване|спускане)\))? *[:–-]? *(-?\d+(?:[.,]\d+)?) ?(?:м|m)?$`)

	strenuousnessPattern = regexp.MustCompile(`КФН=(\d+)`)

	// FX must precede F and X so the composite grade wins.
	difficultyPattern = regexp.MustCompile(`R1|R2|R3|T1|T2|T3|T4|T5|FX|F|X`)

	terrainPattern = regexp.MustCompile(
		`(?:-|–)? ?((?:асфалт|черни пътища|пътеки)(?: (?:r1|r2|r3|t1|t2|t3|t4|t5|fx|f|x))?)` +
			` ?(?:-|–)? ?~? ?(\d+(?:[.,]\d+)?) ?(?:км|km)?`)

	waterPattern = regexp.MustCompile(`^(\d+(?:[.,]\d+)?) ?(?:л(?:итра)?)?.?$`)

	// Sub-codes typed with Cyrillic т instead of Latin t.
	terrainCodeReplacer = strings.NewReplacer("т1", "t1", "т2", "t2", "т3", "t3", "т4", "t4", "т5", "t5")
)

// notRequiredPhrases are the letters-only spellings of "not required".
var notRequiredPhrases = map[string]bool{
	"неенеобходима": true,
	"няманужда":     true,
}

func noMatch(kind, raw string) error {
	return fmt.Errorf("%s %q: %w", kind, raw, ErrNoMatch)
}

func lower(s string) string {
	return cases.Lower(language.Bulgarian).String(s)
}

// parseDecimal reads a number that may use a comma as decimal separator.
func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.Replace(strings.TrimSpace(s), ",", ".", 1))
}

// ParseText passes the raw text through unchanged.
func ParseText(raw string) (string, error) {
	return raw, nil
}

// ParseLength parses a distance in kilometers such as "35,6 км". When several
// "/"-separated alternatives are given only the first is used.
func ParseLength(raw string) (decimal.Decimal, error) {
	v := strings.TrimSpace(raw)
	if first, _, found := strings.Cut(v, "/"); found {
		v = strings.TrimSpace(first)
	}
	m := lengthPattern.FindStringSubmatch(v)
	if m == nil {
		return decimal.Zero, noMatch("length", raw)
	}
	return parseDecimal(m[1])
}

// ParseAscent parses an elevation change in meters. A leading "(спускане)"
// marks a descent and negates the value.
func ParseAscent(raw string) (decimal.Decimal, error) {
	m := ascentPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return decimal.Zero, noMatch("ascent", raw)
	}
	d, err := parseDecimal(m[2])
	if err != nil {
		return decimal.Zero, fmt.Errorf("ascent %q: %w", raw, err)
	}
	if m[1] == "спускане" {
		d = d.Neg()
	}
	return d, nil
}

// ParseStrenuousness finds the "КФН=<n>" index score anywhere in the text.
// When the marker repeats, the last one with digits wins.
func ParseStrenuousness(raw string) (int, error) {
	all := strenuousnessPattern.FindAllStringSubmatch(raw, -1)
	if len(all) == 0 {
		return 0, noMatch("strenuousness", raw)
	}
	n, err := strconv.Atoi(all[len(all)-1][1])
	if err != nil {
		return 0, fmt.Errorf("strenuousness %q: %w", raw, err)
	}
	return n, nil
}

// ParseDifficulty extracts every difficulty code, deduplicated and in
// canonical order. Parsing its own output yields the same list.
func ParseDifficulty(raw string) ([]route.Difficulty, error) {
	// R is already Latin on the site; T is often typed in Cyrillic.
	v := strings.ReplaceAll(raw, "Т", "T")
	found := difficultyPattern.FindAllString(v, -1)
	if len(found) == 0 {
		return nil, noMatch("difficulty", raw)
	}
	codes := make([]route.Difficulty, len(found))
	for i, f := range found {
		codes[i] = route.Difficulty(f)
	}
	return route.SortDifficulties(codes), nil
}

// ParseTerrains reads surface segments such as "пътеки T2 - 3,5 км".
func ParseTerrains(raw string) ([]route.Terrain, error) {
	v := terrainCodeReplacer.Replace(lower(raw))
	var segments []route.Terrain
	for _, m := range terrainPattern.FindAllStringSubmatch(v, -1) {
		length, err := parseDecimal(m[2])
		if err != nil {
			continue
		}
		segments = append(segments, route.Terrain{Surface: m[1], Length: length})
	}
	if len(segments) == 0 {
		return nil, noMatch("terrains", raw)
	}
	return segments, nil
}

// IsNotRequired reports whether the text says the provision is not needed,
// ignoring case, spacing and punctuation.
func IsNotRequired(raw string) bool {
	letters := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return -1
	}, lower(raw))
	return notRequiredPhrases[letters]
}

// ParseWater returns "not required", an amount in liters, or the raw text.
func ParseWater(raw string) (route.Provision, error) {
	if IsNotRequired(raw) {
		return route.NotRequiredProvision(), nil
	}
	if m := waterPattern.FindStringSubmatch(strings.TrimSpace(raw)); m != nil {
		if d, err := parseDecimal(m[1]); err == nil {
			return route.AmountProvision(d), nil
		}
	}
	return route.TextProvision(raw), nil
}

// ParseFood returns "not required" or the raw text.
func ParseFood(raw string) (route.Provision, error) {
	if IsNotRequired(raw) {
		return route.NotRequiredProvision(), nil
	}
	return route.TextProvision(raw), nil
}
