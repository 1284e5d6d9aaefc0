package route

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Difficulty is a grade code from the site's closed difficulty vocabulary.
type Difficulty string

const (
	DifficultyR1 Difficulty = "R1"
	DifficultyR2 Difficulty = "R2"
	DifficultyR3 Difficulty = "R3"
	DifficultyT1 Difficulty = "T1"
	DifficultyT2 Difficulty = "T2"
	DifficultyT3 Difficulty = "T3"
	DifficultyT4 Difficulty = "T4"
	DifficultyT5 Difficulty = "T5"
	DifficultyF  Difficulty = "F"
	DifficultyX  Difficulty = "X"
	DifficultyFX Difficulty = "FX"
)

// DifficultyOrder is the canonical ordering of difficulty codes: route
// grades, then terrain grades, then the composite grades.
var DifficultyOrder = []Difficulty{
	DifficultyR1, DifficultyR2, DifficultyR3,
	DifficultyT1, DifficultyT2, DifficultyT3, DifficultyT4, DifficultyT5,
	DifficultyF, DifficultyX, DifficultyFX,
}

// Rank returns the position of d in DifficultyOrder, or -1 for unknown codes.
func (d Difficulty) Rank() int {
	return slices.Index(DifficultyOrder, d)
}

// SortDifficulties deduplicates codes and orders them canonically.
// Unknown codes sort last in lexical order.
func SortDifficulties(codes []Difficulty) []Difficulty {
	seen := make(map[Difficulty]bool, len(codes))
	out := make([]Difficulty, 0, len(codes))
	for _, c := range codes {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Difficulty) int {
		ra, rb := a.Rank(), b.Rank()
		switch {
		case ra == rb:
			return strings.Compare(string(a), string(b))
		case ra < 0:
			return 1
		case rb < 0:
			return -1
		}
		return ra - rb
	})
	return out
}

// ProvisionKind tells which of the three shapes a Provision holds.
type ProvisionKind int

const (
	// NotRequired is serialized as JSON false.
	NotRequired ProvisionKind = iota
	// Amount is a quantity in liters, serialized as a JSON number.
	Amount
	// Text is unparsed free text, serialized as a JSON string.
	Text
)

// Provision is the value of the water and food fields.
type Provision struct {
	Kind   ProvisionKind
	Amount decimal.Decimal
	Text   string
}

// NotRequiredProvision returns the "not required" provision value.
func NotRequiredProvision() Provision {
	return Provision{Kind: NotRequired}
}

// AmountProvision returns a provision measured in liters.
func AmountProvision(liters decimal.Decimal) Provision {
	return Provision{Kind: Amount, Amount: liters}
}

// TextProvision returns a free-text provision.
func TextProvision(text string) Provision {
	return Provision{Kind: Text, Text: text}
}

// Equal reports whether two provisions hold the same value.
func (p Provision) Equal(o Provision) bool {
	if p.Kind != o.Kind {
		return false
	}
	switch p.Kind {
	case Amount:
		return p.Amount.Equal(o.Amount)
	case Text:
		return p.Text == o.Text
	}
	return true
}

func (p Provision) String() string {
	switch p.Kind {
	case Amount:
		return p.Amount.String()
	case Text:
		return p.Text
	}
	return "false"
}

// MarshalJSON encodes the provision as false, a number or a string.
func (p Provision) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case NotRequired:
		return []byte("false"), nil
	case Amount:
		return []byte(p.Amount.String()), nil
	case Text:
		return json.Marshal(p.Text)
	}
	return nil, fmt.Errorf("unknown provision kind %d", p.Kind)
}

// UnmarshalJSON decodes false, a number or a string.
func (p *Provision) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "false":
		*p = NotRequiredProvision()
		return nil
	case raw == "true" || raw == "null":
		return fmt.Errorf("provision: unsupported value %s", raw)
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("provision: %w", err)
		}
		*p = TextProvision(s)
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("provision: %w", err)
	}
	*p = AmountProvision(d)
	return nil
}

// ValuesEqual compares two field values structurally. Decimals compare by
// numeric value, so 35.6 equals 35.60. Nil stands for an absent value and
// only equals nil.
func ValuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case decimal.Decimal:
		bv, ok := b.(decimal.Decimal)
		return ok && av.Equal(bv)
	case Provision:
		bv, ok := b.(Provision)
		return ok && av.Equal(bv)
	case []Difficulty:
		bv, ok := b.([]Difficulty)
		return ok && slices.Equal(av, bv)
	case []string:
		bv, ok := b.([]string)
		return ok && slices.Equal(av, bv)
	case []Terrain:
		bv, ok := b.([]Terrain)
		return ok && slices.EqualFunc(av, bv, func(x, y Terrain) bool {
			return x.Surface == y.Surface && x.Length.Equal(y.Length)
		})
	}
	return false
}

// FormatValue renders a field value for operator-facing messages.
func FormatValue(v any) string {
	switch tv := v.(type) {
	case nil:
		return "<absent>"
	case string:
		return tv
	case time.Time:
		return tv.Format(time.RFC3339)
	case decimal.Decimal:
		return tv.String()
	case []Difficulty:
		parts := make([]string, len(tv))
		for i, d := range tv {
			parts[i] = string(d)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []Terrain:
		parts := make([]string, len(tv))
		for i, t := range tv {
			parts[i] = t.Surface + " " + t.Length.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []string:
		return "[" + strings.Join(tv, ", ") + "]"
	}
	return fmt.Sprint(v)
}
