package route

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Dataset files store decimals as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Field is the canonical name of a route attribute.
type Field string

const (
	FieldName          Field = "name"
	FieldDate          Field = "date"
	FieldLink          Field = "link"
	FieldLength        Field = "length"
	FieldAscent        Field = "ascent"
	FieldDifficulty    Field = "difficulty"
	FieldStrenuousness Field = "strenuousness"
	FieldDuration      Field = "duration"
	FieldWater         Field = "water"
	FieldFood          Field = "food"
	FieldTerrains      Field = "terrains"
	FieldTraces        Field = "traces"
	FieldTrailhead     Field = "trailhead"
)

// Fields lists every record field in serialization order.
var Fields = []Field{
	FieldName,
	FieldDate,
	FieldLink,
	FieldLength,
	FieldAscent,
	FieldDifficulty,
	FieldStrenuousness,
	FieldDuration,
	FieldWater,
	FieldFood,
	FieldTerrains,
	FieldTraces,
	FieldTrailhead,
}

// MetadataFields are the fields populated from a page's metadata block.
var MetadataFields = []Field{
	FieldTrailhead,
	FieldLength,
	FieldAscent,
	FieldDuration,
	FieldWater,
	FieldFood,
	FieldTerrains,
	FieldDifficulty,
	FieldStrenuousness,
}

// ErrMandatoryField is returned when clearing a field every record must carry.
var ErrMandatoryField = errors.New("mandatory field")

// Terrain is one surface segment of a route.
type Terrain struct {
	Surface string          `json:"terrain"`
	Length  decimal.Decimal `json:"length"`
}

// Record represents one published trail route.
//
// Struct field order is the serialization order of the dataset file.
type Record struct {
	Name          string           `json:"name"`
	Date          time.Time        `json:"date"`
	Link          string           `json:"link"`
	Length        *decimal.Decimal `json:"length,omitempty"`
	Ascent        *decimal.Decimal `json:"ascent,omitempty"`
	Difficulty    []Difficulty     `json:"difficulty,omitempty"`
	Strenuousness *int             `json:"strenuousness,omitempty"`
	Duration      *string          `json:"duration,omitempty"`
	Water         *Provision       `json:"water,omitempty"`
	Food          *Provision       `json:"food,omitempty"`
	Terrains      []Terrain        `json:"terrains,omitempty"`
	Traces        []string         `json:"traces"`
	Trailhead     *string          `json:"trailhead,omitempty"`
}

// Value returns the value stored for a field and whether it is present.
//
// Slices are returned as copies.
func (r *Record) Value(f Field) (any, bool) {
	switch f {
	case FieldName:
		return r.Name, true
	case FieldDate:
		return r.Date, true
	case FieldLink:
		return r.Link, true
	case FieldLength:
		if r.Length == nil {
			return nil, false
		}
		return *r.Length, true
	case FieldAscent:
		if r.Ascent == nil {
			return nil, false
		}
		return *r.Ascent, true
	case FieldDifficulty:
		if r.Difficulty == nil {
			return nil, false
		}
		return append([]Difficulty(nil), r.Difficulty...), true
	case FieldStrenuousness:
		if r.Strenuousness == nil {
			return nil, false
		}
		return *r.Strenuousness, true
	case FieldDuration:
		if r.Duration == nil {
			return nil, false
		}
		return *r.Duration, true
	case FieldWater:
		if r.Water == nil {
			return nil, false
		}
		return *r.Water, true
	case FieldFood:
		if r.Food == nil {
			return nil, false
		}
		return *r.Food, true
	case FieldTerrains:
		if r.Terrains == nil {
			return nil, false
		}
		return append([]Terrain(nil), r.Terrains...), true
	case FieldTraces:
		if r.Traces == nil {
			return nil, false
		}
		return append([]string(nil), r.Traces...), true
	case FieldTrailhead:
		if r.Trailhead == nil {
			return nil, false
		}
		return *r.Trailhead, true
	}
	return nil, false
}

// SetValue stores v in field f. The dynamic type of v must match the field:
// string, time.Time, decimal.Decimal, []Difficulty, int, Provision,
// []Terrain or []string.
func (r *Record) SetValue(f Field, v any) error {
	mismatch := func() error {
		return fmt.Errorf("field %s: unexpected value type %T", f, v)
	}

	switch f {
	case FieldName, FieldLink, FieldDuration, FieldTrailhead:
		s, ok := v.(string)
		if !ok {
			return mismatch()
		}
		switch f {
		case FieldName:
			r.Name = s
		case FieldLink:
			r.Link = s
		case FieldDuration:
			r.Duration = &s
		case FieldTrailhead:
			r.Trailhead = &s
		}
	case FieldDate:
		t, ok := v.(time.Time)
		if !ok {
			return mismatch()
		}
		r.Date = t
	case FieldLength, FieldAscent:
		d, ok := v.(decimal.Decimal)
		if !ok {
			return mismatch()
		}
		if f == FieldLength {
			r.Length = &d
		} else {
			r.Ascent = &d
		}
	case FieldDifficulty:
		codes, ok := v.([]Difficulty)
		if !ok {
			return mismatch()
		}
		r.Difficulty = append([]Difficulty{}, codes...)
	case FieldStrenuousness:
		n, ok := v.(int)
		if !ok {
			return mismatch()
		}
		r.Strenuousness = &n
	case FieldWater, FieldFood:
		p, ok := v.(Provision)
		if !ok {
			return mismatch()
		}
		if f == FieldWater {
			r.Water = &p
		} else {
			r.Food = &p
		}
	case FieldTerrains:
		segments, ok := v.([]Terrain)
		if !ok {
			return mismatch()
		}
		r.Terrains = append([]Terrain{}, segments...)
	case FieldTraces:
		traces, ok := v.([]string)
		if !ok {
			return mismatch()
		}
		r.Traces = append([]string{}, traces...)
	default:
		return fmt.Errorf("unknown field %q", f)
	}
	return nil
}

// Clear removes an optional field from the record.
func (r *Record) Clear(f Field) error {
	switch f {
	case FieldName, FieldDate, FieldLink:
		return fmt.Errorf("clearing %s: %w", f, ErrMandatoryField)
	case FieldLength:
		r.Length = nil
	case FieldAscent:
		r.Ascent = nil
	case FieldDifficulty:
		r.Difficulty = nil
	case FieldStrenuousness:
		r.Strenuousness = nil
	case FieldDuration:
		r.Duration = nil
	case FieldWater:
		r.Water = nil
	case FieldFood:
		r.Food = nil
	case FieldTerrains:
		r.Terrains = nil
	case FieldTraces:
		r.Traces = nil
	case FieldTrailhead:
		r.Trailhead = nil
	default:
		return fmt.Errorf("unknown field %q", f)
	}
	return nil
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := &Record{
		Name: r.Name,
		Date: r.Date,
		Link: r.Link,
	}
	for _, f := range Fields[3:] {
		if v, ok := r.Value(f); ok {
			// Value already copies slices; types always match.
			_ = c.SetValue(f, v)
		}
	}
	return c
}
