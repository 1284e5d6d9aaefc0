package route

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleRecord() *Record {
	length := dec("35.6")
	ascent := dec("0")
	trailhead := "Бояна"
	water := NotRequiredProvision()
	return &Record{
		Name:       "Черни връх",
		Date:       time.Date(2014, 5, 12, 10, 30, 0, 0, time.UTC),
		Link:       "http://mtb-bg.com/index.php/trails/gpstracks/1-cherni-vrah",
		Length:     &length,
		Ascent:     &ascent,
		Difficulty: []Difficulty{DifficultyR1, DifficultyT5},
		Water:      &water,
		Terrains:   []Terrain{{Surface: "пътеки", Length: dec("3.5")}},
		Traces:     []string{"http://mtb-bg.com/files/a.gpx"},
		Trailhead:  &trailhead,
	}
}

func TestRecord_ValueAndSetValue(t *testing.T) {
	r := &Record{}

	if _, ok := r.Value(FieldAscent); ok {
		t.Error("Value(ascent) on empty record reported present")
	}

	if err := r.SetValue(FieldAscent, dec("0")); err != nil {
		t.Fatalf("SetValue(ascent) error: %v", err)
	}
	got, ok := r.Value(FieldAscent)
	if !ok {
		t.Fatal("Value(ascent) = absent after SetValue(0)")
	}
	if !ValuesEqual(got, dec("0")) {
		t.Errorf("Value(ascent) = %v, want 0", got)
	}

	if err := r.SetValue(FieldWater, NotRequiredProvision()); err != nil {
		t.Fatalf("SetValue(water) error: %v", err)
	}
	if v, ok := r.Value(FieldWater); !ok || v.(Provision).Kind != NotRequired {
		t.Errorf("Value(water) = %v, %v; want false, present", v, ok)
	}

	if err := r.SetValue(FieldLength, "35"); err == nil {
		t.Error("SetValue(length, string) expected type error, got nil")
	}
	if err := r.SetValue(Field("colour"), "red"); err == nil {
		t.Error("SetValue(unknown) expected error, got nil")
	}
}

func TestRecord_Clear(t *testing.T) {
	r := sampleRecord()

	if err := r.Clear(FieldWater); err != nil {
		t.Fatalf("Clear(water) error: %v", err)
	}
	if _, ok := r.Value(FieldWater); ok {
		t.Error("water still present after Clear")
	}

	if err := r.Clear(FieldName); !errors.Is(err, ErrMandatoryField) {
		t.Errorf("Clear(name) error = %v, want ErrMandatoryField", err)
	}
}

func TestRecord_Clone(t *testing.T) {
	orig := sampleRecord()
	c := orig.Clone()

	for _, f := range Fields {
		a, aok := orig.Value(f)
		b, bok := c.Value(f)
		if aok != bok || !ValuesEqual(a, b) {
			t.Errorf("clone field %s = %v, want %v", f, b, a)
		}
	}

	c.Traces[0] = "changed"
	*c.Length = dec("1")
	c.Difficulty[0] = DifficultyX
	if orig.Traces[0] == "changed" {
		t.Error("modifying clone traces changed original")
	}
	if orig.Length.Equal(dec("1")) {
		t.Error("modifying clone length changed original")
	}
	if orig.Difficulty[0] != DifficultyR1 {
		t.Error("modifying clone difficulty changed original")
	}
}

func TestRecord_JSONFieldOrder(t *testing.T) {
	data, err := json.Marshal(sampleRecord())
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	s := string(data)

	order := []string{`"name"`, `"date"`, `"link"`, `"length"`, `"ascent"`, `"difficulty"`,
		`"water"`, `"terrains"`, `"traces"`, `"trailhead"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(s, key)
		if idx < 0 {
			t.Fatalf("key %s missing from %s", key, s)
		}
		if idx < last {
			t.Errorf("key %s out of order in %s", key, s)
		}
		last = idx
	}

	for _, absent := range []string{`"food"`, `"duration"`, `"strenuousness"`} {
		if strings.Contains(s, absent) {
			t.Errorf("absent field %s serialized: %s", absent, s)
		}
	}
	if !strings.Contains(s, `"length":35.6`) {
		t.Errorf("length not serialized as number: %s", s)
	}
	if !strings.Contains(s, `"water":false`) {
		t.Errorf("water not serialized as false: %s", s)
	}
	if !strings.Contains(s, `"ascent":0`) {
		t.Errorf("zero ascent dropped: %s", s)
	}
}

func TestProvision_JSON(t *testing.T) {
	tests := []struct {
		in   string
		want Provision
	}{
		{"false", NotRequiredProvision()},
		{"3.3", AmountProvision(dec("3.3"))},
		{`"от чешмата"`, TextProvision("от чешмата")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var p Provision
			if err := json.Unmarshal([]byte(tt.in), &p); err != nil {
				t.Fatalf("Unmarshal(%s) error: %v", tt.in, err)
			}
			if !p.Equal(tt.want) {
				t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, p, tt.want)
			}
			out, err := json.Marshal(p)
			if err != nil {
				t.Fatalf("Marshal() error: %v", err)
			}
			if string(out) != tt.in {
				t.Errorf("Marshal() = %s, want %s", out, tt.in)
			}
		})
	}

	var p Provision
	if err := json.Unmarshal([]byte("true"), &p); err == nil {
		t.Error("Unmarshal(true) expected error, got nil")
	}
}

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"both absent", nil, nil, true},
		{"absent vs present", nil, "x", false},
		{"decimal scale ignored", dec("35.6"), dec("35.60"), true},
		{"false vs text", NotRequiredProvision(), TextProvision("false"), false},
		{"zero ascent vs absent", dec("0"), nil, false},
		{"difficulty order matters", []Difficulty{"R1", "T5"}, []Difficulty{"T5", "R1"}, false},
		{"terrains equal", []Terrain{{"асфалт", dec("2")}}, []Terrain{{"асфалт", dec("2.0")}}, true},
		{"type mismatch", "1", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValuesEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("ValuesEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSortDifficulties(t *testing.T) {
	got := SortDifficulties([]Difficulty{"FX", "T5", "R1", "T5", "F"})
	want := "[R1, T5, F, FX]"
	if FormatValue(got) != want {
		t.Errorf("SortDifficulties() = %s, want %s", FormatValue(got), want)
	}
}

func TestDataset(t *testing.T) {
	early := &Record{Name: "B", Date: time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC)}
	late := &Record{Name: "A", Date: time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)}
	sameDay := &Record{Name: "C", Date: early.Date}

	d := NewDataset(late, sameDay, early)
	d.Sort()
	if got := strings.Join(d.Names(), ","); got != "B,C,A" {
		t.Errorf("Sort() order = %s, want B,C,A", got)
	}

	if replaced := d.Put(&Record{Name: "A", Link: "new"}); !replaced {
		t.Error("Put(existing) reported not replaced")
	}
	if r, _ := d.Get("A"); r.Link != "new" {
		t.Errorf("Get(A).Link = %q, want new", r.Link)
	}

	if !d.Remove("C") || d.Remove("C") {
		t.Error("Remove(C) should succeed once")
	}
	if d.Len() != 2 {
		t.Errorf("Len() = %d, want 2", d.Len())
	}

	d.Routes = append(d.Routes, &Record{Name: "A"}, &Record{Name: "A"})
	if dups := d.DuplicateNames(); len(dups) != 1 || dups[0] != "A" {
		t.Errorf("DuplicateNames() = %v, want [A]", dups)
	}

	c := d.Clone()
	c.Routes[0].Name = "Z"
	if d.Routes[0].Name == "Z" {
		t.Error("modifying clone changed original dataset")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "2014-05-12T10:30:00+03:00", want: "2014-05-12T10:30:00+03:00"},
		{input: "2014-05-12T07:30:00Z", want: "2014-05-12T07:30:00Z"},
		{input: "2014-05-12T10:30:00", want: "2014-05-12T10:30:00+03:00"},
		{input: "2008-12-07T09:05:00", want: "2008-12-07T09:05:00+02:00"},
		{input: "12 May 2014", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got.Format(time.RFC3339) != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.input, got.Format(time.RFC3339), tt.want)
			}
		})
	}
}

func TestRecord_UnmarshalJSON(t *testing.T) {
	var r Record
	data := `{"name": "A", "date": "2014-05-12T10:30:00", "link": "l", "ascent": 0, "traces": ["t"]}`
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if r.Name != "A" || r.Link != "l" || len(r.Traces) != 1 {
		t.Errorf("Unmarshal() = %+v", r)
	}
	if r.Ascent == nil || !r.Ascent.IsZero() {
		t.Errorf("Ascent = %v, want present zero", r.Ascent)
	}
	if r.Date.Location() != Location || r.Date.Hour() != 10 {
		t.Errorf("Date = %v, want 10:30 in Europe/Sofia", r.Date)
	}

	for _, bad := range []string{`{"name": "B"}`, `{"name": "B", "date": "yesterday"}`} {
		var r Record
		if err := json.Unmarshal([]byte(bad), &r); err == nil {
			t.Errorf("Unmarshal(%s) expected error", bad)
		}
	}
}
