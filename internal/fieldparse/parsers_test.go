package fieldparse

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/pfrederiksen/mtb-routes/internal/route"
)

func TestParseLength(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "км", wantErr: true},
		{input: "", wantErr: true},
		{input: "около тридесет", wantErr: true},
		{input: "35", want: "35"},
		{input: "35 км", want: "35"},
		{input: "35.6", want: "35.6"},
		{input: "35.6 км", want: "35.6"},
		{input: "35,6 км", want: "35.6"},
		{input: "35.6км", want: "35.6"},
		{input: "35.6 km", want: "35.6"},
		{input: "43.4 км / 48.3 км с отбивката", want: "43.4"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLength(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrNoMatch) {
					t.Errorf("ParseLength(%q) error = %v, want ErrNoMatch", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLength(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ParseLength(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseAscent(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "840", want: "840"},
		{input: "840м", want: "840"},
		{input: "840m", want: "840"},
		{input: "840 м", want: "840"},
		{input: "840 m", want: "840"},
		{input: "(изкачване): 840 m", want: "840"},
		{input: "(спускане): 840 m", want: "-840"},
		{input: "(спускане) – 1200", want: "-1200"},
		{input: "-35", want: "-35"},
		{input: "0", want: "0"},
		{input: "много", wantErr: true},
		{input: "840 м (изкачване)", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAscent(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrNoMatch) {
					t.Errorf("ParseAscent(%q) error = %v, want ErrNoMatch", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAscent(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ParseAscent(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseStrenuousness(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{input: "бла бла", wantErr: true},
		{input: "КФН=", wantErr: true},
		{input: "КФН=1", want: 1},
		{input: "КФН=13", want: 13},
		{input: "Средно КФН=6", want: 6},
		{input: "Високо (КФН=24) за цялата обиколка", want: 24},
		{input: "КФН=12 до хижата, КФН=30 общо", want: 30},
		{input: "КФН=18, после КФН=", want: 18},
		{input: "КФН= (уточнява се), КФН=9", want: 9},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStrenuousness(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrNoMatch) {
					t.Errorf("ParseStrenuousness(%q) error = %v, want ErrNoMatch", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStrenuousness(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseStrenuousness(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func formatCodes(codes []route.Difficulty) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = string(c)
	}
	return strings.Join(parts, " ")
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "T5 R1 някакъв рандом текст", want: "R1 T5"},
		{input: "T5 R1 T5", want: "R1 T5"},
		{input: "високо (R1, R2, Т3, Т4, Т5, F, X)", want: "R1 R2 T3 T4 T5 F X"},
		{input: "FX, R3", want: "R3 FX"},
		{input: "средно", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDifficulty(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrNoMatch) {
					t.Errorf("ParseDifficulty(%q) error = %v, want ErrNoMatch", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDifficulty(%q) unexpected error: %v", tt.input, err)
			}
			if formatCodes(got) != tt.want {
				t.Errorf("ParseDifficulty(%q) = %s, want %s", tt.input, formatCodes(got), tt.want)
			}

			again, err := ParseDifficulty(formatCodes(got))
			if err != nil {
				t.Fatalf("ParseDifficulty(own output) error: %v", err)
			}
			if formatCodes(again) != formatCodes(got) {
				t.Errorf("ParseDifficulty not idempotent: %s -> %s", formatCodes(got), formatCodes(again))
			}
		})
	}
}

func TestParseTerrains(t *testing.T) {
	got, err := ParseTerrains("Асфалт - 5,5 км, черни пътища Т2 – 12 км, пътеки T4 ~3.2 km")
	if err != nil {
		t.Fatalf("ParseTerrains() unexpected error: %v", err)
	}

	want := []route.Terrain{
		{Surface: "асфалт", Length: decimal.RequireFromString("5.5")},
		{Surface: "черни пътища t2", Length: decimal.RequireFromString("12")},
		{Surface: "пътеки t4", Length: decimal.RequireFromString("3.2")},
	}
	if !route.ValuesEqual(got, want) {
		t.Errorf("ParseTerrains() = %s, want %s", route.FormatValue(got), route.FormatValue(want))
	}

	if _, err := ParseTerrains("разнообразен"); !errors.Is(err, ErrNoMatch) {
		t.Errorf("ParseTerrains(no segments) error = %v, want ErrNoMatch", err)
	}
}

func TestParseWater(t *testing.T) {
	tests := []struct {
		input string
		want  route.Provision
	}{
		{"Не е необходима", route.NotRequiredProvision()},
		{"не е необходима.", route.NotRequiredProvision()},
		{"НЕ Е НЕОБХОДИМА!", route.NotRequiredProvision()},
		{"Няма нужда", route.NotRequiredProvision()},
		{"3,3 литра", route.AmountProvision(decimal.RequireFromString("3.3"))},
		{"2 л", route.AmountProvision(decimal.RequireFromString("2"))},
		{"1.5", route.AmountProvision(decimal.RequireFromString("1.5"))},
		{"има чешми по пътя", route.TextProvision("има чешми по пътя")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseWater(tt.input)
			if err != nil {
				t.Fatalf("ParseWater(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseWater(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFood(t *testing.T) {
	got, _ := ParseFood("няма нужда")
	if got.Kind != route.NotRequired {
		t.Errorf("ParseFood(няма нужда) = %v, want false", got)
	}

	got, _ = ParseFood("2 сандвича")
	if !got.Equal(route.TextProvision("2 сандвича")) {
		t.Errorf("ParseFood(2 сандвича) = %v, want text", got)
	}
}

func TestParseText(t *testing.T) {
	got, err := ParseText("тест")
	if err != nil || got != "тест" {
		t.Errorf("ParseText(тест) = %q, %v; want тест, nil", got, err)
	}
}
