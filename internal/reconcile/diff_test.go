package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/mtb-routes/internal/route"
)

func newRecord(name string) *route.Record {
	length := decimal.RequireFromString("35.6")
	water := route.NotRequiredProvision()
	return &route.Record{
		Name:       name,
		Date:       time.Date(2014, 5, 12, 10, 30, 0, 0, time.UTC),
		Link:       "http://mtb-bg.com/index.php/trails/gpstracks/" + name,
		Length:     &length,
		Water:      &water,
		Difficulty: []route.Difficulty{route.DifficultyR1},
		Traces:     []string{"http://mtb-bg.com/" + name + ".gpx"},
	}
}

func TestComputeDiff_IdenticalRoute(t *testing.T) {
	prev := route.NewDataset(newRecord("vitosha"))
	curr := route.NewDataset(newRecord("vitosha"))

	assert.Empty(t, ComputeDiff(prev, curr, nil))
}

func TestComputeDiff_AddAndDelete(t *testing.T) {
	prev := route.NewDataset(newRecord("vitosha"), newRecord("rila"))
	curr := route.NewDataset(newRecord("vitosha"), newRecord("pirin"))

	fixes := ComputeDiff(prev, curr, nil)
	require.Len(t, fixes, 2)

	assert.Equal(t, AddRoute, fixes[0].Kind)
	assert.Equal(t, "pirin", fixes[0].Route)
	added, ok := fixes[0].New.(*route.Record)
	require.True(t, ok)
	assert.Equal(t, "pirin", added.Name)

	assert.Equal(t, DeleteRoute, fixes[1].Kind)
	assert.Equal(t, "rila", fixes[1].Route)
	assert.Nil(t, fixes[1].New)
}

func TestComputeDiff_FieldChanges(t *testing.T) {
	prevRec := newRecord("vitosha")
	currRec := newRecord("vitosha")

	newLength := decimal.RequireFromString("36.1")
	currRec.Length = &newLength
	currRec.Water = nil
	strenuousness := 6
	currRec.Strenuousness = &strenuousness

	fixes := ComputeDiff(route.NewDataset(prevRec), route.NewDataset(currRec), nil)
	require.Len(t, fixes, 3)

	byField := make(map[route.Field]Fix)
	for _, f := range fixes {
		assert.Equal(t, "vitosha", f.Route)
		byField[f.Field] = f
	}

	assert.Equal(t, SetField, byField[route.FieldLength].Kind)
	assert.Equal(t, "35.6", route.FormatValue(byField[route.FieldLength].Old))
	assert.Equal(t, "36.1", route.FormatValue(byField[route.FieldLength].New))

	water := byField[route.FieldWater]
	assert.Equal(t, DeleteField, water.Kind, "present to absent must be a DeleteField")
	assert.Nil(t, water.New)
	assert.Equal(t, route.NotRequiredProvision(), water.Old)

	assert.Equal(t, SetField, byField[route.FieldStrenuousness].Kind)
	assert.Nil(t, byField[route.FieldStrenuousness].Old)
}

func TestComputeDiff_FalseWaterIsAValue(t *testing.T) {
	prevRec := newRecord("vitosha")
	currRec := newRecord("vitosha")
	text := route.TextProvision("false")
	currRec.Water = &text

	fixes := ComputeDiff(route.NewDataset(prevRec), route.NewDataset(currRec), nil)
	require.Len(t, fixes, 1)
	assert.Equal(t, SetField, fixes[0].Kind)
	assert.Equal(t, route.FieldWater, fixes[0].Field)
}

func TestComputeDiff_ZeroAscentIsPresent(t *testing.T) {
	prevRec := newRecord("vitosha")
	currRec := newRecord("vitosha")
	zero := decimal.Zero
	currRec.Ascent = &zero

	fixes := ComputeDiff(route.NewDataset(prevRec), route.NewDataset(currRec), nil)
	require.Len(t, fixes, 1)
	assert.Equal(t, SetField, fixes[0].Kind)
	assert.Equal(t, route.FieldAscent, fixes[0].Field)
}

func TestComputeDiff_Ignored(t *testing.T) {
	prev := route.NewDataset(newRecord("vitosha"), newRecord("rila"))
	changed := newRecord("vitosha")
	changed.Difficulty = []route.Difficulty{route.DifficultyT5}
	curr := route.NewDataset(changed, newRecord("pirin"))

	ignored := Ignored{
		"http://mtb-bg.com/index.php/trails/gpstracks/pirin":   true,
		"http://mtb-bg.com/index.php/trails/gpstracks/vitosha": true,
		"rila": true,
	}
	assert.Empty(t, ComputeDiff(prev, curr, ignored))
}

func TestComputeDiff_GroupsFixesByRoute(t *testing.T) {
	a1, a2 := newRecord("a"), newRecord("a")
	b1, b2 := newRecord("b"), newRecord("b")
	a2.Water, b2.Water = nil, nil
	a2.Difficulty = []route.Difficulty{route.DifficultyX}
	b2.Difficulty = []route.Difficulty{route.DifficultyX}

	fixes := ComputeDiff(route.NewDataset(a1, b1), route.NewDataset(a2, b2), nil)
	require.Len(t, fixes, 4)

	seen := make(map[string]bool)
	last := ""
	for _, f := range fixes {
		if f.Route != last {
			assert.False(t, seen[f.Route], "fixes for %s are not consecutive", f.Route)
			seen[f.Route] = true
			last = f.Route
		}
	}
}

func TestComputeDiff_NilDatasets(t *testing.T) {
	fixes := ComputeDiff(nil, route.NewDataset(newRecord("a")), nil)
	require.Len(t, fixes, 1)
	assert.Equal(t, AddRoute, fixes[0].Kind)

	assert.Empty(t, ComputeDiff(nil, nil, nil))
}
