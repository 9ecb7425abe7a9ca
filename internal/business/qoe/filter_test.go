package qoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/model"
)

func sampleRecords() []model.ActionRecord {
	return []model.ActionRecord{
		{NodeID: "N1", ScoreBefore: "50", ScoreAfter: "90", Sector: "Rede", City: "Campinas", Month: "2024-01", Reason: "Ruído"},
		{NodeID: "N2", ScoreBefore: "70", ScoreAfter: "60", Sector: " REDE ", City: "Campinas", Month: "2024-02", Reason: "Sinal"},
		{NodeID: "N3", ScoreBefore: "85", ScoreAfter: "88", Sector: "Campo", City: "Sumaré", Month: "2024-01", Reason: "Ruído"},
		{NodeID: "N1", ScoreBefore: "60", ScoreAfter: "", Sector: "campo", City: "", Month: "", Reason: ""},
	}
}

func TestFilter_Match(t *testing.T) {
	records := sampleRecords()

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"no filter", Filter{}, 4},
		{"city", Filter{City: "Campinas"}, 2},
		{"month", Filter{Month: "2024-01"}, 2},
		{"city and month", Filter{City: "Campinas", Month: "2024-01"}, 1},
		{"exact sector", Filter{Sector: "Rede"}, 1},
		{"exact sector explicit", Filter{Sector: "REDE", SectorMatch: ExactSectorMatch{}}, 0},
		{"normalized sector", Filter{Sector: "rede", SectorMatch: NormalizedSectorMatch{}}, 2},
		{"normalized sector and city", Filter{Sector: "CAMPO", City: "Sumaré", SectorMatch: NormalizedSectorMatch{}}, 1},
		{"city is case sensitive", Filter{City: "campinas"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, tt.filter.Apply(records), tt.want)
		})
	}
}

func TestFilter_RoundTrip(t *testing.T) {
	tbl := table(sampleRecords()...)

	byCity := Filter{City: "Campinas"}.ApplyTable(tbl)
	again := Filter{}.ApplyTable(byCity)

	assert.Equal(t, byCity, again)
	assert.Equal(t, tbl.Columns, again.Columns)
}

func TestFilter_DoesNotMutate(t *testing.T) {
	records := sampleRecords()
	snapshot := sampleRecords()

	out := Filter{City: "Sumaré"}.Apply(records)
	require.Len(t, out, 1)
	out[0].City = "changed"

	assert.Equal(t, snapshot, records)
}

func TestSectorMatcherFor(t *testing.T) {
	m, err := SectorMatcherFor("exact")
	require.NoError(t, err)
	assert.IsType(t, ExactSectorMatch{}, m)

	m, err = SectorMatcherFor("normalized")
	require.NoError(t, err)
	assert.IsType(t, NormalizedSectorMatch{}, m)

	m, err = SectorMatcherFor("")
	require.NoError(t, err)
	assert.IsType(t, ExactSectorMatch{}, m)

	_, err = SectorMatcherFor("fuzzy")
	assert.Error(t, err)
}

func TestListDimensions(t *testing.T) {
	d := ListDimensions(sampleRecords())

	assert.Equal(t, []string{"2024-01", "2024-02"}, d.Months)
	assert.Equal(t, []string{"Campinas", "Sumaré"}, d.Cities)
	assert.Equal(t, []string{"CAMPO", "REDE"}, d.Sectors)
}

func TestListDimensions_Empty(t *testing.T) {
	d := ListDimensions(nil)
	assert.Empty(t, d.Months)
	assert.Empty(t, d.Cities)
	assert.Empty(t, d.Sectors)
}
