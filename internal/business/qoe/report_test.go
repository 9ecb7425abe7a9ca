package qoe

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/model"
)

func TestBuildReport(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	r, err := BuildReport(table(sampleRecords()...), now)
	require.NoError(t, err)

	assert.Equal(t, ReportTitle, r.Title)
	assert.Equal(t, now, r.GeneratedAt)
	assert.Equal(t, GeneralSectionName, r.General.Title)
	assert.Equal(t, 4, r.General.Metrics.Actions)

	require.Len(t, r.ByMonth, 2)
	assert.Equal(t, "Mês: 2024-01", r.ByMonth[0].Title)
	assert.Equal(t, 2, r.ByMonth[0].Metrics.Actions)
	assert.Equal(t, "Mês: 2024-02", r.ByMonth[1].Title)

	require.Len(t, r.ByCity, 2)
	assert.Equal(t, "Cidade: Campinas", r.ByCity[0].Title)
	assert.Equal(t, "Cidade: Sumaré", r.ByCity[1].Title)
	assert.Equal(t, 1, r.ByCity[1].Metrics.Actions)

	assert.Len(t, r.Sections(), 5)
	assert.Len(t, r.General.Lines, len(model.MetricKeys))
}

func TestBuildReport_SchemaError(t *testing.T) {
	_, err := BuildReport(model.Table{Columns: []string{model.ColScoreBefore}}, time.Now())

	var schemaErr *model.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"QOE DEP"}, schemaErr.Missing)
}

func TestFormatMetricValue(t *testing.T) {
	tests := []struct {
		key  string
		v    float64
		want string
	}{
		{"acoes", 12, "12"},
		{"qoe_antes", 68.33, "68.3"},
		{"perc_total_80", 50, "50.0"},
		{"total_nodes", 0, "0"},
	}
	for _, tt := range tests {
		if got := FormatMetricValue(tt.key, tt.v); got != tt.want {
			t.Errorf("FormatMetricValue(%q, %v) = %q, want %q", tt.key, tt.v, got, tt.want)
		}
	}
}

func TestMetricLabel(t *testing.T) {
	assert.Equal(t, "Total de Ações", MetricLabel("acoes"))
	assert.Equal(t, "Qoe Medio Geral", MetricLabel("qoe_medio_geral"))
	assert.Equal(t, "Ótimo Índice", MetricLabel("ótimo_ÍNDICE"))
	assert.Equal(t, "É", MetricLabel("é"))
}
