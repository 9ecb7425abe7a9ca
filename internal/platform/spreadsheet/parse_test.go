package spreadsheet

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/model"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParse_XLSX(t *testing.T) {
	buf := workbook(t,
		[]interface{}{"Node", " QOE ANTES ", "qoe dep", "SETOR", "Cidade", "Motivo", "Responsável", "Data Execução", "Extra"},
		[]interface{}{"N1", 50, 90, "Rede", "Campinas", "Ruído", "Ana", 45306, "x"},
		[]interface{}{"N1", 70, "sem leitura", "Rede", "Campinas", "Sinal", "Ana", "2024-02-03", ""},
		[]interface{}{},
		[]interface{}{"N2", 82.5, 88, "Campo", "Sumaré", "", "", "", ""},
	)

	tbl, err := Parse(buf, "Gerencial_QOE.xlsx")
	require.NoError(t, err)

	assert.True(t, tbl.HasColumn(model.ColNodeID))
	assert.True(t, tbl.HasColumn(model.ColMonth))
	assert.False(t, tbl.HasColumn("Extra"))
	require.Len(t, tbl.Records, 3)

	first := tbl.Records[0]
	assert.Equal(t, "N1", first.NodeID)
	assert.Equal(t, "50", first.ScoreBefore)
	assert.Equal(t, "90", first.ScoreAfter)
	assert.Equal(t, "Campinas", first.City)
	assert.Equal(t, "Ana", first.Responsible)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), first.ExecutionDate)
	assert.Equal(t, "2024-01", first.Month)

	assert.Equal(t, "sem leitura", tbl.Records[1].ScoreAfter)
	assert.Equal(t, "2024-02", tbl.Records[1].Month)

	last := tbl.Records[2]
	assert.Equal(t, "82.5", last.ScoreBefore)
	assert.True(t, last.ExecutionDate.IsZero())
	assert.Equal(t, "", last.Month)
}

func TestParse_XLSXMissingColumns(t *testing.T) {
	buf := workbook(t,
		[]interface{}{"Node", "QOE ANTES", "Cidade"},
		[]interface{}{"N1", 50, "Campinas"},
	)

	_, err := Parse(buf, "planilha.xlsx")

	var schemaErr *model.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"QOE DEP", "SETOR"}, schemaErr.Missing)
}

func TestParse_NodeFilledWithRowIndex(t *testing.T) {
	buf := workbook(t,
		[]interface{}{"QOE ANTES", "QOE DEP", "SETOR"},
		[]interface{}{40, 60, "Rede"},
		[]interface{}{55, 85, "Rede"},
	)

	tbl, err := Parse(buf, "planilha.xlsx")
	require.NoError(t, err)

	assert.True(t, tbl.HasColumn(model.ColNodeID))
	assert.False(t, tbl.HasColumn(model.ColMonth))
	require.Len(t, tbl.Records, 2)
	assert.Equal(t, "0", tbl.Records[0].NodeID)
	assert.Equal(t, "1", tbl.Records[1].NodeID)
}

func TestParse_CSV(t *testing.T) {
	data := "\ufeffNode;QOE ANTES;QOE DEP;SETOR;Cidade;Data Execução\n" +
		"N1;50;90;Rede;Campinas;15/01/2024\n" +
		"N2;;;Rede;Sumaré;not a date\n" +
		";;;;;\n" +
		"N3;70;60;Campo;Campinas;2024-03-10\n"

	tbl, err := Parse(strings.NewReader(data), "export.CSV")
	require.NoError(t, err)

	require.Len(t, tbl.Records, 3)
	assert.Equal(t, "N1", tbl.Records[0].NodeID)
	assert.Equal(t, "2024-01", tbl.Records[0].Month)
	assert.Equal(t, "", tbl.Records[1].ScoreBefore)
	assert.Equal(t, "", tbl.Records[1].Month)
	assert.Equal(t, "2024-03", tbl.Records[2].Month)
	assert.Equal(t, "Campo", tbl.Records[2].Sector)
}

func TestParse_CSVCommaDelimited(t *testing.T) {
	data := "QOE ANTES,QOE DEP,SETOR,Cidade\n50,90,Rede,\"Campinas, SP\"\n"

	tbl, err := Parse(strings.NewReader(data), "export.csv")
	require.NoError(t, err)

	require.Len(t, tbl.Records, 1)
	assert.Equal(t, "Campinas, SP", tbl.Records[0].City)
	assert.Equal(t, "0", tbl.Records[0].NodeID)
}

func TestParse_CSVHeaderOnly(t *testing.T) {
	tbl, err := Parse(strings.NewReader("Node,QOE ANTES,QOE DEP,SETOR\n"), "x.csv")
	require.NoError(t, err)

	assert.Empty(t, tbl.Records)
	assert.Equal(t, []string{model.ColNodeID, model.ColScoreBefore, model.ColScoreAfter, model.ColSector}, tbl.Columns)

	_, err = Parse(strings.NewReader("Node,QOE ANTES,QOE DEP\n\n"), "x.csv")
	var schemaErr *model.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"SETOR"}, schemaErr.Missing)
}

func TestParse_CSVRaggedRows(t *testing.T) {
	data := "Node,QOE ANTES,QOE DEP,SETOR,Cidade\n" +
		"N1,50,90,Rede\n" +
		"N2,70,60,Campo,Sumaré,extra\n"

	tbl, err := Parse(strings.NewReader(data), "x.csv")
	require.NoError(t, err)

	require.Len(t, tbl.Records, 2)
	assert.Equal(t, "Rede", tbl.Records[0].Sector)
	assert.Equal(t, "", tbl.Records[0].City)
	assert.Equal(t, "Sumaré", tbl.Records[1].City)
}

func TestParse_CSVDecimalComma(t *testing.T) {
	data := "Node;QOE ANTES;QOE DEP;SETOR;Motivo\n" +
		"N1;50,5;-3,25;Rede;troca 1,5m\n" +
		"N2;1,2,3;80;Rede;\n"

	tbl, err := Parse(strings.NewReader(data), "x.csv")
	require.NoError(t, err)

	require.Len(t, tbl.Records, 2)
	assert.Equal(t, "50.5", tbl.Records[0].ScoreBefore)
	assert.Equal(t, "-3.25", tbl.Records[0].ScoreAfter)
	assert.Equal(t, "troca 1,5m", tbl.Records[0].Reason)
	assert.Equal(t, "1,2,3", tbl.Records[1].ScoreBefore)

	tbl, err = Parse(strings.NewReader("QOE ANTES,QOE DEP,SETOR\n\"50,5\",90,Rede\n"), "x.csv")
	require.NoError(t, err)
	assert.Equal(t, "50,5", tbl.Records[0].ScoreBefore)
}

func TestParse_EmptyAndUnsupported(t *testing.T) {
	_, err := Parse(strings.NewReader(""), "empty.csv")
	var schemaErr *model.SchemaError
	require.True(t, errors.As(err, &schemaErr))

	_, err = Parse(strings.NewReader("x"), "notes.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtension(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"data/Gerencial_QOE.xlsx", ".xlsx"},
		{"REPORT.CSV", ".csv"},
		{"https://example.com/files/qoe.xlsx?download=1", ".xlsx"},
		{"noext", ""},
	}
	for _, tt := range tests {
		if got := extension(tt.in); got != tt.want {
			t.Errorf("extension(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"45292", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"2024-05-06", time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), true},
		{"2024-05-06 13:45:00", time.Date(2024, 5, 6, 13, 45, 0, 0, time.UTC), true},
		{"05/06/2024", time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), true},
		{"25/12/2024", time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"ontem", time.Time{}, false},
		{"-3", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseDate(tt.in)
		if ok != tt.ok || !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
