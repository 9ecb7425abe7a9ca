package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/model"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/util"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var decimalComma = regexp.MustCompile(`^\s*[+-]?\d+,\d+\s*$`)

// readCSV loads a comma or semicolon separated file as untyped strings.
// Rows shorter than the header are padded with empty cells and longer ones
// are cut to the header width. In semicolon files, score cells written with
// a decimal comma are rewritten with a point.
func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	delim := delimiter(data)
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	for i := 1; i < len(records); i++ {
		records[i] = fit(records[i], len(header))
	}
	if len(records) == 1 {
		return [][]string{header}, nil
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{}),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("parse csv: %w", df.Err)
	}

	names := df.Names()
	rows := make([][]string, df.Nrow()+1)
	rows[0] = header
	for i := 1; i < len(rows); i++ {
		rows[i] = make([]string, len(header))
	}
	for j, name := range names {
		if j >= len(header) {
			break
		}
		for i, v := range df.Col(name).Records() {
			rows[i+1][j] = v
		}
	}

	if delim == ';' {
		normalizeDecimals(rows)
	}
	return rows, nil
}

// fit pads or cuts row to exactly n cells.
func fit(row []string, n int) []string {
	if len(row) > n {
		return row[:n]
	}
	for len(row) < n {
		row = append(row, "")
	}
	return row
}

// normalizeDecimals rewrites "50,5" as "50.5" in the score columns.
func normalizeDecimals(rows [][]string) {
	for j, h := range rows[0] {
		col := headerColumns[util.HeaderKey(h)]
		if col != model.ColScoreBefore && col != model.ColScoreAfter {
			continue
		}
		for _, row := range rows[1:] {
			if decimalComma.MatchString(row[j]) {
				row[j] = strings.Replace(row[j], ",", ".", 1)
			}
		}
	}
}

// delimiter picks ';' when the header line uses it instead of ','.
func delimiter(data []byte) rune {
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}
	if bytes.Count(header, []byte(";")) > bytes.Count(header, []byte(",")) {
		return ';'
	}
	return ','
}
