// Package spreadsheet loads action tables from xlsx workbooks and csv files.
package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/model"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/util"
)

// ErrUnsupportedFormat is returned for files that are neither xlsx nor csv.
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// requiredColumns must be present in every loaded sheet.
var requiredColumns = []string{model.ColScoreBefore, model.ColScoreAfter, model.ColSector}

// headerColumns maps a cleaned, upper-cased source header to its column.
var headerColumns = func() map[string]string {
	m := make(map[string]string, len(model.SourceLabels))
	for col, label := range model.SourceLabels {
		m[util.HeaderKey(label)] = col
	}
	return m
}()

// Parse reads a spreadsheet and returns its action table. The format is chosen
// from the extension of filename, which may also be a URL.
func Parse(r io.Reader, filename string) (model.Table, error) {
	var (
		rows [][]string
		err  error
	)
	switch ext := extension(filename); ext {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(r)
	case ".csv", ".txt":
		rows, err = readCSV(r)
	default:
		return model.Table{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return model.Table{}, err
	}
	return buildTable(rows)
}

func extension(name string) string {
	if u, err := url.Parse(name); err == nil && u.Scheme != "" && u.Path != "" {
		name = u.Path
	}
	return strings.ToLower(path.Ext(name))
}

// buildTable maps the header row onto canonical columns and converts every
// non-blank data row into an action record.
func buildTable(rows [][]string) (model.Table, error) {
	if len(rows) == 0 {
		return model.Table{}, &model.SchemaError{Missing: labels(requiredColumns)}
	}

	index := make(map[string]int)
	var columns []string
	for i, h := range rows[0] {
		col, ok := headerColumns[util.HeaderKey(h)]
		if !ok {
			continue
		}
		if _, dup := index[col]; dup {
			continue
		}
		index[col] = i
		columns = append(columns, col)
	}

	t := model.Table{Columns: columns}
	if err := model.RequireColumns(t, requiredColumns...); err != nil {
		return model.Table{}, err
	}

	_, hasNode := index[model.ColNodeID]
	_, hasDate := index[model.ColExecutionDate]
	if !hasNode {
		t.Columns = append(t.Columns, model.ColNodeID)
	}
	if hasDate {
		t.Columns = append(t.Columns, model.ColMonth)
	}

	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		cell := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return ""
			}
			return util.CleanCell(row[i])
		}

		rec := model.ActionRecord{
			NodeID:      cell(model.ColNodeID),
			ScoreBefore: cell(model.ColScoreBefore),
			ScoreAfter:  cell(model.ColScoreAfter),
			Sector:      cell(model.ColSector),
			City:        cell(model.ColCity),
			Reason:      cell(model.ColReason),
			Responsible: cell(model.ColResponsible),
		}
		if !hasNode {
			rec.NodeID = strconv.Itoa(len(t.Records))
		}
		if hasDate {
			if d, ok := ParseDate(cell(model.ColExecutionDate)); ok {
				rec.ExecutionDate = d
				rec.Month = d.Format("2006-01")
			}
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if util.CleanCell(c) != "" {
			return false
		}
	}
	return true
}

func labels(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = model.SourceLabels[c]
	}
	return out
}
