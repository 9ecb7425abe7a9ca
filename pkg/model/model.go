package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Canonical column names of an action table.
const (
	ColNodeID        = "node_id"
	ColScoreBefore   = "score_before"
	ColScoreAfter    = "score_after"
	ColSector        = "sector"
	ColCity          = "city"
	ColReason        = "reason"
	ColResponsible   = "responsible"
	ColExecutionDate = "execution_date"
	ColMonth         = "month"
)

// SourceLabels maps canonical columns to the spreadsheet header that feeds them.
var SourceLabels = map[string]string{
	ColNodeID:        "Node",
	ColScoreBefore:   "QOE ANTES",
	ColScoreAfter:    "QOE DEP",
	ColSector:        "SETOR",
	ColCity:          "Cidade",
	ColReason:        "Motivo",
	ColResponsible:   "Responsável",
	ColExecutionDate: "Data Execução",
}

// Score is a QOE value that may be missing. Missing is never the same as zero.
type Score struct {
	Value float64
	Valid bool
}

// NewScore returns a present score.
func NewScore(v float64) Score { return Score{Value: v, Valid: true} }

// MissingScore is the zero Score.
var MissingScore = Score{}

// Get returns the value and whether it is present.
func (s Score) Get() (float64, bool) { return s.Value, s.Valid }

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

func (s *Score) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = MissingScore
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = NewScore(v)
	return nil
}

// ActionRecord is one row of the raw table: a single technical intervention.
// Scores are kept as raw cell text and coerced by the aggregation engine.
type ActionRecord struct {
	NodeID        string    `json:"nodeId,omitempty"`
	ScoreBefore   string    `json:"scoreBefore,omitempty"`
	ScoreAfter    string    `json:"scoreAfter,omitempty"`
	Sector        string    `json:"sector,omitempty"`
	City          string    `json:"city,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	Responsible   string    `json:"responsible,omitempty"`
	ExecutionDate time.Time `json:"executionDate,omitempty"`
	Month         string    `json:"month,omitempty"`
}

// Table is a fully materialized action table together with the canonical
// columns that were present in the source.
type Table struct {
	Columns []string       `json:"columns"`
	Records []ActionRecord `json:"records"`
}

// HasColumn reports whether the canonical column was present in the source.
func (t Table) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Len returns the number of action rows.
func (t Table) Len() int { return len(t.Records) }

// WithRecords returns a table with the same columns and the given rows.
func (t Table) WithRecords(records []ActionRecord) Table {
	cols := make([]string, len(t.Columns))
	copy(cols, t.Columns)
	return Table{Columns: cols, Records: records}
}

// SchemaError reports required columns absent from a table.
type SchemaError struct {
	Missing []string `json:"missingColumns"`
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// RequireColumns returns a *SchemaError listing the source labels of every
// canonical column in required that the table lacks.
func RequireColumns(t Table, required ...string) error {
	var missing []string
	for _, col := range required {
		if !t.HasColumn(col) {
			label, ok := SourceLabels[col]
			if !ok {
				label = col
			}
			missing = append(missing, label)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// NodeAggregate is the consolidated view of every action performed on a node.
type NodeAggregate struct {
	NodeID               string `json:"nodeId"`
	Actions              int    `json:"actions"`
	ScoreBeforeAvg       Score  `json:"scoreBeforeAvg"`
	ScoreAfterBest       Score  `json:"scoreAfterBest"`
	Improved             bool   `json:"improved"`
	Worsened             bool   `json:"worsened"`
	Unchanged            bool   `json:"unchanged"`
	ReachedThreshold     bool   `json:"reachedThreshold"`
	CrossedIntoThreshold bool   `json:"crossedIntoThreshold"`
}

// Metrics is the summary record consumed by the dashboard and the report.
type Metrics struct {
	TotalNodes           int     `json:"total_nodes"`
	Actions              int     `json:"acoes"`
	ScoreBeforeAvg       float64 `json:"qoe_antes"`
	ScoreAfterAvg        float64 `json:"qoe_depois"`
	Improved             int     `json:"melhoraram"`
	Worsened             int     `json:"pioraram"`
	Unchanged            int     `json:"mantiveram"`
	Undetermined         int     `json:"indefinidos"`
	ReachedThreshold     int     `json:"nodes_80"`
	CrossedIntoThreshold int     `json:"atingiram_80"`
	PercentCrossed       float64 `json:"perc_atingiram_80"`
	PercentAtThreshold   float64 `json:"perc_total_80"`
}

// Metric keys in display order.
var MetricKeys = []string{
	"total_nodes",
	"acoes",
	"qoe_antes",
	"qoe_depois",
	"melhoraram",
	"pioraram",
	"mantiveram",
	"indefinidos",
	"nodes_80",
	"atingiram_80",
	"perc_atingiram_80",
	"perc_total_80",
}

// MetricLabels holds the display name of each metric key.
var MetricLabels = map[string]string{
	"total_nodes":       "Total de Nodes",
	"acoes":             "Total de Ações",
	"qoe_antes":         "QOE Médio Antes",
	"qoe_depois":        "QOE Médio Depois",
	"melhoraram":        "Nodes Melhoraram",
	"pioraram":          "Nodes Pioraram",
	"mantiveram":        "Nodes Mantiveram",
	"indefinidos":       "Nodes Sem Comparação",
	"nodes_80":          "Nodes QOE ≥ 80 (Depois)",
	"atingiram_80":      "Atingiram ≥ 80",
	"perc_atingiram_80": "% Atingiram ≥ 80",
	"perc_total_80":     "% Total com QOE ≥ 80",
}

// Values flattens the record into metric name → numeric value.
func (m Metrics) Values() map[string]float64 {
	return map[string]float64{
		"total_nodes":       float64(m.TotalNodes),
		"acoes":             float64(m.Actions),
		"qoe_antes":         m.ScoreBeforeAvg,
		"qoe_depois":        m.ScoreAfterAvg,
		"melhoraram":        float64(m.Improved),
		"pioraram":          float64(m.Worsened),
		"mantiveram":        float64(m.Unchanged),
		"indefinidos":       float64(m.Undetermined),
		"nodes_80":          float64(m.ReachedThreshold),
		"atingiram_80":      float64(m.CrossedIntoThreshold),
		"perc_atingiram_80": m.PercentCrossed,
		"perc_total_80":     m.PercentAtThreshold,
	}
}

// Dataset describes where the active table came from.
type Dataset struct {
	ID       string    `json:"id" firestore:"id"`
	Source   string    `json:"source" firestore:"source"`
	LoadedAt time.Time `json:"loadedAt" firestore:"loadedAt"`
	Checksum string    `json:"checksum,omitempty" firestore:"checksum,omitempty"`
	Columns  []string  `json:"columns" firestore:"columns"`
	RowCount int       `json:"rowCount" firestore:"rowCount"`
}

// Upload statuses.
const (
	UploadRunning  = "running"
	UploadSuccess  = "success"
	UploadRejected = "rejected"
	UploadFailed   = "failed"
)

// Upload kinds.
const (
	KindUpload = "upload"
	KindReload = "reload"
)

// Upload tracks one attempt to replace the active table.
type Upload struct {
	UploadID       string    `json:"uploadId,omitempty" firestore:"uploadId,omitempty"`
	Kind           string    `json:"kind,omitempty" firestore:"kind,omitempty"`
	Source         string    `json:"source,omitempty" firestore:"source,omitempty"`
	Status         string    `json:"status,omitempty" firestore:"status,omitempty"`
	DatasetID      string    `json:"datasetId,omitempty" firestore:"datasetId,omitempty"`
	Rows           int       `json:"rows,omitempty" firestore:"rows,omitempty"`
	MissingColumns []string  `json:"missingColumns,omitempty" firestore:"missingColumns,omitempty"`
	Error          string    `json:"error,omitempty" firestore:"error,omitempty"`
	StartedAt      time.Time `json:"startedAt,omitempty" firestore:"startedAt,omitempty"`
	FinishedAt     time.Time `json:"finishedAt,omitempty" firestore:"finishedAt,omitempty"`
}
