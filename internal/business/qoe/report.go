package qoe

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/model"
)

// Report titles.
const (
	ReportTitle        = "Relatório Gerencial QOE"
	GeneralSectionName = "Resumo Geral"
	MonthSectionPrefix = "Mês"
	CitySectionPrefix  = "Cidade"
)

// MetricLine is one formatted metric row of a report section.
type MetricLine struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Text  string  `json:"text"`
}

// ReportSection holds the metrics of one slice of the table.
type ReportSection struct {
	Kind    string        `json:"kind"`
	Title   string        `json:"title"`
	Metrics model.Metrics `json:"metrics"`
	Lines   []MetricLine  `json:"lines"`
}

// Report is the full management report: a general summary followed by one
// section per month and one per city.
type Report struct {
	Title       string          `json:"title"`
	GeneratedAt time.Time       `json:"generatedAt"`
	General     ReportSection   `json:"general"`
	ByMonth     []ReportSection `json:"byMonth"`
	ByCity      []ReportSection `json:"byCity"`
}

// Sections returns every section in report order.
func (r Report) Sections() []ReportSection {
	out := make([]ReportSection, 0, 1+len(r.ByMonth)+len(r.ByCity))
	out = append(out, r.General)
	out = append(out, r.ByMonth...)
	return append(out, r.ByCity...)
}

// BuildReport runs the raw-table calculator over the whole table and over
// every month and city slice, sequentially.
func BuildReport(t model.Table, now time.Time) (Report, error) {
	general, err := newSection("general", GeneralSectionName, t)
	if err != nil {
		return Report{}, err
	}
	r := Report{Title: ReportTitle, GeneratedAt: now, General: general}

	months := distinctValues(t.Records, func(a model.ActionRecord) string { return a.Month })
	for _, month := range months {
		s, err := newSection("month", MonthSectionPrefix+": "+month, Filter{Month: month}.ApplyTable(t))
		if err != nil {
			return Report{}, err
		}
		r.ByMonth = append(r.ByMonth, s)
	}

	cities := distinctValues(t.Records, func(a model.ActionRecord) string { return a.City })
	for _, city := range cities {
		s, err := newSection("city", CitySectionPrefix+": "+city, Filter{City: city}.ApplyTable(t))
		if err != nil {
			return Report{}, err
		}
		r.ByCity = append(r.ByCity, s)
	}
	return r, nil
}

func newSection(kind, title string, t model.Table) (ReportSection, error) {
	m, err := CalculateFromTable(t)
	if err != nil {
		return ReportSection{}, fmt.Errorf("section %q: %w", title, err)
	}
	return ReportSection{Kind: kind, Title: title, Metrics: m, Lines: MetricLines(m)}, nil
}

// MetricLines formats a metrics record in display order.
func MetricLines(m model.Metrics) []MetricLine {
	values := m.Values()
	lines := make([]MetricLine, 0, len(model.MetricKeys))
	for _, key := range model.MetricKeys {
		v := values[key]
		lines = append(lines, MetricLine{
			Key:   key,
			Label: MetricLabel(key),
			Value: v,
			Text:  FormatMetricValue(key, v),
		})
	}
	return lines
}

// MetricLabel returns the display name of a metric key. Unknown keys are
// title-cased with underscores turned into spaces.
func MetricLabel(key string) string {
	if label, ok := model.MetricLabels[key]; ok {
		return label
	}
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[:1])) + strings.ToLower(string(r[1:]))
	}
	return strings.Join(words, " ")
}

var fractionalMetrics = map[string]bool{
	"qoe_antes":         true,
	"qoe_depois":        true,
	"perc_atingiram_80": true,
	"perc_total_80":     true,
}

// FormatMetricValue renders averages and percentages with one decimal and
// counts as integers.
func FormatMetricValue(key string, v float64) string {
	if fractionalMetrics[key] {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatInt(int64(v), 10)
}
