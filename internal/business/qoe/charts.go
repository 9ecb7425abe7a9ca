package qoe

import (
	"math"
	"sort"

	"github.com/samber/lo"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/model"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/util"
)

// DefaultTopReasons is how many reasons the reasons chart shows.
const DefaultTopReasons = 10

// CountItem is one bar of a count chart.
type CountItem struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent,omitempty"`
}

// ActionsByCity counts actions per city, largest first.
func ActionsByCity(records []model.ActionRecord) []CountItem {
	return countBy(records, func(r model.ActionRecord) string { return r.City })
}

// TopReasons returns the n most frequent reasons, each with its share of all
// actions that have a reason.
func TopReasons(records []model.ActionRecord, n int) []CountItem {
	items := countBy(records, func(r model.ActionRecord) string { return r.Reason })
	total := lo.SumBy(items, func(i CountItem) int { return i.Count })
	if n > 0 && len(items) > n {
		items = items[:n]
	}
	for i := range items {
		items[i].Percent = util.Round1(float64(items[i].Count) / float64(total) * 100)
	}
	return items
}

func countBy(records []model.ActionRecord, key func(model.ActionRecord) string) []CountItem {
	counts := lo.CountValuesBy(lo.Filter(records, func(r model.ActionRecord, _ int) bool {
		return key(r) != ""
	}), key)
	items := lo.MapToSlice(counts, func(label string, count int) CountItem {
		return CountItem{Label: label, Count: count}
	})
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Label < items[j].Label
	})
	return items
}

// Evolution is the improved/worsened/unchanged split shown in the donut chart.
type Evolution struct {
	Improved         int `json:"melhoraram"`
	Worsened         int `json:"pioraram"`
	Unchanged        int `json:"mantiveram"`
	ImprovedPercent  int `json:"melhoraramPerc"`
	WorsenedPercent  int `json:"pioraramPerc"`
	UnchangedPercent int `json:"mantiveramPerc"`
}

// NodeEvolution classifies nodes for the evolution chart. Unlike the metrics
// record, only rows with both scores contribute and nodes compare mean
// after-scores.
func NodeEvolution(records []model.ActionRecord) Evolution {
	nodes := consolidate(complete(coerce(records)), MeanAfterClassifier{})
	var e Evolution
	for _, n := range nodes {
		switch {
		case n.Improved:
			e.Improved++
		case n.Worsened:
			e.Worsened++
		case n.Unchanged:
			e.Unchanged++
		}
	}
	total := e.Improved + e.Worsened + e.Unchanged
	if total == 0 {
		return e
	}
	share := func(v int) int { return int(math.Round(float64(v) / float64(total) * 100)) }
	e.ImprovedPercent = share(e.Improved)
	e.WorsenedPercent = share(e.Worsened)
	e.UnchangedPercent = share(e.Unchanged)
	return e
}

// Charts bundles the datasets behind the dashboard charts.
type Charts struct {
	ActionsByCity []CountItem `json:"actionsByCity"`
	TopReasons    []CountItem `json:"topReasons"`
	Evolution     Evolution   `json:"evolution"`
}

// BuildCharts computes every chart dataset for a filtered slice.
func BuildCharts(records []model.ActionRecord) Charts {
	return Charts{
		ActionsByCity: ActionsByCity(records),
		TopReasons:    TopReasons(records, DefaultTopReasons),
		Evolution:     NodeEvolution(records),
	}
}
