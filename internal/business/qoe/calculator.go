package qoe

import (
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/model"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/util"
)

// wholeTableNode labels the single group used when the table has no node column.
const wholeTableNode = "Todos"

// CalculateFromTable computes the metrics record straight from a raw action
// table. This is the variant used by the report and the city analysis.
//
// Headline averages come from the individual action rows, while node counts
// come from a per-node aggregation that averages after-scores
// (MeanAfterClassifier). An empty usable slice yields a zeroed record; a table
// without the score columns yields a *model.SchemaError.
func CalculateFromTable(t model.Table) (model.Metrics, error) {
	if err := model.RequireColumns(t, model.ColScoreBefore, model.ColScoreAfter); err != nil {
		return model.Metrics{}, err
	}

	rows := usable(coerce(t.Records))
	if len(rows) == 0 {
		return model.Metrics{}, nil
	}

	befores := make([]float64, 0, len(rows))
	afters := make([]float64, 0, len(rows))
	for _, r := range rows {
		if v, ok := r.before.Get(); ok {
			befores = append(befores, v)
		}
		if v, ok := r.after.Get(); ok {
			afters = append(afters, v)
		}
	}

	var nodes []model.NodeAggregate
	if t.HasColumn(model.ColNodeID) {
		nodes = consolidate(rows, MeanAfterClassifier{})
	} else {
		nodes = []model.NodeAggregate{newNodeAggregate(wholeTableNode, len(rows), mean(befores), mean(afters))}
	}

	m := countNodes(nodes)
	m.Actions = len(rows)
	m.ScoreBeforeAvg = roundedMean(befores)
	m.ScoreAfterAvg = roundedMean(afters)
	return m, nil
}

// CalculateFromNodes computes the metrics record from an already consolidated
// node table. actions is the number of raw rows in the slice the nodes were
// built from.
func CalculateFromNodes(nodes []model.NodeAggregate, actions int) model.Metrics {
	befores := make([]float64, 0, len(nodes))
	afters := make([]float64, 0, len(nodes))
	for _, n := range nodes {
		if v, ok := n.ScoreBeforeAvg.Get(); ok {
			befores = append(befores, v)
		}
		if v, ok := n.ScoreAfterBest.Get(); ok {
			afters = append(afters, v)
		}
	}

	m := countNodes(nodes)
	m.Actions = actions
	m.ScoreBeforeAvg = roundedMean(befores)
	m.ScoreAfterAvg = roundedMean(afters)
	return m
}

// Summarize consolidates a filtered slice with MaxAfterClassifier and
// returns both the node table and its metrics record.
func Summarize(records []model.ActionRecord) (model.Metrics, []model.NodeAggregate) {
	nodes := ConsolidateNodes(records)
	return CalculateFromNodes(nodes, len(records)), nodes
}

func countNodes(nodes []model.NodeAggregate) model.Metrics {
	var m model.Metrics
	var below int
	m.TotalNodes = len(nodes)
	for _, n := range nodes {
		switch {
		case n.Improved:
			m.Improved++
		case n.Worsened:
			m.Worsened++
		case n.Unchanged:
			m.Unchanged++
		default:
			m.Undetermined++
		}
		if n.ReachedThreshold {
			m.ReachedThreshold++
		}
		if n.CrossedIntoThreshold {
			m.CrossedIntoThreshold++
		}
		if v, ok := n.ScoreBeforeAvg.Get(); ok && v < Threshold {
			below++
		}
	}
	m.PercentCrossed = percent(m.CrossedIntoThreshold, below)
	m.PercentAtThreshold = percent(m.ReachedThreshold, m.TotalNodes)
	return m
}

// percent divides with the denominator floored at 1.
func percent(part, whole int) float64 {
	if whole < 1 {
		whole = 1
	}
	return util.Round1(float64(part) / float64(whole) * 100)
}

func roundedMean(values []float64) float64 {
	if v, ok := mean(values).Get(); ok {
		return util.Round1(v)
	}
	return 0
}

// EvolutionPercent is the relative change of the average score, or 0 when
// there is no positive before-average to compare with.
func EvolutionPercent(m model.Metrics) float64 {
	if m.ScoreBeforeAvg <= 0 {
		return 0
	}
	return util.Round1((m.ScoreAfterAvg - m.ScoreBeforeAvg) / m.ScoreBeforeAvg * 100)
}
