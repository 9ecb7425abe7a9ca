package qoe

import (
	"sort"
	"strings"

	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/model"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/util"
)

// Threshold is the QOE value considered acceptable.
const Threshold = 80.0

// equalityTolerance is the largest before/after gap still counted as unchanged.
const equalityTolerance = 1e-9

// AfterClassifier reduces the after-scores of one node to the value that is
// compared with the node's before-average.
type AfterClassifier interface {
	Name() string
	Reduce(values []float64) model.Score
}

// MaxAfterClassifier keeps the best after-score ever observed for a node.
// The dashboard and sector pages classify nodes this way.
type MaxAfterClassifier struct{}

func (MaxAfterClassifier) Name() string { return "max" }

func (MaxAfterClassifier) Reduce(values []float64) model.Score {
	if len(values) == 0 {
		return model.MissingScore
	}
	best := values[0]
	for _, v := range values[1:] {
		if v > best {
			best = v
		}
	}
	return model.NewScore(best)
}

// MeanAfterClassifier averages the after-scores of a node. Only the raw-table
// calculator and the evolution chart use it.
type MeanAfterClassifier struct{}

func (MeanAfterClassifier) Name() string { return "mean" }

func (MeanAfterClassifier) Reduce(values []float64) model.Score {
	return mean(values)
}

// scoredRecord is an action record with both score columns coerced.
type scoredRecord struct {
	model.ActionRecord
	before model.Score
	after  model.Score
}

func coerce(records []model.ActionRecord) []scoredRecord {
	out := make([]scoredRecord, len(records))
	for i, r := range records {
		out[i] = scoredRecord{
			ActionRecord: r,
			before:       util.ParseScore(r.ScoreBefore),
			after:        util.ParseScore(r.ScoreAfter),
		}
	}
	return out
}

// usable drops rows where both scores are missing.
func usable(rows []scoredRecord) []scoredRecord {
	out := make([]scoredRecord, 0, len(rows))
	for _, r := range rows {
		if r.before.Valid || r.after.Valid {
			out = append(out, r)
		}
	}
	return out
}

// complete keeps rows where both scores are present.
func complete(rows []scoredRecord) []scoredRecord {
	out := make([]scoredRecord, 0, len(rows))
	for _, r := range rows {
		if r.before.Valid && r.after.Valid {
			out = append(out, r)
		}
	}
	return out
}

// ConsolidateNodes produces one aggregate per node: mean before-score and best
// after-score.
func ConsolidateNodes(records []model.ActionRecord) []model.NodeAggregate {
	return Consolidate(records, MaxAfterClassifier{})
}

// Consolidate groups records by node id and reduces each group with the given
// classifier. Records whose scores are both missing, and records without a
// node id, do not take part. Nodes are returned ordered by id.
func Consolidate(records []model.ActionRecord, classifier AfterClassifier) []model.NodeAggregate {
	return consolidate(usable(coerce(records)), classifier)
}

type nodeGroup struct {
	actions int
	befores []float64
	afters  []float64
}

func consolidate(rows []scoredRecord, classifier AfterClassifier) []model.NodeAggregate {
	groups := make(map[string]*nodeGroup)
	for _, r := range rows {
		if strings.TrimSpace(r.NodeID) == "" {
			continue
		}
		g, ok := groups[r.NodeID]
		if !ok {
			g = &nodeGroup{}
			groups[r.NodeID] = g
		}
		g.actions++
		if v, ok := r.before.Get(); ok {
			g.befores = append(g.befores, v)
		}
		if v, ok := r.after.Get(); ok {
			g.afters = append(g.afters, v)
		}
	}

	out := make([]model.NodeAggregate, 0, len(groups))
	for id, g := range groups {
		out = append(out, newNodeAggregate(id, g.actions, mean(g.befores), classifier.Reduce(g.afters)))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NodeID < out[j].NodeID })
	return out
}

// newNodeAggregate derives the comparison and threshold flags. Every
// comparison involving a missing side is false.
func newNodeAggregate(id string, actions int, before, after model.Score) model.NodeAggregate {
	n := model.NodeAggregate{
		NodeID:         id,
		Actions:        actions,
		ScoreBeforeAvg: before,
		ScoreAfterBest: after,
	}
	if after.Valid {
		n.ReachedThreshold = after.Value >= Threshold
	}
	if before.Valid && after.Valid {
		diff := after.Value - before.Value
		switch {
		case diff > equalityTolerance:
			n.Improved = true
		case diff < -equalityTolerance:
			n.Worsened = true
		default:
			n.Unchanged = true
		}
		n.CrossedIntoThreshold = before.Value < Threshold && after.Value >= Threshold
	}
	return n
}

func mean(values []float64) model.Score {
	if len(values) == 0 {
		return model.MissingScore
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return model.NewScore(sum / float64(len(values)))
}
