package qoe

import "github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/model"

// DetailRow is one action as listed in the detailed records table.
type DetailRow struct {
	City             string      `json:"city,omitempty"`
	NodeID           string      `json:"nodeId,omitempty"`
	Reason           string      `json:"reason,omitempty"`
	Before           model.Score `json:"before"`
	After            model.Score `json:"after"`
	Evolution        model.Score `json:"evolution"`
	ReachedThreshold bool        `json:"reachedThreshold"`
	Responsible      string      `json:"responsible,omitempty"`
	BeforeBand       Band        `json:"beforeBand,omitempty"`
	AfterBand        Band        `json:"afterBand,omitempty"`
}

// DetailRows coerces every action of the slice for display, keeping rows with
// missing scores.
func DetailRows(records []model.ActionRecord) []DetailRow {
	rows := coerce(records)
	out := make([]DetailRow, len(rows))
	for i, r := range rows {
		evolution := model.MissingScore
		if r.before.Valid && r.after.Valid {
			evolution = model.NewScore(r.after.Value - r.before.Value)
		}
		out[i] = DetailRow{
			City:             r.City,
			NodeID:           r.NodeID,
			Reason:           r.Reason,
			Before:           r.before,
			After:            r.after,
			Evolution:        evolution,
			ReachedThreshold: r.after.Valid && r.after.Value >= Threshold,
			Responsible:      r.Responsible,
			BeforeBand:       ClassifyScore(r.before),
			AfterBand:        ClassifyScore(r.after),
		}
	}
	return out
}
