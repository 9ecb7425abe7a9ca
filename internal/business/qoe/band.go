package qoe

import "github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/model"

// Band is the traffic-light class of a single score.
type Band string

const (
	BandNone   Band = ""
	BandRed    Band = "red"
	BandYellow Band = "yellow"
	BandGreen  Band = "green"
)

// redBelow is the score under which a node is considered critical.
const redBelow = 40.0

// ClassifyScore maps a score to its band; missing scores have no band.
func ClassifyScore(s model.Score) Band {
	v, ok := s.Get()
	switch {
	case !ok:
		return BandNone
	case v < redBelow:
		return BandRed
	case v < Threshold:
		return BandYellow
	default:
		return BandGreen
	}
}
