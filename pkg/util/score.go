package util

import (
	"math"
	"strconv"
	"strings"

	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/model"
)

// ParseScore coerces a raw cell into a Score. Anything that is not a finite
// number becomes a missing score instead of an error.
func ParseScore(raw string) model.Score {
	s := strings.TrimSpace(raw)
	if s == "" {
		return model.MissingScore
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return model.MissingScore
	}
	return model.NewScore(v)
}

// FormatScore renders a score for tables and CSV: rounded to an integer, or
// "-" when missing.
func FormatScore(s model.Score) string {
	if !s.Valid {
		return "-"
	}
	v := math.Round(s.Value)
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}

// FormatSignedScore is FormatScore with an explicit "+" for positive values.
func FormatSignedScore(s model.Score) string {
	out := FormatScore(s)
	if s.Valid && math.Round(s.Value) > 0 {
		return "+" + out
	}
	return out
}

// Round1 rounds to one decimal place, half away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
