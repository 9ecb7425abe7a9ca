package util

import (
	"testing"

	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/model"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want model.Score
	}{
		{name: "integer", raw: "85", want: model.NewScore(85)},
		{name: "decimal", raw: "72.5", want: model.NewScore(72.5)},
		{name: "surrounding whitespace", raw: "  60 ", want: model.NewScore(60)},
		{name: "zero is a value", raw: "0", want: model.NewScore(0)},
		{name: "negative", raw: "-3", want: model.NewScore(-3)},
		{name: "empty", raw: "", want: model.MissingScore},
		{name: "blank", raw: "   ", want: model.MissingScore},
		{name: "text", raw: "sem medição", want: model.MissingScore},
		{name: "dash placeholder", raw: "-", want: model.MissingScore},
		{name: "comma decimal is not numeric", raw: "72,5", want: model.MissingScore},
		{name: "NaN literal", raw: "NaN", want: model.MissingScore},
		{name: "infinity", raw: "inf", want: model.MissingScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseScore(tt.raw)
			if got != tt.want {
				t.Errorf("ParseScore(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFormatScore(t *testing.T) {
	if got := FormatScore(model.MissingScore); got != "-" {
		t.Errorf("missing = %q, want -", got)
	}
	if got := FormatScore(model.NewScore(79.6)); got != "80" {
		t.Errorf("79.6 = %q, want 80", got)
	}
	if got := FormatSignedScore(model.NewScore(12)); got != "+12" {
		t.Errorf("signed 12 = %q, want +12", got)
	}
	if got := FormatSignedScore(model.NewScore(-4)); got != "-4" {
		t.Errorf("signed -4 = %q, want -4", got)
	}
	if got := FormatSignedScore(model.NewScore(0)); got != "0" {
		t.Errorf("signed 0 = %q, want 0", got)
	}
}

func TestRound1(t *testing.T) {
	if got := Round1(66.66666); got != 66.7 {
		t.Errorf("Round1(66.66666) = %v, want 66.7", got)
	}
	if got := Round1(50); got != 50 {
		t.Errorf("Round1(50) = %v, want 50", got)
	}
}
