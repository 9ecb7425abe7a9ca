package qoe

import (
	"fmt"

	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/model"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/util"
)

// SectorMatcher decides whether a record's sector matches the requested one.
type SectorMatcher interface {
	MatchSector(value, want string) bool
}

// ExactSectorMatch compares sectors byte for byte.
type ExactSectorMatch struct{}

func (ExactSectorMatch) MatchSector(value, want string) bool { return value == want }

// NormalizedSectorMatch trims and upper-cases both sides before comparing, so
// every sector listed by ListDimensions is reachable.
type NormalizedSectorMatch struct{}

func (NormalizedSectorMatch) MatchSector(value, want string) bool {
	return util.NormalizeSector(value) == util.NormalizeSector(want)
}

// SectorMatcherFor resolves a configured matcher name.
func SectorMatcherFor(name string) (SectorMatcher, error) {
	switch name {
	case "", "exact":
		return ExactSectorMatch{}, nil
	case "normalized":
		return NormalizedSectorMatch{}, nil
	default:
		return nil, fmt.Errorf("unknown sector match %q (want exact or normalized)", name)
	}
}

// Filter restricts a table to one sector, city and/or month. Empty fields do
// not filter; set fields combine with AND.
type Filter struct {
	Sector      string
	City        string
	Month       string
	SectorMatch SectorMatcher
}

// Match reports whether the record passes the filter.
func (f Filter) Match(r model.ActionRecord) bool {
	if f.Sector != "" {
		matcher := f.SectorMatch
		if matcher == nil {
			matcher = ExactSectorMatch{}
		}
		if !matcher.MatchSector(r.Sector, f.Sector) {
			return false
		}
	}
	if f.City != "" && r.City != f.City {
		return false
	}
	if f.Month != "" && r.Month != f.Month {
		return false
	}
	return true
}

// Apply returns the matching records in their original order. The input is
// not modified.
func (f Filter) Apply(records []model.ActionRecord) []model.ActionRecord {
	out := make([]model.ActionRecord, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// ApplyTable filters the rows of a table and keeps its columns.
func (f Filter) ApplyTable(t model.Table) model.Table {
	return t.WithRecords(f.Apply(t.Records))
}
