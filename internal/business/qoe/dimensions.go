package qoe

import (
	"sort"

	"github.com/samber/lo"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/model"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/util"
)

// Dimensions lists the values the dashboard can be filtered by.
type Dimensions struct {
	Months  []string `json:"months"`
	Cities  []string `json:"cities"`
	Sectors []string `json:"sectors"`
}

// ListDimensions returns the distinct non-empty months, cities and sectors,
// sorted. Sectors are trimmed and upper-cased.
func ListDimensions(records []model.ActionRecord) Dimensions {
	sector := func(r model.ActionRecord) string { return util.NormalizeSector(r.Sector) }
	return Dimensions{
		Months:  distinctValues(records, func(r model.ActionRecord) string { return r.Month }),
		Cities:  distinctValues(records, func(r model.ActionRecord) string { return r.City }),
		Sectors: distinctValues(records, sector),
	}
}

func distinctValues(records []model.ActionRecord, key func(model.ActionRecord) string) []string {
	values := lo.Uniq(lo.FilterMap(records, func(r model.ActionRecord, _ int) (string, bool) {
		v := key(r)
		return v, v != ""
	}))
	sort.Strings(values)
	return values
}
