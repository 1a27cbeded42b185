package ddf

import (
	"iter"
	"sort"

	"github.com/ginjaninja78/sdmx-to-ddf/internal/sdmx"
	"github.com/ginjaninja78/sdmx-to-ddf/internal/types"
)

// Datapoints yields one location,time,<indicator> table per indicator, in
// indicator id order. Tables are built lazily as the sequence is consumed.
func Datapoints(data *sdmx.Dataset) iter.Seq2[string, *types.Table] {
	ids := make([]string, 0, data.Len())
	for id := range data.Indicators {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return func(yield func(string, *types.Table) bool) {
		for _, id := range ids {
			if !yield(id, DatapointsTable(data.Indicators[id])) {
				return
			}
		}
	}
}

// DatapointsTable drops missing observations and "NaN" values, then sorts
// the rest by (location, time).
func DatapointsTable(indicator *types.IndicatorTable) *types.Table {
	kept := make([]types.Datapoint, 0, len(indicator.Rows))
	for _, p := range indicator.Rows {
		if p.Missing {
			continue
		}
		if p.Value == MissingLiteral {
			continue
		}
		kept = append(kept, p)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Location != kept[j].Location {
			return kept[i].Location < kept[j].Location
		}
		return kept[i].Time < kept[j].Time
	})

	table := types.NewTable(LocationConcept, TimeConcept, indicator.ID)
	for _, p := range kept {
		table.Append(p.Location, p.Time, p.Value)
	}
	return table
}
