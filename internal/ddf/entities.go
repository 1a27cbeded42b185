package ddf

import (
	"github.com/ginjaninja78/sdmx-to-ddf/internal/conceptid"
	"github.com/ginjaninja78/sdmx-to-ddf/internal/sdmx"
	"github.com/ginjaninja78/sdmx-to-ddf/internal/types"
)

// EntitiesLocation returns every declared location in code list order.
// Locations without datapoints are kept.
func EntitiesLocation(locations *sdmx.CodeList) []Entity {
	entities := make([]Entity, 0, len(locations.Codes))
	for _, code := range locations.Codes {
		entities = append(entities, Entity{
			ID:   conceptid.Canonicalize(code.Value),
			Name: code.Description,
		})
	}
	return entities
}

// EntitiesTable renders entities of a domain as a <domain>,name table.
func EntitiesTable(domain string, entities []Entity) *types.Table {
	table := types.NewTable(domain, NameConcept)
	for _, e := range entities {
		table.Append(e.ID, e.Name)
	}
	return table
}
