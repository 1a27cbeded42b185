package ddf

import (
	"fmt"
	"sort"

	"github.com/ginjaninja78/sdmx-to-ddf/internal/conceptid"
	"github.com/ginjaninja78/sdmx-to-ddf/internal/sdmx"
	"github.com/ginjaninja78/sdmx-to-ddf/internal/types"
)

// ConceptsContinuous builds one measure concept per indicator present in the
// dataset. Indicators declared in the code list but absent from the data are
// dropped; indicators in the data but missing from the code list fail with
// ErrUnknownIndicator. The result is sorted by concept id.
func ConceptsContinuous(data *sdmx.Dataset, indicators *sdmx.CodeList) ([]Concept, error) {
	declared := make(map[string]Concept, len(indicators.Codes))
	for _, code := range indicators.Codes {
		id := conceptid.Canonicalize(code.Value)
		if _, dup := declared[id]; dup {
			continue
		}
		declared[id] = Concept{
			ID:      id,
			Name:    code.Description,
			Type:    ConceptTypeMeasure,
			Drillup: conceptid.Canonicalize(code.ParentCode),
		}
	}

	concepts := make([]Concept, 0, data.Len())
	for _, id := range data.Order {
		concept, ok := declared[id]
		if !ok {
			return nil, fmt.Errorf("%w: %q (code list %s)", ErrUnknownIndicator, id, indicators.ID)
		}
		concepts = append(concepts, concept)
	}

	sort.Slice(concepts, func(i, j int) bool {
		return concepts[i].ID < concepts[j].ID
	})

	return concepts, nil
}

// ConceptsDiscrete returns the fixed dimension concepts.
func ConceptsDiscrete() []Concept {
	return []Concept{
		{ID: NameConcept, Name: "Name", Type: ConceptTypeString},
		{ID: TimeConcept, Name: "Year", Type: ConceptTypeTime},
		{ID: LocationConcept, Name: "Location", Type: ConceptTypeEntityDomain},
	}
}

// ConceptsTable renders concepts as a concept,name,concept_type table.
func ConceptsTable(concepts []Concept) *types.Table {
	table := types.NewTable("concept", NameConcept, "concept_type")
	for _, c := range concepts {
		table.Append(c.ID, c.Name, c.Type)
	}
	return table
}
