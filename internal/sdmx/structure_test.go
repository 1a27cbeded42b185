package sdmx

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

const structureXML = `<?xml version="1.0" encoding="UTF-8"?>
<message:Structure xmlns="http://www.SDMX.org/resources/SDMXML/schemas/v2_0/structure" xmlns:message="http://www.SDMX.org/resources/SDMXML/schemas/v2_0/message">
  <message:CodeLists>
    <CodeList id="CL_EDULIT_IND" agencyID="UIS">
      <Name xml:lang="en">Indicators</Name>
      <Code value="ROFST.1.CP">
        <Description xml:lang="en">Out-of-school rate</Description>
      </Code>
      <Code value="ROFST.2.CP" parentCode="ROFST.1.CP">
        <Description xml:lang="fr">Taux de non-scolarisation</Description>
        <Description xml:lang="en">Out-of-school rate, lower secondary</Description>
      </Code>
    </CodeList>
    <CodeList id="CL_LOCATION" agencyID="UIS">
      <Name xml:lang="en">Locations</Name>
      <Code value="AFG">
        <Description xml:lang="en">Afghanistan</Description>
      </Code>
      <Code value="CIV">
        <Description>Côte d'Ivoire</Description>
      </Code>
    </CodeList>
  </message:CodeLists>
</message:Structure>`

func TestCodeLists(t *testing.T) {
	t.Parallel()
	structure, err := ParseStructure([]byte(structureXML))
	if err != nil {
		t.Fatalf("ParseStructure: %v", err)
	}

	lists, err := structure.CodeLists()
	if err != nil {
		t.Fatalf("CodeLists: %v", err)
	}

	expected := []CodeList{{
		ID:       "CL_EDULIT_IND",
		AgencyID: "UIS",
		Name:     "Indicators",
		Codes: []Code{
			{Value: "ROFST.1.CP", Description: "Out-of-school rate"},
			{Value: "ROFST.2.CP", ParentCode: "ROFST.1.CP", Description: "Out-of-school rate, lower secondary"},
		},
	}, {
		ID:       "CL_LOCATION",
		AgencyID: "UIS",
		Name:     "Locations",
		Codes: []Code{
			{Value: "AFG", Description: "Afghanistan"},
			{Value: "CIV", Description: "Côte d'Ivoire"},
		},
	}}
	if diff := cmp.Diff(expected, lists); diff != "" {
		t.Errorf("unexpected code lists (-want +got):\n%s", diff)
	}
}

func TestCodeListSelector(t *testing.T) {
	t.Parallel()
	structure, err := ParseStructure([]byte(structureXML))
	if err != nil {
		t.Fatalf("ParseStructure: %v", err)
	}

	testCases := []struct {
		name        string
		selector    Selector
		expectedID  string
		expectedErr error
	}{{
		name:       "by id",
		selector:   Selector{ID: "CL_LOCATION"},
		expectedID: "CL_LOCATION",
	}, {
		name:       "id wins over position",
		selector:   Selector{ID: "CL_EDULIT_IND", Position: 1},
		expectedID: "CL_EDULIT_IND",
	}, {
		name:       "by position",
		selector:   Selector{Position: 1},
		expectedID: "CL_LOCATION",
	}, {
		name:        "unknown id",
		selector:    Selector{ID: "CL_SEX"},
		expectedErr: ErrCodeListNotFound,
	}, {
		name:       "unknown id falls back to position",
		selector:   Selector{ID: "CL_AREA", Position: 1, Fallback: true},
		expectedID: "CL_LOCATION",
	}, {
		name:       "declared id ignores fallback",
		selector:   Selector{ID: "CL_EDULIT_IND", Position: 1, Fallback: true},
		expectedID: "CL_EDULIT_IND",
	}, {
		name:        "fallback position out of range",
		selector:    Selector{ID: "CL_AREA", Position: 2, Fallback: true},
		expectedErr: ErrCodeListNotFound,
	}, {
		name:        "position out of range",
		selector:    Selector{Position: 2},
		expectedErr: ErrCodeListNotFound,
	}}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			list, err := structure.CodeList(tc.selector)
			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Fatalf("expected %v, got %v", tc.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if list.ID != tc.expectedID {
				t.Errorf("expected %s, got %s", tc.expectedID, list.ID)
			}
		})
	}
}

func TestPickTextFallsBackToFirst(t *testing.T) {
	t.Parallel()
	structure, err := ParseStructure([]byte(structureXML))
	if err != nil {
		t.Fatalf("ParseStructure: %v", err)
	}
	structure.Language = "es"

	list, err := structure.CodeList(Selector{ID: "CL_EDULIT_IND"})
	if err != nil {
		t.Fatalf("CodeList: %v", err)
	}
	if got := list.Codes[1].Description; got != "Taux de non-scolarisation" {
		t.Errorf("expected first description, got %q", got)
	}
}

func TestReadStructure(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "source/dsd.xml", []byte(structureXML), 0644); err != nil {
		t.Fatal(err)
	}

	structure, err := ReadStructure(fs, "source/dsd.xml")
	if err != nil {
		t.Fatalf("ReadStructure: %v", err)
	}
	if structure.Source != "source/dsd.xml" {
		t.Errorf("unexpected source %q", structure.Source)
	}

	if _, err := ReadStructure(fs, "source/missing.xml"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestParseStructureErrors(t *testing.T) {
	t.Parallel()
	if _, err := ParseStructure([]byte("<Structure><CodeLists>")); err == nil {
		t.Error("expected a parse error for truncated XML")
	}

	structure, err := ParseStructure([]byte("<Structure><Header/></Structure>"))
	if err != nil {
		t.Fatalf("ParseStructure: %v", err)
	}
	if _, err := structure.CodeLists(); !errors.Is(err, ErrCodeListNotFound) {
		t.Errorf("expected ErrCodeListNotFound, got %v", err)
	}
}
