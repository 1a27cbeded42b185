package sdmx

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/ginjaninja78/sdmx-to-ddf/internal/types"
)

const genericHeader = `<?xml version="1.0" encoding="UTF-8"?>
<GenericData xmlns="http://www.SDMX.org/resources/SDMXML/schemas/v2_0/generic" xmlns:message="http://www.SDMX.org/resources/SDMXML/schemas/v2_0/message">
  <message:Header><message:ID>EDU</message:ID></message:Header>
  <DataSet>
`

const genericFooter = `  </DataSet>
</GenericData>`

func series(indicator, location string, obs ...string) string {
	var b strings.Builder
	b.WriteString("<Series><SeriesKey>")
	if indicator != "" {
		b.WriteString(`<Value concept="EDULIT_IND" value="` + indicator + `"/>`)
	}
	if location != "" {
		b.WriteString(`<Value concept="LOCATION" value="` + location + `"/>`)
	}
	b.WriteString("</SeriesKey>")
	for _, o := range obs {
		b.WriteString(o)
	}
	b.WriteString("</Series>\n")
	return b.String()
}

func obs(time, value string) string {
	return "<Obs><Time>" + time + `</Time><ObsValue value="` + value + `"/></Obs>`
}

func message(series ...string) string {
	return genericHeader + strings.Join(series, "") + genericFooter
}

func TestParseData(t *testing.T) {
	t.Parallel()
	doc := message(
		series("EDU.1", "USA", obs("2000", "5.1"), obs("1999", "4.8")),
		series("EDU.1", "FRA", obs("2000", "NaN")),
		series("EDU2", "USA", obs("2010", "7")),
	)

	dataset, err := ParseData(strings.NewReader(doc), DefaultSeriesKeys())
	if err != nil {
		t.Fatalf("ParseData: %v", err)
	}

	expected := &Dataset{
		Indicators: map[string]*types.IndicatorTable{
			"edu_1": {
				ID: "edu_1",
				Rows: []types.Datapoint{
					{Location: "usa", Time: "2000", Value: "5.1"},
					{Location: "usa", Time: "1999", Value: "4.8"},
					{Location: "fra", Time: "2000", Value: "NaN"},
				},
				Locations: []string{"usa", "fra"},
			},
			"edu2": {
				ID:        "edu2",
				Rows:      []types.Datapoint{{Location: "usa", Time: "2010", Value: "7"}},
				Locations: []string{"usa"},
			},
		},
		Order:       []string{"edu_1", "edu2"},
		SeriesCount: 3,
	}
	if diff := cmp.Diff(expected, dataset); diff != "" {
		t.Errorf("unexpected dataset (-want +got):\n%s", diff)
	}
}

func TestParseDataObservationShapes(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		series   string
		expected []types.Datapoint
	}{{
		name:     "single observation",
		series:   series("E", "USA", obs("2000", "1.0")),
		expected: []types.Datapoint{{Location: "usa", Time: "2000", Value: "1.0"}},
	}, {
		name:   "many observations keep document order",
		series: series("E", "USA", obs("2001", "2.0"), obs("2000", "1.0"), obs("2002", "3.0")),
		expected: []types.Datapoint{
			{Location: "usa", Time: "2001", Value: "2.0"},
			{Location: "usa", Time: "2000", Value: "1.0"},
			{Location: "usa", Time: "2002", Value: "3.0"},
		},
	}, {
		name:     "observation without value is missing",
		series:   series("E", "USA", "<Obs><Time>2000</Time></Obs>"),
		expected: []types.Datapoint{{Location: "usa", Time: "2000", Missing: true}},
	}, {
		name:     "observation without time is missing",
		series:   series("E", "USA", `<Obs><ObsValue value="3"/></Obs>`),
		expected: []types.Datapoint{{Location: "usa", Value: "3", Missing: true}},
	}, {
		name:   "empty value attribute is missing",
		series: series("E", "USA", obs("1999", ""), obs("2000", " ")),
		expected: []types.Datapoint{
			{Location: "usa", Time: "1999", Missing: true},
			{Location: "usa", Time: "2000", Value: " ", Missing: true},
		},
	}}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			dataset, err := ParseData(strings.NewReader(message(tc.series)), DefaultSeriesKeys())
			if err != nil {
				t.Fatalf("ParseData: %v", err)
			}
			if diff := cmp.Diff(tc.expected, dataset.Indicators["e"].Rows); diff != "" {
				t.Errorf("unexpected rows (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseDataEmptySeries(t *testing.T) {
	t.Parallel()
	doc := message(
		series("E", "USA"),
		series("E", "FRA", obs("2000", "1")),
	)

	dataset, err := ParseData(strings.NewReader(doc), DefaultSeriesKeys())
	if err != nil {
		t.Fatalf("ParseData: %v", err)
	}
	if diff := cmp.Diff([]string{"e/usa"}, dataset.EmptySeries); diff != "" {
		t.Errorf("unexpected empty series (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"usa", "fra"}, dataset.Indicators["e"].Locations); diff != "" {
		t.Errorf("unexpected locations (-want +got):\n%s", diff)
	}
	if dataset.SeriesCount != 2 {
		t.Errorf("expected 2 series, got %d", dataset.SeriesCount)
	}
}

func TestParseDataErrors(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name        string
		doc         string
		expectedErr error
	}{{
		name: "duplicate location for one indicator",
		doc: message(
			series("EDU1", "USA", obs("2000", "1")),
			series("EDU1", "FRA", obs("2000", "1")),
			series("EDU1", "usa", obs("2001", "2")),
		),
		expectedErr: ErrDuplicateSeries,
	}, {
		name:        "missing indicator concept",
		doc:         message(series("", "USA", obs("2000", "1"))),
		expectedErr: ErrMissingSeriesKey,
	}, {
		name:        "missing location concept",
		doc:         message(series("EDU1", "", obs("2000", "1"))),
		expectedErr: ErrMissingSeriesKey,
	}}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseData(strings.NewReader(tc.doc), DefaultSeriesKeys())
			if !errors.Is(err, tc.expectedErr) {
				t.Errorf("expected %v, got %v", tc.expectedErr, err)
			}
		})
	}
}

func TestParseDataSameLocationDifferentIndicators(t *testing.T) {
	t.Parallel()
	doc := message(
		series("EDU1", "USA", obs("2000", "1")),
		series("EDU2", "USA", obs("2000", "2")),
	)
	dataset, err := ParseData(strings.NewReader(doc), DefaultSeriesKeys())
	if err != nil {
		t.Fatalf("ParseData: %v", err)
	}
	if dataset.Len() != 2 || !dataset.Has("edu1") || !dataset.Has("edu2") {
		t.Errorf("expected edu1 and edu2, got %v", dataset.Order)
	}
}

func TestParseDataWithoutDefaultNamespace(t *testing.T) {
	t.Parallel()
	doc := `<g:GenericData xmlns:g="urn:generic"><g:DataSet>
<g:Series><g:SeriesKey><g:Value concept="EDULIT_IND" value="X"/><g:Value concept="LOCATION" value="AFG"/></g:SeriesKey>
<g:Obs><g:Time>2000</g:Time><g:ObsValue value="1"/></g:Obs></g:Series>
</g:DataSet></g:GenericData>`

	dataset, err := ParseData(strings.NewReader(doc), DefaultSeriesKeys())
	if err != nil {
		t.Fatalf("ParseData: %v", err)
	}
	expected := []types.Datapoint{{Location: "afg", Time: "2000", Value: "1"}}
	if diff := cmp.Diff(expected, dataset.Indicators["x"].Rows); diff != "" {
		t.Errorf("unexpected rows (-want +got):\n%s", diff)
	}
}

func TestReadData(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "data.xml", []byte(message(series("EDU1", "USA", obs("2000", "1")))), 0644); err != nil {
		t.Fatal(err)
	}
	dataset, err := ReadData(fs, "data.xml", DefaultSeriesKeys())
	if err != nil {
		t.Fatalf("ReadData: %v", err)
	}
	if dataset.SeriesCount != 1 {
		t.Errorf("expected 1 series, got %d", dataset.SeriesCount)
	}

	if err := afero.WriteFile(fs, "broken.xml", []byte("<GenericData><DataSet>"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadData(fs, "broken.xml", DefaultSeriesKeys()); err == nil {
		t.Error("expected a parse error for truncated XML")
	}
}
