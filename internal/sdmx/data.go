// =============================================================================
// SDMX to DDF Converter - Generic Data Reader
// =============================================================================
//
// Reads an SDMX 2.0 generic data message and groups its observations by
// indicator, then by location.
//
// EXPECTED SHAPE:
//   <GenericData xmlns="...">
//     <DataSet>
//       <Series>
//         <SeriesKey>
//           <Value concept="EDULIT_IND" value="ROFST_1_CP"/>
//           <Value concept="LOCATION" value="AFG"/>
//         </SeriesKey>
//         <Obs>
//           <Time>2000</Time>
//           <ObsValue value="12.5"/>
//         </Obs>
//         ...
//       </Series>
//     </DataSet>
//   </GenericData>
//
// READ PROCESS:
//   1. Parse the document and find the namespace the root binds by default
//   2. Rebind it to the alias "xmlns"; XPath has no syntax for an empty prefix
//   3. Select every Series element in that namespace
//   4. Decode each Series into a mapping and read its key and observations
//   5. Group by indicator and location, rejecting duplicate pairs
//
// =============================================================================

package sdmx

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/clbanning/mxj/v2"
	"github.com/spf13/afero"

	"github.com/ginjaninja78/sdmx-to-ddf/internal/conceptid"
	"github.com/ginjaninja78/sdmx-to-ddf/internal/types"
)

// defaultNamespaceAlias is the prefix the root's default namespace is bound to.
const defaultNamespaceAlias = "xmlns"

// =============================================================================
// SERIES KEY CONCEPTS
// =============================================================================

// SeriesKeys names the SeriesKey concepts that identify a series.
type SeriesKeys struct {
	// Indicator is the concept carrying the indicator code.
	Indicator string

	// Location is the concept carrying the location code.
	Location string
}

// DefaultSeriesKeys returns the concepts used by UIS education exports.
func DefaultSeriesKeys() SeriesKeys {
	return SeriesKeys{
		Indicator: "EDULIT_IND",
		Location:  "LOCATION",
	}
}

// =============================================================================
// DATASET
// =============================================================================

// Dataset holds one table per indicator.
type Dataset struct {
	// Indicators maps a canonical indicator id to its observations.
	Indicators map[string]*types.IndicatorTable

	// Order lists indicator ids in first-seen order.
	Order []string

	// SeriesCount is the number of Series elements read.
	SeriesCount int

	// EmptySeries lists "indicator/location" for every Series without
	// observations. Such series are kept and contribute no rows.
	EmptySeries []string
}

// Has reports whether the dataset contains an indicator.
func (d *Dataset) Has(id string) bool {
	_, ok := d.Indicators[id]
	return ok
}

// Len returns the number of indicators.
func (d *Dataset) Len() int {
	return len(d.Indicators)
}

// =============================================================================
// READER FUNCTIONS
// =============================================================================

// ReadData reads and groups a generic data message from fs.
func ReadData(fs afero.Fs, path string, keys SeriesKeys) (*Dataset, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	dataset, err := ParseData(bytes.NewReader(data), keys)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return dataset, nil
}

// ParseData parses and groups a generic data message.
func ParseData(r io.Reader, keys SeriesKeys) (*Dataset, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("invalid XML: %w", err)
	}

	seriesNodes, err := selectSeries(doc)
	if err != nil {
		return nil, err
	}

	dataset := &Dataset{
		Indicators: make(map[string]*types.IndicatorTable),
	}
	seen := make(map[string]map[string]bool)

	for i, node := range seriesNodes {
		series, err := decodeSeries(node, keys)
		if err != nil {
			return nil, fmt.Errorf("series %d: %w", i+1, err)
		}

		table, ok := dataset.Indicators[series.indicator]
		if !ok {
			table = &types.IndicatorTable{ID: series.indicator}
			dataset.Indicators[series.indicator] = table
			dataset.Order = append(dataset.Order, series.indicator)
			seen[series.indicator] = make(map[string]bool)
		}

		if seen[series.indicator][series.location] {
			return nil, fmt.Errorf("series %d: %w: indicator %q, location %q",
				i+1, ErrDuplicateSeries, series.indicator, series.location)
		}
		seen[series.indicator][series.location] = true

		table.Locations = append(table.Locations, series.location)
		table.Rows = append(table.Rows, series.points...)
		dataset.SeriesCount++
		if len(series.points) == 0 {
			dataset.EmptySeries = append(dataset.EmptySeries, series.indicator+"/"+series.location)
		}
	}

	return dataset, nil
}

// selectSeries finds every Series element in the root's default namespace.
func selectSeries(doc *xmlquery.Node) ([]*xmlquery.Node, error) {
	root := rootNode(doc)
	if root == nil {
		return nil, fmt.Errorf("document has no root element")
	}

	namespace := defaultNamespace(root)
	if namespace == "" {
		return compileAndQuery(doc, "//*[local-name()='Series']", nil)
	}

	namespaces := map[string]string{defaultNamespaceAlias: namespace}
	nodes, err := compileAndQuery(doc, "//"+defaultNamespaceAlias+":Series", namespaces)
	if err != nil {
		return nil, err
	}
	if len(nodes) > 0 {
		return nodes, nil
	}

	// Series may be bound to a prefixed namespace instead of the default one.
	return compileAndQuery(doc, "//*[local-name()='Series']", nil)
}

func compileAndQuery(doc *xmlquery.Node, expr string, namespaces map[string]string) ([]*xmlquery.Node, error) {
	var compiled *xpath.Expr
	var err error
	if len(namespaces) > 0 {
		compiled, err = xpath.CompileWithNS(expr, namespaces)
	} else {
		compiled, err = xpath.Compile(expr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to compile %q: %w", expr, err)
	}
	return xmlquery.QuerySelectorAll(doc, compiled), nil
}

// rootNode returns the document element.
func rootNode(doc *xmlquery.Node) *xmlquery.Node {
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return n
		}
	}
	return nil
}

// defaultNamespace returns the namespace bound to the empty prefix on root.
func defaultNamespace(root *xmlquery.Node) string {
	for _, a := range root.Attr {
		if a.Name.Space == "" && a.Name.Local == "xmlns" {
			return a.Value
		}
	}
	if root.Prefix == "" {
		return root.NamespaceURI
	}
	return ""
}

// =============================================================================
// SERIES DECODING
// =============================================================================

type decodedSeries struct {
	indicator string
	location  string
	points    []types.Datapoint
}

// decodeSeries turns one Series node into a key and its observations.
func decodeSeries(node *xmlquery.Node, keys SeriesKeys) (*decodedSeries, error) {
	m, err := mxj.NewMapXml([]byte(node.OutputXML(true)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode series: %w", err)
	}

	series, err := rootElement(m)
	if err != nil {
		return nil, err
	}

	decoded := &decodedSeries{}
	var hasIndicator, hasLocation bool

	if seriesKey, ok := descend(series, "SeriesKey"); ok {
		values, _ := child(seriesKey, "Value")
		for _, v := range elements(values) {
			concept, _ := attr(v, "concept")
			value, _ := attr(v, "value")
			switch concept {
			case keys.Indicator:
				decoded.indicator = conceptid.Canonicalize(value)
				hasIndicator = true
			case keys.Location:
				decoded.location = conceptid.Canonicalize(value)
				hasLocation = true
			}
		}
	}

	if !hasIndicator {
		return nil, fmt.Errorf("%w: %s", ErrMissingSeriesKey, keys.Indicator)
	}
	if !hasLocation {
		return nil, fmt.Errorf("%w: %s", ErrMissingSeriesKey, keys.Location)
	}

	obs, ok := child(series, "Obs")
	if !ok {
		return decoded, nil
	}

	for _, o := range elements(obs) {
		decoded.points = append(decoded.points, decodeObservation(o, decoded.location))
	}

	return decoded, nil
}

// decodeObservation reads one Obs element. An absent or empty time or value
// marks the point as missing instead of failing the run.
func decodeObservation(o element, location string) types.Datapoint {
	point := types.Datapoint{Location: location}

	if t, ok := child(o, "Time"); ok {
		if elems := elements(t); len(elems) > 0 {
			point.Time = text(elems[0])
		}
	}

	hasValue := false
	if v, ok := child(o, "ObsValue"); ok {
		if elems := elements(v); len(elems) > 0 {
			point.Value, hasValue = attr(elems[0], "value")
		}
	}

	point.Missing = point.Time == "" || !hasValue || strings.TrimSpace(point.Value) == ""
	return point
}
