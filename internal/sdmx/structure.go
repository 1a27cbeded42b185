// =============================================================================
// SDMX to DDF Converter - Structure (DSD) Reader
// =============================================================================
//
// Reads an SDMX 2.0 structure message into a nested mapping of the XML tree
// and exposes the code lists it declares.
//
// EXPECTED SHAPE:
//   <message:Structure>
//     <message:CodeLists>
//       <CodeList id="CL_EDULIT_IND" agencyID="UIS">
//         <Name>...</Name>
//         <Code value="ROFST_1_CP" parentCode="ROFST">
//           <Description xml:lang="en">Out-of-school rate</Description>
//         </Code>
//       </CodeList>
//       ...
//     </message:CodeLists>
//   </message:Structure>
//
// No schema validation is performed.
//
// =============================================================================

package sdmx

import (
	"fmt"

	"github.com/clbanning/mxj/v2"
	"github.com/spf13/afero"
)

// =============================================================================
// STRUCTURE TYPES
// =============================================================================

// Structure is a parsed structure message.
type Structure struct {
	// Source is the path the structure was read from.
	Source string

	// Root is the root element of the decoded message.
	Root map[string]interface{}

	// Language selects which Description is used as a code's name.
	// When no description matches, the first one is used.
	Language string
}

// CodeList is one code list declared in the structure message.
type CodeList struct {
	ID       string
	AgencyID string
	Name     string
	Codes    []Code
}

// Code is one entry of a code list.
type Code struct {
	// Value is the raw code, e.g. "ROFST.1.CP". It is not canonicalized.
	Value string

	// ParentCode is the raw parent code, empty when the code has none.
	ParentCode string

	// Description is the human-readable name of the code.
	Description string
}

// Selector picks a code list out of a structure message.
type Selector struct {
	// ID matches the code list id attribute. Takes precedence over Position.
	ID string

	// Position is the zero-based index among all code lists, used when ID
	// is empty.
	Position int

	// Fallback uses Position when ID is set but not declared.
	Fallback bool
}

// String formats the selector for error messages.
func (s Selector) String() string {
	if s.ID != "" {
		return fmt.Sprintf("id %q", s.ID)
	}
	return fmt.Sprintf("position %d", s.Position)
}

// =============================================================================
// READER FUNCTIONS
// =============================================================================

// ReadStructure reads and parses a structure message from fs.
//
// The file is read fully into memory before parsing.
func ReadStructure(fs afero.Fs, path string) (*Structure, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read structure file: %w", err)
	}

	structure, err := ParseStructure(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	structure.Source = path
	return structure, nil
}

// ParseStructure parses a structure message held in memory.
func ParseStructure(data []byte) (*Structure, error) {
	m, err := mxj.NewMapXml(data)
	if err != nil {
		return nil, fmt.Errorf("invalid XML: %w", err)
	}

	root, err := rootElement(m)
	if err != nil {
		return nil, err
	}

	return &Structure{Root: root, Language: "en"}, nil
}

// rootElement unwraps the single top-level key of a decoded document.
func rootElement(m mxj.Map) (element, error) {
	if len(m) != 1 {
		return nil, fmt.Errorf("expected one root element, found %d", len(m))
	}
	for _, v := range m {
		elems := elements(v)
		if len(elems) != 1 {
			return nil, fmt.Errorf("root element is not a single element")
		}
		return elems[0], nil
	}
	return nil, fmt.Errorf("empty document")
}

// =============================================================================
// CODE LIST ACCESS
// =============================================================================

// CodeLists returns every code list in document order.
func (s *Structure) CodeLists() ([]CodeList, error) {
	container, ok := descend(s.Root, "CodeLists")
	if !ok {
		return nil, fmt.Errorf("%w: structure has no CodeLists element", ErrCodeListNotFound)
	}

	raw, ok := child(container, "CodeList")
	if !ok {
		return nil, nil
	}

	var lists []CodeList
	for i, e := range elements(raw) {
		list, err := s.parseCodeList(e)
		if err != nil {
			return nil, fmt.Errorf("code list %d: %w", i, err)
		}
		lists = append(lists, list)
	}

	return lists, nil
}

// CodeList returns the code list matched by the selector.
func (s *Structure) CodeList(sel Selector) (*CodeList, error) {
	lists, err := s.CodeLists()
	if err != nil {
		return nil, err
	}

	if sel.ID != "" {
		for i := range lists {
			if lists[i].ID == sel.ID {
				return &lists[i], nil
			}
		}
		if !sel.Fallback {
			return nil, fmt.Errorf("%w: %s", ErrCodeListNotFound, sel)
		}
	}

	if sel.Position < 0 || sel.Position >= len(lists) {
		return nil, fmt.Errorf("%w: %s (structure declares %d)", ErrCodeListNotFound, sel, len(lists))
	}
	return &lists[sel.Position], nil
}

// parseCodeList converts one decoded CodeList element.
func (s *Structure) parseCodeList(e element) (CodeList, error) {
	list := CodeList{}
	list.ID, _ = attr(e, "id")
	list.AgencyID, _ = attr(e, "agencyID")
	if names, ok := child(e, "Name"); ok {
		list.Name = s.pickText(elements(names))
	}

	raw, ok := child(e, "Code")
	if !ok {
		return list, nil
	}

	for i, c := range elements(raw) {
		value, ok := attr(c, "value")
		if !ok {
			return list, fmt.Errorf("code %d has no value attribute", i)
		}

		code := Code{Value: value}
		code.ParentCode, _ = attr(c, "parentCode")

		descriptions, ok := child(c, "Description")
		if !ok {
			return list, fmt.Errorf("code %q has no Description", value)
		}
		code.Description = s.pickText(elements(descriptions))

		list.Codes = append(list.Codes, code)
	}

	return list, nil
}

// pickText returns the text of the element in the preferred language,
// falling back to the first one.
func (s *Structure) pickText(elems []element) string {
	if len(elems) == 0 {
		return ""
	}
	if s.Language != "" {
		for _, e := range elems {
			if lang, ok := attr(e, "lang"); ok && lang == s.Language {
				return text(e)
			}
		}
	}
	return text(elems[0])
}
