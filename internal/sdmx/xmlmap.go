package sdmx

import (
	"sort"
	"strings"
)

// Decoded XML elements are plain maps produced by mxj:
//   - attributes are stored under attrPrefix + name ("-value")
//   - text content of an element with attributes is stored under textKey
//   - a text-only element is stored as a bare string
//   - repeated siblings are collapsed into a []interface{}
//
// Keys may carry a namespace prefix ("message:CodeLists") depending on how the
// source was written, so every lookup goes through local names.
const (
	attrPrefix = "-"
	textKey    = "#text"
)

// element is one decoded XML element.
type element = map[string]interface{}

// localName strips any namespace prefix from a key.
func localName(key string) string {
	if i := strings.LastIndexByte(key, ':'); i >= 0 {
		return key[i+1:]
	}
	return key
}

// child returns the value of the first child element named local.
func child(e element, local string) (interface{}, bool) {
	if e == nil {
		return nil, false
	}
	if v, ok := e[local]; ok {
		return v, true
	}

	keys := make([]string, 0, len(e))
	for k := range e {
		if strings.HasPrefix(k, attrPrefix) || k == textKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if localName(k) == local {
			return e[k], true
		}
	}
	return nil, false
}

// descend follows a path of local names through nested single elements.
func descend(e element, path ...string) (element, bool) {
	current := e
	for _, local := range path {
		v, ok := child(current, local)
		if !ok {
			return nil, false
		}
		elems := elements(v)
		if len(elems) == 0 {
			return nil, false
		}
		current = elems[0]
	}
	return current, true
}

// elements normalizes a child value into a sequence of elements.
// mxj yields a single map for one occurrence and a slice for many; bare text
// is wrapped so that callers can treat every occurrence the same way.
func elements(v interface{}) []element {
	switch val := v.(type) {
	case element:
		return []element{val}
	case []interface{}:
		out := make([]element, 0, len(val))
		for _, item := range val {
			out = append(out, elements(item)...)
		}
		return out
	case string:
		return []element{{textKey: val}}
	case nil:
		return []element{{}}
	default:
		return nil
	}
}

// attr returns the value of an attribute by local name.
func attr(e element, name string) (string, bool) {
	if v, ok := e[attrPrefix+name]; ok {
		return stringOf(v), true
	}
	for k, v := range e {
		if strings.HasPrefix(k, attrPrefix) && localName(strings.TrimPrefix(k, attrPrefix)) == name {
			return stringOf(v), true
		}
	}
	return "", false
}

// text returns the character data of an element.
func text(e element) string {
	if v, ok := e[textKey]; ok {
		return stringOf(v)
	}
	return ""
}

func stringOf(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	case element:
		return text(val)
	default:
		return ""
	}
}
