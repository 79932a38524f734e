package blocktype

import (
	"maps"
	"slices"
	"strings"

	"hbc/draft"
)

// Map is immutable mapping from tag name to ordered non-empty list of
// candidate block types. Unambiguous tags have single candidate.
type Map struct {
	tags map[string][]string
}

// Build flattens render map table (primary element and aliases of every
// block type) into Map.
func Build(rm RenderMap) Map {
	m := Map{tags: make(map[string][]string)}
	for _, e := range rm {
		elements := append([]string{e.Element}, e.Aliases...)
		for _, el := range elements {
			tag := strings.ToLower(el)
			if slices.Contains(m.tags[tag], e.Type) {
				continue
			}
			m.tags[tag] = append(m.tags[tag], e.Type)
		}
	}
	return m
}

// Lookup returns candidates for tag.
func (m Map) Lookup(tag string) ([]string, bool) {
	candidates, ok := m.tags[tag]
	if !ok {
		return nil, false
	}
	return slices.Clone(candidates), true
}

// Has reports whether tag is block level.
func (m Map) Has(tag string) bool {
	_, ok := m.tags[tag]
	return ok
}

// IsAmbiguous reports whether tag maps to more than one block type.
func (m Map) IsAmbiguous(tag string) bool {
	return len(m.tags[tag]) > 1
}

// Tags returns sorted list of known tags.
func (m Map) Tags() []string {
	return slices.Sorted(maps.Keys(m.tags))
}

// Disambiguator picks single block type for ambiguous tag using wrapper
// context (nearest list container tag or "pre"). Returning false means no
// decision.
type Disambiguator func(tag, wrapper string) (string, bool)

// DefaultDisambiguate resolves list items by their container.
func DefaultDisambiguate(tag, wrapper string) (string, bool) {
	if tag != "li" {
		return "", false
	}
	if wrapper == "ol" {
		return draft.OrderedListItem, true
	}
	return draft.UnorderedListItem, true
}

// Resolve returns block type for tag. Ambiguous tags are resolved with
// disambiguate, falling back to the first candidate and then to unstyled.
// Second value is false when tag is not block level.
func (m Map) Resolve(tag, wrapper string, disambiguate Disambiguator) (string, bool) {
	candidates, ok := m.tags[tag]
	if !ok {
		return "", false
	}
	switch len(candidates) {
	case 0:
		return draft.Unstyled, true
	case 1:
		return candidates[0], true
	}
	if disambiguate != nil {
		if typ, ok := disambiguate(tag, wrapper); ok && typ != "" {
			return typ, true
		}
	}
	return candidates[0], true
}
