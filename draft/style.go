package draft

import (
	"slices"
	"strings"
)

// Inline styles recognized by the converter.
const (
	StyleBold          = "BOLD"
	StyleItalic        = "ITALIC"
	StyleUnderline     = "UNDERLINE"
	StyleStrikethrough = "STRIKETHROUGH"
	StyleCode          = "CODE"
	StyleHighlight     = "HIGHLIGHT"
)

// InlineStyle is an immutable set of inline style names. Zero value is an
// empty set. Methods never modify the receiver, so values could be freely
// shared between characters.
type InlineStyle struct {
	names []string // sorted, unique
}

// NewInlineStyle returns set containing given names.
func NewInlineStyle(names ...string) InlineStyle {
	var s InlineStyle
	for _, n := range names {
		s = s.Add(n)
	}
	return s
}

// Has reports whether name is in the set.
func (s InlineStyle) Has(name string) bool {
	_, found := slices.BinarySearch(s.names, name)
	return found
}

// Add returns set with name added.
func (s InlineStyle) Add(name string) InlineStyle {
	if name == "" {
		return s
	}
	i, found := slices.BinarySearch(s.names, name)
	if found {
		return s
	}
	names := make([]string, 0, len(s.names)+1)
	names = append(names, s.names[:i]...)
	names = append(names, name)
	names = append(names, s.names[i:]...)
	return InlineStyle{names: names}
}

// Remove returns set without name.
func (s InlineStyle) Remove(name string) InlineStyle {
	i, found := slices.BinarySearch(s.names, name)
	if !found {
		return s
	}
	if len(s.names) == 1 {
		return InlineStyle{}
	}
	names := make([]string, 0, len(s.names)-1)
	names = append(names, s.names[:i]...)
	names = append(names, s.names[i+1:]...)
	return InlineStyle{names: names}
}

// Names returns sorted copy of style names.
func (s InlineStyle) Names() []string {
	return slices.Clone(s.names)
}

func (s InlineStyle) Len() int {
	return len(s.names)
}

func (s InlineStyle) IsEmpty() bool {
	return len(s.names) == 0
}

func (s InlineStyle) Equal(o InlineStyle) bool {
	return slices.Equal(s.names, o.names)
}

func (s InlineStyle) String() string {
	return strings.Join(s.names, "|")
}
