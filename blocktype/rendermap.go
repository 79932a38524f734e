// Package blocktype maps markup tags to block types using configurable
// render map table.
package blocktype

import (
	"fmt"

	"hbc/draft"
)

// Entry describes block type rendering: primary element and elements which
// are also recognized as this block type on input.
type Entry struct {
	Type    string   `yaml:"type" validate:"required"`
	Element string   `yaml:"element" validate:"required"`
	Aliases []string `yaml:"aliases,omitempty" validate:"dive,required"`
}

// RenderMap is ordered table of entries. Order matters: when tag is used by
// several block types candidates are kept in table order.
type RenderMap []Entry

// DefaultRenderMap returns standard table of block types.
func DefaultRenderMap() RenderMap {
	return RenderMap{
		{Type: draft.HeaderOne, Element: "h1"},
		{Type: draft.HeaderTwo, Element: "h2"},
		{Type: draft.HeaderThree, Element: "h3"},
		{Type: draft.HeaderFour, Element: "h4"},
		{Type: draft.HeaderFive, Element: "h5"},
		{Type: draft.HeaderSix, Element: "h6"},
		{Type: draft.UnorderedListItem, Element: "li"},
		{Type: draft.OrderedListItem, Element: "li"},
		{Type: draft.Blockquote, Element: "blockquote"},
		{Type: draft.Atomic, Element: "figure"},
		{Type: draft.CodeBlock, Element: "pre"},
		{Type: draft.Unstyled, Element: "div", Aliases: []string{"p"}},
	}
}

// Validate checks that table could be used to build Map.
func (rm RenderMap) Validate() error {
	seen := make(map[string]bool, len(rm))
	for i, e := range rm {
		if e.Type == "" {
			return fmt.Errorf("render map entry %d: empty block type", i)
		}
		if e.Element == "" {
			return fmt.Errorf("render map entry %d (%s): empty element", i, e.Type)
		}
		if seen[e.Type] {
			return fmt.Errorf("render map entry %d: duplicate block type %q", i, e.Type)
		}
		seen[e.Type] = true
	}
	return nil
}
