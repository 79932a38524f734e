// Package draft defines structured rich document produced by conversion:
// content blocks with per character style and entity annotations and a side
// table of entities.
package draft

import "unicode/utf8"

// Block types.
const (
	Unstyled          = "unstyled"
	HeaderOne         = "header-one"
	HeaderTwo         = "header-two"
	HeaderThree       = "header-three"
	HeaderFour        = "header-four"
	HeaderFive        = "header-five"
	HeaderSix         = "header-six"
	Blockquote        = "blockquote"
	CodeBlock         = "code-block"
	Atomic            = "atomic"
	UnorderedListItem = "unordered-list-item"
	OrderedListItem   = "ordered-list-item"
)

// IsListItem reports whether block type carries meaningful depth.
func IsListItem(typ string) bool {
	return typ == UnorderedListItem || typ == OrderedListItem
}

// TreeLinks are relations of a block in hierarchical document. All values
// are block keys, empty string means no relation.
type TreeLinks struct {
	Parent      string
	PrevSibling string
	NextSibling string
	Children    []string
}

// ContentBlock is a paragraph-like unit of the document. Chars holds one
// entry per rune of Text. Links is nil for flat documents.
type ContentBlock struct {
	Key   string
	Type  string
	Text  string
	Chars []CharacterMetadata
	Depth int
	Links *TreeLinks
}

// Len returns length of block text in runes.
func (b *ContentBlock) Len() int {
	return utf8.RuneCountInString(b.Text)
}

// IsNode reports whether block belongs to hierarchical document.
func (b *ContentBlock) IsNode() bool {
	return b.Links != nil
}

// Document is conversion result: blocks in document order and entities
// referenced from block characters.
type Document struct {
	Blocks   []*ContentBlock
	Entities Registry
}

// Block returns block by key.
func (d *Document) Block(key string) *ContentBlock {
	for _, b := range d.Blocks {
		if b.Key == key {
			return b
		}
	}
	return nil
}
