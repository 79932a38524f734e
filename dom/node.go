// Package dom supplies node trees to the block converter. Raw markup is
// parsed by one of the suppliers, sanitized and converted into a small
// closed variant of element and text nodes.
package dom

import (
	"slices"
	"strings"
)

// Kind is a closed set of node kinds the converter understands.
type Kind int

const (
	// DocumentNode is the root returned by suppliers. It is structurally
	// transparent and never produces a block on its own.
	DocumentNode Kind = iota + 1
	ElementNode
	TextNode
)

func (k Kind) String() string {
	switch k {
	case DocumentNode:
		return "document"
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	default:
		return "unknown"
	}
}

// Attr is a single element attribute. Keys are lower case.
type Attr struct {
	Key string
	Val string
}

// Node is a sanitized markup node. Tag and Attrs are set for elements only,
// Text for text nodes only.
type Node struct {
	Kind     Kind
	Tag      string
	Attrs    []Attr
	Children []*Node
	Text     string
}

// Supplier turns pre-normalized markup into a node tree rooted at a
// DocumentNode. An error means markup could not be turned into a safe
// tree and conversion should not proceed.
type Supplier func(markup string) (*Node, error)

// Document returns root node holding children.
func Document(children ...*Node) *Node {
	return &Node{Kind: DocumentNode, Children: children}
}

// Element returns element node. Tag is lower cased.
func Element(tag string, attrs []Attr, children ...*Node) *Node {
	return &Node{Kind: ElementNode, Tag: strings.ToLower(tag), Attrs: attrs, Children: children}
}

// Text returns text node.
func Text(s string) *Node {
	return &Node{Kind: TextNode, Text: s}
}

// Attrs builds attribute list from key/value pairs, odd trailing key is
// ignored.
func Attrs(kv ...string) []Attr {
	out := make([]Attr, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, Attr{Key: strings.ToLower(kv[i]), Val: kv[i+1]})
	}
	return out
}

// Attr returns value of attribute key.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns value of attribute key or def when it is absent.
func (n *Node) AttrOr(key, def string) string {
	if v, ok := n.Attr(key); ok {
		return v
	}
	return def
}

// Classes returns list of class names.
func (n *Node) Classes() []string {
	return strings.Fields(n.AttrOr("class", ""))
}

func (n *Node) HasClass(name string) bool {
	return slices.Contains(n.Classes(), name)
}

// IsElement reports whether node is element with one of the tags (any
// element if no tags are given).
func (n *Node) IsElement(tags ...string) bool {
	if n == nil || n.Kind != ElementNode {
		return false
	}
	return len(tags) == 0 || slices.Contains(tags, n.Tag)
}

// InnerText returns concatenated text of all descendants.
func (n *Node) InnerText() string {
	var sb strings.Builder
	var walk func(*Node)
	walk = func(n *Node) {
		if n.Kind == TextNode {
			sb.WriteString(n.Text)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
