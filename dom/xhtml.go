package dom

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// Named entities commonly found in XHTML which XML decoder does not know.
var xhtmlEntities = map[string]string{
	"nbsp":   " ",
	"copy":   "©",
	"reg":    "®",
	"trade":  "™",
	"mdash":  "—",
	"ndash":  "–",
	"hellip": "…",
	"laquo":  "«",
	"raquo":  "»",
	"ldquo":  "“",
	"rdquo":  "”",
	"lsquo":  "‘",
	"rsquo":  "’",
	"shy":    "\u00ad",
}

var unsafeXHTML = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"iframe": true, "object": true, "embed": true, "applet": true,
	"frame": true, "head": true, "meta": true, "link": true, "title": true,
	"base": true, "form": true, "input": true, "button": true,
	"select": true, "textarea": true,
}

// ParseXHTML is Supplier for well formed XHTML documents and fragments with
// a single root element. Conversion starts from body when present,
// otherwise from the root element itself.
func ParseXHTML(markup string) (*Node, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		Permissive:    true,
		Entity:        xhtmlEntities,
	}
	if err := doc.ReadFromString(markup); err != nil {
		return nil, fmt.Errorf("unable to parse xhtml: %w", err)
	}

	top := doc.Root()
	if top == nil {
		return nil, ErrNoBody
	}

	root := Document()
	if strings.EqualFold(top.Tag, "html") {
		body := top.FindElement("./body")
		if body == nil {
			return nil, ErrNoBody
		}
		root.Children = fromXHTMLChildren(body)
		return root, nil
	}
	if n := fromXHTML(top); n != nil {
		root.Children = append(root.Children, n)
	}
	return root, nil
}

func fromXHTMLChildren(el *etree.Element) []*Node {
	var out []*Node
	for _, token := range el.Child {
		switch t := token.(type) {
		case *etree.CharData:
			out = append(out, Text(t.Data))
		case *etree.Element:
			if n := fromXHTML(t); n != nil {
				out = append(out, n)
			}
		}
	}
	return out
}

func fromXHTML(el *etree.Element) *Node {
	tag := strings.ToLower(el.Tag)
	if unsafeXHTML[tag] {
		return nil
	}
	attrs := make([]Attr, 0, len(el.Attr))
	for _, a := range el.Attr {
		key := strings.ToLower(a.FullKey())
		if a.Space == "xmlns" || key == "xmlns" || strings.HasPrefix(key, "on") {
			continue
		}
		attrs = append(attrs, Attr{Key: key, Val: a.Value})
	}
	return Element(tag, attrs, fromXHTMLChildren(el)...)
}
