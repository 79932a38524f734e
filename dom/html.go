package dom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoBody is returned when parsed markup has no content container (for
// example frameset documents).
var ErrNoBody = errors.New("markup has no body")

// elements removed with their subtrees before conversion.
var unsafeElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Iframe:   true,
	atom.Object:   true,
	atom.Embed:    true,
	atom.Applet:   true,
	atom.Frame:    true,
	atom.Head:     true,
	atom.Meta:     true,
	atom.Link:     true,
	atom.Title:    true,
	atom.Base:     true,
	atom.Form:     true,
	atom.Input:    true,
	atom.Button:   true,
	atom.Select:   true,
	atom.Textarea: true,
}

// ParseHTML is the default Supplier. Markup is parsed with HTML5 rules so
// fragments are accepted, then sanitized and converted starting from body.
func ParseHTML(markup string) (*Node, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("unable to parse html: %w", err)
	}

	body := doc.Find("body").First()
	if body.Length() == 0 {
		return nil, ErrNoBody
	}
	sanitize(body)

	root := Document()
	for c := body.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		if n := fromHTML(c); n != nil {
			root.Children = append(root.Children, n)
		}
	}
	return root, nil
}

// sanitize drops active content: unsafe subtrees and event handler
// attributes.
func sanitize(sel *goquery.Selection) {
	sel.Find("*").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return unsafeElements[s.Nodes[0].DataAtom]
	}).Remove()

	sel.Find("*").Each(func(_ int, s *goquery.Selection) {
		var handlers []string
		for _, a := range s.Nodes[0].Attr {
			if strings.HasPrefix(strings.ToLower(a.Key), "on") {
				handlers = append(handlers, a.Key)
			}
		}
		for _, key := range handlers {
			s.RemoveAttr(key)
		}
	})
}

func fromHTML(n *html.Node) *Node {
	switch n.Type {
	case html.TextNode:
		return Text(n.Data)
	case html.ElementNode:
		tag := n.Data
		if n.DataAtom != 0 {
			tag = n.DataAtom.String()
		}
		attrs := make([]Attr, 0, len(n.Attr))
		for _, a := range n.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + a.Key
			}
			attrs = append(attrs, Attr{Key: strings.ToLower(key), Val: a.Val})
		}
		el := Element(tag, attrs)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := fromHTML(c); child != nil {
				el.Children = append(el.Children, child)
			}
		}
		return el
	default:
		// comments, doctypes and raw nodes carry nothing to convert
		return nil
	}
}
