package content

import (
	"net/url"
	"slices"
	"strings"

	"hbc/dom"
	"hbc/draft"
)

const imageGlyph = "\U0001F4F7"

// inline style tags
var tagStyles = map[string]string{
	"b":      draft.StyleBold,
	"strong": draft.StyleBold,
	"i":      draft.StyleItalic,
	"em":     draft.StyleItalic,
	"u":      draft.StyleUnderline,
	"s":      draft.StyleStrikethrough,
	"strike": draft.StyleStrikethrough,
	"del":    draft.StyleStrikethrough,
	"code":   draft.StyleCode,
	"mark":   draft.StyleHighlight,
}

var (
	boldWeights    = []string{"bold", "bolder", "500", "600", "700", "800", "900"}
	notBoldWeights = []string{"light", "lighter", "normal", "100", "200", "300", "400"}
)

// depth marking classes of pasted list items
var depthClasses = map[string]int{
	"public-DraftStyleDefault-depth0": 0,
	"public-DraftStyleDefault-depth1": 1,
	"public-DraftStyleDefault-depth2": 2,
	"public-DraftStyleDefault-depth3": 3,
	"public-DraftStyleDefault-depth4": 4,
}

// attributes copied into entity data, "class" is stored as "className".
var (
	linkAttrs  = []string{"class", "href", "rel", "target", "title"}
	imageAttrs = []string{"alt", "class", "height", "src", "width"}
)

func isListContainer(tag string) bool {
	return tag == "ul" || tag == "ol"
}

// listItemDepth returns depth encoded in node classes, 0 when there is none.
func listItemDepth(n *dom.Node) int {
	depth := 0
	for _, c := range n.Classes() {
		if d, ok := depthClasses[c]; ok {
			depth = d
		}
	}
	return depth
}

// styleFromAttributes toggles styles according to presentational
// properties of the node.
func styleFromAttributes(n *dom.Node, style draft.InlineStyle) draft.InlineStyle {
	props := n.InlineStyle()
	if len(props) == 0 {
		return style
	}

	weight := props["font-weight"]
	switch {
	case slices.Contains(boldWeights, weight):
		style = style.Add(draft.StyleBold)
	case slices.Contains(notBoldWeights, weight):
		style = style.Remove(draft.StyleBold)
	}

	switch props["font-style"] {
	case "italic", "oblique":
		style = style.Add(draft.StyleItalic)
	case "normal":
		style = style.Remove(draft.StyleItalic)
	}

	decorations := strings.Fields(props["text-decoration"])
	if slices.Contains(decorations, "none") {
		style = style.Remove(draft.StyleUnderline).Remove(draft.StyleStrikethrough)
	}
	if slices.Contains(decorations, "underline") {
		style = style.Add(draft.StyleUnderline)
	}
	if slices.Contains(decorations, "line-through") {
		style = style.Add(draft.StyleStrikethrough)
	}
	return style
}

// entityData copies allow-listed non-empty attributes.
func entityData(n *dom.Node, allowed []string) map[string]string {
	data := make(map[string]string, len(allowed)+1)
	for _, key := range allowed {
		v, ok := n.Attr(key)
		if !ok || v == "" {
			continue
		}
		if key == "class" {
			key = "className"
		}
		data[key] = v
	}
	return data
}

// imageData returns entity data when node is a usable image.
func imageData(n *dom.Node) (map[string]string, bool) {
	if n.Tag != "img" || n.AttrOr("src", "") == "" {
		return nil, false
	}
	return entityData(n, imageAttrs), true
}

// linkData returns entity data when node is an anchor pointing to an
// allowed location. Relative references need base to be resolved.
func linkData(n *dom.Node, base *url.URL) (map[string]string, bool) {
	if n.Tag != "a" {
		return nil, false
	}
	href := strings.TrimSpace(n.AttrOr("href", ""))
	if href == "" {
		return nil, false
	}
	u, ok := normalizeURL(href, base)
	if !ok {
		return nil, false
	}
	data := entityData(n, linkAttrs)
	data["url"] = u
	return data, true
}

func normalizeURL(href string, base *url.URL) (string, bool) {
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if !u.IsAbs() {
		if base == nil {
			return "", false
		}
		u = base.ResolveReference(u)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return "", false
		}
		u.Host = strings.ToLower(u.Host)
		if u.Path == "" && u.Opaque == "" {
			u.Path = "/"
		}
	case "mailto":
	default:
		return "", false
	}
	return u.String(), true
}
