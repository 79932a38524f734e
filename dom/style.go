package dom

import (
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// ParseInlineStyle parses declarations of a style attribute. Property names
// and values are lower cased, whitespace inside values is collapsed.
// Malformed declarations are skipped.
func ParseInlineStyle(decl string) map[string]string {
	props := make(map[string]string)
	if strings.TrimSpace(decl) == "" {
		return props
	}

	parser := css.NewParser(parse.NewInputString(decl), true)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return props
		case css.DeclarationGrammar:
			if value := joinValues(parser.Values()); value != "" {
				props[strings.ToLower(string(data))] = value
			}
		}
	}
}

// InlineStyle returns parsed style attribute of the node.
func (n *Node) InlineStyle() map[string]string {
	return ParseInlineStyle(n.AttrOr("style", ""))
}

func joinValues(tokens []css.Token) string {
	var sb strings.Builder
	space := false
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			space = sb.Len() > 0
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.Write(t.Data)
	}
	return strings.ToLower(sb.String())
}
