package content

import (
	"strings"
	"unicode"

	"hbc/draft"
)

// accumulator collects text of the block being built. Metadata is kept per
// rune, so len(chars) == len(text) always holds.
type accumulator struct {
	text  []rune
	chars []draft.CharacterMetadata
}

func (a *accumulator) append(s string, md draft.CharacterMetadata) {
	for _, r := range s {
		a.text = append(a.text, r)
		a.chars = append(a.chars, md)
	}
}

func (a *accumulator) empty() bool {
	return len(a.text) == 0
}

// trim removes surrounding whitespace but never cuts into characters
// referencing an entity. When nothing is left accumulator is cleared.
func (a *accumulator) trim() {
	l := len(a.text)
	begin := 0
	for begin < l && isTrimSpace(a.text[begin]) {
		begin++
	}
	end := l
	for end > begin && isTrimSpace(a.text[end-1]) {
		end--
	}

	for i, md := range a.chars {
		if md.HasEntity() {
			begin = min(begin, i)
			break
		}
	}
	for i := l - 1; i >= 0; i-- {
		if a.chars[i].HasEntity() {
			end = max(end, i+1)
			break
		}
	}

	if begin >= end {
		a.reset()
		return
	}
	a.text = a.text[begin:end]
	a.chars = a.chars[begin:end]
}

// take returns accumulated content and starts over.
func (a *accumulator) take() (string, []draft.CharacterMetadata) {
	text, chars := string(a.text), a.chars
	a.reset()
	return text, chars
}

func (a *accumulator) reset() {
	a.text, a.chars = nil, nil
}

// isTrimSpace reports whether r is white space or line terminator in the
// sense of ECMAScript String.prototype.trim: space separators (Zs), tab,
// vertical tab, form feed, BOM, LF, CR, LS and PS. U+0085 is not included.
func isTrimSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\uFEFF', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// normalizeText prepares content of a text node. Outside of preformatted
// context whitespace-only runs become single space and line feeds turn into
// spaces.
func normalizeText(s string, pre bool) string {
	if pre {
		return s
	}
	if strings.TrimFunc(s, isTrimSpace) == "" {
		return " "
	}
	return strings.ReplaceAll(s, "\n", " ")
}
