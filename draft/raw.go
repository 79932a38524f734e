package draft

import "iter"

// Raw representation mirrors what JavaScript editors expect: styles and
// entities are encoded as ranges, offsets and lengths are counted in UTF-16
// code units.

type RawStyleRange struct {
	Offset int    `yaml:"offset" ion:"offset"`
	Length int    `yaml:"length" ion:"length"`
	Style  string `yaml:"style" ion:"style"`
}

type RawEntityRange struct {
	Offset int    `yaml:"offset" ion:"offset"`
	Length int    `yaml:"length" ion:"length"`
	Key    string `yaml:"key" ion:"key"`
}

type RawBlock struct {
	Key               string           `yaml:"key" ion:"key"`
	Type              string           `yaml:"type" ion:"type"`
	Text              string           `yaml:"text" ion:"text"`
	Depth             int              `yaml:"depth" ion:"depth"`
	InlineStyleRanges []RawStyleRange  `yaml:"inlineStyleRanges" ion:"inlineStyleRanges"`
	EntityRanges      []RawEntityRange `yaml:"entityRanges" ion:"entityRanges"`
	Parent            string           `yaml:"parent,omitempty" ion:"parent,omitempty"`
	Children          []string         `yaml:"children,omitempty" ion:"children,omitempty"`
	PrevSibling       string           `yaml:"prevSibling,omitempty" ion:"prevSibling,omitempty"`
	NextSibling       string           `yaml:"nextSibling,omitempty" ion:"nextSibling,omitempty"`
}

type RawEntity struct {
	Type       string            `yaml:"type" ion:"type"`
	Mutability string            `yaml:"mutability" ion:"mutability"`
	Data       map[string]string `yaml:"data" ion:"data"`
}

type RawDocument struct {
	Blocks    []RawBlock           `yaml:"blocks" ion:"blocks"`
	EntityMap map[string]RawEntity `yaml:"entityMap" ion:"entityMap"`
}

// ToRaw encodes document into range based representation.
func ToRaw(doc *Document) *RawDocument {
	raw := &RawDocument{
		Blocks:    make([]RawBlock, 0, len(doc.Blocks)),
		EntityMap: make(map[string]RawEntity),
	}
	for _, b := range doc.Blocks {
		rb := RawBlock{
			Key:               b.Key,
			Type:              b.Type,
			Text:              b.Text,
			Depth:             b.Depth,
			InlineStyleRanges: encodeStyleRanges(b),
			EntityRanges:      encodeEntityRanges(b),
		}
		if b.Links != nil {
			rb.Parent = b.Links.Parent
			rb.Children = b.Links.Children
			rb.PrevSibling = b.Links.PrevSibling
			rb.NextSibling = b.Links.NextSibling
		}
		raw.Blocks = append(raw.Blocks, rb)
	}
	if doc.Entities != nil {
		for _, key := range doc.Entities.Keys() {
			e, _ := doc.Entities.Get(key)
			data := e.Data
			if data == nil {
				data = map[string]string{}
			}
			raw.EntityMap[key] = RawEntity{
				Type:       string(e.Type),
				Mutability: string(e.Mutability),
				Data:       data,
			}
		}
	}
	return raw
}

// utf16Offsets returns offsets of every rune of text in UTF-16 code units,
// with total length as the last element.
func utf16Offsets(text string) []int {
	offsets := make([]int, 0, len(text)+1)
	cum := 0
	for _, r := range text {
		offsets = append(offsets, cum)
		if r > 0xFFFF {
			cum += 2
		} else {
			cum++
		}
	}
	return append(offsets, cum)
}

func encodeStyleRanges(b *ContentBlock) []RawStyleRange {
	// styles in order of first appearance
	var styles []string
	seen := make(map[string]bool)
	for _, c := range b.Chars {
		for _, name := range c.Style.names {
			if !seen[name] {
				seen[name] = true
				styles = append(styles, name)
			}
		}
	}
	if len(styles) == 0 {
		return []RawStyleRange{}
	}

	offsets := utf16Offsets(b.Text)
	out := []RawStyleRange{}
	for _, style := range styles {
		for start, end := range runs(b.Chars, func(c CharacterMetadata) string {
			if c.Style.Has(style) {
				return style
			}
			return ""
		}) {
			out = append(out, RawStyleRange{
				Offset: offsets[start],
				Length: offsets[end] - offsets[start],
				Style:  style,
			})
		}
	}
	return out
}

func encodeEntityRanges(b *ContentBlock) []RawEntityRange {
	offsets := utf16Offsets(b.Text)
	out := []RawEntityRange{}
	for start, end := range runs(b.Chars, func(c CharacterMetadata) string { return c.Entity }) {
		out = append(out, RawEntityRange{
			Offset: offsets[start],
			Length: offsets[end] - offsets[start],
			Key:    b.Chars[start].Entity,
		})
	}
	return out
}

// runs yields [start, end) ranges of maximal runs where value returned by
// fn is the same and not empty.
func runs(chars []CharacterMetadata, fn func(CharacterMetadata) string) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		start, current := -1, ""
		for i, c := range chars {
			v := fn(c)
			if v == current {
				continue
			}
			if current != "" {
				if !yield(start, i) {
					return
				}
			}
			start, current = i, v
		}
		if current != "" {
			yield(start, len(chars))
		}
	}
}
