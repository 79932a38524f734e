package content

import (
	"slices"

	"hbc/draft"
)

// materializeTree emits one block per description in pre-order, parents
// before their descendants.
func materializeTree(configs []*blockConfig) []*draft.ContentBlock {
	var blocks []*draft.ContentBlock
	var emit func(level []*blockConfig, parent string)
	emit = func(level []*blockConfig, parent string) {
		for i, c := range level {
			links := &draft.TreeLinks{Parent: parent, Children: make([]string, 0, len(c.children))}
			if i > 0 {
				links.PrevSibling = level[i-1].key
			}
			if i < len(level)-1 {
				links.NextSibling = level[i+1].key
			}
			for _, child := range c.children {
				links.Children = append(links.Children, child.key)
			}
			blocks = append(blocks, &draft.ContentBlock{
				Key:   c.key,
				Type:  c.typ,
				Text:  c.text,
				Chars: slices.Clone(c.chars),
				Depth: c.depth,
				Links: links,
			})
			emit(c.children, c.key)
		}
	}
	emit(configs, "")
	return blocks
}

// materializeFlat emits one block per top level description absorbing text
// of all nested ones.
func materializeFlat(configs []*blockConfig) []*draft.ContentBlock {
	blocks := make([]*draft.ContentBlock, 0, len(configs))
	for _, c := range configs {
		text, chars := extractText(c.children)
		blocks = append(blocks, &draft.ContentBlock{
			Key:   c.key,
			Type:  c.typ,
			Text:  c.text + text,
			Chars: append(slices.Clone(c.chars), chars...),
			Depth: c.depth,
		})
	}
	return blocks
}

// extractText concatenates text of nested descriptions in pre-order. Line
// feed separator (with metadata of the preceding character) follows
// non-unstyled blocks unless nothing was collected yet.
func extractText(configs []*blockConfig) (string, []draft.CharacterMetadata) {
	var (
		text  []byte
		chars []draft.CharacterMetadata
	)
	for _, c := range configs {
		text = append(text, c.text...)
		chars = append(chars, c.chars...)
		if len(text) > 0 && c.typ != draft.Unstyled {
			var last draft.CharacterMetadata
			if len(chars) > 0 {
				last = chars[len(chars)-1]
			}
			text = append(text, '\n')
			chars = append(chars, last)
		}
		t, ch := extractText(c.children)
		text = append(text, t...)
		chars = append(chars, ch...)
	}
	return string(text), chars
}

// hoistContainers replaces empty unstyled descriptions by their children.
func hoistContainers(configs []*blockConfig) []*blockConfig {
	var out []*blockConfig
	for _, c := range configs {
		if c.typ != draft.Unstyled || c.text != "" {
			out = append(out, c)
			continue
		}
		out = append(out, hoistContainers(c.children)...)
	}
	return out
}
