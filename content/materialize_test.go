package content

import (
	"slices"
	"testing"

	"hbc/draft"
)

func cfg(key, typ, text string, children ...*blockConfig) *blockConfig {
	return &blockConfig{
		key:      key,
		typ:      typ,
		text:     text,
		chars:    draft.Repeat(draft.CharacterMetadata{}, len(text)),
		children: children,
	}
}

func TestMaterializeTree_Links(t *testing.T) {
	configs := []*blockConfig{
		cfg("a", draft.Unstyled, "",
			cfg("b", draft.UnorderedListItem, "one"),
			cfg("c", draft.UnorderedListItem, "two"),
		),
		cfg("d", draft.HeaderOne, "title"),
	}

	blocks := materializeTree(configs)

	var keys []string
	for _, b := range blocks {
		keys = append(keys, b.Key)
	}
	if want := []string{"a", "b", "c", "d"}; !slices.Equal(keys, want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}

	tests := []struct {
		key                string
		parent, prev, next string
		children           []string
	}{
		{key: "a", next: "d", children: []string{"b", "c"}},
		{key: "b", parent: "a", next: "c"},
		{key: "c", parent: "a", prev: "b"},
		{key: "d", prev: "a"},
	}
	for i, tt := range tests {
		l := blocks[i].Links
		if l == nil {
			t.Fatalf("%s: no tree links", tt.key)
		}
		if l.Parent != tt.parent || l.PrevSibling != tt.prev || l.NextSibling != tt.next {
			t.Errorf("%s: links = %+v", tt.key, l)
		}
		if !slices.Equal(l.Children, tt.children) {
			t.Errorf("%s: children = %v, want %v", tt.key, l.Children, tt.children)
		}
	}
}

func TestMaterializeFlat_AbsorbsDescendants(t *testing.T) {
	configs := []*blockConfig{
		cfg("a", draft.UnorderedListItem, "A",
			cfg("b", draft.UnorderedListItem, "B"),
		),
		cfg("c", draft.Unstyled, "x",
			cfg("d", draft.Unstyled, "y"),
			cfg("e", draft.Blockquote, "z"),
		),
	}

	blocks := materializeFlat(configs)
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if blocks[0].Text != "AB\n" || blocks[1].Text != "xyz\n" {
		t.Errorf("texts = %q, %q", blocks[0].Text, blocks[1].Text)
	}
	for _, b := range blocks {
		if b.Links != nil {
			t.Errorf("%s: flat block must not carry tree links", b.Key)
		}
		if len(b.Chars) != len(b.Text) {
			t.Errorf("%s: %d chars for %q", b.Key, len(b.Chars), b.Text)
		}
	}
}

func TestExtractText_NoLeadingSeparator(t *testing.T) {
	text, chars := extractText([]*blockConfig{
		cfg("a", draft.HeaderTwo, ""),
		cfg("b", draft.HeaderTwo, "h"),
	})
	if text != "h\n" || len(chars) != 2 {
		t.Errorf("extractText() = %q (%d chars)", text, len(chars))
	}
}

func TestHoistContainers(t *testing.T) {
	configs := []*blockConfig{
		cfg("a", draft.Unstyled, "",
			cfg("b", draft.Unstyled, "",
				cfg("c", draft.HeaderOne, "deep"),
			),
			cfg("d", draft.Unstyled, "kept"),
		),
		cfg("e", draft.Blockquote, ""),
	}

	var keys []string
	for _, c := range hoistContainers(configs) {
		keys = append(keys, c.key)
	}
	if want := []string{"c", "d", "e"}; !slices.Equal(keys, want) {
		t.Errorf("hoisted keys = %v, want %v", keys, want)
	}
}
