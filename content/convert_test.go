package content

import (
	"errors"
	"net/url"
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap/zaptest"

	"hbc/blocktype"
	"hbc/dom"
	"hbc/draft"
)

func convert(t *testing.T, markup string, opts ...Option) *draft.Document {
	t.Helper()
	opts = append([]Option{WithKeys(draft.NewSequentialKeys("k")), WithLogger(zaptest.NewLogger(t))}, opts...)
	doc, err := Convert(markup, opts...)
	if err != nil {
		t.Fatalf("Convert(%q) error = %v", markup, err)
	}
	return doc
}

// styles returns style set string for every character of block.
func styles(b *draft.ContentBlock) []string {
	out := make([]string, len(b.Chars))
	for i, c := range b.Chars {
		out[i] = c.Style.String()
	}
	return out
}

func texts(doc *draft.Document) []string {
	out := make([]string, len(doc.Blocks))
	for i, b := range doc.Blocks {
		out[i] = b.Text
	}
	return out
}

func TestConvert_BoldInParagraph(t *testing.T) {
	doc := convert(t, `<p>Hello <b>world</b></p>`)

	if len(doc.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(doc.Blocks))
	}
	b := doc.Blocks[0]
	if b.Type != draft.Unstyled || b.Text != "Hello world" {
		t.Fatalf("block = %s %q", b.Type, b.Text)
	}
	for i, s := range styles(b) {
		want := ""
		if i >= len("Hello ") {
			want = draft.StyleBold
		}
		if s != want {
			t.Errorf("char %d style = %q, want %q", i, s, want)
		}
	}
}

func TestConvert_ListItems(t *testing.T) {
	doc := convert(t, `<ul><li>A</li><li>B</li></ul>`)

	if got := texts(doc); !slices.Equal(got, []string{"A", "B"}) {
		t.Fatalf("texts = %q", got)
	}
	for _, b := range doc.Blocks {
		if b.Type != draft.UnorderedListItem || b.Depth != 0 {
			t.Errorf("block %q: type %s depth %d", b.Text, b.Type, b.Depth)
		}
	}

	doc = convert(t, `<ol><li>A</li></ol>`)
	if doc.Blocks[0].Type != draft.OrderedListItem {
		t.Errorf("type = %s, want %s", doc.Blocks[0].Type, draft.OrderedListItem)
	}
}

func TestConvert_Link(t *testing.T) {
	doc := convert(t, `<a href="http://x.com" class="ext" title="X" onclick="x()">link</a>`)

	if len(doc.Blocks) != 1 || doc.Blocks[0].Text != "link" {
		t.Fatalf("texts = %q", texts(doc))
	}
	if doc.Entities.Len() != 1 {
		t.Fatalf("entities = %d, want 1", doc.Entities.Len())
	}
	key := doc.Entities.Keys()[0]
	e, _ := doc.Entities.Get(key)
	if e.Type != draft.EntityLink || e.Mutability != draft.Mutable {
		t.Errorf("entity = %s %s", e.Type, e.Mutability)
	}
	want := map[string]string{"url": "http://x.com/", "href": "http://x.com", "className": "ext", "title": "X"}
	for k, v := range want {
		if e.Data[k] != v {
			t.Errorf("data[%s] = %q, want %q", k, e.Data[k], v)
		}
	}
	if _, ok := e.Data["onclick"]; ok {
		t.Error("event handler leaked into entity data")
	}
	for i, c := range doc.Blocks[0].Chars {
		if c.Entity != key {
			t.Errorf("char %d entity = %q, want %q", i, c.Entity, key)
		}
	}
}

func TestConvert_Image(t *testing.T) {
	doc := convert(t, `<img src="a.png" alt="pic">`)

	if len(doc.Blocks) != 1 || doc.Blocks[0].Text != imageGlyph {
		t.Fatalf("texts = %q", texts(doc))
	}
	b := doc.Blocks[0]
	if len(b.Chars) != 1 || !b.Chars[0].HasEntity() {
		t.Fatalf("chars = %+v", b.Chars)
	}
	e, ok := doc.Entities.Get(b.Chars[0].Entity)
	if !ok || e.Type != draft.EntityImage || e.Data["src"] != "a.png" || e.Data["alt"] != "pic" {
		t.Errorf("entity = %+v", e)
	}
}

func TestConvert_WhitespaceOnlyBlock(t *testing.T) {
	doc := convert(t, `<p>   </p>`)
	if len(doc.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(doc.Blocks))
	}
	if b := doc.Blocks[0]; b.Type != draft.Unstyled || b.Text != "" || len(b.Chars) != 0 {
		t.Errorf("block = %s %q", b.Type, b.Text)
	}

	doc = convert(t, `<p>   </p>`, WithHoistContainers(true))
	if len(doc.Blocks) != 0 {
		t.Errorf("hoisted: got %d blocks, want 0", len(doc.Blocks))
	}
}

func TestConvert_Whitespace(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   []string
	}{
		{name: "run between inline elements", markup: "<p>a<span>     </span>b</p>", want: []string{"a b"}},
		{name: "newline run", markup: "<p>a<span>\n\n\n</span>b</p>", want: []string{"a b"}},
		{name: "inner newline", markup: "<p>a\nb</p>", want: []string{"a b"}},
		{name: "leading newline in inline element", markup: "<p>foo<span>\nbar</span></p>", want: []string{"foo bar"}},
		{name: "leading newline of block", markup: "<p>\nab</p>", want: []string{"ab"}},
		{name: "break", markup: "<p>a<br>b</p>", want: []string{"a\nb"}},
		{name: "preformatted", markup: "<pre>a\n  b</pre>", want: []string{"a\n  b"}},
		{name: "surrounding", markup: "<p>  a  </p>", want: []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := texts(convert(t, tt.markup)); !slices.Equal(got, tt.want) {
				t.Errorf("texts = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConvert_EntitySurvivesTrim(t *testing.T) {
	doc := convert(t, `<p>  <img src="a.png">  </p>`)
	if got := texts(doc); !slices.Equal(got, []string{imageGlyph}) {
		t.Fatalf("texts = %q", got)
	}

	doc = convert(t, `<p><a href="http://x.com"> </a></p>`)
	if got := texts(doc); !slices.Equal(got, []string{" "}) {
		t.Fatalf("texts = %q", got)
	}
	if !doc.Blocks[0].Chars[0].HasEntity() {
		t.Error("link whitespace lost its entity")
	}
}

func TestConvert_StyleScoping(t *testing.T) {
	doc := convert(t, `<p><b>a<i>b</i></b>c</p>`)
	want := []string{"BOLD", "BOLD|ITALIC", ""}
	if got := styles(doc.Blocks[0]); !slices.Equal(got, want) {
		t.Errorf("styles = %q, want %q", got, want)
	}

	// style crosses nested block but does not leak after its subtree
	doc = convert(t, `<b>x<p>y</p></b>z`)
	if got := texts(doc); !slices.Equal(got, []string{"x", "y", "z"}) {
		t.Fatalf("texts = %q", got)
	}
	for i, want := range []string{"BOLD", "BOLD", ""} {
		if got := doc.Blocks[i].Chars[0].Style.String(); got != want {
			t.Errorf("block %d style = %q, want %q", i, got, want)
		}
	}
}

func TestConvert_InlineStyleTags(t *testing.T) {
	doc := convert(t, `<p><strong>a</strong><em>b</em><u>c</u><s>d</s><del>e</del><code>f</code><mark>g</mark></p>`)
	want := []string{"BOLD", "ITALIC", "UNDERLINE", "STRIKETHROUGH", "STRIKETHROUGH", "CODE", "HIGHLIGHT"}
	if got := styles(doc.Blocks[0]); !slices.Equal(got, want) {
		t.Errorf("styles = %q, want %q", got, want)
	}
}

func TestConvert_StyleFromAttributes(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   []string
	}{
		{
			name:   "applies to following siblings",
			markup: `<p><span style="font-weight: bold">a</span>b</p>`,
			want:   []string{"", "BOLD"},
		},
		{
			name:   "removes inherited style",
			markup: `<p><b><span style="font-weight:normal">a</span>b</b>c</p>`,
			want:   []string{"BOLD", "", ""},
		},
		{
			name:   "italic and decorations",
			markup: `<p><span style="font-style:italic;text-decoration:underline line-through">a</span>b</p>`,
			want:   []string{"", "ITALIC|STRIKETHROUGH|UNDERLINE"},
		},
		{
			name:   "decoration none",
			markup: `<p><u><s><span style="text-decoration:none">a</span>b</s></u></p>`,
			want:   []string{"STRIKETHROUGH|UNDERLINE", ""},
		},
		{
			name:   "numeric weight",
			markup: `<p><span style="font-weight:700">a</span>b</p>`,
			want:   []string{"", "BOLD"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := convert(t, tt.markup)
			if got := styles(doc.Blocks[0]); !slices.Equal(got, tt.want) {
				t.Errorf("styles = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConvert_NestedListsTree(t *testing.T) {
	doc := convert(t, `<ul><li>A<ul><li>B</li></ul></li></ul>`, WithTreeHierarchy(true))

	type want struct {
		key, typ, text string
		depth          int
		links          draft.TreeLinks
	}
	expected := []want{
		{key: "k1", typ: draft.UnorderedListItem, text: "", links: draft.TreeLinks{Children: []string{"k2", "k3"}}},
		{key: "k2", typ: draft.Unstyled, text: "A", links: draft.TreeLinks{Parent: "k1", NextSibling: "k3", Children: []string{}}},
		{key: "k3", typ: draft.UnorderedListItem, text: "B", links: draft.TreeLinks{Parent: "k1", PrevSibling: "k2", Children: []string{}}},
	}

	if len(doc.Blocks) != len(expected) {
		t.Fatalf("got %d blocks, want %d", len(doc.Blocks), len(expected))
	}
	for i, w := range expected {
		b := doc.Blocks[i]
		if b.Key != w.key || b.Type != w.typ || b.Text != w.text || b.Depth != w.depth {
			t.Errorf("block %d = {%s %s %q %d}, want {%s %s %q %d}", i, b.Key, b.Type, b.Text, b.Depth, w.key, w.typ, w.text, w.depth)
		}
		if !b.IsNode() {
			t.Fatalf("block %d has no tree links", i)
		}
		l := b.Links
		if l.Parent != w.links.Parent || l.PrevSibling != w.links.PrevSibling || l.NextSibling != w.links.NextSibling || !slices.Equal(l.Children, w.links.Children) {
			t.Errorf("block %d links = %+v, want %+v", i, *l, w.links)
		}
	}
}

func TestConvert_NestedListsFlat(t *testing.T) {
	markup := `<ul><li>A<ul><li>B</li></ul></li></ul>`
	doc := convert(t, markup)

	if len(doc.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(doc.Blocks))
	}
	b := doc.Blocks[0]
	if b.Type != draft.UnorderedListItem || b.Text != "AB\n" || b.IsNode() {
		t.Errorf("block = %s %q", b.Type, b.Text)
	}

	// every leaf text of hierarchical output appears in flat output in order
	tree := convert(t, markup, WithTreeHierarchy(true))
	flat := b.Text
	for _, tb := range tree.Blocks {
		i := strings.Index(flat, tb.Text)
		if i < 0 {
			t.Fatalf("text %q missing from flat output %q", tb.Text, b.Text)
		}
		flat = flat[i+len(tb.Text):]
	}
}

func TestConvert_FlatSeparators(t *testing.T) {
	doc := convert(t, `<blockquote><h1>T</h1><p>x</p><h2>y</h2></blockquote>`)

	if len(doc.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(doc.Blocks))
	}
	b := doc.Blocks[0]
	if b.Type != draft.Blockquote || b.Text != "T\nxy\n" {
		t.Errorf("block = %s %q", b.Type, b.Text)
	}
}

func TestConvert_SeparatorReusesLastMetadata(t *testing.T) {
	doc := convert(t, `<blockquote><h1><b>T</b></h1></blockquote>`)
	b := doc.Blocks[0]
	if b.Text != "T\n" {
		t.Fatalf("text = %q", b.Text)
	}
	if got := styles(b); !slices.Equal(got, []string{"BOLD", "BOLD"}) {
		t.Errorf("styles = %q", got)
	}
}

func TestConvert_DepthClass(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		tree   bool
		want   []int
	}{
		{
			name:   "tree reads class",
			markup: `<ul><li class="public-DraftStyleDefault-depth2">A</li><li>B</li></ul>`,
			tree:   true,
			want:   []int{2, 0},
		},
		{
			name:   "flat ignores class",
			markup: `<ul><li class="public-DraftStyleDefault-depth3">A</li><li>B</li></ul>`,
			want:   []int{0, 0},
		},
		{
			name:   "tree nesting without class",
			markup: `<ul><li>A<ul><li>B</li></ul></li></ul>`,
			tree:   true,
			want:   []int{0, 0, 0},
		},
		{
			name:   "tree nested class",
			markup: `<ul><li>A<ul><li class="x public-DraftStyleDefault-depth1">B</li></ul></li></ul>`,
			tree:   true,
			want:   []int{0, 0, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := convert(t, tt.markup, WithTreeHierarchy(tt.tree))
			var got []int
			for _, b := range doc.Blocks {
				got = append(got, b.Depth)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("depths = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConvert_NonListBlocksHaveNoDepth(t *testing.T) {
	doc := convert(t, `<ul><li>a<ul><li><p>b</p></li></ul></li></ul>`, WithTreeHierarchy(true))
	for _, b := range doc.Blocks {
		if !draft.IsListItem(b.Type) && b.Depth != 0 {
			t.Errorf("block %s %q has depth %d", b.Type, b.Text, b.Depth)
		}
	}
}

func TestConvert_Links(t *testing.T) {
	base, _ := url.Parse("http://Example.com/dir/")

	tests := []struct {
		name    string
		markup  string
		opts    []Option
		wantURL string
	}{
		{name: "mailto", markup: `<a href="mailto:a@b.c">m</a>`, wantURL: "mailto:a@b.c"},
		{name: "https host case", markup: `<a href="HTTPS://X.COM/Path">m</a>`, wantURL: "https://x.com/Path"},
		{name: "javascript", markup: `<a href="javascript:alert(1)">m</a>`},
		{name: "ftp", markup: `<a href="ftp://x.com">m</a>`},
		{name: "empty href", markup: `<a href="">m</a>`},
		{name: "relative without base", markup: `<a href="/p">m</a>`},
		{name: "relative with base", markup: `<a href="../p">m</a>`, opts: []Option{WithBaseURL(base)}, wantURL: "http://example.com/p"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := convert(t, tt.markup, tt.opts...)
			if got := texts(doc); !slices.Equal(got, []string{"m"}) {
				t.Fatalf("texts = %q", got)
			}
			if tt.wantURL == "" {
				if doc.Entities.Len() != 0 || doc.Blocks[0].Chars[0].HasEntity() {
					t.Error("invalid link produced entity")
				}
				return
			}
			e, ok := doc.Entities.Get(doc.Blocks[0].Chars[0].Entity)
			if !ok || e.Data["url"] != tt.wantURL {
				t.Errorf("entity = %+v, want url %q", e, tt.wantURL)
			}
		})
	}
}

func TestConvert_InvalidImage(t *testing.T) {
	doc := convert(t, `<p>a<img alt="x">b</p>`)
	if got := texts(doc); !slices.Equal(got, []string{"ab"}) {
		t.Errorf("texts = %q", got)
	}
	if doc.Entities.Len() != 0 {
		t.Error("image without source produced entity")
	}
}

func TestConvert_ImageInsideLink(t *testing.T) {
	doc := convert(t, `<p><a href="http://x.com"><img src="a.png">go</a></p>`)
	b := doc.Blocks[0]
	if b.Text != imageGlyph+"go" {
		t.Fatalf("text = %q", b.Text)
	}
	// placeholder carries image entity only, active entity is cleared after it
	img := b.Chars[0].Entity
	e, _ := doc.Entities.Get(img)
	if e == nil || e.Type != draft.EntityImage {
		t.Fatalf("entity = %+v", e)
	}
	if b.Chars[1].HasEntity() || b.Chars[2].HasEntity() {
		t.Errorf("entities = %q %q", b.Chars[1].Entity, b.Chars[2].Entity)
	}
	if doc.Entities.Len() != 2 {
		t.Errorf("entities = %d, want 2", doc.Entities.Len())
	}
}

func TestConvert_SupplierFailure(t *testing.T) {
	failing := func(string) (*dom.Node, error) { return nil, errors.New("disallowed") }

	doc, err := Convert(`<p>x</p>`, WithSupplier(failing))
	if doc != nil || !errors.Is(err, ErrNoDocument) {
		t.Errorf("Convert() = %v, %v, want nil, %v", doc, err, ErrNoDocument)
	}

	doc, err = Convert(`<frameset></frameset>`)
	if doc != nil || !errors.Is(err, ErrNoDocument) || !errors.Is(err, dom.ErrNoBody) {
		t.Errorf("Convert(frameset) = %v, %v", doc, err)
	}

	empty := func(string) (*dom.Node, error) { return nil, nil }
	if _, err := Convert(`x`, WithSupplier(empty)); !errors.Is(err, ErrNoDocument) {
		t.Errorf("Convert() error = %v, want %v", err, ErrNoDocument)
	}
}

func TestConvert_PreNormalization(t *testing.T) {
	doc := convert(t, "\r\n <p>a&nbsp;b&#8203;c&#13;d</p> ")
	if got := texts(doc); !slices.Equal(got, []string{"a bcd"}) {
		t.Errorf("texts = %q", got)
	}
}

func TestConvert_XHTMLSupplier(t *testing.T) {
	doc := convert(t, `<div><h2>T</h2><p>x <em>y</em></p></div>`, WithSupplier(dom.ParseXHTML), WithTreeHierarchy(true))
	if got := texts(doc); !slices.Equal(got, []string{"", "T", "x y"}) {
		t.Errorf("texts = %q", got)
	}
}

func TestConvert_CustomRenderMap(t *testing.T) {
	rm := append(blocktype.DefaultRenderMap(), blocktype.Entry{Type: "aside", Element: "aside"})
	doc := convert(t, `<aside>note</aside>`, WithRenderMap(rm))
	if doc.Blocks[0].Type != "aside" {
		t.Errorf("type = %s, want aside", doc.Blocks[0].Type)
	}

	// without disambiguation ambiguous tag falls back to its first candidate
	doc = convert(t, `<ol><li>a</li></ol>`, WithDisambiguator(nil))
	if doc.Blocks[0].Type != draft.UnorderedListItem {
		t.Errorf("type = %s, want %s", doc.Blocks[0].Type, draft.UnorderedListItem)
	}
}

func TestConvert_MetadataLengthInvariant(t *testing.T) {
	inputs := []string{
		`<p>Привет, <b>мир</b> 🙂</p>`,
		`<ul><li>a<ol><li>b<img src="x.png"></li></ol></li></ul><pre> c </pre>`,
		`<blockquote>q<h3>h</h3><a href="http://x.com">l<br>m</a></blockquote>`,
		`text <i>only</i>`,
	}
	for _, in := range inputs {
		for _, tree := range []bool{false, true} {
			doc := convert(t, in, WithTreeHierarchy(tree))
			for _, b := range doc.Blocks {
				if n := utf8.RuneCountInString(b.Text); n != len(b.Chars) {
					t.Errorf("%q (tree=%v): block %q has %d runes and %d metadata", in, tree, b.Text, n, len(b.Chars))
				}
			}
		}
	}
}

func TestBuilder_Chaining(t *testing.T) {
	b := NewBuilder(WithKeys(draft.NewSequentialKeys("k")))

	first, _ := dom.ParseHTML(`<p><a href="http://a.com">a</a></p>`)
	second, _ := dom.ParseHTML(`<p><a href="http://b.com">b</a></p>`)

	doc := b.ConsumeNode(first).ConsumeNode(second).Finalize()
	if got := texts(doc); !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("texts = %q", got)
	}
	if doc.Entities.Len() != 2 {
		t.Fatalf("entities = %d, want 2", doc.Entities.Len())
	}
	if doc.Blocks[0].Chars[0].Entity == doc.Blocks[1].Chars[0].Entity {
		t.Error("entities must have distinct keys")
	}
	if b.Finalize() != doc {
		t.Error("Finalize() result is not cached")
	}

	third, _ := dom.ParseHTML(`<p>c</p>`)
	doc2 := b.ConsumeNode(third).Finalize()
	if doc2 == doc || len(doc2.Blocks) != 3 {
		t.Errorf("ConsumeNode after Finalize: got %d blocks", len(doc2.Blocks))
	}

	b.Reset()
	if doc3 := b.Finalize(); len(doc3.Blocks) != 0 || doc3.Entities.Len() != 2 {
		t.Errorf("after Reset: %d blocks, %d entities", len(doc3.Blocks), doc3.Entities.Len())
	}
}

func TestBuilder_TrailingText(t *testing.T) {
	b := NewBuilder(WithKeys(draft.NewSequentialKeys("k")))
	doc := b.ConsumeNode(dom.Document(
		dom.Text("lead "),
		dom.Element("h1", nil, dom.Text("T")),
		dom.Element("span", nil, dom.Text(" tail ")),
	)).Finalize()

	if got := texts(doc); !slices.Equal(got, []string{"lead", "T", "tail"}) {
		t.Fatalf("texts = %q", got)
	}
	if got := doc.Blocks[1].Type; got != draft.HeaderOne {
		t.Errorf("type = %s", got)
	}
}
