package draft

import (
	"slices"
	"sort"
	"strings"

	"github.com/maruel/natural"

	"hbc/utils/debug"
)

// String returns readable dump of the document. It exists solely for
// manual inspection and debug reports.
func (d *Document) String() string {
	if d == nil {
		return "<nil Document>"
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "Blocks: %d", len(d.Blocks))

	depths := make(map[string]int, len(d.Blocks))
	for i, b := range d.Blocks {
		level := 1
		if b.Links != nil && b.Links.Parent != "" {
			level = depths[b.Links.Parent] + 1
		}
		depths[b.Key] = level

		tw.Line(level, "Block[%d] key=%q type=%q depth=%d", i, b.Key, b.Type, b.Depth)
		tw.TextBlock(level+1, "text", b.Text)
		if b.Links != nil {
			tw.Line(level+1, "parent=%q prev=%q next=%q children=[%s]",
				b.Links.Parent, b.Links.PrevSibling, b.Links.NextSibling, strings.Join(b.Links.Children, ","))
		}
		for start, end := range runs(b.Chars, func(c CharacterMetadata) string { return c.Style.String() }) {
			tw.Line(level+1, "style[%d:%d] %s", start, end, b.Chars[start].Style)
		}
		for start, end := range runs(b.Chars, func(c CharacterMetadata) string { return c.Entity }) {
			tw.Line(level+1, "entity[%d:%d] %s", start, end, b.Chars[start].Entity)
		}
	}

	if d.Entities == nil || d.Entities.Len() == 0 {
		return tw.String()
	}

	tw.Line(0, "Entities: %d", d.Entities.Len())
	keys := d.Entities.Keys()
	sort.Sort(natural.StringSlice(keys))
	for _, k := range keys {
		e, _ := d.Entities.Get(k)
		tw.Line(1, "Entity[%s] type=%q mutability=%q", k, e.Type, e.Mutability)
		names := make([]string, 0, len(e.Data))
		for name := range e.Data {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			tw.TextBlock(2, name, e.Data[name])
		}
	}
	return tw.String()
}
