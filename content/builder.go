// Package content converts markup node trees into content blocks and
// entities.
package content

import (
	"go.uber.org/zap"

	"hbc/blocktype"
	"hbc/dom"
	"hbc/draft"
)

// blockConfig is intermediate block description produced by the walk.
// Tree links are resolved later by materializer.
type blockConfig struct {
	key      string
	typ      string
	text     string
	chars    []draft.CharacterMetadata
	depth    int
	children []*blockConfig
}

// Builder walks node trees and accumulates block descriptions. Several
// nodes could be consumed into the same builder, they share entity
// registry and produce single document. NOTE: not safe for concurrent use.
type Builder struct {
	types    blocktype.Map
	settings *settings
	log      *zap.Logger

	acc     accumulator
	entity  string
	depth   int
	wrapper string
	configs []*blockConfig

	result *draft.Document
}

// NewBuilder returns builder ready to consume nodes.
func NewBuilder(opts ...Option) *Builder {
	s := newSettings(opts)
	b := &Builder{
		types:    blocktype.Build(s.renderMap),
		settings: s,
		log:      s.log.Named("builder"),
	}
	b.Reset()
	return b
}

// Reset clears accumulated state. Entity registry is not touched: entities
// created so far keep their keys.
func (b *Builder) Reset() {
	b.acc.reset()
	b.entity = ""
	b.depth = 0
	b.wrapper = "ul"
	b.configs = nil
	b.result = nil
}

// ConsumeNode walks node and appends produced blocks. Text left over after
// the walk becomes a trailing block.
func (b *Builder) ConsumeNode(n *dom.Node) *Builder {
	if n == nil {
		return b
	}
	b.result = nil
	b.configs = append(b.configs, b.walk([]*dom.Node{n}, draft.InlineStyle{})...)
	if c := b.flush(); c != nil {
		b.configs = append(b.configs, c)
	}
	return b
}

// Finalize materializes consumed blocks. Result is cached until next
// ConsumeNode or Reset.
func (b *Builder) Finalize() *draft.Document {
	if b.result != nil {
		return b.result
	}
	var blocks []*draft.ContentBlock
	if b.settings.tree {
		blocks = materializeTree(b.configs)
	} else {
		configs := b.configs
		if b.settings.hoist {
			configs = hoistContainers(configs)
		}
		blocks = materializeFlat(configs)
	}
	b.result = &draft.Document{Blocks: blocks, Entities: b.settings.registry}
	return b.result
}

// walk processes sibling nodes. Style is the set inherited from ancestors;
// it may be changed for following siblings by presentational attributes of
// preceding ones.
func (b *Builder) walk(nodes []*dom.Node, style draft.InlineStyle) []*blockConfig {
	var configs []*blockConfig
	for _, n := range nodes {
		var produced []*blockConfig
		produced, style = b.consume(n, style)
		configs = append(configs, produced...)
	}
	return configs
}

func (b *Builder) consume(n *dom.Node, style draft.InlineStyle) ([]*blockConfig, draft.InlineStyle) {
	switch n.Kind {
	case dom.TextNode:
		b.appendText(normalizeText(n.Text, b.wrapper == "pre"), style)
		return nil, style
	case dom.DocumentNode:
		return b.container(n, style), style
	case dom.ElementNode:
	default:
		b.log.Debug("Skipping unknown node", zap.Stringer("kind", n.Kind))
		return nil, style
	}

	if n.Tag == "body" || isListContainer(n.Tag) {
		return b.container(n, style), style
	}
	if typ, ok := b.types.Resolve(n.Tag, b.wrapper, b.settings.disambiguate); ok {
		return b.block(n, typ, style), style
	}

	if n.Tag == "br" {
		b.appendText("\n", style)
		return nil, style
	}
	if data, ok := imageData(n); ok {
		b.entity = b.settings.registry.Create(draft.EntityImage, draft.Mutable, data)
		b.appendText(imageGlyph, style)
		b.entity = ""
		return nil, style
	}
	if data, ok := linkData(n, b.settings.baseURL); ok {
		b.entity = b.settings.registry.Create(draft.EntityLink, draft.Mutable, data)
		configs := b.walk(n.Children, style)
		b.entity = ""
		return configs, style
	}
	if n.Tag == "a" {
		b.log.Debug("Link ignored", zap.String("href", n.AttrOr("href", "")))
	}

	if name, ok := tagStyles[n.Tag]; ok {
		return b.walk(n.Children, style.Add(name)), style
	}

	configs := b.walk(n.Children, style)
	return configs, styleFromAttributes(n, style)
}

// container handles structurally transparent nodes: document root, body and
// list containers.
func (b *Builder) container(n *dom.Node, style draft.InlineStyle) []*blockConfig {
	var configs []*blockConfig
	if c := b.flush(); c != nil {
		configs = append(configs, c)
	}

	savedDepth, savedWrapper := b.depth, b.wrapper
	if isListContainer(n.Tag) {
		b.wrapper = n.Tag
	}
	configs = append(configs, b.walk(n.Children, style)...)
	b.depth, b.wrapper = savedDepth, savedWrapper
	return configs
}

// block handles block level elements.
func (b *Builder) block(n *dom.Node, typ string, style draft.InlineStyle) []*blockConfig {
	var configs []*blockConfig
	if c := b.flush(); c != nil {
		configs = append(configs, c)
	}

	savedDepth, savedWrapper := b.depth, b.wrapper
	if n.Tag == "pre" {
		b.wrapper = "pre"
	}
	if draft.IsListItem(typ) && b.settings.tree {
		b.depth = listItemDepth(n)
	}

	key := b.settings.keys.Generate()
	children := b.walk(n.Children, style)
	b.acc.trim()
	c := b.makeConfig(key, typ)
	c.children = children
	configs = append(configs, c)

	b.depth, b.wrapper = savedDepth, savedWrapper
	return configs
}

// flush turns pending text into unstyled block, nil when there is nothing
// left after trimming.
func (b *Builder) flush() *blockConfig {
	b.acc.trim()
	if b.acc.empty() {
		return nil
	}
	return b.makeConfig(b.settings.keys.Generate(), draft.Unstyled)
}

func (b *Builder) makeConfig(key, typ string) *blockConfig {
	c := &blockConfig{key: key, typ: typ}
	if draft.IsListItem(typ) {
		c.depth = b.depth
	}
	c.text, c.chars = b.acc.take()
	return c
}

func (b *Builder) appendText(s string, style draft.InlineStyle) {
	if s == "" {
		return
	}
	b.acc.append(s, draft.NewCharacterMetadata(style, b.entity))
}
