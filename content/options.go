package content

import (
	"net/url"

	"go.uber.org/zap"

	"hbc/blocktype"
	"hbc/dom"
	"hbc/draft"
)

type settings struct {
	supplier     dom.Supplier
	renderMap    blocktype.RenderMap
	disambiguate blocktype.Disambiguator
	registry     draft.Registry
	keys         draft.KeyGenerator
	tree         bool
	hoist        bool
	baseURL      *url.URL
	log          *zap.Logger
}

// Option configures conversion.
type Option func(*settings)

func newSettings(opts []Option) *settings {
	s := &settings{
		supplier:     dom.ParseHTML,
		renderMap:    blocktype.DefaultRenderMap(),
		disambiguate: blocktype.DefaultDisambiguate,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = draft.NewEntityMap()
	}
	if s.keys == nil {
		s.keys = draft.NewRandomKeys()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// WithSupplier sets function turning markup into node tree. Default is
// dom.ParseHTML.
func WithSupplier(supplier dom.Supplier) Option {
	return func(s *settings) {
		if supplier != nil {
			s.supplier = supplier
		}
	}
}

// WithRenderMap replaces default block render map.
func WithRenderMap(rm blocktype.RenderMap) Option {
	return func(s *settings) {
		if len(rm) > 0 {
			s.renderMap = rm
		}
	}
}

func WithDisambiguator(d blocktype.Disambiguator) Option {
	return func(s *settings) {
		s.disambiguate = d
	}
}

// WithRegistry makes converter create entities in existing registry.
func WithRegistry(r draft.Registry) Option {
	return func(s *settings) {
		s.registry = r
	}
}

func WithKeys(g draft.KeyGenerator) Option {
	return func(s *settings) {
		s.keys = g
	}
}

// WithTreeHierarchy selects hierarchical output: nested blocks are kept as
// separate nodes linked to their parents and siblings.
func WithTreeHierarchy(on bool) Option {
	return func(s *settings) {
		s.tree = on
	}
}

// WithHoistContainers replaces empty top level unstyled blocks by their
// nested blocks before flattening. Ignored in hierarchical mode.
func WithHoistContainers(on bool) Option {
	return func(s *settings) {
		s.hoist = on
	}
}

// WithBaseURL sets location relative link references are resolved against.
func WithBaseURL(u *url.URL) Option {
	return func(s *settings) {
		s.baseURL = u
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(s *settings) {
		s.log = log
	}
}
