package content

import (
	"errors"
	"fmt"

	"hbc/dom"
	"hbc/draft"
)

// ErrNoDocument is returned when markup could not be turned into node tree.
var ErrNoDocument = errors.New("no document")

// Convert turns markup into document. Markup is pre-normalized and passed
// to the supplier; supplier failure produces no document and an error
// wrapping ErrNoDocument.
func Convert(markup string, opts ...Option) (*draft.Document, error) {
	b := NewBuilder(opts...)

	root, err := b.settings.supplier(dom.Normalize(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoDocument, err)
	}
	if root == nil {
		return nil, ErrNoDocument
	}
	return b.ConsumeNode(root).Finalize(), nil
}
