package draft

// CharacterMetadata describes a single character of block text: active
// inline styles and the entity (if any) the character belongs to. Empty
// Entity means no entity.
type CharacterMetadata struct {
	Style  InlineStyle
	Entity string
}

// NewCharacterMetadata returns metadata for given style and entity key.
func NewCharacterMetadata(style InlineStyle, entity string) CharacterMetadata {
	return CharacterMetadata{Style: style, Entity: entity}
}

// HasEntity reports whether character references an entity.
func (c CharacterMetadata) HasEntity() bool {
	return c.Entity != ""
}

func (c CharacterMetadata) Equal(o CharacterMetadata) bool {
	return c.Entity == o.Entity && c.Style.Equal(o.Style)
}

// Repeat returns n copies of metadata.
func Repeat(c CharacterMetadata, n int) []CharacterMetadata {
	if n <= 0 {
		return nil
	}
	out := make([]CharacterMetadata, n)
	for i := range out {
		out[i] = c
	}
	return out
}
