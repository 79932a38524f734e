package draft

import (
	"maps"
	"strconv"
)

// EntityType names kind of rich object referenced from text.
type EntityType string

const (
	EntityLink  EntityType = "LINK"
	EntityImage EntityType = "IMAGE"
)

// Mutability tells editor how text referencing an entity may be changed.
type Mutability string

const (
	Mutable   Mutability = "MUTABLE"
	Immutable Mutability = "IMMUTABLE"
	Segmented Mutability = "SEGMENTED"
)

// Entity is a rich object (link, image) attached to a run of characters.
type Entity struct {
	Type       EntityType
	Mutability Mutability
	Data       map[string]string
}

// Registry assigns unique keys to created entities. Keys are never reused
// and entries are never removed.
type Registry interface {
	Create(typ EntityType, mutability Mutability, data map[string]string) string
	Get(key string) (*Entity, bool)
	// Keys returns keys in creation order.
	Keys() []string
	Len() int
}

// EntityMap is default append-only Registry. Keys are decimal numbers
// starting from 1. NOTE: not safe for concurrent use.
type EntityMap struct {
	entities map[string]*Entity
	order    []string
	last     int
}

var _ Registry = (*EntityMap)(nil)

func NewEntityMap() *EntityMap {
	return &EntityMap{entities: make(map[string]*Entity)}
}

// Create registers new entity and returns its key. Data is copied.
func (m *EntityMap) Create(typ EntityType, mutability Mutability, data map[string]string) string {
	m.last++
	key := strconv.Itoa(m.last)
	m.entities[key] = &Entity{
		Type:       typ,
		Mutability: mutability,
		Data:       maps.Clone(data),
	}
	m.order = append(m.order, key)
	return key
}

func (m *EntityMap) Get(key string) (*Entity, bool) {
	e, ok := m.entities[key]
	return e, ok
}

func (m *EntityMap) Keys() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

func (m *EntityMap) Len() int {
	return len(m.order)
}
