package draft

import (
	"strconv"

	"github.com/google/uuid"
)

// KeyGenerator produces unique block keys.
type KeyGenerator interface {
	Generate() string
}

// RandomKeys generates short random keys (up to 5 base32 digits taken from
// random UUID bytes) and guarantees no key repeats during generator lifetime.
type RandomKeys struct {
	seen map[string]struct{}
}

func NewRandomKeys() *RandomKeys {
	return &RandomKeys{seen: make(map[string]struct{})}
}

func (g *RandomKeys) Generate() string {
	for {
		u := uuid.New()
		v := uint64(u[0])<<16 | uint64(u[1])<<8 | uint64(u[2])
		key := strconv.FormatUint(v, 32)
		if _, exists := g.seen[key]; exists {
			continue
		}
		g.seen[key] = struct{}{}
		return key
	}
}

// SequentialKeys produces predictable keys: prefix followed by a counter.
// Useful when output must be stable between runs.
type SequentialKeys struct {
	prefix string
	next   int
}

func NewSequentialKeys(prefix string) *SequentialKeys {
	return &SequentialKeys{prefix: prefix}
}

func (g *SequentialKeys) Generate() string {
	g.next++
	return g.prefix + strconv.Itoa(g.next)
}
