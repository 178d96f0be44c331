// Package synth produces the synthetic values substituted into request templates.
//
// A Generator is an explicitly owned random source; seed it for reproducible runs.
// String fields are filled with a person name when the field name contains "name"
// and with a postal address otherwise. That heuristic is intentionally simple and is
// not meant to classify arbitrary field semantics.
package synth

import (
	"strings"
	"sync"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/torosent/trafficsim/internal/catalog"
)

const (
	MinInt = 1
	MaxInt = 100

	// Floats are fixed-length two-digit numbers.
	MinFloat = 10
	MaxFloat = 99
)

// Generator produces synthetic field values. It is safe for concurrent use.
type Generator struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
}

// New returns a Generator. A zero seed draws a random seed.
func New(seed uint64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Value returns a synthetic value of the same kind as example.
// ok is false for unsupported kinds; callers omit such fields.
func (g *Generator) Value(field string, example catalog.FieldValue) (catalog.FieldValue, bool) {
	switch example.Kind() {
	case catalog.KindString:
		if strings.Contains(strings.ToLower(field), "name") {
			return catalog.StringValue(g.Name()), true
		}
		return catalog.StringValue(g.Address()), true
	case catalog.KindInteger:
		return catalog.IntegerValue(int64(g.Int(MinInt, MaxInt))), true
	case catalog.KindFloat:
		return catalog.FloatValue(float64(g.Int(MinFloat, MaxFloat))), true
	default:
		return catalog.FieldValue{}, false
	}
}

// Fields returns a fresh synthetic set for example. Unsupported fields are dropped,
// so the result may be empty even when example is not.
func (g *Generator) Fields(example catalog.Fields) catalog.Fields {
	if len(example) == 0 {
		return nil
	}
	out := make(catalog.Fields, len(example))
	// Draw in key order so a seeded generator is reproducible.
	for _, key := range example.Keys() {
		if v, ok := g.Value(key, example[key]); ok {
			out[key] = v
		}
	}
	return out
}

// Int returns a uniformly distributed integer in [min, max].
func (g *Generator) Int(min, max int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.faker.Number(min, max)
}

func (g *Generator) Name() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.faker.Name()
}

func (g *Generator) Address() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.faker.Address().Address
}
