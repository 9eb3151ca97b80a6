package prng

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
)

var ErrUnknownSource = errors.New("prng: unknown source")

// Source produces uniform values in [0, 1) and can be split into
// independent children. Implementations must be deterministic: the same
// seed and the same sequence of calls always give the same values.
type Source interface {
	Name() string
	Split(n int) []Source
	Uniform(n int) []float64
}

// Threefry is the default Source, backed by a Key.
type Threefry struct {
	Key Key
}

func NewThreefry(seed int64) *Threefry {
	return &Threefry{Key: NewKey(seed)}
}

func (t *Threefry) Name() string { return "threefry" }

func (t *Threefry) Split(n int) []Source {
	keys := t.Key.Split(n)
	out := make([]Source, len(keys))
	for i, k := range keys {
		out[i] = &Threefry{Key: k}
	}
	return out
}

func (t *Threefry) Uniform(n int) []float64 {
	return t.Key.Uniform(n)
}

// PCG adapts math/rand/v2's PCG generator. Uniform draws are stateless with
// respect to the receiver: every call restarts the stream from the seed pair,
// which keeps PCG sources value-like in the same way as Threefry keys.
type PCG struct {
	seed1, seed2 uint64
}

func NewPCG(seed int64) *PCG {
	return &PCG{seed1: uint64(seed), seed2: 0x9e3779b97f4a7c15}
}

func (p *PCG) Name() string { return "pcg" }

func (p *PCG) Split(n int) []Source {
	if n <= 0 {
		return nil
	}
	// children come from a stream keyed on the parent with a distinct
	// increment so they never replay the parent's own draws
	r := rand.New(rand.NewPCG(p.seed1, p.seed2^0xda3e39cb94b95bdb))
	out := make([]Source, n)
	for i := range out {
		out[i] = &PCG{seed1: r.Uint64(), seed2: r.Uint64()}
	}
	return out
}

func (p *PCG) Uniform(n int) []float64 {
	if n <= 0 {
		return nil
	}
	r := rand.New(rand.NewPCG(p.seed1, p.seed2))
	out := make([]float64, n)
	for i := range out {
		out[i] = r.Float64()
	}
	return out
}

var constructors = map[string]func(seed int64) Source{
	"threefry": func(seed int64) Source { return NewThreefry(seed) },
	"pcg":      func(seed int64) Source { return NewPCG(seed) },
}

// Lookup builds the named source seeded with seed.
func Lookup(name string, seed int64) (Source, error) {
	fn, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownSource, name, Names())
	}
	return fn(seed), nil
}

// Names lists registered sources in sorted order.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
