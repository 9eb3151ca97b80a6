package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/ssmsim/internal/metrics"
	"github.com/san-kum/ssmsim/internal/prng"
	"github.com/san-kum/ssmsim/internal/sim"
)

// InputFunc builds an input sequence of the given length.
type InputFunc func(src prng.Source, steps int, amplitude float64) []float64

type Registry struct {
	inputs map[string]InputFunc
}

func NewRegistry() *Registry {
	r := &Registry{
		inputs: make(map[string]InputFunc),
	}

	// uniform draws from the source it is given, not from a split child
	r.inputs["uniform"] = func(src prng.Source, steps int, amplitude float64) []float64 {
		u := src.Uniform(steps)
		if amplitude != 1 {
			for i := range u {
				u[i] *= amplitude
			}
		}
		return u
	}
	r.inputs["step"] = func(_ prng.Source, steps int, amplitude float64) []float64 {
		u := make([]float64, steps)
		for i := range u {
			u[i] = amplitude
		}
		return u
	}
	// u[0] never reaches the state, so the impulse lands on t=1
	r.inputs["impulse"] = func(_ prng.Source, steps int, amplitude float64) []float64 {
		u := make([]float64, steps)
		if steps > 1 {
			u[1] = amplitude
		}
		return u
	}
	r.inputs["zero"] = func(_ prng.Source, steps int, _ float64) []float64 {
		return make([]float64, steps)
	}

	return r
}

func (r *Registry) GetSource(name string, seed int64) (prng.Source, error) {
	return prng.Lookup(name, seed)
}

func (r *Registry) GetInput(name string) (InputFunc, error) {
	fn, ok := r.inputs[name]
	if !ok {
		return nil, fmt.Errorf("unknown input: %s (available: %v)", name, r.ListInputs())
	}
	return fn, nil
}

func (r *Registry) ListInputs() []string {
	names := make([]string, 0, len(r.inputs))
	for name := range r.inputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListSources() []string {
	return prng.Names()
}

func (r *Registry) DefaultMetrics(threshold float64) []sim.Metric {
	return metrics.Default(threshold)
}
