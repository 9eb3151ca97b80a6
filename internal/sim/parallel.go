package sim

import (
	"context"
	"sync"

	"github.com/san-kum/ssmsim/internal/ssm"
)

// Ensemble runs one model over several independent input sequences, one
// goroutine per sequence. Each run still steps sequentially in time.
type Ensemble struct {
	model      *ssm.Model
	cfg        Config
	newMetrics func() []Metric
}

// NewEnsemble builds an ensemble. newMetrics, if non-nil, is called once per
// run so that runs never share metric state.
func NewEnsemble(model *ssm.Model, cfg Config, newMetrics func() []Metric) *Ensemble {
	return &Ensemble{model: model, cfg: cfg, newMetrics: newMetrics}
}

func (e *Ensemble) Run(ctx context.Context, inputs [][]float64) ([]*Result, error) {
	results := make([]*Result, len(inputs))
	errs := make([]error, len(inputs))

	var wg sync.WaitGroup
	for i := range inputs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			s := New(e.model)
			s.SetConfig(e.cfg)
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					s.AddMetric(m)
				}
			}

			results[idx], errs[idx] = s.Run(ctx, inputs[idx])
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
