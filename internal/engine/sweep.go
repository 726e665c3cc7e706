package engine

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"grovesim/internal/types"
)

// MaxSweepScenarios is the maximum number of scenarios accepted per sweep.
const MaxSweepScenarios = 50

// SweepConcurrencyLimit bounds the number of scenarios computed in parallel.
// The engine is pure, so scenarios need no coordination beyond collecting
// results.
const SweepConcurrencyLimit = 8

// SweepItem is the outcome of one scenario in a sweep. Exactly one of
// Result or Error is set.
type SweepItem struct {
	Index  int                     `json:"index"`
	Input  types.SimulationInput   `json:"input"`
	Result *types.SimulationResult `json:"result,omitempty"`
	Error  *types.AppError         `json:"error,omitempty"`
}

// SweepResult aggregates a batch of scenarios. Failed counts items whose
// input was rejected; their Error field carries the validation failure.
type SweepResult struct {
	Items     []SweepItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// Sweep computes a batch of scenarios concurrently. Invalid inputs are
// isolated: each failed item reports its index and validation error while
// the remaining scenarios still compute. The only terminal errors are an
// oversized batch and context cancellation.
func Sweep(ctx context.Context, inputs []types.SimulationInput) (*SweepResult, error) {
	if len(inputs) > MaxSweepScenarios {
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeValidationBatchSize,
			fmt.Sprintf("sweep exceeds maximum of %d scenarios", MaxSweepScenarios),
			nil,
			map[string]any{"max": MaxSweepScenarios, "got": len(inputs)},
		)
	}

	items := make([]SweepItem, len(inputs))

	var mu sync.Mutex
	succeeded, failed := 0, 0

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(SweepConcurrencyLimit)

	for i, in := range inputs {
		i, in := i, in

		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			item := SweepItem{Index: i, Input: in}
			if appErr := types.ValidateSimulationInput(in); appErr != nil {
				item.Error = appErr
			} else {
				res := Compute(in)
				item.Result = &res
			}

			mu.Lock()
			items[i] = item
			if item.Error != nil {
				failed++
			} else {
				succeeded++
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &SweepResult{Items: items, Succeeded: succeeded, Failed: failed}, nil
}
