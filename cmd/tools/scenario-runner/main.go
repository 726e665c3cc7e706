// Package main implements the scenario-runner CLI tool for sweeping the
// water-balance model across a grid of management scenarios offline,
// without a running API server.
//
// It enumerates every combination of rainfall, cover fraction, mowing
// timing, and climate scenario at the requested step sizes, runs the
// sweep in batches, and writes the results as zstd-compressed JSON.
//
// Usage:
//
//	go run ./cmd/tools/scenario-runner --out=grid.json.zst
//	go run ./cmd/tools/scenario-runner --rainfall-step=50 --cover-step=5
//	go run ./cmd/tools/scenario-runner --out=- | zstd -d
//
// The tool is intended for generating calibration datasets and for
// eyeballing how yield and erosion respond across the whole input domain.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/klauspost/compress/zstd"

	"grovesim/internal/engine"
	"grovesim/internal/types"
)

// gridExport is the serialized output document.
type gridExport struct {
	GeneratedAt  time.Time    `json:"generated_at"`
	RainfallStep float64      `json:"rainfall_step_mm"`
	CoverStep    float64      `json:"cover_step_pct"`
	Scenarios    int          `json:"scenarios"`
	Results      []gridResult `json:"results"`
}

// gridResult pairs one scenario with its computed outcome.
type gridResult struct {
	Input  types.SimulationInput  `json:"input"`
	Result types.SimulationResult `json:"result"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	outFlag := flag.String("out", "grid.json.zst", "Output path for zstd-compressed JSON ('-' for stdout)")
	rainfallStepFlag := flag.Float64("rainfall-step", 100, "Rainfall grid step in mm")
	coverStepFlag := flag.Float64("cover-step", 10, "Cover fraction grid step in percent")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "scenario-runner sweeps the water-balance model across the full input grid.\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *rainfallStepFlag <= 0 {
		return fmt.Errorf("rainfall-step must be positive, got %v", *rainfallStepFlag)
	}
	if *coverStepFlag <= 0 {
		return fmt.Errorf("cover-step must be positive, got %v", *coverStepFlag)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	inputs := buildGrid(*rainfallStepFlag, *coverStepFlag)
	logger.Info("sweeping scenario grid",
		"scenarios", len(inputs),
		"rainfall_step", *rainfallStepFlag,
		"cover_step", *coverStepFlag,
	)

	export := gridExport{
		GeneratedAt:  time.Now().UTC(),
		RainfallStep: *rainfallStepFlag,
		CoverStep:    *coverStepFlag,
		Scenarios:    len(inputs),
	}

	ctx := context.Background()
	for start := 0; start < len(inputs); start += engine.MaxSweepScenarios {
		end := start + engine.MaxSweepScenarios
		if end > len(inputs) {
			end = len(inputs)
		}

		sweep, err := engine.Sweep(ctx, inputs[start:end])
		if err != nil {
			return fmt.Errorf("sweeping scenarios %d-%d: %w", start, end, err)
		}
		for _, item := range sweep.Items {
			if item.Error != nil {
				// The grid is built from the validated domain, so this
				// indicates a bug rather than bad input.
				return fmt.Errorf("scenario %d rejected: %s", start+item.Index, item.Error.Message)
			}
			export.Results = append(export.Results, gridResult{
				Input:  item.Input,
				Result: *item.Result,
			})
		}
	}

	if err := writeExport(*outFlag, &export); err != nil {
		return err
	}

	logger.Info("sweep complete", "scenarios", len(export.Results), "out", *outFlag)
	return nil
}

// buildGrid enumerates every input combination at the given step sizes.
// Both range endpoints are always included.
func buildGrid(rainfallStep, coverStep float64) []types.SimulationInput {
	var inputs []types.SimulationInput
	for _, rainfall := range steps(types.MinRainfallMM, types.MaxRainfallMM, rainfallStep) {
		for _, cover := range steps(types.MinCoverPct, types.MaxCoverPct, coverStep) {
			for _, mowing := range types.AllMowingTimings {
				for _, climate := range []bool{false, true} {
					inputs = append(inputs, types.SimulationInput{
						RainfallMM:    rainfall,
						CoverPct:      cover,
						Mowing:        mowing,
						ClimateChange: climate,
					})
				}
			}
		}
	}
	return inputs
}

// steps returns min, min+step, ... up to and including max.
func steps(min, max, step float64) []float64 {
	var out []float64
	for v := min; v < max; v += step {
		out = append(out, v)
	}
	return append(out, max)
}

// writeExport serializes the export document as zstd-compressed JSON to the
// given path, or to stdout when path is "-".
func writeExport(path string, export *gridExport) error {
	var w io.Writer
	if path == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("initializing zstd writer: %w", err)
	}

	enc := json.NewEncoder(zw)
	if err := enc.Encode(export); err != nil {
		zw.Close()
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flushing zstd writer: %w", err)
	}
	return nil
}
