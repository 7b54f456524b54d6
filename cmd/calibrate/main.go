// Package main tunes cell size and conductivity amplitude so the rendered
// demo scene lands on a target exposure, using CMA-ES.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/emfield/config"
	"github.com/pthm-cable/emfield/render"
)

// EvalRecord is one row of calibrate_log.csv.
type EvalRecord struct {
	Eval         int     `csv:"eval"`
	Loss         float64 `csv:"loss"`
	CellSize     float64 `csv:"cell_size"`
	Conductivity float64 `csv:"conductivity_amplitude"`
	PeakP90      float64 `csv:"peak_p90"`
	Saturated    int     `csv:"saturated"`
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxEvals := flag.Int("max-evals", 60, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	target := flag.Float64("target", 0.8, "Target 90th percentile of per-pixel peak channel")
	satWeight := flag.Float64("saturation-weight", 4, "Penalty weight on the clipped pixel fraction")
	width := flag.Int("width", 160, "Preview raster width")
	height := flag.Int("height", 120, "Preview raster height")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	r := render.New(render.OptionsFromConfig(baseCfg))
	defer r.Close()

	params := NewParamVector(baseCfg)
	evaluator := NewExposureEvaluator(params, baseCfg, r, *width, *height)
	evaluator.TargetPeak = *target
	evaluator.SaturationWeight = *satWeight

	logPath := filepath.Join(*outputDir, "calibrate_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(params.Dim())/2.0)
	}

	res, err := calibrate(evaluator, params, *maxEvals, popSize, logFile)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	fmt.Printf("\nCalibration complete after %d evaluations in %s\n", res.Evals, res.Elapsed.Round(time.Millisecond))
	fmt.Printf("Best loss: %.6f\n", res.BestLoss)
	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, res.Best[i])
	}

	bestCfg, _ := config.Load(*configPath)
	params.ApplyToConfig(bestCfg, res.Best)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}

// Result summarizes a calibration run.
type Result struct {
	Best     []float64
	BestLoss float64
	Evals    int
	Elapsed  time.Duration
}

// calibrate minimizes the exposure loss in normalized parameter space and
// appends every evaluation to logFile as CSV.
func calibrate(evaluator *ExposureEvaluator, params *ParamVector, maxEvals, popSize int, logFile *os.File) (Result, error) {
	res := Result{BestLoss: 1e9}
	start := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			clamped := params.Clamp(params.Denormalize(x))
			loss := evaluator.Evaluate(clamped)
			res.Evals++

			if loss < res.BestLoss {
				res.BestLoss = loss
				res.Best = clamped
			}

			stats := evaluator.LastStats()
			rec := []EvalRecord{{
				Eval:         res.Evals,
				Loss:         loss,
				CellSize:     clamped[0],
				Conductivity: clamped[1],
				PeakP90:      stats.PeakP90,
				Saturated:    stats.Saturated,
			}}
			var werr error
			if res.Evals == 1 {
				werr = gocsv.MarshalFile(&rec, logFile)
			} else {
				werr = gocsv.MarshalWithoutHeaders(&rec, logFile)
			}
			if werr != nil {
				log.Printf("failed to log evaluation %d: %v", res.Evals, werr)
			}

			fmt.Printf("Eval %d/%d: loss=%.5f p90=%.3f saturated=%d (best=%.5f)\n",
				res.Evals, maxEvals, loss, stats.PeakP90, stats.Saturated, res.BestLoss)
			return loss
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: maxEvals,
		Concurrent:      0,
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	initX := params.Normalize(params.DefaultVector())
	result, err := optimize.Minimize(problem, initX, settings, method)
	if res.Best == nil && result != nil {
		res.Best = params.Clamp(params.Denormalize(result.X))
	}
	if res.Best == nil {
		res.Best = params.Clamp(params.DefaultVector())
	}
	res.Elapsed = time.Since(start)
	return res, err
}
