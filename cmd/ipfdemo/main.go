// Package main provides a CLI tool for running and visualizing IPF fits.
//
// Usage:
//
//	go run cmd/ipfdemo/main.go
//	go run cmd/ipfdemo/main.go --matfile data.mat --seed-var X --target-vars u,v --output fit.png
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/causalgo/ipf"
	"github.com/causalgo/ipf/internal/factors"
	"github.com/causalgo/ipf/internal/ipfplot"
	"github.com/causalgo/ipf/internal/matio"
	"github.com/causalgo/ipf/internal/ndarray"
)

const (
	defaultMaxIter = 1000
	defaultTol     = 1e-10
)

func main() {
	matFile := flag.String("matfile", "", "Path to a .mat file supplying the seed and targets. If empty, runs the built-in 4x4 demo.")
	seedVar := flag.String("seed-var", "X", "Seed array variable name within --matfile")
	targetVars := flag.String("target-vars", "u,v", "Comma-separated target variable names within --matfile")
	maxIter := flag.Int("max-iter", defaultMaxIter, "Maximum number of IPF iterations")
	tol := flag.Float64("tol", defaultTol, "Absolute convergence tolerance")
	forceConsistency := flag.Bool("force-consistency", false, "Average overlapping margins instead of failing on inconsistency")
	output := flag.String("output", "", "Output plot file (PNG/SVG/PDF). If empty, only prints a text summary.")

	flag.Parse()

	seed, targets, err := loadInputs(*matFile, *seedVar, *targetVars)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ipfdemo: %v\n", err)
		os.Exit(1)
	}

	opts := ipf.DefaultOptions[float64]()
	opts.MaxIter = *maxIter
	opts.Tol = *tol
	opts.ForceConsistency = *forceConsistency

	fitted, report, err := ipf.FitVectors(seed, targets, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ipfdemo: fit failed: %v\n", err)
		os.Exit(1)
	}

	printReport(report)

	if *output != "" {
		if err := savePlots(fitted, report, opts.Tol, *output); err != nil {
			fmt.Fprintf(os.Stderr, "ipfdemo: failed to save plot: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nConvergence plot saved to: %s\n", *output)
	}
}

func loadInputs(matFile, seedVar, targetVarsRaw string) (*ndarray.Array[float64], [][]float64, error) {
	if matFile == "" {
		return builtinDemo()
	}

	seed, err := matio.LoadSeed(matFile, seedVar)
	if err != nil {
		return nil, nil, fmt.Errorf("loading seed: %w", err)
	}
	names := strings.Split(targetVarsRaw, ",")
	targets, err := matio.LoadTargets(matFile, names...)
	if err != nil {
		return nil, nil, fmt.Errorf("loading targets: %w", err)
	}
	return seed, targets, nil
}

// builtinDemo reproduces the spec's canonical 4x4 RAS worked example.
func builtinDemo() (*ndarray.Array[float64], [][]float64, error) {
	seed, err := ndarray.FromSlice([]float64{
		40, 30, 20, 10,
		35, 50, 100, 75,
		30, 80, 70, 120,
		20, 30, 40, 50,
	}, []int{4, 4})
	if err != nil {
		return nil, nil, err
	}
	u := []float64{150, 300, 400, 150}
	v := []float64{200, 300, 400, 100}
	return seed, [][]float64{u, v}, nil
}

func printReport(report ipf.Report) {
	fmt.Printf("\nIPF Fit Report\n")
	fmt.Printf("==================================================\n")
	fmt.Printf("Converged:      %v\n", report.Converged)
	fmt.Printf("Iterations:     %d\n", report.Iterations)
	fmt.Printf("Final crit:     %.3e\n", report.Crit)
	fmt.Printf("Normalized:     %v\n", report.Normalized)
	fmt.Printf("Overlap forced: %v\n", report.OverlapForced)

	if len(report.History) > 0 {
		fmt.Printf("\nConvergence history:\n")
		barWidth := 40
		maxCrit := report.History[0]
		for _, c := range report.History {
			if c > maxCrit {
				maxCrit = c
			}
		}
		for i, c := range report.History {
			printBar(fmt.Sprintf("iter %3d", i+1), c, maxCrit, barWidth)
		}
	}
}

func printBar(label string, value, total float64, width int) {
	percentage := 0.0
	if total > 0 {
		percentage = value / total
	}
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 1 {
		percentage = 1
	}
	barLen := int(percentage * float64(width))
	bar := strings.Repeat("█", barLen) + strings.Repeat("░", width-barLen)
	fmt.Printf("%-12s %s %.3e\n", label+":", bar, value)
}

// savePlots saves the fit's convergence curve, and, for a 2-axis fit,
// a heatmap of the materialized scaling factor alongside it.
func savePlots(fitted *factors.ArrayFactors[float64], report ipf.Report, tol float64, output string) error {
	conv, err := ipfplot.Convergence(report.History, tol, ipfplot.DefaultOptions())
	if err != nil {
		return fmt.Errorf("building convergence plot: %w", err)
	}
	opts := ipfplot.DefaultOptions()
	if err := ipfplot.SavePlot(conv, output, opts.Width, opts.Height); err != nil {
		return fmt.Errorf("saving convergence plot: %w", err)
	}

	m, err := fitted.Materialize()
	if err != nil || m.Rank() != 2 {
		return nil
	}
	heat, err := ipfplot.Heatmap(m, ipfplot.DefaultOptions())
	if err != nil {
		return nil
	}
	heatPath := heatmapPath(output)
	return ipfplot.SavePlot(heat, heatPath, opts.Width, opts.Height)
}

func heatmapPath(output string) string {
	ext := filepath.Ext(output)
	base := strings.TrimSuffix(output, ext)
	return base + ".heatmap" + ext
}
