package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gocmr/adapters/delim"
	"gocmr/adapters/excel"
	"gocmr/adapters/rng"
	"gocmr/app"
	"gocmr/domain/encounter"
	"gocmr/domain/model"
	"gocmr/internal"
	"gocmr/internal/report"
	"gocmr/internal/testkit"
	"gocmr/ports"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gocmr",
		Short: "Prepare multi-state capture-recapture data for Bayesian estimation",
	}

	rootCmd.AddCommand(
		newPrepareCmd(),
		newSimulateCmd(),
		newDemoCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newPrepareCmd() *cobra.Command {
	var (
		capturePath string
		testPath    string
		seed        int64
		chains      int
		drop        bool
		out         string
	)
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Encode capture and test tables into a sampler-ready bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			capture, err := readMatrix(ctx, capturePath)
			if err != nil {
				return err
			}
			test, err := readMatrix(ctx, testPath)
			if err != nil {
				return err
			}

			prep := app.NewPrepService(rng.New(), internal.NewDefaultLogger())
			result, err := prep.Prepare(ctx, app.PrepRequest{
				Capture:           capture,
				Test:              test,
				Seed:              seed,
				Chains:            chains,
				DropNeverDetected: drop,
			})
			if err != nil {
				return err
			}
			return writeJSON(out, result.Bundle)
		},
	}
	cmd.Flags().StringVar(&capturePath, "capture", "", "capture table (txt, csv or xlsx)")
	cmd.Flags().StringVar(&testPath, "test", "", "disease-test table (same shape as capture)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "base seed for initial values")
	cmd.Flags().IntVar(&chains, "chains", 3, "number of sampler chains to seed")
	cmd.Flags().BoolVar(&drop, "drop-never-detected", false, "drop all-not-seen rows instead of failing")
	cmd.Flags().StringVar(&out, "out", "", "output path for the bundle JSON (default stdout)")
	_ = cmd.MarkFlagRequired("capture")
	_ = cmd.MarkFlagRequired("test")
	return cmd
}

func newSimulateCmd() *cobra.Command {
	var (
		individuals int
		occasions   int
		seed        int64
		outCapture  string
		outTest     string
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate a synthetic two-state cohort and write its tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cohort, err := testkit.Simulate(testkit.SimulatorConfig{
				NIndividuals:  individuals,
				NOccasions:    occasions,
				Params:        demoParameters(),
				ReleaseSpread: occasions / 2,
			}, rand.New(rand.NewSource(seed)))
			if err != nil {
				return err
			}
			if err := writeTable(outCapture, cohort.Capture); err != nil {
				return err
			}
			return writeTable(outTest, cohort.Test)
		},
	}
	cmd.Flags().IntVar(&individuals, "individuals", 200, "number of individuals")
	cmd.Flags().IntVar(&occasions, "occasions", 8, "number of occasions")
	cmd.Flags().Int64Var(&seed, "seed", 42, "simulation seed")
	cmd.Flags().StringVar(&outCapture, "out-capture", "capture.txt", "capture table output path")
	cmd.Flags().StringVar(&outTest, "out-test", "test.txt", "test table output path")
	return cmd
}

func newDemoCmd() *cobra.Command {
	var (
		individuals int
		occasions   int
		seed        int64
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Simulate, prepare, fake-sample and print a run report",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			logger := internal.NewDefaultLogger()
			streams := rng.New()

			cohort, err := testkit.Simulate(testkit.SimulatorConfig{
				NIndividuals:  individuals,
				NOccasions:    occasions,
				Params:        demoParameters(),
				ReleaseSpread: occasions / 2,
			}, rand.New(rand.NewSource(seed)))
			if err != nil {
				return err
			}

			prep := app.NewPrepService(streams, logger)
			result, err := prep.Prepare(ctx, app.PrepRequest{
				Capture:           cohort.Capture,
				Test:              cohort.Test,
				Seed:              seed,
				Chains:            3,
				DropNeverDetected: true,
			})
			if err != nil {
				return err
			}

			sampler := testkit.NewFakeSampler(streams)
			samples, err := sampler.Sample(ctx, result.Bundle, ports.SampleOptions{Chains: 3, Iterations: 1000})
			if err != nil {
				return err
			}
			summaries, err := app.SummarizePosterior(samples)
			if err != nil {
				return err
			}

			fmt.Print(report.BuildMarkdown(result.Bundle, summaries))
			return nil
		},
	}
	cmd.Flags().IntVar(&individuals, "individuals", 200, "number of individuals")
	cmd.Flags().IntVar(&occasions, "occasions", 8, "number of occasions")
	cmd.Flags().Int64Var(&seed, "seed", 42, "seed for simulation and preparation")
	return cmd
}

// demoParameters are plausible field values for a synthetic cohort.
func demoParameters() model.Parameters {
	return model.Parameters{
		PhiU: 0.8, PhiI: 0.7,
		PsiUI: 0.3, PsiIU: 0.1,
		PU: 0.6, PI: 0.5,
	}
}

func readMatrix(ctx context.Context, path string) (*encounter.Matrix, error) {
	var reader ports.MatrixReaderPort
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		reader = excel.NewReader()
	} else {
		reader = delim.NewReader()
	}
	return reader.ReadMatrix(ctx, path)
}

func writeTable(path string, m *encounter.Matrix) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return delim.Write(f, m)
}

func writeJSON(path string, payload interface{}) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
