package app

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	"gocmr/ports"
)

// SummarizePosterior computes posterior summaries (mean, sd, median, 95%
// interval) for every monitored parameter in the sample set.
func SummarizePosterior(samples ports.PosteriorSamples) ([]ports.ParameterSummary, error) {
	names := make([]string, 0, len(samples))
	for name := range samples {
		names = append(names, name)
	}
	sort.Strings(names)

	summaries := make([]ports.ParameterSummary, 0, len(names))
	for _, name := range names {
		draws := samples[name]
		if len(draws) == 0 {
			return nil, fmt.Errorf("no posterior draws for %s", name)
		}
		mean, err := stats.Mean(draws)
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", name, err)
		}
		sd, err := stats.StandardDeviationSample(draws)
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", name, err)
		}
		median, err := stats.Median(draws)
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", name, err)
		}
		lo, err := stats.Percentile(draws, 2.5)
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", name, err)
		}
		hi, err := stats.Percentile(draws, 97.5)
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", name, err)
		}
		summaries = append(summaries, ports.ParameterSummary{
			Parameter: name,
			Mean:      mean,
			StdDev:    sd,
			Median:    median,
			P2_5:      lo,
			P97_5:     hi,
		})
	}
	return summaries, nil
}
