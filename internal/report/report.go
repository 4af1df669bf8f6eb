// Package report renders run reports: a markdown summary of the prepared
// model and, when available, the posterior estimates.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gocmr/domain/bundle"
	"gocmr/ports"
)

// BuildMarkdown produces the markdown report for a prepared bundle.
// Summaries may be nil when the sampler has not run yet.
func BuildMarkdown(b *bundle.ModelBundle, summaries []ports.ParameterSummary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Run %s\n\n", b.ID)
	fmt.Fprintf(&sb, "Prepared %s | seed %d | fingerprint `%s`\n\n",
		b.Manifest.CreatedAt.Time().Format("2006-01-02 15:04:05"),
		b.Manifest.Seed, shortHash(string(b.Manifest.Fingerprint)))

	sb.WriteString("## Data\n\n")
	fmt.Fprintf(&sb, "- Individuals: %d\n", b.Data.NIndividuals)
	fmt.Fprintf(&sb, "- Occasions: %d\n", b.Data.NOccasions)
	fmt.Fprintf(&sb, "- Chains: %d\n", b.Manifest.NChains)
	if len(b.Manifest.DroppedRows) > 0 {
		fmt.Fprintf(&sb, "- Dropped never-detected rows: %v\n", b.Manifest.DroppedRows)
	}
	sb.WriteString("\n")

	sb.WriteString("## Model\n\n")
	writeDefinition(&sb, "State transitions", b.Spec.Transition.Rows)
	writeDefinition(&sb, "Observations", b.Spec.Observation.Rows)

	sb.WriteString("## Monitored parameters\n\n")
	fmt.Fprintf(&sb, "%s\n\n", strings.Join(b.Spec.Monitored, ", "))

	if len(summaries) > 0 {
		sb.WriteString("## Posterior estimates\n\n")
		sb.WriteString("| Parameter | Mean | SD | Median | 2.5% | 97.5% |\n")
		sb.WriteString("|---|---|---|---|---|---|\n")
		for _, s := range summaries {
			fmt.Fprintf(&sb, "| %s | %.3f | %.3f | %.3f | %.3f | %.3f |\n",
				s.Parameter, s.Mean, s.StdDev, s.Median, s.P2_5, s.P97_5)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeDefinition(sb *strings.Builder, title string, rows map[string][]string) {
	fmt.Fprintf(sb, "**%s**\n\n", title)
	names := make([]string, 0, len(rows))
	for name := range rows {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(sb, "- from %s: %s\n", name, strings.Join(rows[name], ", "))
	}
	sb.WriteString("\n")
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// RenderHTML converts a markdown report to an HTML document body.
func RenderHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer)
}
