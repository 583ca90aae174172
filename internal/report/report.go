package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/robna/gepard-BlindCorr/domain/correction"
	apperrors "github.com/robna/gepard-BlindCorr/internal/errors"
	"github.com/robna/gepard-BlindCorr/internal/matching"
)

// Renderer turns a finished run into a human-readable report.
type Renderer struct{}

// NewRenderer creates a report renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Markdown renders the run result as a markdown document.
func (r *Renderer) Markdown(result *correction.RunResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Correction Run %s\n\n", result.RunID)
	fmt.Fprintf(&b, "- Started: %s\n", result.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- Finished: %s\n", result.FinishedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- Corrections: %d\n", result.TotalCorrections)
	fmt.Fprintf(&b, "- Particles eliminated: %d\n\n", result.TotalEliminated)

	for i, step := range result.Steps {
		fmt.Fprintf(&b, "## Step %d: %s\n\n", i+1, filepath.Base(step.TargetFile))
		fmt.Fprintf(&b, "- Mode: %s correction\n", step.Kind)
		fmt.Fprintf(&b, "- Controls: %s\n", strings.Join(step.ControlFiles, ", "))
		fmt.Fprintf(&b, "- Particles: %d before, %d after (%d eliminated)\n",
			step.OriginalParticles, step.FinalParticles, step.Eliminated)
		fmt.Fprintf(&b, "- Output: %s\n", step.OutputFile)
		fmt.Fprintf(&b, "- Elimination log: %s\n", step.LogFile)
		fmt.Fprintf(&b, "- Log fingerprint: `%s`\n\n", step.LogHash)

		if step.Log != nil && step.Log.Len() > 0 {
			writeSummary(&b, matching.Summarize(step.Log))
		}
	}
	return b.String()
}

func writeSummary(b *strings.Builder, s correction.Summary) {
	fmt.Fprintf(b, "Mean size difference %.2f, median %.2f.\n\n", s.MeanSizeDiff, s.MedianSizeDiff)

	writeBreakdown(b, "Eliminations by sample", s.BySample)
	if len(s.ByControlSample) > 0 {
		writeBreakdown(b, "Eliminations by control sample", s.ByControlSample)
	}
	writeBreakdown(b, "Eliminations by polymer", s.ByPolymer)
}

func writeBreakdown(b *strings.Builder, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(b, "%s:\n\n", title)
	fmt.Fprintf(b, "| Category | Count |\n|---|---|\n")
	for _, k := range keys {
		fmt.Fprintf(b, "| %s | %d |\n", k, counts[k])
	}
	fmt.Fprintf(b, "\n")
}

// HTML renders the markdown report as a standalone HTML document.
func (r *Renderer) HTML(result *correction.RunResult) []byte {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.Tables
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(r.Markdown(result)))

	opts := html.RendererOptions{Flags: html.CommonFlags | html.CompletePage}
	renderer := html.NewRenderer(opts)
	return markdown.Render(doc, renderer)
}

// WriteMarkdown writes the markdown report next to the run outputs.
func (r *Renderer) WriteMarkdown(result *correction.RunResult, dir string) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("run_%s.md", result.RunID))
	if err := os.WriteFile(path, []byte(r.Markdown(result)), 0o644); err != nil {
		return "", apperrors.ExportError(path, err)
	}
	return path, nil
}

// WriteHTML writes the HTML report next to the run outputs.
func (r *Renderer) WriteHTML(result *correction.RunResult, dir string) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("run_%s.html", result.RunID))
	if err := os.WriteFile(path, r.HTML(result), 0o644); err != nil {
		return "", apperrors.ExportError(path, err)
	}
	return path, nil
}
