package app

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chriscorrea/dialect/internal/metrics"
	"github.com/chriscorrea/dialect/internal/preprocess"
)

// Render formats report. visual shapes Arabic labels and terms and puts them
// in display order; it only affects Text output.
func Render(report *Report, format OutputFormat, visual bool) (string, error) {
	if report == nil {
		return "", fmt.Errorf("no report to render")
	}

	switch format {
	case JSON:
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode report: %w", err)
		}
		return string(out) + "\n", nil
	case Text:
		show := func(s string) string { return s }
		if visual {
			show = preprocess.Visual
		}
		return renderText(report, show), nil
	default:
		return renderMarkdown(report), nil
	}
}

func renderMarkdown(r *Report) string {
	var b strings.Builder

	b.WriteString("# Dialect identification report\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n- Target: `%s`\n- Duration: %s\n\n", r.RunID, r.Target, r.Duration.Round(time.Millisecond))

	b.WriteString("## Dataset\n\n")
	b.WriteString("| Split | Rows | Labelled | Classes | Cities | No tokens | Mean length |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|\n")
	for _, s := range r.Dataset {
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %d | %d | %.1f %s |\n",
			s.Split, s.Rows, s.Labelled, len(s.Labels), s.Cities, s.NoTokens, s.Lengths.Mean, s.Lengths.Method)
	}
	b.WriteString("\n")

	if len(r.Dataset) > 0 && len(r.Dataset[0].Labels) > 0 {
		train := r.Dataset[0]
		fmt.Fprintf(&b, "### Label distribution (%s)\n\n", train.Split)
		b.WriteString("| Label | Rows | Share |\n|---|---:|---:|\n")
		for _, lc := range train.Labels {
			fmt.Fprintf(&b, "| %s | %d | %.1f%% |\n", lc.Label, lc.Count, 100*float64(lc.Count)/float64(train.Labelled))
		}
		b.WriteString("\n")
	}

	if s := r.Search; s != nil {
		b.WriteString("## Grid search\n\n")
		fmt.Fprintf(&b, "Best: `%s` with mean accuracy %.4f over %d rows (%d dropped).\n\n",
			s.Best, s.BestScore, s.TrainingRows, s.DroppedRows)
		b.WriteString("| # | N-gram range | Alpha | Mean accuracy | Std |\n")
		b.WriteString("|---:|---|---:|---:|---:|\n")
		for i, c := range s.Candidates {
			marker := ""
			if i == s.BestIndex {
				marker = " **best**"
			}
			fmt.Fprintf(&b, "| %d | (%d,%d) | %g | %.4f%s | %.4f |\n",
				i, c.Params.NgramRange[0], c.Params.NgramRange[1], c.Params.Alpha, c.MeanScore, marker, c.StdScore)
		}
		b.WriteString("\n")
	}

	writeMarkdownEvaluation(&b, "Validation", r.Validation)
	writeMarkdownEvaluation(&b, "Test", r.Test)

	if len(r.TopTerms) > 0 {
		b.WriteString("## Top terms\n\n| Class | Terms |\n|---|---|\n")
		for _, ct := range r.TopTerms {
			fmt.Fprintf(&b, "| %s | %s |\n", ct.Class, strings.Join(ct.Terms, "، "))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writeMarkdownEvaluation(b *strings.Builder, title string, m *metrics.Report) {
	fmt.Fprintf(b, "## %s\n\n", title)
	if m == nil {
		b.WriteString("No labelled rows.\n\n")
		return
	}

	fmt.Fprintf(b, "Accuracy %.4f, balanced accuracy %.4f, weighted F1 %.4f on %d rows (%d dropped).\n\n",
		m.Accuracy, m.BalancedAccuracy, m.F1Weighted, m.Support, m.Dropped)

	b.WriteString("| Label | Precision | Recall | F1 | Support |\n|---|---:|---:|---:|---:|\n")
	for _, c := range m.PerClass {
		fmt.Fprintf(b, "| %s | %.4f | %.4f | %.4f | %d |\n", c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}
	b.WriteString("\n")

	fmt.Fprintf(b, "### %s confusion matrix\n\n", title)
	b.WriteString("| true \\ predicted |")
	for _, label := range m.Labels {
		fmt.Fprintf(b, " %s |", label)
	}
	b.WriteString("\n|---|" + strings.Repeat("---:|", len(m.Labels)) + "\n")
	for i, row := range m.ConfusionMatrix {
		fmt.Fprintf(b, "| %s |", m.Labels[i])
		for _, n := range row {
			fmt.Fprintf(b, " %d |", n)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func renderText(r *Report, show func(string) string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Dialect identification report\nrun %s  target %s  duration %s\n\n", r.RunID, r.Target, r.Duration.Round(time.Millisecond))

	b.WriteString("DATASET\n")
	fmt.Fprintf(&b, "  %-12s %8s %9s %8s %7s %10s\n", "split", "rows", "labelled", "classes", "cities", "no tokens")
	for _, s := range r.Dataset {
		fmt.Fprintf(&b, "  %-12s %8d %9d %8d %7d %10d\n", s.Split, s.Rows, s.Labelled, len(s.Labels), s.Cities, s.NoTokens)
	}
	b.WriteString("\n")

	if len(r.Dataset) > 0 && len(r.Dataset[0].Labels) > 0 {
		fmt.Fprintf(&b, "LABELS (%s)\n", r.Dataset[0].Split)
		for _, lc := range r.Dataset[0].Labels {
			fmt.Fprintf(&b, "  %-12s %8d\n", show(lc.Label), lc.Count)
		}
		b.WriteString("\n")
	}

	if s := r.Search; s != nil {
		fmt.Fprintf(&b, "GRID SEARCH (best %s, %.4f)\n", s.Best, s.BestScore)
		for i, c := range s.Candidates {
			marker := " "
			if i == s.BestIndex {
				marker = "*"
			}
			fmt.Fprintf(&b, "%s %-28s mean %.4f  std %.4f\n", marker, c.Params, c.MeanScore, c.StdScore)
		}
		b.WriteString("\n")
	}

	writeTextEvaluation(&b, "VALIDATION", r.Validation, show)
	writeTextEvaluation(&b, "TEST", r.Test, show)

	if len(r.TopTerms) > 0 {
		b.WriteString("TOP TERMS\n")
		for _, ct := range r.TopTerms {
			terms := make([]string, len(ct.Terms))
			for i, t := range ct.Terms {
				terms[i] = show(t)
			}
			fmt.Fprintf(&b, "  %-12s %s\n", show(ct.Class), strings.Join(terms, " | "))
		}
	}

	return b.String()
}

func writeTextEvaluation(b *strings.Builder, title string, m *metrics.Report, show func(string) string) {
	if m == nil {
		fmt.Fprintf(b, "%s\n  no labelled rows\n\n", title)
		return
	}

	fmt.Fprintf(b, "%s\n  accuracy %.4f  balanced %.4f  f1 %.4f  rows %d  dropped %d\n",
		title, m.Accuracy, m.BalancedAccuracy, m.F1Weighted, m.Support, m.Dropped)
	for _, c := range m.PerClass {
		fmt.Fprintf(b, "  %-12s p %.4f  r %.4f  f1 %.4f  n %d\n", show(c.Label), c.Precision, c.Recall, c.F1, c.Support)
	}

	b.WriteString("  confusion (rows true, columns predicted)\n")
	b.WriteString("  " + strings.Repeat(" ", 12))
	for _, label := range m.Labels {
		fmt.Fprintf(b, " %8s", show(label))
	}
	b.WriteString("\n")
	for i, row := range m.ConfusionMatrix {
		fmt.Fprintf(b, "  %-12s", show(m.Labels[i]))
		for _, n := range row {
			fmt.Fprintf(b, " %8d", n)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
