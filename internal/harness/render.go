package harness

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"sigs.k8s.io/yaml"
)

// OutputFormat selects how a SuiteResult is rendered.
type OutputFormat string

const (
	FormatText     OutputFormat = "text"
	FormatJSON     OutputFormat = "json"
	FormatYAML     OutputFormat = "yaml"
	FormatMarkdown OutputFormat = "markdown"
)

// OutputFormats lists the supported formats.
var OutputFormats = []OutputFormat{FormatText, FormatJSON, FormatYAML, FormatMarkdown}

// ParseOutputFormat validates a format name.
func ParseOutputFormat(name string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(name)))
	if f == "md" {
		return FormatMarkdown, nil
	}
	for _, known := range OutputFormats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported output format %q (supported: text, json, yaml, markdown)", name)
}

// Render writes result to w in format.
func Render(w io.Writer, result *SuiteResult, format OutputFormat) error {
	switch format {
	case FormatText, "":
		return renderText(w, result)
	case FormatJSON:
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report to JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		data, err := yaml.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to marshal report to YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatMarkdown:
		return markdownTemplate.Execute(w, newMarkdownView(result))
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func renderText(w io.Writer, result *SuiteResult) error {
	fmt.Fprintf(w, "%s %s\n", text.FgHiCyan.Sprint("Run"), result.RunID)
	fmt.Fprintf(w, "%s %s\n", text.FgHiCyan.Sprint("State"), stateColor(result.State))
	if result.HarnessError != "" {
		fmt.Fprintf(w, "%s %s\n", text.FgRed.Sprint("Harness error"), result.HarnessError)
	}
	writeCategoryTable(w, result.DetailedResults)

	t := newTable(w)
	t.SetTitle("Quality gates")
	t.AppendHeader(table.Row{"Gate", "Value", "Status"})
	t.AppendRow(table.Row{"Success rate", fmt.Sprintf("%.1f%%", result.Summary.SuccessRate), gate(result.Summary.SuccessRate >= SuccessRateFloor)})
	if result.Coverage.Statements > 0 {
		t.AppendRow(table.Row{"Coverage (statements)", fmt.Sprintf("%.1f%%", result.Coverage.Statements), gate(result.Coverage.Passed)})
	}
	if result.Performance.Tests > 0 {
		t.AppendRow(table.Row{"Startup p95", formatDuration(result.Performance.Metrics.P95Startup), gate(len(result.Performance.Alerts) == 0)})
		t.AppendRow(table.Row{"Regressions", len(result.Performance.Regressions), gate(len(result.Performance.Regressions) == 0)})
	}
	if result.Accessibility.Tests > 0 {
		t.AppendRow(table.Row{"Accessibility score", fmt.Sprintf("%.1f", result.Accessibility.AverageScore), gate(result.Accessibility.Compliant)})
	}
	if result.Security.Tests > 0 {
		t.AppendRow(table.Row{"Vulnerabilities", len(result.Security.Vulnerabilities), gate(len(result.Security.Vulnerabilities) == 0)})
	}
	t.Render()

	for _, rec := range result.Recommendations {
		fmt.Fprintf(w, "%s %s\n", text.FgYellow.Sprint("💡"), rec)
	}
	return nil
}

// writeCategoryTable renders per-category counts plus a total row.
func writeCategoryTable(w io.Writer, results []TestResult) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Category", "Total", "Passed", "Failed", "Skipped", "Timed out", "Duration"})
	for _, s := range CategoryBreakdown(results) {
		t.AppendRow(table.Row{s.Category, s.Total, s.Passed, s.Failed, s.Skipped, s.TimedOut, formatDuration(s.Duration)})
	}
	sum := NewSummary(results, 0)
	t.AppendFooter(table.Row{"Total", sum.TotalTests, sum.Passed, sum.Failed, sum.Skipped, sum.TimedOut, ""})
	t.Render()
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

func gate(ok bool) string {
	if ok {
		return text.FgGreen.Sprint("pass")
	}
	return text.FgRed.Sprint("fail")
}

func stateColor(s State) string {
	switch s {
	case StateCompleted:
		return text.FgGreen.Sprint(s)
	case StateFailedFast:
		return text.FgYellow.Sprint(s)
	default:
		return text.FgRed.Sprint(s)
	}
}

type markdownView struct {
	*SuiteResult
	Categories []CategoryStats
	Failures   []TestResult
}

func newMarkdownView(r *SuiteResult) markdownView {
	v := markdownView{SuiteResult: r, Categories: CategoryBreakdown(r.DetailedResults)}
	for _, res := range r.DetailedResults {
		if res.Status != StatusPassed {
			v.Failures = append(v.Failures, res)
		}
	}
	return v
}

var markdownTemplate = template.Must(template.New("report").
	Funcs(sprig.TxtFuncMap()).
	Funcs(template.FuncMap{"ms": formatDuration}).
	Parse(`# Test suite report

- **Run:** {{ .RunID }}
- **State:** {{ .State }}
- **Started:** {{ dateInZone "2006-01-02 15:04:05" .StartTime "UTC" }}
- **Duration:** {{ ms .Summary.Duration }}
- **Success rate:** {{ printf "%.1f" .Summary.SuccessRate }}%
{{- if .HarnessError }}

> **Harness error:** {{ .HarnessError }}
{{- end }}

## Results

| Category | Total | Passed | Failed | Skipped | Timed out |
|---|---|---|---|---|---|
{{- range .Categories }}
| {{ .Category | toString | title }} | {{ .Total }} | {{ .Passed }} | {{ .Failed }} | {{ .Skipped }} | {{ .TimedOut }} |
{{- end }}
| **Total** | {{ .Summary.TotalTests }} | {{ .Summary.Passed }} | {{ .Summary.Failed }} | {{ .Summary.Skipped }} | {{ .Summary.TimedOut }} |
{{- if gt .Coverage.Statements 0.0 }}

## Coverage

| Statements | Branches | Functions | Lines | Threshold |
|---|---|---|---|---|
| {{ printf "%.1f" .Coverage.Statements }} | {{ printf "%.1f" .Coverage.Branches }} | {{ printf "%.1f" .Coverage.Functions }} | {{ printf "%.1f" .Coverage.Lines }} | {{ .Coverage.Threshold }} |
{{- end }}
{{- if .Performance.Tests }}

## Performance

- Average startup: {{ ms .Performance.Metrics.AverageStartup }} (p95 {{ ms .Performance.Metrics.P95Startup }})
- Average memory: {{ printf "%.1f" .Performance.Metrics.AverageMemory }} MB
- Regressions: {{ len .Performance.Regressions }}
- Alerts: {{ len .Performance.Alerts }}
{{- end }}
{{- if .Accessibility.Tests }}

## Accessibility

Average score {{ printf "%.1f" .Accessibility.AverageScore }}, {{ .Accessibility.TotalViolations }} violation(s), {{ .Accessibility.TotalWarnings }} warning(s).
{{ range .Accessibility.Components }}
- {{ .Component }}: {{ printf "%.1f" .Score }} ({{ .Level }})
{{- end }}
{{- end }}
{{- if .Failures }}

## Not passed
{{ range .Failures }}
- ` + "`{{ .TestName }}`" + ` ({{ .Category }}, {{ .Status }}): {{ .Error | default "no message" }}
{{- end }}
{{- end }}

## Recommendations
{{ range .Recommendations }}
- {{ . }}
{{- end }}
`))
