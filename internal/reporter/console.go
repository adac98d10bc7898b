package reporter

import (
	"fmt"
	"io"
	"os"

	"sql-guard/internal/model"

	"github.com/fatih/color"
)

type ConsoleReporter struct {
	out    io.Writer
	errOut io.Writer
}

func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{out: os.Stdout, errOut: os.Stderr}
}

// NewConsoleReporterTo writes to the given streams; used by tests.
func NewConsoleReporterTo(out, errOut io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out, errOut: errOut}
}

func (r *ConsoleReporter) Report(reports []model.FileReport) error {
	total := 0

	for _, report := range reports {
		for _, w := range report.Warnings {
			fmt.Fprintf(r.errOut, "%s %s: %s\n", color.YellowString("⚠"), report.File, w)
		}

		if len(report.Violations) == 0 {
			continue
		}
		total += len(report.Violations)

		fmt.Fprintf(r.out, "%s %s\n\n",
			color.New(color.FgRed, color.Bold).Sprint("✘ Unsafe migration detected in"),
			color.YellowString(report.File))

		for _, v := range report.Violations {
			fmt.Fprintf(r.out, "%s:%d: [%s] %s\n",
				report.File, v.Line, levelColor(v.Level).Sprint(v.Level), v.Operation)
			fmt.Fprintf(r.out, "\n%s\n  %s\n", color.New(color.Bold).Sprint("Problem:"), v.Problem)
			fmt.Fprintf(r.out, "\n%s\n  %s\n\n",
				color.New(color.FgGreen, color.Bold).Sprint("Safe alternative:"), indentTail(v.SafeAlternative))
		}
	}

	if total == 0 {
		fmt.Fprintln(r.out, color.GreenString("✔ No unsafe migrations found."))
		return nil
	}

	fmt.Fprintf(r.out, "%s found %d unsafe operation(s).\n", color.RedString("✘"), total)
	fmt.Fprintln(r.out, "To bypass a check you have verified is safe, wrap the statement in:")
	fmt.Fprintln(r.out, "  -- safety-assured:start")
	fmt.Fprintln(r.out, "  ...")
	fmt.Fprintln(r.out, "  -- safety-assured:end")
	return nil
}

func levelColor(level model.RiskLevel) *color.Color {
	switch level {
	case model.RiskLevelFatal:
		return color.New(color.FgRed, color.Bold)
	case model.RiskLevelWarning:
		return color.New(color.FgYellow, color.Bold)
	case model.RiskLevelSuggestion:
		return color.New(color.FgBlue, color.Bold)
	default:
		return color.New(color.FgWhite)
	}
}

// indentTail keeps multi-line remediation text aligned under its header.
func indentTail(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		out = append(out, s[i])
		if s[i] == '\n' {
			out = append(out, ' ', ' ')
		}
	}
	return string(out)
}
