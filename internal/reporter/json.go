package reporter

import (
	"encoding/json"
	"io"
	"os"

	"sql-guard/internal/model"
)

// JSONReporter emits the per-file reports as a stable machine-readable
// document for CI integration.
type JSONReporter struct {
	out io.Writer
}

func NewJSONReporter() *JSONReporter {
	return &JSONReporter{out: os.Stdout}
}

func NewJSONReporterTo(out io.Writer) *JSONReporter {
	return &JSONReporter{out: out}
}

type jsonDocument struct {
	TotalViolations int                `json:"total_violations"`
	Files           []model.FileReport `json:"files"`
}

func (r *JSONReporter) Report(reports []model.FileReport) error {
	doc := jsonDocument{Files: []model.FileReport{}}
	for _, report := range reports {
		doc.TotalViolations += len(report.Violations)
		if len(report.Violations) > 0 || len(report.Warnings) > 0 {
			doc.Files = append(doc.Files, report)
		}
	}

	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
