package model

import "fmt"

// RiskLevel defines the severity of a violation
type RiskLevel string

const (
	RiskLevelFatal      RiskLevel = "FATAL"
	RiskLevelWarning    RiskLevel = "WARNING"
	RiskLevelSuggestion RiskLevel = "SUGGESTION"
)

// Violation represents one unsafe operation found in a migration file.
// Rule and Line are filled in by the auditor; rules only supply the
// operation, problem and remediation text.
type Violation struct {
	Rule            string    `json:"rule"`
	Line            int       `json:"line"`
	Level           RiskLevel `json:"level"`
	Operation       string    `json:"operation"`
	Problem         string    `json:"problem"`
	SafeAlternative string    `json:"safe_alternative"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Operation, v.Problem)
}

// ExemptionRange is an inclusive interval of 1-indexed source lines within
// which rule evaluation is suppressed. The directive comment lines that
// delimited the block are not part of the range, so an empty block yields
// Start > End and contains nothing.
type ExemptionRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r ExemptionRange) Contains(line int) bool {
	return r.Start <= line && line <= r.End
}

func (r ExemptionRange) String() string {
	return fmt.Sprintf("lines %d-%d", r.Start, r.End)
}

// LocateWarning reports that a statement could not be matched to a source
// line and was assigned the line-1 fallback.
type LocateWarning struct {
	Keyword string `json:"keyword"`
	Preview string `json:"preview"`
}

func (w LocateWarning) String() string {
	return fmt.Sprintf("could not locate statement starting with %q (falling back to line 1): %s", w.Keyword, w.Preview)
}

// FileReport is the per-file analysis result handed to reporters.
type FileReport struct {
	File       string          `json:"file"`
	Violations []Violation     `json:"violations"`
	Warnings   []LocateWarning `json:"warnings,omitempty"`
}
