package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"sql-guard/internal/model"
)

// ErrUnmatchedDirective is wrapped by every directive pairing failure, so
// callers can distinguish malformed exemption blocks from parse errors.
var ErrUnmatchedDirective = errors.New("unmatched safety-assured directive")

// A directive line is a single-line comment consisting of exactly the
// directive token: optional whitespace, --, optional whitespace, the token,
// optional trailing whitespace. Case-insensitive. The whole-line anchor keeps
// the token from firing inside identifiers, string literals, or longer
// comments.
var (
	startDirective = regexp.MustCompile(`(?i)^\s*--\s*safety-assured:start\s*$`)
	endDirective   = regexp.MustCompile(`(?i)^\s*--\s*safety-assured:end\s*$`)
)

// ScanExemptions scans the text line by line for safety-assured directive
// comments and returns the exemption ranges they delimit. Start and end
// directives are paired with a stack, so multiple blocks in one file are
// fine, but lexically nested pairs are paired in stack order and behave as
// sequential ranges; there is no nested-scope semantics.
//
// The emitted range excludes the directive lines themselves: a pair at lines
// s and e exempts lines s+1 through e-1 inclusive.
//
// An end directive with no open start, or a start directive left open at end
// of file, is a fatal error for the whole file.
func ScanExemptions(sql string) ([]model.ExemptionRange, error) {
	var ranges []model.ExemptionRange
	var open []int // pending start directive lines

	for i, line := range strings.Split(sql, "\n") {
		lineNum := i + 1
		switch {
		case startDirective.MatchString(line):
			open = append(open, lineNum)
		case endDirective.MatchString(line):
			if len(open) == 0 {
				return nil, fmt.Errorf(
					"%w: 'safety-assured:end' at line %d has no matching 'safety-assured:start' before it",
					ErrUnmatchedDirective, lineNum)
			}
			start := open[len(open)-1]
			open = open[:len(open)-1]
			ranges = append(ranges, model.ExemptionRange{Start: start + 1, End: lineNum - 1})
		}
	}

	if len(open) > 0 {
		return nil, fmt.Errorf(
			"%w: 'safety-assured:start' at line %d is never closed; add a 'safety-assured:end'",
			ErrUnmatchedDirective, open[0])
	}

	return ranges, nil
}

// IsStartDirective reports whether a line is a start directive. Exposed for
// tests and tooling; analysis goes through ScanExemptions.
func IsStartDirective(line string) bool {
	return startDirective.MatchString(line)
}

// IsEndDirective reports whether a line is an end directive.
func IsEndDirective(line string) bool {
	return endDirective.MatchString(line)
}
