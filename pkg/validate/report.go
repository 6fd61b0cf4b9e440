package validate

import (
	"fmt"
	"sort"
	"strings"
)

// Severity classifies a finding. Errors block publication; warnings
// are informational only and never block anything.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one result from one check: what was checked, how serious
// the problem is, a human-readable message, and the offending ids.
type Finding struct {
	Check    string   `json:"check"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	IDs      []string `json:"ids,omitempty"`
}

func (f Finding) String() string {
	if len(f.IDs) == 0 {
		return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Check, f.Message)
	}
	return fmt.Sprintf("[%s] %s: %s (%s)", f.Severity, f.Check, f.Message, strings.Join(f.IDs, ", "))
}

// Report collects the findings of all checks over one world.
type Report struct {
	World    string    `json:"world"`
	Findings []Finding `json:"findings"`
}

// HasErrors reports whether any finding is an error. A world with
// errors must not be made playable.
func (r *Report) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only the error findings.
func (r *Report) Errors() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// Warnings returns only the warning findings.
func (r *Report) Warnings() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityWarning {
			out = append(out, f)
		}
	}
	return out
}

func (r *Report) add(check string, sev Severity, msg string, ids ...string) {
	r.Findings = append(r.Findings, Finding{Check: check, Severity: sev, Message: msg, IDs: ids})
}

// sortFindings orders findings by check name, then severity (errors
// first), then message, so reports are stable across runs.
func (r *Report) sortFindings() {
	sort.Slice(r.Findings, func(i, j int) bool {
		a, b := r.Findings[i], r.Findings[j]
		if a.Check != b.Check {
			return a.Check < b.Check
		}
		if a.Severity != b.Severity {
			return a.Severity == SeverityError
		}
		return a.Message < b.Message
	})
}
