package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Severity of an issue
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// IssueType classifies an issue
type IssueType string

const (
	// IssueUnreachableMeasure is a required measure on a model that cannot be
	// joined from the metric's primary entity model
	IssueUnreachableMeasure IssueType = "unreachable_measure"
	// IssueInvalidPrimaryEntity is a declared metric entity no model owns
	IssueInvalidPrimaryEntity IssueType = "invalid_primary_entity"
	// IssueMissingMeasure is a required measure no model defines
	IssueMissingMeasure IssueType = "missing_measure"
	// IssueAmbiguousPrimaryEntity is a primary entity declared by several models
	IssueAmbiguousPrimaryEntity IssueType = "ambiguous_primary_entity"
	// IssueMetricCycle is a derived metric that references itself
	IssueMetricCycle IssueType = "metric_cycle"
	// IssueMissingMetric is a derived metric referencing an unknown metric
	IssueMissingMetric IssueType = "missing_metric"
)

// Issue is one validation finding
type Issue struct {
	Severity      Severity
	Type          IssueType
	Metric        string
	Model         string
	PrimaryEntity string
	Measure       string
	MeasureModel  string
	Message       string
	Suggestion    string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s: %s", strings.ToUpper(string(i.Severity)), i.Type, i.Message)
}

// Result contains every issue found in one validation run
type Result struct {
	Issues []Issue
}

// HasErrors reports whether any issue has error severity
func (r *Result) HasErrors() bool {
	return len(r.Errors()) > 0
}

// Errors returns the error-severity issues
func (r *Result) Errors() []Issue {
	return r.bySeverity(SeverityError)
}

// Warnings returns the warning-severity issues
func (r *Result) Warnings() []Issue {
	return r.bySeverity(SeverityWarning)
}

// ByType returns the issues of one type
func (r *Result) ByType(issueType IssueType) []Issue {
	out := make([]Issue, 0)

	for _, issue := range r.Issues {
		if issue.Type == issueType {
			out = append(out, issue)
		}
	}

	return out
}

// Err returns a *ValidationError in strict mode when errors exist
func (r *Result) Err(strict bool) error {
	if strict && r.HasErrors() {
		return &ValidationError{Result: r}
	}

	return nil
}

// Report renders the issues grouped by metric, with suggestions
func (r *Result) Report() string {
	var sb strings.Builder

	if len(r.Issues) == 0 {
		sb.WriteString("Validation passed: no issues found\n")

		return sb.String()
	}

	status := "passed with warnings"
	if r.HasErrors() {
		status = "failed"
	}

	fmt.Fprintf(&sb, "Validation %s: %d error(s), %d warning(s)\n", status, len(r.Errors()), len(r.Warnings()))

	groups := make(map[string][]Issue)
	for _, issue := range r.Issues {
		key := groupKey(issue)
		groups[key] = append(groups[key], issue)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintf(&sb, "\n%s\n", key)

		for _, issue := range groups[key] {
			fmt.Fprintf(&sb, "  %s\n", issue)

			if issue.Suggestion != "" {
				fmt.Fprintf(&sb, "    suggestion: %s\n", issue.Suggestion)
			}
		}
	}

	return sb.String()
}

func (r *Result) bySeverity(severity Severity) []Issue {
	out := make([]Issue, 0)

	for _, issue := range r.Issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}

	return out
}

func (r *Result) add(issue Issue) {
	r.Issues = append(r.Issues, issue)
}

func groupKey(issue Issue) string {
	switch {
	case issue.Metric != "" && issue.Model != "":
		return fmt.Sprintf("metric %s (model %s)", issue.Metric, issue.Model)
	case issue.Metric != "":
		return fmt.Sprintf("metric %s", issue.Metric)
	default:
		return fmt.Sprintf("entity %s", issue.PrimaryEntity)
	}
}
