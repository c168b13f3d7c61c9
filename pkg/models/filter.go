package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Operator is a comparison used by a filter condition
type Operator string

const (
	OperatorEqual          Operator = "="
	OperatorNotEqual       Operator = "!="
	OperatorIn             Operator = "in"
	OperatorNotIn          Operator = "not_in"
	OperatorGreater        Operator = ">"
	OperatorGreaterOrEqual Operator = ">="
	OperatorLess           Operator = "<"
	OperatorLessOrEqual    Operator = "<="
)

// ParseOperator normalizes the operator spellings found in semantic model files
func ParseOperator(raw string) (Operator, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "=", "==", "eq", "equals", "":
		return OperatorEqual, true
	case "!=", "<>", "ne", "not_equals":
		return OperatorNotEqual, true
	case "in":
		return OperatorIn, true
	case "not_in", "not in", "nin":
		return OperatorNotIn, true
	case ">", "gt":
		return OperatorGreater, true
	case ">=", "gte":
		return OperatorGreaterOrEqual, true
	case "<", "lt":
		return OperatorLess, true
	case "<=", "lte":
		return OperatorLessOrEqual, true
	default:
		return "", false
	}
}

// FilterCondition is a single field/operator/value triple
type FilterCondition struct {
	Field    string
	Operator Operator
	Value    any
}

// SQL renders the condition. Field names without a qualifier are resolved
// against ${TABLE}.
func (c FilterCondition) SQL() string {
	field := QualifyColumn(c.Field)

	switch c.Operator {
	case OperatorIn, OperatorNotIn:
		keyword := "IN"
		if c.Operator == OperatorNotIn {
			keyword = "NOT IN"
		}

		return fmt.Sprintf("%s %s (%s)", field, keyword, strings.Join(literalList(c.Value), ", "))
	case OperatorNotEqual:
		return fmt.Sprintf("%s <> %s", field, literal(c.Value))
	default:
		return fmt.Sprintf("%s %s %s", field, c.Operator, literal(c.Value))
	}
}

// Filter is a conjunction of conditions restricting a measure's rows
type Filter struct {
	Conditions []FilterCondition
}

// IsEmpty reports whether the filter restricts anything
func (f *Filter) IsEmpty() bool {
	return f == nil || len(f.Conditions) == 0
}

// SQL joins all conditions with AND
func (f *Filter) SQL() string {
	if f.IsEmpty() {
		return ""
	}

	parts := make([]string, 0, len(f.Conditions))
	for _, cond := range f.Conditions {
		parts = append(parts, cond.SQL())
	}

	return strings.Join(parts, " AND ")
}

// Wrap restricts expr to the filtered rows with a CASE WHEN wrapper
func (f *Filter) Wrap(expr string) string {
	if f.IsEmpty() {
		return expr
	}

	return fmt.Sprintf("CASE WHEN %s THEN %s END", f.SQL(), expr)
}

// Merge returns the conjunction of both filters
func (f *Filter) Merge(other *Filter) *Filter {
	if f.IsEmpty() {
		return other
	}

	if other.IsEmpty() {
		return f
	}

	conditions := make([]FilterCondition, 0, len(f.Conditions)+len(other.Conditions))
	conditions = append(conditions, f.Conditions...)
	conditions = append(conditions, other.Conditions...)

	return &Filter{Conditions: conditions}
}

func literalList(value any) []string {
	switch v := value.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, literal(item))
		}

		return out
	case []string:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, literal(item))
		}

		return out
	default:
		return []string{literal(value)}
	}
}

func literal(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case bool:
		if v {
			return "TRUE"
		}

		return "FALSE"
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	default:
		return "'" + strings.ReplaceAll(fmt.Sprint(v), "'", "''") + "'"
	}
}
