package explore

import (
	"fmt"
	"strings"

	"github.com/ethpandaops/semlook/pkg/models"
)

// ExposeLevel controls which fields of a joined view an explore shows
type ExposeLevel string

const (
	ExposeAll            ExposeLevel = "all"
	ExposeDimensionsOnly ExposeLevel = "dimensions_only"
)

// DimensionsOnlySet is the name of the field set restricting a join
const DimensionsOnlySet = "dimensions_only"

// ParseExposeLevel parses an expose level; empty is not an error and
// returns "" so callers can fall back to the entity default
func ParseExposeLevel(raw string) (ExposeLevel, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return "", nil
	case "all", "full":
		return ExposeAll, nil
	case "dimensions_only", "dimensions":
		return ExposeDimensionsOnly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownExpose, raw)
	}
}

// Relationship is the join cardinality from the fact side
type Relationship string

const (
	ManyToOne Relationship = "many_to_one"
	OneToMany Relationship = "one_to_many"
	OneToOne  Relationship = "one_to_one"
)

// JoinTypeLeftOuter is the only join type inferred
const JoinTypeLeftOuter = "left_outer"

// Join is one inferred explore join
type Join struct {
	Model        string
	View         string
	Relationship Relationship
	Type         string
	// FactEntity is the entity field on the fact view, TargetEntity the one
	// on the joined view
	FactEntity   string
	TargetEntity string
	FactExpr     string
	TargetExpr   string
	Expose       ExposeLevel
	Reverse      bool
}

// Fields returns the explore field restriction, nil meaning every field
func (j Join) Fields() []string {
	if j.Expose == ExposeAll {
		return nil
	}

	return []string{fmt.Sprintf("%s.%s*", j.View, DimensionsOnlySet)}
}

// SQLOn returns the join condition between the fact view and the joined view
func (j Join) SQLOn(factView string) string {
	return fmt.Sprintf("${%s.%s} = ${%s.%s}", factView, j.FactEntity, j.View, j.TargetEntity)
}

// CalendarOption is one selectable date field of the calendar view
type CalendarOption struct {
	Label     string
	Value     string
	View      string
	Dimension string
}

// Field returns the raw timestamp reference of the option
func (o CalendarOption) Field() string {
	return fmt.Sprintf("${%s.%s_raw}", o.View, o.Dimension)
}

// Calendar is a synthesized view letting users pick which date drives the
// explore's time filters
type Calendar struct {
	Name    string
	Options []CalendarOption
}

// Explore is an inferred explore centered on a fact model
type Explore struct {
	Name     string
	Fact     *models.ProcessedModel
	View     string
	Joins    []Join
	Calendar *Calendar
}

// JoinedModels returns the names of the joined models in join order
func (e *Explore) JoinedModels() []string {
	out := make([]string, 0, len(e.Joins))
	for _, join := range e.Joins {
		out = append(out, join.Model)
	}

	return out
}
