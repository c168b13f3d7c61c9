package rendering

import (
	"fmt"
	"strings"

	"github.com/ethpandaops/semlook/pkg/explore"
	"github.com/ethpandaops/semlook/pkg/models"
	"github.com/ethpandaops/semlook/pkg/rendering/lookml"
)

// CalendarDimension is the dimension group of the calendar view
const CalendarDimension = "calendar_date"

// CalendarParameter selects which date the calendar dimension follows
const CalendarParameter = "date_field"

//nolint:gochecknoglobals // fixed timeframe list
var calendarTimeframes = []string{"raw", "date", "week", "month", "quarter", "year"}

// RenderExplore renders the explore block and, when the explore has one,
// the calendar view it joins
func (r *Renderer) RenderExplore(e *explore.Explore) []*lookml.Block {
	block := lookml.NewBlock("explore", e.Name)

	if e.Name != e.View {
		block.Add(lookml.Bare("view_name", e.View))
	}

	block.Add(
		lookml.String("label", fieldLabel(e.Fact.Label, e.Fact.Name)),
		lookml.String("description", e.Fact.Description),
	)

	for _, join := range e.Joins {
		joinBlock := lookml.NewBlock("join", join.View).Add(
			lookml.Bare("type", join.Type),
			lookml.Bare("relationship", string(join.Relationship)),
			lookml.SQL("sql_on", join.SQLOn(e.View)),
		)

		if fields := join.Fields(); fields != nil {
			joinBlock.Add(lookml.List("fields", fields...))
		}

		block.AddChild(joinBlock)
	}

	if e.Calendar == nil {
		return []*lookml.Block{block}
	}

	block.AddChild(lookml.NewBlock("join", e.Calendar.Name).Add(
		lookml.Bare("relationship", string(explore.OneToOne)),
		lookml.SQL("sql", ""),
	))

	return []*lookml.Block{block, renderCalendar(e.Calendar)}
}

// renderCalendar renders the field-only view whose dimension group follows
// the date chosen through the date_field parameter
func renderCalendar(calendar *explore.Calendar) *lookml.Block {
	parameter := lookml.NewBlock("parameter", CalendarParameter).Add(
		lookml.Bare("type", "unquoted"),
		lookml.String("label", "Date Field"),
	)

	var sql strings.Builder

	sql.WriteString("CASE '{% parameter " + CalendarParameter + " %}'")

	for _, option := range calendar.Options {
		parameter.AddChild(lookml.NewBlock("allowed_value", "").Add(
			lookml.String("label", option.Label),
			lookml.String("value", option.Value),
		))

		fmt.Fprintf(&sql, " WHEN '%s' THEN %s", option.Value, option.Field())
	}

	sql.WriteString(" END")

	parameter.Add(lookml.String("default_value", calendar.Options[0].Value))

	dimension := lookml.NewBlock("dimension_group", CalendarDimension).Add(
		lookml.Bare("type", "time"),
		lookml.List("timeframes", calendarTimeframes...),
		lookml.SQL("sql", sql.String()),
		lookml.String("label", models.Title(CalendarDimension)),
	)

	return lookml.NewBlock("view", calendar.Name).AddChild(parameter, dimension)
}
