package explore

import (
	"fmt"

	"github.com/ethpandaops/semlook/pkg/models"
)

// CalendarSuffix is appended to the fact view name for the calendar view
const CalendarSuffix = "_calendar"

// buildCalendar collects the date selector dimensions of the fact and every
// joined model. It returns nil when there is nothing to select.
func buildCalendar(explore *Explore, registry *Registry) *Calendar {
	calendar := &Calendar{Name: explore.View + CalendarSuffix}

	calendar.Options = append(calendar.Options, calendarOptions(explore.Fact, explore.View)...)

	for _, join := range explore.Joins {
		model, ok := registry.Model(join.Model)
		if !ok {
			continue
		}

		calendar.Options = append(calendar.Options, calendarOptions(model, join.View)...)
	}

	if len(calendar.Options) == 0 {
		return nil
	}

	return calendar
}

func calendarOptions(model *models.ProcessedModel, view string) []CalendarOption {
	dims := model.DateSelectorDimensions()
	options := make([]CalendarOption, 0, len(dims))

	for _, dim := range dims {
		options = append(options, CalendarOption{
			Label:     fmt.Sprintf("%s %s", models.Title(model.Name), models.Title(dim.Name)),
			Value:     fmt.Sprintf("%s__%s", model.Name, dim.Name),
			View:      view,
			Dimension: dim.Name,
		})
	}

	return options
}
