package explore_test

import (
	"testing"

	"github.com/ethpandaops/semlook/internal/testutil"
	"github.com/ethpandaops/semlook/pkg/builder"
	"github.com/ethpandaops/semlook/pkg/explore"
	"github.com/ethpandaops/semlook/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rentalsRegistry(t *testing.T) *explore.Registry {
	t.Helper()

	project, err := builder.Build(testutil.Documents(t, testutil.RentalsYAML))
	require.NoError(t, err)

	registry, err := explore.NewRegistry(project.Models)
	require.NoError(t, err)

	return registry
}

func TestInferRentals(t *testing.T) {
	result, err := explore.Infer("rentals", rentalsRegistry(t), explore.Options{ReverseJoins: true})
	require.NoError(t, err)

	require.Len(t, result.Joins, 2)
	assert.Equal(t, []string{"facilities", "reviews"}, result.JoinedModels())

	facilities := result.Joins[0]
	assert.Equal(t, explore.ManyToOne, facilities.Relationship)
	assert.Equal(t, explore.JoinTypeLeftOuter, facilities.Type)
	assert.Equal(t, explore.ExposeDimensionsOnly, facilities.Expose)
	assert.Equal(t, []string{"facilities.dimensions_only*"}, facilities.Fields())
	assert.Equal(t, "${rentals.facility} = ${facilities.facility}", facilities.SQLOn(result.View))
	assert.False(t, facilities.Reverse)

	reviews := result.Joins[1]
	assert.Equal(t, explore.OneToMany, reviews.Relationship)
	assert.Equal(t, explore.ExposeAll, reviews.Expose)
	assert.Nil(t, reviews.Fields())
	assert.Equal(t, "${rentals.rental} = ${reviews.rental}", reviews.SQLOn(result.View))
	assert.True(t, reviews.Reverse)

	assert.Nil(t, result.Calendar)
}

func TestInferOptions(t *testing.T) {
	tests := []struct {
		name    string
		fact    string
		opts    explore.Options
		joins   []string
		exposes []explore.ExposeLevel
		view    string
		explore string
	}{
		{
			name:    "no reverse joins",
			fact:    "rentals",
			opts:    explore.Options{},
			joins:   []string{"facilities"},
			exposes: []explore.ExposeLevel{explore.ExposeDimensionsOnly},
			view:    "rentals",
			explore: "rentals",
		},
		{
			name: "override expose",
			fact: "rentals",
			opts: explore.Options{
				ReverseJoins: true,
				Overrides: map[string]explore.ExposeLevel{
					"facilities": explore.ExposeAll,
					"reviews":    explore.ExposeDimensionsOnly,
				},
			},
			joins:   []string{"facilities", "reviews"},
			exposes: []explore.ExposeLevel{explore.ExposeAll, explore.ExposeDimensionsOnly},
			view:    "rentals",
			explore: "rentals",
		},
		{
			name:    "reviews fact joins rentals forward only",
			fact:    "reviews",
			opts:    explore.Options{ReverseJoins: true, ViewPrefix: "sem_", ExplorePrefix: "x_"},
			joins:   []string{"rentals"},
			exposes: []explore.ExposeLevel{explore.ExposeAll},
			view:    "sem_reviews",
			explore: "x_reviews",
		},
		{
			name:    "facilities fact joins rentals in reverse",
			fact:    "facilities",
			opts:    explore.Options{ReverseJoins: true},
			joins:   []string{"rentals"},
			exposes: []explore.ExposeLevel{explore.ExposeDimensionsOnly},
			view:    "facilities",
			explore: "facilities",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := explore.Infer(tt.fact, rentalsRegistry(t), tt.opts)
			require.NoError(t, err)

			assert.Equal(t, tt.joins, result.JoinedModels())
			assert.Equal(t, tt.view, result.View)
			assert.Equal(t, tt.explore, result.Name)

			for i, join := range result.Joins {
				assert.Equal(t, tt.exposes[i], join.Expose, join.Model)
				assert.NotEqual(t, tt.fact, join.Model)
			}
		})
	}
}

func TestInferCalendar(t *testing.T) {
	result, err := explore.Infer("rentals", rentalsRegistry(t), explore.Options{Calendar: true, ViewPrefix: "v_"})
	require.NoError(t, err)

	require.NotNil(t, result.Calendar)
	assert.Equal(t, "v_rentals_calendar", result.Calendar.Name)
	require.Len(t, result.Calendar.Options, 1)

	option := result.Calendar.Options[0]
	assert.Equal(t, "Rentals Created At", option.Label)
	assert.Equal(t, "rentals__created_at", option.Value)
	assert.Equal(t, "${v_rentals.created_at_raw}", option.Field())
}

func TestInferUnknownFact(t *testing.T) {
	_, err := explore.Infer("nope", rentalsRegistry(t), explore.Options{})
	require.ErrorIs(t, err, explore.ErrModelNotFound)
}

func TestRegistryAmbiguousEntity(t *testing.T) {
	primary := func(name, entity string) *models.ProcessedModel {
		return &models.ProcessedModel{
			Name:     name,
			Entities: []models.Entity{{Name: entity, Type: models.EntityPrimary}},
		}
	}

	_, err := explore.NewRegistry([]*models.ProcessedModel{
		primary("customers", "customer"),
		primary("customers_v2", "customer"),
	})
	require.ErrorIs(t, err, explore.ErrAmbiguousEntity)
}

func TestRegistryDefaultFacts(t *testing.T) {
	assert.Equal(t, []string{"rentals", "facilities", "reviews"}, rentalsRegistry(t).DefaultFacts())
}

func TestParseExposeLevel(t *testing.T) {
	level, err := explore.ParseExposeLevel("ALL")
	require.NoError(t, err)
	assert.Equal(t, explore.ExposeAll, level)

	level, err = explore.ParseExposeLevel("")
	require.NoError(t, err)
	assert.Empty(t, level)

	_, err = explore.ParseExposeLevel("some")
	require.ErrorIs(t, err, explore.ErrUnknownExpose)
}
