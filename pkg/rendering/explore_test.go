package rendering_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethpandaops/semlook/internal/testutil"
	"github.com/ethpandaops/semlook/pkg/explore"
	"github.com/ethpandaops/semlook/pkg/rendering"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inferRentals(t *testing.T, opts explore.Options) (*explore.Explore, *rendering.Renderer, []*explore.Explore) {
	t.Helper()

	project := buildProject(t, testutil.RentalsYAML)

	registry, err := explore.NewRegistry(project.Models)
	require.NoError(t, err)

	e, err := explore.Infer("rentals", registry, opts)
	require.NoError(t, err)

	cfg := rendering.Config{ViewPrefix: opts.ViewPrefix, ExplorePrefix: opts.ExplorePrefix}

	return e, newRenderer(t, cfg, project.Models), []*explore.Explore{e}
}

func TestRenderExplore(t *testing.T) {
	e, r, _ := inferRentals(t, explore.Options{ReverseJoins: true, Calendar: true})

	blocks := r.RenderExplore(e)
	require.Len(t, blocks, 2)

	exploreBlock := blocks[0]
	assert.Equal(t, "explore", exploreBlock.Type)
	assert.Equal(t, "rentals", exploreBlock.Name)
	assert.False(t, hasAttr(exploreBlock, "view_name"))
	assert.Equal(t, "Rentals", attr(exploreBlock, "label"))

	facilities := child(t, exploreBlock, "join", "facilities")
	assert.Equal(t, "left_outer", attr(facilities, "type"))
	assert.Equal(t, "many_to_one", attr(facilities, "relationship"))
	assert.Equal(t, "${rentals.facility} = ${facilities.facility}", attr(facilities, "sql_on"))

	fields, ok := facilities.Attr("fields")
	require.True(t, ok)
	assert.Equal(t, []string{"facilities.dimensions_only*"}, fields.Values)

	reviews := child(t, exploreBlock, "join", "reviews")
	assert.Equal(t, "one_to_many", attr(reviews, "relationship"))
	assert.Equal(t, "${rentals.rental} = ${reviews.rental}", attr(reviews, "sql_on"))
	assert.False(t, hasAttr(reviews, "fields"))

	calendarJoin := child(t, exploreBlock, "join", "rentals_calendar")
	assert.Equal(t, "one_to_one", attr(calendarJoin, "relationship"))

	calendar := blocks[1]
	assert.Equal(t, "view", calendar.Type)
	assert.Equal(t, "rentals_calendar", calendar.Name)

	parameter := child(t, calendar, "parameter", rendering.CalendarParameter)
	assert.Equal(t, []string{"rentals__created_at"}, allowedValues(parameter))
	assert.Equal(t, "rentals__created_at", attr(parameter, "default_value"))
	assert.Equal(t, "Rentals Created At", attr(parameter.Children[0], "label"))

	dimension := child(t, calendar, "dimension_group", rendering.CalendarDimension)
	assert.Equal(t,
		"CASE '{% parameter date_field %}' WHEN 'rentals__created_at' THEN ${rentals.created_at_raw} END",
		attr(dimension, "sql"))
}

func TestRenderExplorePrefixes(t *testing.T) {
	e, r, _ := inferRentals(t, explore.Options{ViewPrefix: "lk_", ExplorePrefix: "x_"})

	blocks := r.RenderExplore(e)
	require.Len(t, blocks, 1)

	assert.Equal(t, "x_rentals", blocks[0].Name)
	assert.Equal(t, "lk_rentals", attr(blocks[0], "view_name"))
	assert.Equal(t, "${lk_rentals.facility} = ${lk_facilities.facility}",
		attr(child(t, blocks[0], "join", "lk_facilities"), "sql_on"))
}

func TestRenderProjectAndWrite(t *testing.T) {
	e, r, explores := inferRentals(t, explore.Options{ReverseJoins: true})
	require.NotNil(t, e)

	project := buildProject(t, testutil.RentalsYAML)

	files, err := r.RenderProject(project.Models, explores)
	require.NoError(t, err)

	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, file.Name)
	}

	assert.Equal(t, []string{
		"rentals.view.lkml",
		"facilities.view.lkml",
		"reviews.view.lkml",
		"rentals.explore.lkml",
	}, names)

	assert.True(t, strings.HasPrefix(files[0].Content, "# Generated by semlook from fixture.yaml. Do not edit.\n\nview: rentals {\n"))
	assert.Equal(t, rendering.KindExplore, files[3].Kind)
	assert.Contains(t, files[3].Content, "include: \"*.view.lkml\"\n\nexplore: rentals {\n")

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	dir := filepath.Join(t.TempDir(), "out")

	paths, err := rendering.WriteFiles(log, dir, files, true)
	require.NoError(t, err)
	assert.Len(t, paths, 4)
	assert.NoDirExists(t, dir)

	paths, err = rendering.WriteFiles(log, dir, files, false)
	require.NoError(t, err)
	require.Len(t, paths, 4)

	content, err := os.ReadFile(paths[3])
	require.NoError(t, err)
	assert.Equal(t, files[3].Content, string(content))
}

func TestHeaderTemplateOverride(t *testing.T) {
	project := buildProject(t, testutil.ConversionYAML)
	r := newRenderer(t, rendering.Config{Labels: rendering.LabelTemplates{Header: "{{ .Kind }} {{ .Name }}"}}, project.Models)

	files, err := r.RenderProject(project.Models, nil)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.True(t, strings.HasPrefix(files[0].Content, "# view orders\n"))
}
