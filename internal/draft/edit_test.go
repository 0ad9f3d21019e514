package draft

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tOgg1/weaver/internal/models"
)

func TestRowEditsKeepInvariants(t *testing.T) {
	d := FromPattern([][]models.Cell{
		{U, D},
		{D, U},
	})
	d.AddShuttle(models.Shuttle{Name: "red", Color: "#ff0000"})

	d.InsertRow(1, 1, 0)
	requireInvariants(t, d)
	require.Equal(t, 3, d.Wefts)
	require.Equal(t, []models.Cell{X, X}, d.Pattern[1])
	require.Equal(t, []int{0, 1, 0}, d.RowShuttleMapping)

	d.CloneRow(0, 2, 0, 0)
	requireInvariants(t, d)
	require.Equal(t, []models.Cell{D, U}, d.Pattern[0])
	require.Equal(t, 4, d.Wefts)

	d.DeleteRow(0)
	d.DeleteRow(0)
	requireInvariants(t, d)
	require.Equal(t, [][]models.Cell{{X, X}, {D, U}}, d.Pattern)

	d.DeleteRow(10)
	d.InsertRow(99, 7, 7)
	requireInvariants(t, d)
	require.Equal(t, -1, d.RowShuttleMapping[2])
}

func TestColEditsKeepInvariants(t *testing.T) {
	d := FromPattern([][]models.Cell{
		{U, D, U},
		{D, U, D},
	})

	d.InsertCol(0, 0, 0)
	requireInvariants(t, d)
	require.Equal(t, []models.Cell{X, U, D, U}, d.Pattern[0])

	d.CloneCol(4, 1, 0, 0)
	requireInvariants(t, d)
	require.Equal(t, []models.Cell{X, U, D, U, U}, d.Pattern[0])
	require.Equal(t, []models.Cell{X, D, U, D, D}, d.Pattern[1])

	d.DeleteCol(0)
	requireInvariants(t, d)
	require.Equal(t, 4, d.Warps)
	require.Equal(t, []models.Cell{U, D, U, U}, d.Pattern[0])

	d.CloneCol(0, 9, 0, 0)
	require.Equal(t, 4, d.Warps)
}

func TestMappingOverloadsResize(t *testing.T) {
	d := New(4, 3)
	d.AddShuttle(models.Shuttle{Name: "b"})

	d.OverloadRowShuttleMapping([]int{1})
	require.Equal(t, []int{1, 1, 1, 1}, d.RowShuttleMapping)

	d.OverloadColShuttleMapping([]int{0, 1, 5, 0, 1})
	require.Equal(t, []int{0, 1, -1}, d.ColShuttleMapping)

	d.OverloadShuttles([]models.Shuttle{models.DefaultShuttle()})
	require.Equal(t, []int{-1, -1, -1, -1}, d.RowShuttleMapping)
	requireInvariants(t, d)
}

func TestUpdateFromPatternTiles(t *testing.T) {
	d := New(5, 4)
	d.AddShuttle(models.Shuttle{Name: "b"})
	d.AddWarpSystem(models.NewSystem(1))

	d.UpdateWeftShuttlesFromPattern([]int{0, 1})
	require.Equal(t, []int{0, 1, 0, 1, 0}, d.RowShuttleMapping)

	d.UpdateWarpSystemsFromPattern([]int{1, 1, 0})
	require.Equal(t, []int{1, 1, 0, 1}, d.ColSystemMapping)
	requireInvariants(t, d)
}

func TestYarnPathsUpCellsShowWeft(t *testing.T) {
	d := FromPattern([][]models.Cell{
		{U, X, U},
		{D, D, D},
	})
	paths := d.YarnPaths()
	require.Equal(t, []YarnVertex{{Warp: 0, Face: WeftOver}, {Warp: 2, Face: WeftOver}}, paths[0].Vertices)
	require.Equal(t, []YarnVertex{{Warp: 0, Face: WarpOver}, {Warp: 2, Face: WarpOver}}, paths[1].Vertices)
}

func TestYarnPathsCacheInvalidation(t *testing.T) {
	d := FromPattern([][]models.Cell{
		{U, U, D, D, X},
	})
	paths := d.YarnPaths()
	require.Len(t, paths, 1)
	require.Equal(t, []YarnVertex{
		{Warp: 0, Face: WeftOver},
		{Warp: 2, Face: WarpOver},
		{Warp: 3, Face: WarpOver},
	}, paths[0].Vertices)
	require.Equal(t, 0, paths[0].Shuttle)

	d.SetCell(0, 4, U)
	paths = d.YarnPaths()
	require.Equal(t, YarnVertex{Warp: 4, Face: WeftOver}, paths[0].Vertices[len(paths[0].Vertices)-1])

	d.Fill(d.Pattern, FillInvert)
	require.Equal(t, WarpOver, d.YarnPaths()[0].Vertices[0].Face)
}
