package render

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/weaver/internal/draft"
	"github.com/tOgg1/weaver/internal/loom"
	"github.com/tOgg1/weaver/internal/models"
	"github.com/tOgg1/weaver/internal/testutil"
)

const (
	U = models.Up
	D = models.Down
	X = models.Unset
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func TestRenderPlain(t *testing.T) {
	d := draft.FromPattern([][]models.Cell{
		{U, D, X},
		{D, U, U},
	})

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, d, Options{}))
	require.Equal(t, "█· \n·██\n", buf.String())
}

func TestRenderTruncates(t *testing.T) {
	d := testutil.Twill(6, 10)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, d, Options{MaxRows: 2, MaxCols: 4}))
	require.Equal(t, "██··\n·██·\n(showing 2 of 6 wefts, 4 of 10 warps)\n", buf.String())
}

func TestRenderSkipsHiddenRows(t *testing.T) {
	d := draft.FromPattern([][]models.Cell{{U}, {D}, {U}})
	d.AddWeftSystem(models.NewSystem(1))
	d.WeftSystems[1].Visible = false
	d.OverloadRowSystemMapping([]int{0, 1, 0})

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, d, Options{}))
	require.Equal(t, "█\n█\n", buf.String())
}

func TestRenderColorMatchesPlainText(t *testing.T) {
	d := testutil.Random(5, 7, 3)
	d.Shuttles[0].Color = "#c81e1e"
	d.AddShuttle(models.Shuttle{ID: 1, Name: "bad", Color: "not a color", Visible: true})
	d.OverloadColShuttleMapping([]int{0, 1, 0, 1, 0, 1, 0})

	var plain, color bytes.Buffer
	require.NoError(t, Render(&plain, d, Options{}))
	require.NoError(t, Render(&color, d, Options{Color: true}))
	require.Equal(t, plain.String(), ansi.ReplaceAllString(color.String(), ""))
}

func TestRenderLoomFrame(t *testing.T) {
	d := testutil.Twill(4, 4)
	l := loom.New(d, 4, 4)
	require.True(t, l.RecomputeLoom(d))

	var buf bytes.Buffer
	require.NoError(t, RenderLoom(&buf, l, Options{}))
	require.Equal(t, ""+
		"type: frame  epi: 10 in\n"+
		"frames: 4 of 4  treadles: 4 of 4\n"+
		"threading: 1 2 3 4\n"+
		"treadling: 1 2 3 4\n"+
		"tieup:\n"+
		"  1 █··█\n"+
		"  2 ██··\n"+
		"  3 ·██·\n"+
		"  4 ··██\n", buf.String())
}

func TestRenderLoomUnassignedAndTruncated(t *testing.T) {
	d := draft.New(2, 5)
	l := loom.New(d, 2, 2)
	l.Threading[1] = 1

	var buf bytes.Buffer
	require.NoError(t, RenderLoom(&buf, l, Options{MaxCols: 3}))
	require.Contains(t, buf.String(), "threading: - 2 - …(+2)\n")
	require.Contains(t, buf.String(), "treadling: - -\n")
}

func TestRenderLoomJacquard(t *testing.T) {
	l := loom.New(draft.New(2, 2), 8, 10)
	l.OverloadType(loom.TypeJacquard)

	var buf bytes.Buffer
	require.NoError(t, RenderLoom(&buf, l, Options{}))
	require.Equal(t, "type: jacquard  epi: 10 in\nno frame program (jacquard)\n", buf.String())
}
