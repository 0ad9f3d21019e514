package fileio

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tOgg1/weaver/internal/draft"
	"github.com/tOgg1/weaver/internal/loom"
	"github.com/tOgg1/weaver/internal/models"
)

var testHeader = WIFHeader{
	Date:          "March 3, 2024",
	Developers:    "weaver tests",
	SourceProgram: "weaver",
	SourceVersion: "1.0",
}

func twillPair(t *testing.T) (*draft.Draft, *loom.Loom) {
	t.Helper()
	d := draft.New(6, 8)
	d.Fill([][]models.Cell{
		{models.Up, models.Up, models.Down, models.Down},
		{models.Down, models.Up, models.Up, models.Down},
		{models.Down, models.Down, models.Up, models.Up},
		{models.Up, models.Down, models.Down, models.Up},
	}, draft.FillOriginal)
	d.AddShuttle(models.Shuttle{Name: "red", Color: "#C81E1E", Thickness: 50, Visible: true})
	d.AddShuttle(models.Shuttle{Name: "bad", Color: "not a color"})
	d.OverloadColShuttleMapping([]int{0, 1, 0, 1, 0, 1, 0, 2})
	d.OverloadRowShuttleMapping([]int{1, 1, 0, 0, 2, 2})

	l := loom.New(d, 4, 6)
	require.True(t, l.RecomputeLoom(d))
	return d, l
}

func TestWIFSaveLoadSaveIsByteIdentical(t *testing.T) {
	d, l := twillPair(t)

	first, err := SaveWIF(d, l, testHeader)
	require.NoError(t, err)

	env, err := LoadWIF(first, "twill")
	require.NoError(t, err)
	ld, ll := env.Pair(0)
	require.NotNil(t, ll)

	second, err := SaveWIF(ld, ll, testHeader)
	require.NoError(t, err)
	require.Equal(t, string(first), string(second))

	require.Equal(t, d.Pattern, ld.Pattern)
	require.Equal(t, l.Threading, ll.Threading)
	require.Equal(t, l.Treadling, ll.Treadling)
	require.Equal(t, d.ColShuttleMapping, ld.ColShuttleMapping)
	require.Equal(t, d.RowShuttleMapping, ld.RowShuttleMapping)
	require.Equal(t, "#c81e1e", ld.Shuttles[1].Color)
	require.Equal(t, "#000000", ld.Shuttles[2].Color)
	require.Equal(t, "twill", ld.Name)
}

func TestWIFSaveLayout(t *testing.T) {
	d, l := twillPair(t)
	out, err := SaveWIF(d, l, testHeader)
	require.NoError(t, err)
	text := string(out)

	require.True(t, strings.HasPrefix(text, "[WIF]\nVersion=1.1\nDate=March 3, 2024\nDevelopers=weaver tests\nSource Program=weaver\nSource Version=1.0\n[CONTENTS]\n"))
	require.Contains(t, text, "[COLOR PALETTE]\nEntries=3\nForm=RGB\nRange=0,255\n")
	require.Contains(t, text, "[WEAVING]\nShafts=4\nTreadles=6\nRising Shed=yes\n")
	require.Contains(t, text, "[WARP]\nThreads=8\nColors=3\n")
	require.Contains(t, text, "[WEFT]\nThreads=6\nColors=3\n")
	require.Contains(t, text, "[COLOR TABLE]\n1=51,51,51\n2=200,30,30\n3=0,0,0\n")

	// End 1 is the rightmost column.
	require.Contains(t, text, "[THREADING]\n8=1\n7=2\n")
	require.Contains(t, text, "[WARP COLORS]\n1=3\n2=1\n")

	order := []string{"[COLOR PALETTE]", "[WEAVING]", "[WARP]", "[WEFT]", "[TIEUP]", "[COLOR TABLE]", "[THREADING]", "[WARP COLORS]", "[TREADLING]", "[WEFT COLORS]"}
	last := -1
	for _, section := range order {
		idx := strings.Index(text, section)
		require.Greater(t, idx, last, section)
		last = idx
	}
}

func TestWIFOmitsUnassigned(t *testing.T) {
	d := draft.New(2, 2)
	l := loom.New(d, 2, 2)
	l.Threading = []int{-1, 1}
	l.Treadling = []int{-1, -1}
	out, err := SaveWIF(d, l, testHeader)
	require.NoError(t, err)
	require.Contains(t, string(out), "[THREADING]\n1=2\n[WARP COLORS]")
	require.Contains(t, string(out), "[TREADLING]\n[WEFT COLORS]")
	require.Contains(t, string(out), "[TIEUP]\n[COLOR TABLE]")
}

func TestLoadWIFForeignFile(t *testing.T) {
	src := `; exported elsewhere
[wif]
Version=1.1
[Contents]
Color Palette=true
Weaving=true
Warp=true
Weft=true
Threading=true
Treadling=true
Tieup=true
Color Table=true
Warp Colors=false
[Color Palette]
Form=RGB
Range=0,999
Entries=2
[Weaving]
Shafts=2
Treadles=2
[Warp]
Threads=4
Color=2
[Weft]
Threads=2
[Tieup]
1=1
2=2
[Threading]
1=1
2=2
3=1
4=2
[Treadling]
1=1
2=2,1
[Color Table]
1=999,0,0
2=0,0,999
[Warp Colors]
1=1
`
	env, err := LoadWIF([]byte(src), "foreign")
	require.NoError(t, err)
	d, l := env.Pair(0)

	// End 1 maps to column 3.
	require.Equal(t, []int{1, 0, 1, 0}, l.Threading)
	require.Equal(t, []int{0, 1}, l.Treadling)
	require.Equal(t, [][]models.Cell{
		{models.Down, models.Up, models.Down, models.Up},
		{models.Up, models.Down, models.Up, models.Down},
	}, d.Pattern)
	require.Equal(t, "#ff0000", d.Shuttles[0].Color)
	require.Equal(t, "#0000ff", d.Shuttles[1].Color)
	// Warp colors are switched off, so the [Warp] default applies.
	require.Equal(t, []int{1, 1, 1, 1}, d.ColShuttleMapping)
	require.Equal(t, []int{0, 0}, d.RowShuttleMapping)
}

func TestLoadWIFMissingSections(t *testing.T) {
	env, err := LoadWIF([]byte("[WIF]\n[WARP]\nThreads=3\n"), "sparse")
	require.NoError(t, err)
	d, l := env.Pair(0)
	require.Equal(t, 3, d.Warps)
	require.Equal(t, 0, d.Wefts)
	require.Equal(t, []int{-1, -1, -1}, l.Threading)
	require.NoError(t, d.Validate())
}

func TestSaveWIFDerivesProgramForJacquard(t *testing.T) {
	d, _ := twillPair(t)
	l := loom.New(d, 8, 10)
	l.OverloadType(loom.TypeJacquard)

	out, err := SaveWIF(d, l, DefaultWIFHeader(time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	env, err := LoadWIF(out, "derived")
	require.NoError(t, err)
	require.Equal(t, d.Pattern, env.Drafts[0].Pattern)
	require.Equal(t, []int{-1, -1, -1, -1, -1, -1, -1, -1}, l.Threading)
}
