package ops

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tOgg1/weaver/internal/draft"
	"github.com/tOgg1/weaver/internal/models"
)

const (
	U = models.Up
	D = models.Down
	X = models.Unset
)

func perform(t *testing.T, c *Catalog, name string, inputs []*draft.Draft, params ...int) []*draft.Draft {
	t.Helper()
	out, err := c.Perform(name, inputs, params)
	require.NoError(t, err)
	for _, d := range out {
		require.NoError(t, d.Validate())
	}
	return out
}

func solid(wefts, warps int, c models.Cell) *draft.Draft {
	d := draft.New(wefts, warps)
	d.Clear(c)
	return d
}

func TestCatalogLookup(t *testing.T) {
	c := NewCatalog()
	require.Len(t, c.Names(), 17)

	op, ok := c.Get("twill")
	require.True(t, ok)
	require.Equal(t, CategoryStructures, op.Category)

	op, ok = c.Get("flip horiz")
	require.True(t, ok)
	require.Equal(t, "mirror horiz", op.Name)

	_, err := c.Perform("weave harder", nil, nil)
	require.ErrorIs(t, err, ErrUnknownOperation)

	_, err = c.Perform("invert", []*draft.Draft{solid(1, 1, U), solid(1, 1, D)}, nil)
	require.ErrorIs(t, err, ErrTooManyInputs)

	_, err = c.Perform("invert", []*draft.Draft{nil}, nil)
	require.ErrorIs(t, err, ErrNilInput)
}

func TestCatalogIsImmutable(t *testing.T) {
	c := NewCatalog()
	op, _ := c.Get("rectangle")
	op.Params[0].Default = 99
	op.Name = "changed"

	again, _ := c.Get("rectangle")
	require.Equal(t, 10, again.Params[0].Default)
	require.Equal(t, "rectangle", again.Name)
}

func TestClassifications(t *testing.T) {
	cls := NewCatalog().Classifications()
	require.Len(t, cls, 4)
	require.Equal(t, Classification{Category: CategoryBlockDesign, Ops: []string{"rectangle"}}, cls[0])
	require.ElementsMatch(t, []string{"tabby", "twill", "basket", "rib", "random"}, cls[1].Ops)
	require.ElementsMatch(t, []string{"invert", "mirror horiz", "mirror vert", "shift left", "shift up"}, cls[2].Ops)
	require.ElementsMatch(t, []string{"splice", "layer", "mirror", "selvedge", "bind weft floats", "bind warp floats"}, cls[3].Ops)
}

func TestResolveDefaultsAndClamps(t *testing.T) {
	op, _ := NewCatalog().Get("rib")
	require.Equal(t, []int{2, 2, 1}, op.Resolve(nil))
	require.Equal(t, []int{1, 100, 1}, op.Resolve([]int{-4, 500}))

	params, err := op.ParamsFromMap(map[string]int{"repeats": 3})
	require.NoError(t, err)
	require.Equal(t, []int{2, 2, 3}, params)

	_, err = op.ParamsFromMap(map[string]int{"weight": 3})
	require.ErrorIs(t, err, ErrUnknownParam)
}

func TestTwill(t *testing.T) {
	out := perform(t, NewCatalog(), "twill", nil, 3, 1)
	require.Len(t, out, 1)
	d := out[0]
	require.Equal(t, 4, d.Wefts)
	require.Equal(t, 4, d.Warps)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := ((j-i)%4+4)%4 < 1
			require.Equal(t, models.CellOf(want), d.Cell(i, j), "cell %d,%d", i, j)
		}
	}
}

func TestTabbyBasketRib(t *testing.T) {
	c := NewCatalog()

	tabby := perform(t, c, "tabby", nil)[0]
	require.Equal(t, [][]models.Cell{{U, D}, {D, U}}, tabby.Pattern)

	basket := perform(t, c, "basket", nil, 1, 1)[0]
	require.Equal(t, [][]models.Cell{{U, D}, {D, U}}, basket.Pattern)

	basket = perform(t, c, "basket", nil)[0]
	require.Equal(t, [][]models.Cell{
		{U, U, D, D},
		{U, U, D, D},
		{D, D, U, U},
		{D, D, U, U},
	}, basket.Pattern)

	rib := perform(t, c, "rib", nil, 1, 2, 2)[0]
	require.Equal(t, [][]models.Cell{
		{U, D, D, U, D, D},
		{U, D, D, U, D, D},
		{D, U, U, D, U, U},
		{D, U, U, D, U, U},
	}, rib.Pattern)
}

func TestRibSpansTwoUnits(t *testing.T) {
	c := NewCatalog()

	rib := perform(t, c, "rib", nil)[0]
	require.Equal(t, 2, rib.Wefts)
	require.Equal(t, 8, rib.Warps)
	require.Equal(t, [][]models.Cell{
		{U, U, D, D, U, U, D, D},
		{D, D, U, U, D, D, U, U},
	}, rib.Pattern)
}

func TestStructureMasksInputs(t *testing.T) {
	c := NewCatalog()
	in := draft.FromPattern([][]models.Cell{
		{U, U, U, U},
		{D, D, X, X},
	})
	before := models.CopyGrid(in.Pattern)

	out := perform(t, c, "tabby", []*draft.Draft{in})
	require.Len(t, out, 1)
	require.Equal(t, [][]models.Cell{
		{U, D, U, D},
		{D, D, X, X},
	}, out[0].Pattern)
	require.Equal(t, before, in.Pattern)
}

func TestRandomSeeded(t *testing.T) {
	c := NewCatalog()
	a := perform(t, c, "random", nil, 8, 5, 50, 42)[0]
	b := perform(t, c, "random", nil, 8, 5, 50, 42)[0]
	require.Equal(t, a.Pattern, b.Pattern)
	require.Equal(t, 5, a.Wefts)
	require.Equal(t, 8, a.Warps)

	all := perform(t, c, "random", nil, 4, 4, 100, 7)[0]
	for _, row := range all.Pattern {
		require.Equal(t, []models.Cell{U, U, U, U}, row)
	}
	none := perform(t, c, "random", nil, 4, 4, 0, 7)[0]
	for _, row := range none.Pattern {
		require.Equal(t, []models.Cell{D, D, D, D}, row)
	}
}

func TestRandomCatalogSource(t *testing.T) {
	next := uint64(0)
	src := func() uint64 { next++; return next }
	a := perform(t, NewCatalog(WithRandSource(src)), "random", nil)[0]
	next = 0
	b := perform(t, NewCatalog(WithRandSource(src)), "random", nil)[0]
	require.Equal(t, a.Pattern, b.Pattern)
}

func TestRectangle(t *testing.T) {
	c := NewCatalog()
	blank := perform(t, c, "rectangle", nil, 3, 2)[0]
	require.Equal(t, [][]models.Cell{{D, D, D}, {D, D, D}}, blank.Pattern)

	tile := draft.FromPattern([][]models.Cell{{U, X}})
	filled := perform(t, c, "rectangle", []*draft.Draft{tile}, 3, 2)[0]
	require.Equal(t, [][]models.Cell{{U, X, U}, {U, X, U}}, filled.Pattern)
}

func TestSpliceAlternatesRows(t *testing.T) {
	a := solid(2, 2, U)
	b := solid(2, 2, D)
	out := perform(t, NewCatalog(), "splice", []*draft.Draft{a, b})
	require.Len(t, out, 1)
	d := out[0]
	require.Equal(t, 4, d.Wefts)
	require.Equal(t, 2, d.Warps)
	require.Equal(t, [][]models.Cell{{U, U}, {D, D}, {U, U}, {D, D}}, d.Pattern)
}

func TestSpliceUnevenInputs(t *testing.T) {
	a := solid(1, 3, U)
	b := solid(2, 1, D)
	d := perform(t, NewCatalog(), "splice", []*draft.Draft{a, b})[0]
	require.Equal(t, [][]models.Cell{
		{U, U, U},
		{D, X, X},
		{X, X, X},
		{D, X, X},
	}, d.Pattern)

	require.Empty(t, perform(t, NewCatalog(), "splice", nil))
}

func TestLayer(t *testing.T) {
	a := solid(1, 1, U)
	b := solid(1, 1, X)
	d := perform(t, NewCatalog(), "layer", []*draft.Draft{a, b})[0]
	require.Equal(t, 2, d.Wefts)
	require.Equal(t, 2, d.Warps)
	// Row 0 carries layer 0 in column 0; row 1 carries layer 1 in column 1.
	require.Equal(t, [][]models.Cell{{U, D}, {U, X}}, d.Pattern)
}

func TestSelvedge(t *testing.T) {
	c := NewCatalog()
	edge := perform(t, c, "selvedge", nil, 2, 1)[0]
	require.Equal(t, [][]models.Cell{{U, D, U, D}, {D, U, D, U}}, edge.Pattern)

	in := solid(2, 1, X)
	out := perform(t, c, "selvedge", []*draft.Draft{in}, 1, 1)[0]
	require.Equal(t, [][]models.Cell{{U, X, U}, {D, X, D}}, out.Pattern)
}

func TestBindFloats(t *testing.T) {
	in := draft.FromPattern([][]models.Cell{
		{U, U, U, U, U, U, U, U},
		{D, D, D, X, D, D, D, D},
	})
	d := perform(t, NewCatalog(), "bind weft floats", []*draft.Draft{in}, 3)[0]
	require.Equal(t, []models.Cell{U, U, U, D, U, U, U, D}, d.Pattern[0])
	require.Equal(t, []models.Cell{D, D, D, X, D, D, D, U}, d.Pattern[1])
	require.Equal(t, U, in.Pattern[0][3])

	col := draft.FromPattern([][]models.Cell{{U}, {U}, {U}})
	w := perform(t, NewCatalog(), "bind warp floats", []*draft.Draft{col}, 2)[0]
	require.Equal(t, [][]models.Cell{{U}, {U}, {D}}, w.Pattern)
}

func TestTransformsDoNotMutateInputs(t *testing.T) {
	c := NewCatalog()
	in := draft.FromPattern([][]models.Cell{
		{U, D, D},
		{D, X, U},
	})
	before := models.CopyGrid(in.Pattern)

	inv := perform(t, c, "invert", []*draft.Draft{in})[0]
	require.Equal(t, [][]models.Cell{{D, U, U}, {U, X, D}}, inv.Pattern)

	h := perform(t, c, "mirror horiz", []*draft.Draft{in})[0]
	require.Equal(t, [][]models.Cell{{D, D, U}, {U, X, D}}, h.Pattern)

	v := perform(t, c, "mirror vert", []*draft.Draft{in})[0]
	require.Equal(t, [][]models.Cell{{D, X, U}, {U, D, D}}, v.Pattern)

	sl := perform(t, c, "shift left", []*draft.Draft{in}, 2)[0]
	require.Equal(t, [][]models.Cell{{D, U, D}, {U, D, X}}, sl.Pattern)

	su := perform(t, c, "shift up", []*draft.Draft{in}, 3)[0]
	require.Equal(t, [][]models.Cell{{D, X, U}, {U, D, D}}, su.Pattern)

	cp := perform(t, c, "mirror", []*draft.Draft{in})[0]
	require.Equal(t, before, cp.Pattern)
	cp.Pattern[0][0] = D

	require.Equal(t, before, in.Pattern)
}
