package ops

import (
	"math/rand/v2"

	"github.com/tOgg1/weaver/internal/draft"
	"github.com/tOgg1/weaver/internal/models"
)

const (
	paramMin = 1
	paramMax = 100
)

// unit builds a rows x cols tile from an up-predicate.
func unit(rows, cols int, up func(i, j int) bool) [][]models.Cell {
	cells := models.Grid(rows, cols, models.Down)
	for i := range cells {
		for j := range cells[i] {
			cells[i][j] = models.CellOf(up(i, j))
		}
	}
	return cells
}

// stamp materializes a structure unit on its own, or masks it into a copy
// of every input.
func stamp(inputs []*draft.Draft, cells [][]models.Cell) []*draft.Draft {
	if len(inputs) == 0 {
		return []*draft.Draft{draft.FromPattern(cells)}
	}
	outputs := make([]*draft.Draft, 0, len(inputs))
	for _, in := range inputs {
		d := in.Clone()
		d.Fill(cells, draft.FillMask)
		outputs = append(outputs, d)
	}
	return outputs
}

func rectangleOp() Operation {
	return Operation{
		Name:        "rectangle",
		Description: "generates a rectangle of the given size; given an input, fills the rectangle with it",
		Category:    CategoryBlockDesign,
		Params: []Param{
			{Name: "width", Min: paramMin, Max: paramMax, Default: 10, Description: "width in warps"},
			{Name: "height", Min: paramMin, Max: paramMax, Default: 10, Description: "height in wefts"},
		},
		MaxInputs: 1,
		perform: func(inputs []*draft.Draft, p []int) []*draft.Draft {
			d := draft.New(p[1], p[0])
			if len(inputs) == 0 {
				d.Clear(models.Down)
			} else {
				d.Fill(inputs[0].Pattern, draft.FillOriginal)
			}
			return []*draft.Draft{d}
		},
	}
}

func tabbyOp() Operation {
	return Operation{
		Name:        "tabby",
		Description: "generates, or fills an input with, plain weave",
		Category:    CategoryStructures,
		MaxInputs:   1,
		perform: func(inputs []*draft.Draft, _ []int) []*draft.Draft {
			return stamp(inputs, unit(2, 2, func(i, j int) bool { return i == j }))
		},
	}
}

func twillOp() Operation {
	return Operation{
		Name:        "twill",
		Description: "generates, or fills an input with, a twill of the given unders and overs",
		Category:    CategoryStructures,
		Params: []Param{
			{Name: "unders", Min: paramMin, Max: paramMax, Default: 3, Description: "number of weft unders"},
			{Name: "overs", Min: paramMin, Max: paramMax, Default: 1, Description: "number of weft overs"},
		},
		MaxInputs: 1,
		perform: func(inputs []*draft.Draft, p []int) []*draft.Draft {
			overs := p[1]
			n := p[0] + overs
			return stamp(inputs, unit(n, n, func(i, j int) bool {
				return mod(j-i, n) < overs
			}))
		},
	}
}

func basketOp() Operation {
	return Operation{
		Name:        "basket",
		Description: "generates, or fills an input with, a basket weave",
		Category:    CategoryStructures,
		Params: []Param{
			{Name: "unders", Min: paramMin, Max: paramMax, Default: 2, Description: "number of weft unders"},
			{Name: "overs", Min: paramMin, Max: paramMax, Default: 2, Description: "number of weft overs"},
		},
		MaxInputs: 1,
		perform: func(inputs []*draft.Draft, p []int) []*draft.Draft {
			overs := p[1]
			n := p[0] + overs
			return stamp(inputs, unit(n, n, func(i, j int) bool {
				return (i%n < overs) == (j%n < overs)
			}))
		},
	}
}

func ribOp() Operation {
	return Operation{
		Name:        "rib",
		Description: "generates, or fills an input with, a rib, cord or half-basket structure",
		Category:    CategoryStructures,
		Params: []Param{
			{Name: "unders", Min: paramMin, Max: paramMax, Default: 2, Description: "number of weft unders in a pic"},
			{Name: "overs", Min: paramMin, Max: paramMax, Default: 2, Description: "number of weft overs in a pic"},
			{Name: "repeats", Min: paramMin, Max: paramMax, Default: 1, Description: "number of pics repeated within the structure"},
		},
		MaxInputs: 1,
		perform: func(inputs []*draft.Draft, p []int) []*draft.Draft {
			unders, repeats := p[0], p[2]
			sum := unders + p[1]
			return stamp(inputs, unit(2*repeats, 2*sum, func(i, j int) bool {
				return (j%sum < unders) == (i < repeats)
			}))
		},
	}
}

func randomOp(newRand func(seed uint64) *rand.Rand) Operation {
	return Operation{
		Name:        "random",
		Description: "generates a random structure; each cell is up with the given percentage",
		Category:    CategoryStructures,
		Params: []Param{
			{Name: "width", Min: paramMin, Max: paramMax, Default: 6, Description: "width of the structure"},
			{Name: "height", Min: paramMin, Max: paramMax, Default: 6, Description: "height of the structure"},
			{Name: "percent", Min: 0, Max: 100, Default: 50, Description: "percentage of up cells"},
			{Name: "seed", Min: 0, Max: 1<<31 - 1, Default: 0, Description: "seed for reproducible output, 0 for a fresh one"},
		},
		MaxInputs: 1,
		perform: func(inputs []*draft.Draft, p []int) []*draft.Draft {
			rng := newRand(uint64(p[3]))
			percent := p[2]
			return stamp(inputs, unit(p[1], p[0], func(int, int) bool {
				return rng.IntN(100) < percent
			}))
		},
	}
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
