package ops

import (
	"github.com/tOgg1/weaver/internal/draft"
	"github.com/tOgg1/weaver/internal/models"
)

const maxComposeInputs = 100

func extent(inputs []*draft.Draft) (wefts, warps int) {
	for _, in := range inputs {
		wefts = max(wefts, in.Wefts)
		warps = max(warps, in.Warps)
	}
	return wefts, warps
}

// splice interleaves the rows of every input in round-robin order.
func splice(inputs []*draft.Draft) *draft.Draft {
	n := len(inputs)
	wefts, warps := extent(inputs)
	d := draft.New(wefts*n, warps)
	for r := range d.Pattern {
		src := inputs[r%n]
		for j := range d.Pattern[r] {
			d.Pattern[r][j] = src.Cell(r/n, j)
		}
	}
	return d
}

func spliceOp() Operation {
	return Operation{
		Name:        "splice",
		Description: "splices the inputs together in alternating rows",
		Category:    CategoryCompose,
		MaxInputs:   maxComposeInputs,
		perform: func(inputs []*draft.Draft, _ []int) []*draft.Draft {
			if len(inputs) == 0 {
				return nil
			}
			return []*draft.Draft{splice(inputs)}
		},
	}
}

func layerOp() Operation {
	return Operation{
		Name:        "layer",
		Description: "assigns each input to a layer of a multi-layer structure, the first input on top",
		Category:    CategoryCompose,
		MaxInputs:   maxComposeInputs,
		perform: func(inputs []*draft.Draft, _ []int) []*draft.Draft {
			n := len(inputs)
			if n == 0 {
				return nil
			}
			wefts, warps := extent(inputs)
			d := draft.New(wefts*n, warps*n)
			d.Fill(unit(n, n, func(i, j int) bool { return j < i }), draft.FillOriginal)

			overlay := splice(inputs)
			for r, row := range overlay.Pattern {
				layer := r % n
				for j, c := range row {
					d.Pattern[r][j*n+layer] = c
				}
			}
			return []*draft.Draft{d}
		},
	}
}

func mirrorOp() Operation {
	return Operation{
		Name:        "mirror",
		Description: "generates a copy of the input",
		Category:    CategoryCompose,
		MaxInputs:   1,
		perform: func(inputs []*draft.Draft, _ []int) []*draft.Draft {
			return selfFill(inputs, draft.FillOriginal, 0)
		},
	}
}

func selvedgeOp() Operation {
	return Operation{
		Name:        "selvedge",
		Description: "adds a selvedge of the given width to both sides of the input",
		Category:    CategoryCompose,
		Params: []Param{
			{Name: "width", Min: paramMin, Max: paramMax, Default: 12, Description: "width of each selvedge in warps"},
			{Name: "repeats", Min: paramMin, Max: paramMax, Default: 1, Description: "pics per selvedge step, usually the number of shuttles thrown"},
		},
		MaxInputs: 1,
		perform: func(inputs []*draft.Draft, p []int) []*draft.Draft {
			width, repeats := p[0], p[1]
			edge := unit(2*repeats, 2, func(i, j int) bool {
				return (i < repeats) == (j%2 == 0)
			})

			if len(inputs) == 0 {
				d := draft.New(2*repeats, 2*width)
				d.Fill(edge, draft.FillOriginal)
				return []*draft.Draft{d}
			}

			outputs := make([]*draft.Draft, 0, len(inputs))
			for _, in := range inputs {
				d := draft.New(in.Wefts, in.Warps+2*width)
				d.Fill(edge, draft.FillOriginal)
				for i := 0; i < in.Wefts; i++ {
					copy(d.Pattern[i][width:], in.Pattern[i])
				}
				outputs = append(outputs, d)
			}
			return outputs
		},
	}
}

// bindFloats breaks runs of identical set cells longer than length by
// toggling the cell that would extend the run. Unset cells end a run.
func bindFloats(line []models.Cell, length int) {
	run := 0
	last := models.Unset
	for k, c := range line {
		if !c.IsSet() {
			run, last = 0, models.Unset
			continue
		}
		if c == last {
			run++
		} else {
			run = 1
		}
		if run > length {
			c = c.Invert()
			line[k] = c
			run = 1
		}
		last = c
	}
}

func bindWeftFloatsOp() Operation {
	return Operation{
		Name:        "bind weft floats",
		Description: "adds interlacements to weft floats longer than the given length",
		Category:    CategoryCompose,
		Params: []Param{
			{Name: "length", Min: paramMin, Max: paramMax, Default: 10, Description: "maximum length of a weft float"},
		},
		MaxInputs: 1,
		perform: func(inputs []*draft.Draft, p []int) []*draft.Draft {
			outputs := selfFill(inputs, draft.FillOriginal, 0)
			for _, d := range outputs {
				for _, row := range d.Pattern {
					bindFloats(row, p[0])
				}
			}
			return outputs
		},
	}
}

func bindWarpFloatsOp() Operation {
	return Operation{
		Name:        "bind warp floats",
		Description: "adds interlacements to warp floats longer than the given length",
		Category:    CategoryCompose,
		Params: []Param{
			{Name: "length", Min: paramMin, Max: paramMax, Default: 10, Description: "maximum length of a warp float"},
		},
		MaxInputs: 1,
		perform: func(inputs []*draft.Draft, p []int) []*draft.Draft {
			outputs := selfFill(inputs, draft.FillOriginal, 0)
			for _, d := range outputs {
				for j := 0; j < d.Warps; j++ {
					col := d.Col(j)
					bindFloats(col, p[0])
					for i, c := range col {
						d.Pattern[i][j] = c
					}
				}
			}
			return outputs
		},
	}
}
