package ops

import "github.com/tOgg1/weaver/internal/draft"

// selfFill returns a copy of every input with mode applied times times,
// using the copy's own pattern as the source.
func selfFill(inputs []*draft.Draft, mode draft.FillMode, times int) []*draft.Draft {
	outputs := make([]*draft.Draft, 0, len(inputs))
	for _, in := range inputs {
		d := in.Clone()
		for n := 0; n < times; n++ {
			d.Fill(d.Pattern, mode)
		}
		outputs = append(outputs, d)
	}
	return outputs
}

func invertOp() Operation {
	return Operation{
		Name:        "invert",
		Description: "generates the inverse, or back side, of the input",
		Category:    CategoryTransformations,
		MaxInputs:   1,
		perform: func(inputs []*draft.Draft, _ []int) []*draft.Draft {
			return selfFill(inputs, draft.FillInvert, 1)
		},
	}
}

func mirrorHorizOp() Operation {
	return Operation{
		Name:        "mirror horiz",
		Description: "generates the left-right mirror of the input",
		Category:    CategoryTransformations,
		MaxInputs:   1,
		perform: func(inputs []*draft.Draft, _ []int) []*draft.Draft {
			return selfFill(inputs, draft.FillMirrorY, 1)
		},
	}
}

func mirrorVertOp() Operation {
	return Operation{
		Name:        "mirror vert",
		Description: "generates the top-bottom mirror of the input",
		Category:    CategoryTransformations,
		MaxInputs:   1,
		perform: func(inputs []*draft.Draft, _ []int) []*draft.Draft {
			return selfFill(inputs, draft.FillMirrorX, 1)
		},
	}
}

func shiftLeftOp() Operation {
	return Operation{
		Name:        "shift left",
		Description: "generates the input shifted left by the given number of warps",
		Category:    CategoryTransformations,
		Params: []Param{
			{Name: "amount", Min: paramMin, Max: paramMax, Default: 1, Description: "number of warps to shift by"},
		},
		MaxInputs: 1,
		perform: func(inputs []*draft.Draft, p []int) []*draft.Draft {
			return selfFill(inputs, draft.FillShiftLeft, p[0])
		},
	}
}

func shiftUpOp() Operation {
	return Operation{
		Name:        "shift up",
		Description: "generates the input shifted up by the given number of wefts",
		Category:    CategoryTransformations,
		Params: []Param{
			{Name: "amount", Min: paramMin, Max: paramMax, Default: 1, Description: "number of wefts to shift by"},
		},
		MaxInputs: 1,
		perform: func(inputs []*draft.Draft, p []int) []*draft.Draft {
			return selfFill(inputs, draft.FillShiftUp, p[0])
		},
	}
}
