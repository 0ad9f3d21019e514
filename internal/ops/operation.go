// Package ops holds the weave-structure operation library: generators that
// synthesize structures and transforms that derive new drafts from existing
// ones. Operations are pure: they never mutate their inputs and always
// return freshly allocated drafts, so they may run in parallel across
// independent drafts.
package ops

import (
	"fmt"

	"github.com/tOgg1/weaver/internal/draft"
)

// Category groups operations for display. It carries no behavior.
type Category string

const (
	CategoryBlockDesign     Category = "block design"
	CategoryStructures      Category = "structures"
	CategoryTransformations Category = "transformations"
	CategoryCompose         Category = "compose"
)

// Param describes one integer parameter of an operation.
type Param struct {
	Name        string `json:"name"`
	Min         int    `json:"min"`
	Max         int    `json:"max"`
	Default     int    `json:"default"`
	Description string `json:"description"`
}

// PerformFunc computes outputs from inputs and a resolved parameter vector.
type PerformFunc func(inputs []*draft.Draft, params []int) []*draft.Draft

// Operation is an immutable descriptor of a named generator or transform.
type Operation struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Params      []Param  `json:"params"`
	MaxInputs   int      `json:"max_inputs"`

	perform PerformFunc
}

// Resolve returns a full parameter vector: missing entries take their
// default and every value is clamped to [Min, Max].
func (o Operation) Resolve(params []int) []int {
	out := make([]int, len(o.Params))
	for i, p := range o.Params {
		v := p.Default
		if i < len(params) {
			v = params[i]
		}
		out[i] = min(max(v, p.Min), p.Max)
	}
	return out
}

// ParamsFromMap orders named parameter values into a vector. Missing names
// take their default; unknown names are an error.
func (o Operation) ParamsFromMap(values map[string]int) ([]int, error) {
	out := make([]int, len(o.Params))
	seen := 0
	for i, p := range o.Params {
		out[i] = p.Default
		if v, ok := values[p.Name]; ok {
			out[i] = v
			seen++
		}
	}
	if seen != len(values) {
		for name := range values {
			if o.paramIndex(name) < 0 {
				return nil, fmt.Errorf("%w: %q has no parameter %q", ErrUnknownParam, o.Name, name)
			}
		}
	}
	return o.Resolve(out), nil
}

func (o Operation) paramIndex(name string) int {
	for i, p := range o.Params {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Perform runs the operation after resolving params. It does not check
// MaxInputs; Catalog.Perform does.
func (o Operation) Perform(inputs []*draft.Draft, params []int) []*draft.Draft {
	if o.perform == nil {
		return nil
	}
	return o.perform(inputs, o.Resolve(params))
}

func (o Operation) clone() Operation {
	o.Params = append([]Param(nil), o.Params...)
	return o
}
