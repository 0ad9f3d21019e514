package ops

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/tOgg1/weaver/internal/draft"
	"github.com/tOgg1/weaver/internal/logging"
)

var (
	// ErrUnknownOperation is returned for names not in the catalog.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrTooManyInputs is returned when more drafts are supplied than an
	// operation accepts.
	ErrTooManyInputs = errors.New("too many inputs")

	// ErrUnknownParam is returned for parameter names an operation lacks.
	ErrUnknownParam = errors.New("unknown parameter")

	// ErrNilInput is returned when an input draft is nil.
	ErrNilInput = errors.New("nil input draft")
)

// Classification lists the operations of one category, in catalog order.
type Classification struct {
	Category Category `json:"category"`
	Ops      []string `json:"ops"`
}

// Catalog is an immutable set of operations. Build it once with NewCatalog
// and pass it to whatever needs to run operations.
type Catalog struct {
	ops     []Operation
	byName  map[string]int
	aliases map[string]string
	rand    func() uint64
}

type catalogOptions struct {
	rand func() uint64
}

// Option configures a Catalog.
type Option func(*catalogOptions)

// WithRandSource sets the entropy used to seed generators that were given
// no explicit seed.
func WithRandSource(src func() uint64) Option {
	return func(o *catalogOptions) {
		if src != nil {
			o.rand = src
		}
	}
}

// NewCatalog builds the operation library.
func NewCatalog(opts ...Option) *Catalog {
	o := catalogOptions{rand: rand.Uint64}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Catalog{
		byName: make(map[string]int),
		aliases: map[string]string{
			"flip horiz": "mirror horiz",
			"flip vert":  "mirror vert",
		},
		rand: o.rand,
	}

	for _, op := range []Operation{
		rectangleOp(),
		twillOp(),
		tabbyOp(),
		basketOp(),
		ribOp(),
		randomOp(c.newRand),
		spliceOp(),
		invertOp(),
		mirrorOp(),
		mirrorHorizOp(),
		mirrorVertOp(),
		shiftLeftOp(),
		shiftUpOp(),
		layerOp(),
		selvedgeOp(),
		bindWeftFloatsOp(),
		bindWarpFloatsOp(),
	} {
		c.byName[op.Name] = len(c.ops)
		c.ops = append(c.ops, op)
	}
	return c
}

// newRand returns a generator for seed, drawing a fresh seed from the
// catalog's source when seed is zero.
func (c *Catalog) newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(c.rand(), c.rand()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// Get looks up an operation by name or legacy alias.
func (c *Catalog) Get(name string) (Operation, bool) {
	if alias, ok := c.aliases[name]; ok {
		name = alias
	}
	i, ok := c.byName[name]
	if !ok {
		return Operation{}, false
	}
	return c.ops[i].clone(), true
}

// Names returns operation names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.ops))
	for i, op := range c.ops {
		names[i] = op.Name
	}
	return names
}

// Operations returns copies of every operation in catalog order.
func (c *Catalog) Operations() []Operation {
	out := make([]Operation, len(c.ops))
	for i, op := range c.ops {
		out[i] = op.clone()
	}
	return out
}

// Classifications groups operation names by category.
func (c *Catalog) Classifications() []Classification {
	order := []Category{CategoryBlockDesign, CategoryStructures, CategoryTransformations, CategoryCompose}
	out := make([]Classification, 0, len(order))
	for _, cat := range order {
		cl := Classification{Category: cat}
		for _, op := range c.ops {
			if op.Category == cat {
				cl.Ops = append(cl.Ops, op.Name)
			}
		}
		out = append(out, cl)
	}
	return out
}

// Perform runs the named operation.
func (c *Catalog) Perform(name string, inputs []*draft.Draft, params []int) ([]*draft.Draft, error) {
	op, ok := c.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
	if len(inputs) > op.MaxInputs {
		return nil, fmt.Errorf("%w: %q accepts %d, got %d", ErrTooManyInputs, op.Name, op.MaxInputs, len(inputs))
	}
	for i, in := range inputs {
		if in == nil {
			return nil, fmt.Errorf("%w: %q input %d", ErrNilInput, op.Name, i)
		}
	}

	log := logging.Component("ops")
	log.Debug().
		Str("op", op.Name).
		Int("inputs", len(inputs)).
		Ints("params", op.Resolve(params)).
		Msg("performing operation")

	outputs := op.Perform(inputs, params)
	for _, d := range outputs {
		if d.Name == "" {
			d.Name = op.Name
		}
	}
	return outputs, nil
}
