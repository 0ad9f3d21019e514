package recipe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/tOgg1/weaver/internal/draft"
	"github.com/tOgg1/weaver/internal/fileio"
	"github.com/tOgg1/weaver/internal/logging"
	"github.com/tOgg1/weaver/internal/ops"
)

// Job pairs a recipe with its loaded input drafts, one slice per input file.
type Job struct {
	Recipe *Recipe
	Inputs [][]*draft.Draft
}

// Result holds the outputs of one recipe.
type Result struct {
	Name    string
	Outputs []*draft.Draft
}

// Run validates r against cat and executes its steps in order. inputs holds
// the drafts of each input file. The outputs of the last step are returned.
func Run(ctx context.Context, cat *ops.Catalog, r *Recipe, inputs [][]*draft.Draft) ([]*draft.Draft, error) {
	if err := r.Validate(cat); err != nil {
		return nil, fmt.Errorf("recipe %q: %w", r.Name, err)
	}
	if len(inputs) != len(r.Inputs) {
		return nil, fmt.Errorf("recipe %q: expected %d input files, got %d", r.Name, len(r.Inputs), len(inputs))
	}

	log := logging.FromContext(ctx).With().Str("component", "recipe").Logger()
	aliases := make(map[string]int)
	results := make([][]*draft.Draft, len(r.Steps))

	for i, step := range r.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var in []*draft.Draft
		for _, ref := range step.Inputs {
			target, err := r.resolve(ref, i, aliases)
			if err != nil {
				return nil, err
			}
			if target.input {
				in = append(in, inputs[target.index]...)
			} else {
				in = append(in, results[target.index]...)
			}
		}

		op, _ := cat.Get(step.Op)
		params, err := op.ParamsFromMap(step.Params)
		if err != nil {
			return nil, err
		}
		out, err := cat.Perform(op.Name, in, params)
		if err != nil {
			return nil, fmt.Errorf("recipe %q step %d: %w", r.Name, i, err)
		}
		results[i] = out

		if step.As != "" {
			aliases[step.As] = i
		}
		log.Debug().
			Str("recipe", r.Name).
			Int("step", i).
			Str("op", op.Name).
			Int("inputs", len(in)).
			Int("outputs", len(out)).
			Msg("recipe step done")
	}

	return results[len(results)-1], nil
}

// RunAll runs independent jobs in parallel. Results are in job order; the
// first error cancels the remaining jobs.
func RunAll(ctx context.Context, cat *ops.Catalog, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, job := range jobs {
		g.Go(func() error {
			out, err := Run(gctx, cat, job.Recipe, job.Inputs)
			if err != nil {
				return err
			}
			results[i] = Result{Name: job.Recipe.Name, Outputs: out}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Load reads and parses a recipe file.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe: %w", err)
	}
	return Parse(data)
}

// LoadInputs decodes the recipe's input files. Relative paths are resolved
// against baseDir.
func LoadInputs(r *Recipe, baseDir string, opts fileio.RasterOptions) ([][]*draft.Draft, error) {
	inputs := make([][]*draft.Draft, len(r.Inputs))
	for i, name := range r.Inputs {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read input %d: %w", i, err)
		}
		env, err := fileio.LoadFile(path, data, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to load input %d (%s): %w", i, name, err)
		}
		inputs[i] = env.Drafts
	}
	return inputs, nil
}
