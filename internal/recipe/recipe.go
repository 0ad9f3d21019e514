// Package recipe runs YAML pipelines of catalog operations.
//
// A recipe names its input files and a list of steps. Each step performs
// one operation on the outputs of earlier steps or on input drafts, and the
// outputs of the last step are the result:
//
//	name: banded twill
//	inputs: [border.ada]
//	steps:
//	  - op: twill
//	    params: {unders: 2, overs: 2}
//	    as: body
//	  - op: splice
//	    inputs: [body, input.0]
//
// Step inputs are refs: an alias given by an earlier step's "as", "step.N"
// for the outputs of step N, or "input.N" for the drafts of input file N
// (all zero-based).
package recipe

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/tOgg1/weaver/internal/models"
	"github.com/tOgg1/weaver/internal/ops"
)

// Recipe errors.
var (
	ErrUnknownRef   = errors.New("unknown ref")
	ErrDuplicateRef = errors.New("duplicate alias")
)

// Recipe is a named pipeline of steps.
type Recipe struct {
	Name   string   `yaml:"name" validate:"required"`
	Inputs []string `yaml:"inputs,omitempty" validate:"dive,required"`
	Steps  []Step   `yaml:"steps" validate:"required,min=1,dive"`
}

// Step performs one operation.
type Step struct {
	Op     string         `yaml:"op" validate:"required"`
	Params map[string]int `yaml:"params,omitempty"`
	Inputs []string       `yaml:"inputs,omitempty" validate:"dive,ref"`
	As     string         `yaml:"as,omitempty" validate:"omitempty,alias"`
}

var (
	aliasPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)
	refPattern   = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_-]*|(step|input)\.[0-9]+)$`)
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("alias", func(fl validator.FieldLevel) bool {
		return aliasPattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("ref", func(fl validator.FieldLevel) bool {
		return refPattern.MatchString(fl.Field().String())
	})
}

// Parse decodes a YAML recipe and checks its shape. Unknown keys are
// rejected.
func Parse(data []byte) (*Recipe, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var r Recipe
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("failed to parse recipe: %w", err)
	}
	if err := r.validateShape(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Marshal encodes the recipe as YAML.
func (r *Recipe) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}

func (r *Recipe) validateShape() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	validation := &models.ValidationErrors{}
	for _, fe := range fieldErrs {
		validation.AddMessage(fieldPath(fe.Namespace()), "failed "+fe.Tag()+" check")
	}
	return validation.Err()
}

// Validate checks the recipe against cat: every op exists, params are
// known, input counts fit, aliases are unique and refs point backwards.
func (r *Recipe) Validate(cat *ops.Catalog) error {
	if err := r.validateShape(); err != nil {
		return err
	}

	validation := &models.ValidationErrors{}
	aliases := make(map[string]int)
	for i, step := range r.Steps {
		field := fmt.Sprintf("steps[%d]", i)

		op, ok := cat.Get(step.Op)
		if !ok {
			validation.Add(field+".op", fmt.Errorf("%w: %q", ops.ErrUnknownOperation, step.Op))
		} else {
			if _, err := op.ParamsFromMap(step.Params); err != nil {
				validation.Add(field+".params", err)
			}
			if len(step.Inputs) > op.MaxInputs {
				validation.Add(field+".inputs", fmt.Errorf("%w: %q accepts %d, got %d", ops.ErrTooManyInputs, op.Name, op.MaxInputs, len(step.Inputs)))
			}
		}

		for j, ref := range step.Inputs {
			if _, err := r.resolve(ref, i, aliases); err != nil {
				validation.Add(fmt.Sprintf("%s.inputs[%d]", field, j), err)
			}
		}

		if step.As != "" {
			if _, dup := aliases[step.As]; dup {
				validation.Add(field+".as", fmt.Errorf("%w: %q", ErrDuplicateRef, step.As))
			}
			aliases[step.As] = i
		}
	}
	return validation.Err()
}

// refTarget is a resolved ref: either an input file or a step.
type refTarget struct {
	input bool
	index int
}

// resolve maps ref to an input or a step before step.
func (r *Recipe) resolve(ref string, step int, aliases map[string]int) (refTarget, error) {
	if kind, n, ok := strings.Cut(ref, "."); ok {
		idx, err := strconv.Atoi(n)
		if err == nil {
			switch kind {
			case "input":
				if idx < len(r.Inputs) {
					return refTarget{input: true, index: idx}, nil
				}
			case "step":
				if idx < step {
					return refTarget{index: idx}, nil
				}
			}
		}
		return refTarget{}, fmt.Errorf("%w: %q", ErrUnknownRef, ref)
	}
	if idx, ok := aliases[ref]; ok && idx < step {
		return refTarget{index: idx}, nil
	}
	return refTarget{}, fmt.Errorf("%w: %q", ErrUnknownRef, ref)
}

// fieldPath turns a validator namespace ("Recipe.Steps[0].Op") into the
// YAML path ("steps[0].op").
func fieldPath(ns string) string {
	_, rest, ok := strings.Cut(ns, ".")
	if !ok {
		return strings.ToLower(ns)
	}
	parts := strings.Split(rest, ".")
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, ".")
}
