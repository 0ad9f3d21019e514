package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tOgg1/weaver/internal/draft"
	"github.com/tOgg1/weaver/internal/fileio"
	"github.com/tOgg1/weaver/internal/ops"
	"github.com/tOgg1/weaver/internal/render"
)

var (
	opsCategory string
	opsParams   []string
	opsOut      string
	opsDraft    int
)

func init() {
	rootCmd.AddCommand(opsCmd)
	opsCmd.AddCommand(opsListCmd)
	opsCmd.AddCommand(opsShowCmd)
	opsCmd.AddCommand(opsRunCmd)

	opsListCmd.Flags().StringVar(&opsCategory, "category", "", "only list operations in this category")

	opsRunCmd.Flags().StringArrayVarP(&opsParams, "param", "p", nil, "parameter as name=value (repeatable)")
	opsRunCmd.Flags().StringVarP(&opsOut, "out", "o", "", "write outputs to this file instead of drawing them")
	opsRunCmd.Flags().IntVar(&opsDraft, "draft", 0, "draft index to read from each input file")
}

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "Browse and run structure operations",
}

var opsListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List operations",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOpsList(cmd.OutOrStdout(), catalog, opsCategory)
	},
}

var opsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show an operation's parameters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOpsShow(cmd.OutOrStdout(), catalog, args[0])
	},
}

var opsRunCmd = &cobra.Command{
	Use:   "run <name> [file]...",
	Short: "Run an operation",
	Long: `Run an operation on zero or more input drafts.

Each input file contributes one draft (selected with --draft). Parameters
not given take their default, and every value is clamped to its range.
Outputs are drawn to the terminal unless --out is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := parseParams(opsParams)
		if err != nil {
			return err
		}
		var inputs []*draft.Draft
		for _, path := range args[1:] {
			env, err := loadEnvelope(path)
			if err != nil {
				return err
			}
			d, _, err := pickDraft(env, opsDraft)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			inputs = append(inputs, d)
		}
		return runOp(cmd.OutOrStdout(), catalog, args[0], inputs, params, opsOut)
	},
}

func runOpsList(out io.Writer, cat *ops.Catalog, category string) error {
	var list []ops.Operation
	for _, op := range cat.Operations() {
		if category != "" && !strings.EqualFold(string(op.Category), category) {
			continue
		}
		list = append(list, op)
	}

	if IsJSONOutput() {
		return WriteOutput(out, list)
	}
	if len(list) == 0 {
		_, err := fmt.Fprintln(out, "No operations found")
		return err
	}

	rows := make([][]string, 0, len(list))
	for _, op := range list {
		names := make([]string, len(op.Params))
		for i, p := range op.Params {
			names[i] = p.Name
		}
		rows = append(rows, []string{
			op.Name,
			string(op.Category),
			strconv.Itoa(op.MaxInputs),
			strings.Join(names, ","),
		})
	}
	return writeTable(out, []string{"NAME", "CATEGORY", "INPUTS", "PARAMS"}, rows)
}

func runOpsShow(out io.Writer, cat *ops.Catalog, name string) error {
	op, ok := cat.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q", ops.ErrUnknownOperation, name)
	}
	if IsJSONOutput() {
		return WriteOutput(out, op)
	}

	fmt.Fprintf(out, "%s (%s)\n", op.Name, op.Category)
	if op.Description != "" {
		fmt.Fprintf(out, "%s\n", op.Description)
	}
	fmt.Fprintf(out, "inputs: up to %d\n", op.MaxInputs)
	if len(op.Params) == 0 {
		return nil
	}
	fmt.Fprintln(out)

	rows := make([][]string, 0, len(op.Params))
	for _, p := range op.Params {
		rows = append(rows, []string{
			p.Name,
			strconv.Itoa(p.Min),
			strconv.Itoa(p.Max),
			strconv.Itoa(p.Default),
			p.Description,
		})
	}
	return writeTable(out, []string{"PARAM", "MIN", "MAX", "DEFAULT", "DESCRIPTION"}, rows)
}

// OpResult summarizes one output draft of `weaver ops run`.
type OpResult struct {
	Name  string `json:"name"`
	Wefts int    `json:"wefts"`
	Warps int    `json:"warps"`
}

func runOp(out io.Writer, cat *ops.Catalog, name string, inputs []*draft.Draft, values map[string]int, outPath string) error {
	op, ok := cat.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q", ops.ErrUnknownOperation, name)
	}
	params, err := op.ParamsFromMap(values)
	if err != nil {
		return err
	}
	outputs, err := cat.Perform(op.Name, inputs, params)
	if err != nil {
		return err
	}

	if outPath != "" {
		env := &fileio.Envelope{}
		for _, d := range outputs {
			env.Add(d, nil)
		}
		if err := saveEnvelope(outPath, env); err != nil {
			return err
		}
	}

	if IsJSONOutput() {
		results := make([]OpResult, len(outputs))
		for i, d := range outputs {
			results[i] = OpResult{Name: d.Name, Wefts: d.Wefts, Warps: d.Warps}
		}
		return WriteOutput(out, results)
	}
	if outPath != "" {
		_, err := fmt.Fprintf(out, "Wrote %d draft(s) to %s\n", len(outputs), outPath)
		return err
	}

	opts := render.Options{Color: useColor(out)}
	for i, d := range outputs {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s (%d x %d)\n", d.Name, d.Wefts, d.Warps)
		if err := render.Render(out, d, opts); err != nil {
			return err
		}
	}
	return nil
}
