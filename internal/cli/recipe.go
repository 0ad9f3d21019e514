package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tOgg1/weaver/internal/fileio"
	"github.com/tOgg1/weaver/internal/ops"
	"github.com/tOgg1/weaver/internal/recipe"
)

var (
	recipeOutDir string
	recipeFormat string
)

func init() {
	rootCmd.AddCommand(recipeCmd)
	recipeCmd.AddCommand(recipeRunCmd)
	recipeCmd.AddCommand(recipeCheckCmd)

	recipeRunCmd.Flags().StringVar(&recipeOutDir, "out-dir", "", "write each recipe's outputs to <out-dir>/<name>.<format>")
	recipeRunCmd.Flags().StringVar(&recipeFormat, "format", "ada", "output format (ada, wif)")
}

var recipeCmd = &cobra.Command{
	Use:   "recipe",
	Short: "Run YAML operation pipelines",
}

var recipeRunCmd = &cobra.Command{
	Use:   "run <recipe.yaml>...",
	Short: "Run one or more recipes",
	Long: `Run recipes in parallel.

Input files named by a recipe are resolved relative to the recipe file.
Without --out-dir, a summary of each recipe's outputs is printed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecipes(commandContext(cmd), cmd.OutOrStdout(), catalog, args, recipeOutDir, recipeFormat)
	},
}

var recipeCheckCmd = &cobra.Command{
	Use:   "check <recipe.yaml>...",
	Short: "Validate recipes without running them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecipeCheck(cmd.OutOrStdout(), catalog, args)
	},
}

// RecipeOutput summarizes one output draft of a recipe.
type RecipeOutput struct {
	Recipe string `json:"recipe"`
	Draft  string `json:"draft"`
	Wefts  int    `json:"wefts"`
	Warps  int    `json:"warps"`
	File   string `json:"file,omitempty"`
}

func runRecipes(ctx context.Context, out io.Writer, cat *ops.Catalog, paths []string, outDir, format string) error {
	jobs := make([]recipe.Job, 0, len(paths))
	for _, path := range paths {
		r, err := recipe.Load(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		inputs, err := recipe.LoadInputs(r, filepath.Dir(path), GetConfig().RasterOptions())
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		jobs = append(jobs, recipe.Job{Recipe: r, Inputs: inputs})
	}

	results, err := recipe.RunAll(ctx, cat, jobs)
	if err != nil {
		return err
	}

	var summary []RecipeOutput
	for _, res := range results {
		file := ""
		if outDir != "" {
			env := &fileio.Envelope{}
			for _, d := range res.Outputs {
				env.Add(d, nil)
			}
			file = filepath.Join(outDir, res.Name+"."+format)
			if err := saveEnvelope(file, env); err != nil {
				return err
			}
		}
		for _, d := range res.Outputs {
			summary = append(summary, RecipeOutput{
				Recipe: res.Name,
				Draft:  d.Name,
				Wefts:  d.Wefts,
				Warps:  d.Warps,
				File:   file,
			})
		}
	}

	if IsJSONOutput() {
		return WriteOutput(out, summary)
	}
	rows := make([][]string, 0, len(summary))
	for _, s := range summary {
		file := s.File
		if file == "" {
			file = "-"
		}
		rows = append(rows, []string{s.Recipe, s.Draft, strconv.Itoa(s.Wefts), strconv.Itoa(s.Warps), file})
	}
	return writeTable(out, []string{"RECIPE", "DRAFT", "WEFTS", "WARPS", "FILE"}, rows)
}

func runRecipeCheck(out io.Writer, cat *ops.Catalog, paths []string) error {
	for _, path := range paths {
		r, err := recipe.Load(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := r.Validate(cat); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if !IsJSONOutput() {
			fmt.Fprintf(out, "%s: ok (%d steps)\n", path, len(r.Steps))
		}
	}
	if IsJSONOutput() {
		return WriteOutput(out, map[string]any{"valid": true, "recipes": paths})
	}
	return nil
}
