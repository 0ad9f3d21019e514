package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tOgg1/weaver/internal/fileio"
	"github.com/tOgg1/weaver/internal/loom"
)

var (
	newWarps    int
	newWefts    int
	newFrames   int
	newTreadles int
	newLoomType string
	newEPI      int
	newUnits    string
)

func init() {
	rootCmd.AddCommand(newCmd)

	newCmd.Flags().IntVar(&newWarps, "warps", 0, "number of warp ends (default from config)")
	newCmd.Flags().IntVar(&newWefts, "wefts", 0, "number of weft picks (default from config)")
	newCmd.Flags().IntVar(&newFrames, "frames", 0, "minimum frame capacity")
	newCmd.Flags().IntVar(&newTreadles, "treadles", 0, "minimum treadle capacity")
	newCmd.Flags().StringVar(&newLoomType, "loom-type", "", "loom type (frame, jacquard)")
	newCmd.Flags().IntVar(&newEPI, "epi", 0, "ends per unit")
	newCmd.Flags().StringVar(&newUnits, "units", "", "units for epi (in, cm)")
}

var newCmd = &cobra.Command{
	Use:   "new <file>",
	Short: "Create a blank document",
	Long: `Create a blank document with three shuttles and one loom.

Unset flags take their value from the loom_defaults and draft_defaults
config sections. The format follows the file extension (.ada or .wif).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := GetConfig().FormOptions()
		if newWarps > 0 {
			opts.Warps = newWarps
		}
		if newWefts > 0 {
			opts.Wefts = newWefts
		}
		if newFrames > 0 {
			opts.Frames = newFrames
		}
		if newTreadles > 0 {
			opts.Treadles = newTreadles
		}
		if newEPI > 0 {
			opts.EPI = newEPI
		}
		if newUnits != "" {
			opts.Units = newUnits
		}
		if newLoomType != "" {
			t, err := loom.ParseType(newLoomType)
			if err != nil {
				return err
			}
			opts.LoomType = t
		}
		return runNew(cmd.OutOrStdout(), args[0], opts)
	},
}

// NewResult is the JSON payload of `weaver new`.
type NewResult struct {
	Path     string    `json:"path"`
	Wefts    int       `json:"wefts"`
	Warps    int       `json:"warps"`
	LoomType loom.Type `json:"loom_type"`
}

func runNew(out io.Writer, path string, opts fileio.FormOptions) error {
	env := fileio.NewDocument(opts)
	if err := saveEnvelope(path, env); err != nil {
		return err
	}

	d, l := env.Pair(0)
	result := NewResult{Path: path, Wefts: d.Wefts, Warps: d.Warps}
	if l != nil {
		result.LoomType = l.Type
	}

	if IsJSONOutput() {
		return WriteOutput(out, result)
	}
	_, err := fmt.Fprintf(out, "Created %s (%d wefts x %d warps, %s loom)\n", path, result.Wefts, result.Warps, result.LoomType)
	return err
}
