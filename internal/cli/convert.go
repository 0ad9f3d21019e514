package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tOgg1/weaver/internal/fileio"
	"github.com/tOgg1/weaver/internal/logging"
)

var (
	convertTo     string
	convertOutDir string
)

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVar(&convertTo, "to", "ada", "target format (ada, wif)")
	convertCmd.Flags().StringVar(&convertOutDir, "out-dir", "", "output directory (default: next to each input)")
}

var convertCmd = &cobra.Command{
	Use:   "convert <file>...",
	Short: "Convert documents between formats",
	Long: `Convert documents, WIF files and images to .ada or .wif.

Files are converted in parallel. WIF holds a single draft, so only the first
draft of a multi-draft document is written when converting to WIF.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(commandContext(cmd), cmd.OutOrStdout(), args, convertTo, convertOutDir)
	},
}

// ConvertResult describes one converted file.
type ConvertResult struct {
	Source string `json:"source"`
	Output string `json:"output"`
	Drafts int    `json:"drafts"`
}

func runConvert(ctx context.Context, out io.Writer, files []string, to, outDir string) error {
	target, err := fileio.FormatOf("x." + to)
	if err != nil {
		return err
	}
	if target == fileio.FormatImage {
		return fmt.Errorf("%w: cannot write images", fileio.ErrUnsupportedFormat)
	}

	results := make([]ConvertResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, src := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			env, err := loadEnvelope(src)
			if err != nil {
				return err
			}
			dst := withExt(src, outDir, string(target))
			if err := saveEnvelope(dst, env); err != nil {
				return err
			}
			log := logging.WithFile(src)
			log.Debug().Str("output", dst).Int("drafts", len(env.Drafts)).Msg("converted")
			results[i] = ConvertResult{Source: src, Output: dst, Drafts: len(env.Drafts)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if IsJSONOutput() {
		return WriteOutput(out, results)
	}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.Source, r.Output, strconv.Itoa(r.Drafts)})
	}
	return writeTable(out, []string{"SOURCE", "OUTPUT", "DRAFTS"}, rows)
}
