package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tOgg1/weaver/internal/fileio"
	"github.com/tOgg1/weaver/internal/loom"
)

var errNotFrameLoom = errors.New("draft has no frame loom")

var (
	loomDraft int
	loomOut   string
)

func init() {
	rootCmd.AddCommand(loomCmd)
	loomCmd.AddCommand(loomRecomputeCmd)
	loomCmd.AddCommand(loomRecalcCmd)

	for _, c := range []*cobra.Command{loomRecomputeCmd, loomRecalcCmd} {
		c.Flags().IntVar(&loomDraft, "draft", 0, "draft index")
		c.Flags().StringVarP(&loomOut, "out", "o", "", "write the result here instead of overwriting the input")
	}
}

var loomCmd = &cobra.Command{
	Use:   "loom",
	Short: "Derive and apply loom programs",
}

var loomRecomputeCmd = &cobra.Command{
	Use:   "recompute <file>",
	Short: "Derive threading, treadling and tieup from the drawdown",
	Long: `Derive a frame loom program from the drawdown.

A draft without a loom, or with a jacquard loom, gets a frame loom sized from
the loom_defaults config section. Capacity grows when the drawdown needs more
frames or treadles.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLoomRecompute(cmd.OutOrStdout(), args[0], loomDraft, loomOut)
	},
}

var loomRecalcCmd = &cobra.Command{
	Use:     "recalc <file>",
	Aliases: []string{"recalculate"},
	Short:   "Rewrite the drawdown from the loom program",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLoomRecalc(cmd.OutOrStdout(), args[0], loomDraft, loomOut)
	},
}

// LoomResult is the JSON payload of the loom commands.
type LoomResult struct {
	File string       `json:"file"`
	Loom *LoomSummary `json:"loom"`

	// Grown is set when the drawdown needed more capacity than the loom had.
	Grown bool `json:"grown,omitempty"`

	// Gaps counts Unset cells the program will weave as Down.
	Gaps int `json:"gaps,omitempty"`
}

func runLoomRecompute(out io.Writer, path string, index int, outPath string) error {
	env, err := loadEnvelope(path)
	if err != nil {
		return err
	}
	d, l, err := pickDraft(env, index)
	if err != nil {
		return err
	}

	if l == nil {
		cfg := GetConfig().LoomDefaults
		l = loom.New(d, cfg.Frames, cfg.Treadles)
		l.OverloadEPI(cfg.EPI)
		l.OverloadUnits(cfg.Units)
		env.Looms = append(env.Looms, l)
	}
	l.OverloadType(loom.TypeFrame)
	frames, treadles := l.MinFrames, l.MinTreadles
	l.RecomputeLoom(d)
	grown := l.MinFrames != frames || l.MinTreadles != treadles

	return finishLoom(out, env, l, path, outPath, grown)
}

func runLoomRecalc(out io.Writer, path string, index int, outPath string) error {
	env, err := loadEnvelope(path)
	if err != nil {
		return err
	}
	_, l, err := pickDraft(env, index)
	if err != nil {
		return err
	}
	if l == nil || !l.IsFrame() {
		return errNotFrameLoom
	}
	if !l.RecalculateDraft() {
		return fmt.Errorf("loom program does not match the draft size")
	}
	return finishLoom(out, env, l, path, outPath, false)
}

func finishLoom(out io.Writer, env *fileio.Envelope, l *loom.Loom, path, outPath string, grown bool) error {
	if outPath == "" {
		outPath = path
	}
	if err := saveEnvelope(outPath, env); err != nil {
		return err
	}

	result := LoomResult{File: outPath, Loom: summarizeLoom(l), Grown: grown, Gaps: l.Gaps()}
	if IsJSONOutput() {
		return WriteOutput(out, result)
	}
	fmt.Fprintf(out, "Wrote %s: %d frames, %d treadles in use\n", outPath, result.Loom.FramesInUse, result.Loom.TreadlesInUse)
	if grown {
		fmt.Fprintf(out, "Capacity grown to %d frames, %d treadles\n", l.MinFrames, l.MinTreadles)
	}
	if result.Gaps > 0 {
		fmt.Fprintf(out, "Warning: %d unset cells will be woven down\n", result.Gaps)
	}
	return nil
}
