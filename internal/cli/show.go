package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tOgg1/weaver/internal/db"
	"github.com/tOgg1/weaver/internal/fileio"
	"github.com/tOgg1/weaver/internal/loom"
	"github.com/tOgg1/weaver/internal/render"
)

var (
	showDraft   int
	showMaxRows int
	showMaxCols int
	showLoom    bool
)

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().IntVar(&showDraft, "draft", -1, "draft index (default: 0, or the library context's draft)")
	showCmd.Flags().IntVar(&showMaxRows, "max-rows", 0, "limit the number of wefts drawn")
	showCmd.Flags().IntVar(&showMaxCols, "max-cols", 0, "limit the number of warps drawn")
	showCmd.Flags().BoolVar(&showLoom, "loom", false, "also print the loom program")
}

var showCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Draw a draft",
	Long: `Draw the drawdown of one draft.

Without a file, the document selected with 'weaver library doc use' is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		return runShow(commandContext(cmd), cmd.OutOrStdout(), path, showOptions{
			Draft:   showDraft,
			MaxRows: showMaxRows,
			MaxCols: showMaxCols,
			Loom:    showLoom,
		})
	},
}

type showOptions struct {
	Draft   int
	MaxRows int
	MaxCols int
	Loom    bool
}

// DraftSummary is the JSON payload of `weaver show`.
type DraftSummary struct {
	Name     string       `json:"name"`
	Index    int          `json:"index"`
	Drafts   int          `json:"drafts"`
	Wefts    int          `json:"wefts"`
	Warps    int          `json:"warps"`
	Shuttles int          `json:"shuttles"`
	Loom     *LoomSummary `json:"loom,omitempty"`
}

// LoomSummary describes a loom program.
type LoomSummary struct {
	Type          loom.Type `json:"type"`
	FramesInUse   int       `json:"frames_in_use"`
	TreadlesInUse int       `json:"treadles_in_use"`
	MinFrames     int       `json:"min_frames"`
	MinTreadles   int       `json:"min_treadles"`
	EPI           int       `json:"epi"`
	Units         string    `json:"units"`
}

func summarizeLoom(l *loom.Loom) *LoomSummary {
	if l == nil {
		return nil
	}
	return &LoomSummary{
		Type:          l.Type,
		FramesInUse:   l.FramesInUse(),
		TreadlesInUse: l.TreadlesInUse(),
		MinFrames:     l.MinFrames,
		MinTreadles:   l.MinTreadles,
		EPI:           l.EPI,
		Units:         l.Units,
	}
}

func runShow(ctx context.Context, out io.Writer, path string, opts showOptions) error {
	env, label, index, err := openTarget(ctx, path)
	if err != nil {
		return err
	}
	if opts.Draft >= 0 {
		index = opts.Draft
	}
	d, l, err := pickDraft(env, index)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		return WriteOutput(out, DraftSummary{
			Name:     d.Name,
			Index:    index,
			Drafts:   len(env.Drafts),
			Wefts:    d.Wefts,
			Warps:    d.Warps,
			Shuttles: len(d.Shuttles),
			Loom:     summarizeLoom(l),
		})
	}

	name := d.Name
	if name == "" {
		name = label
	}
	fmt.Fprintf(out, "%s [%d/%d] %d wefts x %d warps\n", name, index+1, len(env.Drafts), d.Wefts, d.Warps)

	ropts := render.Options{
		Color:   useColor(out),
		MaxRows: opts.MaxRows,
		MaxCols: opts.MaxCols,
	}
	if err := render.Render(out, d, ropts); err != nil {
		return err
	}
	if opts.Loom && l != nil {
		fmt.Fprintln(out)
		return render.RenderLoom(out, l, ropts)
	}
	return nil
}

// openTarget loads path, or the library context's document when path is
// empty. It returns the envelope, a display label and the default draft
// index.
func openTarget(ctx context.Context, path string) (*fileio.Envelope, string, int, error) {
	if path != "" {
		env, err := loadEnvelope(path)
		return env, path, 0, err
	}

	wctx, err := contextStore().Load()
	if err != nil {
		return nil, "", 0, err
	}
	if wctx.IsEmpty() {
		return nil, "", 0, fmt.Errorf("no file given and no library document selected (see 'weaver library doc use')")
	}

	database, err := openDatabase(ctx)
	if err != nil {
		return nil, "", 0, err
	}
	defer database.Close()

	doc, err := db.NewDocumentRepository(database).Get(ctx, wctx.DocumentID)
	if err != nil {
		return nil, "", 0, err
	}
	env, err := decodeDocument(doc)
	if err != nil {
		return nil, "", 0, err
	}
	return env, doc.Name, wctx.DraftIndex, nil
}
