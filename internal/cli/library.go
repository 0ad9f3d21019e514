package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tOgg1/weaver/internal/config"
	"github.com/tOgg1/weaver/internal/db"
	"github.com/tOgg1/weaver/internal/draft"
	"github.com/tOgg1/weaver/internal/fileio"
	"github.com/tOgg1/weaver/internal/models"
)

var (
	libDraft    int
	libFavorite bool
	libUnfav    bool
	libFillMode string
	libOut      string
	libName     string
	libLimit    int
	libClear    bool
)

func init() {
	rootCmd.AddCommand(libraryCmd)
	libraryCmd.AddCommand(libPatternCmd)
	libraryCmd.AddCommand(libDocCmd)

	libPatternCmd.AddCommand(libPatternAddCmd)
	libPatternCmd.AddCommand(libPatternListCmd)
	libPatternCmd.AddCommand(libPatternRemoveCmd)
	libPatternCmd.AddCommand(libPatternFavCmd)
	libPatternCmd.AddCommand(libPatternFillCmd)

	libDocCmd.AddCommand(libDocSaveCmd)
	libDocCmd.AddCommand(libDocListCmd)
	libDocCmd.AddCommand(libDocGetCmd)
	libDocCmd.AddCommand(libDocRemoveCmd)
	libDocCmd.AddCommand(libDocUseCmd)

	libPatternAddCmd.Flags().IntVar(&libDraft, "draft", 0, "draft index to copy cells from")
	libPatternAddCmd.Flags().BoolVar(&libFavorite, "fav", false, "pin the pattern")
	libPatternFavCmd.Flags().BoolVar(&libUnfav, "off", false, "unpin instead of pin")
	libPatternFillCmd.Flags().IntVar(&libDraft, "draft", 0, "draft index to fill")
	libPatternFillCmd.Flags().StringVar(&libFillMode, "mode", "original", "fill mode (original, invert, mask, mirrorX, mirrorY, shiftLeft, shiftUp, clear)")
	libPatternFillCmd.Flags().StringVarP(&libOut, "out", "o", "", "write the result here instead of overwriting the input")

	libDocSaveCmd.Flags().StringVar(&libName, "name", "", "document name (default: file name)")
	libDocListCmd.Flags().IntVar(&libLimit, "limit", 100, "maximum documents to list")
	libDocUseCmd.Flags().IntVar(&libDraft, "draft", 0, "draft index to select")
	libDocUseCmd.Flags().BoolVar(&libClear, "clear", false, "clear the selection")
}

var libraryCmd = &cobra.Command{
	Use:     "library",
	Aliases: []string{"lib"},
	Short:   "Manage the local pattern and document library",
}

var libPatternCmd = &cobra.Command{
	Use:   "pattern",
	Short: "Manage saved patterns",
}

var libDocCmd = &cobra.Command{
	Use:   "doc",
	Short: "Manage saved documents",
}

// withDatabase opens the library for the duration of fn.
func withDatabase(cmd *cobra.Command, fn func(ctx context.Context, database *db.DB) error) error {
	ctx := commandContext(cmd)
	database, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()
	return fn(ctx, database)
}

var libPatternAddCmd = &cobra.Command{
	Use:   "add <name> <file>",
	Short: "Save a draft's cells as a pattern",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd, func(ctx context.Context, database *db.DB) error {
			return runPatternAdd(ctx, cmd.OutOrStdout(), database, args[0], args[1], libDraft, libFavorite)
		})
	},
}

var libPatternListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List saved patterns",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd, func(ctx context.Context, database *db.DB) error {
			return runPatternList(ctx, cmd.OutOrStdout(), database)
		})
	},
}

var libPatternRemoveCmd = &cobra.Command{
	Use:     "rm <name>",
	Aliases: []string{"remove"},
	Short:   "Remove a saved pattern",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd, func(ctx context.Context, database *db.DB) error {
			return runPatternRemove(ctx, cmd.OutOrStdout(), database, args[0])
		})
	},
}

var libPatternFavCmd = &cobra.Command{
	Use:   "fav <name>",
	Short: "Pin or unpin a saved pattern",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd, func(ctx context.Context, database *db.DB) error {
			return runPatternFavorite(ctx, cmd.OutOrStdout(), database, args[0], !libUnfav)
		})
	},
}

var libPatternFillCmd = &cobra.Command{
	Use:   "fill <name> <file>",
	Short: "Fill a draft with a saved pattern",
	Long: `Fill a whole draft with a saved pattern, tiled in both directions.

A frame loom paired with the draft is recomputed afterwards.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd, func(ctx context.Context, database *db.DB) error {
			return runPatternFill(ctx, cmd.OutOrStdout(), database, args[0], args[1], libDraft, libFillMode, libOut)
		})
	},
}

var libDocSaveCmd = &cobra.Command{
	Use:   "save <file>",
	Short: "Save a document in the library",
	Long: `Save a document in the library.

.ada and .wif files are stored as-is; images are converted to .ada first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd, func(ctx context.Context, database *db.DB) error {
			return runDocSave(ctx, cmd.OutOrStdout(), database, args[0], libName)
		})
	},
}

var libDocListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List saved documents",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd, func(ctx context.Context, database *db.DB) error {
			return runDocList(ctx, cmd.OutOrStdout(), database, libLimit)
		})
	},
}

var libDocGetCmd = &cobra.Command{
	Use:   "get <document> <file>",
	Short: "Write a saved document to a file",
	Long: `Write a saved document to a file. The document may be named by ID, ID
prefix or name. The output format follows the file extension.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd, func(ctx context.Context, database *db.DB) error {
			return runDocGet(ctx, cmd.OutOrStdout(), database, args[0], args[1])
		})
	},
}

var libDocRemoveCmd = &cobra.Command{
	Use:     "rm <document>",
	Aliases: []string{"remove"},
	Short:   "Remove a saved document",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd, func(ctx context.Context, database *db.DB) error {
			return runDocRemove(ctx, cmd.OutOrStdout(), database, args[0])
		})
	},
}

var libDocUseCmd = &cobra.Command{
	Use:   "use [document]",
	Short: "Select the document shown when no file is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := contextStore()
		if libClear {
			if err := store.Clear(); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Context cleared")
			return err
		}
		if len(args) == 0 {
			return runContextShow(cmd.OutOrStdout(), store)
		}
		return withDatabase(cmd, func(ctx context.Context, database *db.DB) error {
			return runDocUse(ctx, cmd.OutOrStdout(), database, store, args[0], libDraft)
		})
	},
}

func contextStore() *config.ContextStore {
	return config.NewContextStore(filepath.Join(GetConfig().Global.ConfigDir, "context.yaml"))
}

func runPatternAdd(ctx context.Context, out io.Writer, database *db.DB, name, path string, index int, favorite bool) error {
	env, err := loadEnvelope(path)
	if err != nil {
		return err
	}
	d, _, err := pickDraft(env, index)
	if err != nil {
		return err
	}

	pattern := models.NewPattern(name, models.CopyGrid(d.Pattern))
	pattern.Favorite = favorite
	lp := &models.LibraryPattern{Pattern: pattern}
	if err := db.NewPatternRepository(database).Create(ctx, lp); err != nil {
		return err
	}

	if IsJSONOutput() {
		return WriteOutput(out, lp)
	}
	_, err = fmt.Fprintf(out, "Saved pattern %q (%d x %d)\n", name, pattern.Height, pattern.Width)
	return err
}

func runPatternList(ctx context.Context, out io.Writer, database *db.DB) error {
	patterns, err := db.NewPatternRepository(database).List(ctx)
	if err != nil {
		return err
	}
	if IsJSONOutput() {
		return WriteOutput(out, patterns)
	}
	if len(patterns) == 0 {
		_, err := fmt.Fprintln(out, "No patterns saved")
		return err
	}

	rows := make([][]string, 0, len(patterns))
	for _, p := range patterns {
		rows = append(rows, []string{
			p.Pattern.Name,
			fmt.Sprintf("%dx%d", p.Pattern.Height, p.Pattern.Width),
			formatYesNo(p.Pattern.Favorite),
			p.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	return writeTable(out, []string{"NAME", "SIZE", "FAVORITE", "UPDATED"}, rows)
}

func runPatternRemove(ctx context.Context, out io.Writer, database *db.DB, name string) error {
	repo := db.NewPatternRepository(database)
	p, err := repo.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("%q: %w", name, err)
	}
	if err := repo.Delete(ctx, p.ID); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "Removed pattern %q\n", name)
	return err
}

func runPatternFavorite(ctx context.Context, out io.Writer, database *db.DB, name string, favorite bool) error {
	repo := db.NewPatternRepository(database)
	p, err := repo.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("%q: %w", name, err)
	}
	if err := repo.SetFavorite(ctx, p.ID, favorite); err != nil {
		return err
	}
	verb := "Pinned"
	if !favorite {
		verb = "Unpinned"
	}
	_, err = fmt.Fprintf(out, "%s pattern %q\n", verb, name)
	return err
}

func runPatternFill(ctx context.Context, out io.Writer, database *db.DB, name, path string, index int, modeName, outPath string) error {
	mode, err := draft.ParseFillMode(modeName)
	if err != nil {
		return err
	}
	p, err := db.NewPatternRepository(database).GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("%q: %w", name, err)
	}

	env, err := loadEnvelope(path)
	if err != nil {
		return err
	}
	d, l, err := pickDraft(env, index)
	if err != nil {
		return err
	}

	d.Fill(p.Pattern.Cells, mode)
	if l != nil && l.IsFrame() {
		l.RecomputeLoom(d)
	}

	if outPath == "" {
		outPath = path
	}
	if err := saveEnvelope(outPath, env); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "Filled draft %d with %q (%s), wrote %s\n", index, name, modeName, outPath)
	return err
}

func runDocSave(ctx context.Context, out io.Writer, database *db.DB, path, name string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	format, err := fileio.FormatOf(path)
	if err != nil {
		return err
	}
	env, err := fileio.LoadFile(path, data, GetConfig().RasterOptions())
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	kind := models.DocumentKindADA
	switch format {
	case fileio.FormatWIF:
		kind = models.DocumentKindWIF
	case fileio.FormatImage:
		if data, err = fileio.SaveADA(env); err != nil {
			return err
		}
	}

	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	doc := &models.LibraryDocument{
		Name:   name,
		Kind:   kind,
		Drafts: len(env.Drafts),
		Data:   data,
	}
	if err := db.NewDocumentRepository(database).Save(ctx, doc); err != nil {
		return err
	}

	if IsJSONOutput() {
		return WriteOutput(out, doc)
	}
	_, err = fmt.Fprintf(out, "Saved %q as %s (%d drafts)\n", name, doc.ID, doc.Drafts)
	return err
}

func runDocList(ctx context.Context, out io.Writer, database *db.DB, limit int) error {
	docs, err := db.NewDocumentRepository(database).List(ctx, limit)
	if err != nil {
		return err
	}
	if IsJSONOutput() {
		return WriteOutput(out, docs)
	}
	if len(docs) == 0 {
		_, err := fmt.Fprintln(out, "No documents saved")
		return err
	}

	rows := make([][]string, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, []string{
			shortID(doc.ID),
			doc.Name,
			string(doc.Kind),
			strconv.Itoa(doc.Drafts),
			doc.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	return writeTable(out, []string{"ID", "NAME", "KIND", "DRAFTS", "UPDATED"}, rows)
}

func runDocGet(ctx context.Context, out io.Writer, database *db.DB, ref, path string) error {
	doc, err := resolveDocument(ctx, db.NewDocumentRepository(database), ref)
	if err != nil {
		return err
	}
	format, err := fileio.FormatOf(path)
	if err != nil {
		return err
	}

	if string(format) == string(doc.Kind) {
		if err := os.WriteFile(path, doc.Data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	} else {
		env, err := decodeDocument(doc)
		if err != nil {
			return err
		}
		if err := saveEnvelope(path, env); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(out, "Wrote %q to %s\n", doc.Name, path)
	return err
}

func runDocRemove(ctx context.Context, out io.Writer, database *db.DB, ref string) error {
	repo := db.NewDocumentRepository(database)
	doc, err := resolveDocument(ctx, repo, ref)
	if err != nil {
		return err
	}
	if err := repo.Delete(ctx, doc.ID); err != nil {
		return err
	}

	store := contextStore()
	if wctx, err := store.Load(); err == nil && wctx.DocumentID == doc.ID {
		if err := store.Clear(); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(out, "Removed %q\n", doc.Name)
	return err
}

func runDocUse(ctx context.Context, out io.Writer, database *db.DB, store *config.ContextStore, ref string, index int) error {
	doc, err := resolveDocument(ctx, db.NewDocumentRepository(database), ref)
	if err != nil {
		return err
	}
	if index < 0 || index >= doc.Drafts {
		return fmt.Errorf("draft %d out of range (document has %d)", index, doc.Drafts)
	}

	if _, err := store.Update(func(wctx *config.Context) error {
		wctx.SetDocument(doc.ID, doc.Name)
		wctx.SetDraft(index)
		return nil
	}); err != nil {
		return err
	}
	return runContextShow(out, store)
}

func runContextShow(out io.Writer, store *config.ContextStore) error {
	wctx, err := store.Load()
	if err != nil {
		return err
	}
	if IsJSONOutput() {
		return WriteOutput(out, wctx)
	}
	_, err = fmt.Fprintln(out, wctx.String())
	return err
}

// resolveDocument finds a document by ID, unique ID prefix or unique name.
func resolveDocument(ctx context.Context, repo *db.DocumentRepository, ref string) (*models.LibraryDocument, error) {
	doc, err := repo.Get(ctx, ref)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, db.ErrDocumentNotFound) {
		return nil, err
	}

	docs, err := repo.List(ctx, 1000)
	if err != nil {
		return nil, err
	}
	var matches []*models.LibraryDocument
	for _, d := range docs {
		if strings.HasPrefix(d.ID, ref) || d.Name == ref {
			matches = append(matches, d)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%q: %w", ref, db.ErrDocumentNotFound)
	case 1:
		return repo.Get(ctx, matches[0].ID)
	default:
		return nil, fmt.Errorf("%q matches %d documents; use a longer ID", ref, len(matches))
	}
}

// decodeDocument decodes a stored document.
func decodeDocument(doc *models.LibraryDocument) (*fileio.Envelope, error) {
	switch doc.Kind {
	case models.DocumentKindWIF:
		return fileio.LoadWIF(doc.Data, doc.Name)
	default:
		return fileio.LoadADA(doc.Data)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
