package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/weaver/internal/db"
	"github.com/tOgg1/weaver/internal/fileio"
	"github.com/tOgg1/weaver/internal/models"
	"github.com/tOgg1/weaver/internal/testutil"
)

func openTestDatabase(t *testing.T) *db.DB {
	t.Helper()
	database, err := openDatabase(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestLibraryPatterns(t *testing.T) {
	dir := setupCLI(t)
	ctx := context.Background()
	database := openTestDatabase(t)
	twillPath := writeTwill(t, dir, "twill.ada")

	var out bytes.Buffer
	require.NoError(t, runPatternAdd(ctx, &out, database, "twill", twillPath, 0, false))
	require.Equal(t, "Saved pattern \"twill\" (4 x 4)\n", out.String())
	require.ErrorIs(t, runPatternAdd(ctx, &out, database, "twill", twillPath, 0, false), db.ErrPatternAlreadyExists)

	tabby := testutil.FrameDocument(t, testutil.Random(2, 2, 4))
	tabbyPath := testutil.WriteADA(t, dir, "tabby.ada", tabby)
	require.NoError(t, runPatternAdd(ctx, &out, database, "speckle", tabbyPath, 0, false))

	out.Reset()
	require.NoError(t, runPatternFavorite(ctx, &out, database, "twill", true))
	require.Equal(t, "Pinned pattern \"twill\"\n", out.String())

	out.Reset()
	require.NoError(t, runPatternList(ctx, &out, database))
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[1], "twill"), lines[1])
	require.Contains(t, lines[1], "yes")
	require.True(t, strings.HasPrefix(lines[2], "speckle"), lines[2])

	out.Reset()
	require.NoError(t, runPatternRemove(ctx, &out, database, "speckle"))
	require.ErrorIs(t, runPatternRemove(ctx, &out, database, "speckle"), db.ErrPatternNotFound)
	require.ErrorIs(t, runPatternFavorite(ctx, &out, database, "speckle", true), db.ErrPatternNotFound)
}

func TestLibraryPatternFill(t *testing.T) {
	dir := setupCLI(t)
	ctx := context.Background()
	database := openTestDatabase(t)

	var out bytes.Buffer
	require.NoError(t, runPatternAdd(ctx, &out, database, "twill", writeTwill(t, dir, "twill.ada"), 0, false))

	blank := filepath.Join(dir, "blank.ada")
	require.NoError(t, saveEnvelope(blank, fileio.NewDocument(fileio.FormOptions{Warps: 8, Wefts: 6})))

	filled := filepath.Join(dir, "filled.ada")
	require.NoError(t, runPatternFill(ctx, &out, database, "twill", blank, 0, "original", filled))

	tile := testutil.Twill(4, 4)
	d := mustLoad(t, filled).Drafts[0]
	for i := 0; i < d.Wefts; i++ {
		for j := 0; j < d.Warps; j++ {
			require.Equal(t, tile.Pattern[i%4][j%4], d.Pattern[i][j], "cell %d,%d", i, j)
		}
	}

	require.Error(t, runPatternFill(ctx, &out, database, "twill", blank, 0, "sideways", ""))
	require.ErrorIs(t, runPatternFill(ctx, &out, database, "absent", blank, 0, "original", ""), db.ErrPatternNotFound)
}

func TestLibraryDocuments(t *testing.T) {
	dir := setupCLI(t)
	ctx := context.Background()
	database := openTestDatabase(t)
	twillPath := writeTwill(t, dir, "twill.ada")

	var out bytes.Buffer
	require.NoError(t, runDocSave(ctx, &out, database, twillPath, ""))

	docs, err := db.NewDocumentRepository(database).List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	doc := docs[0]
	require.Equal(t, "twill", doc.Name)
	require.Equal(t, models.DocumentKindADA, doc.Kind)
	require.Equal(t, 1, doc.Drafts)

	out.Reset()
	require.NoError(t, runDocList(ctx, &out, database, 10))
	require.Contains(t, out.String(), doc.ID[:8])
	require.Contains(t, out.String(), "twill")

	repo := db.NewDocumentRepository(database)
	byPrefix, err := resolveDocument(ctx, repo, doc.ID[:6])
	require.NoError(t, err)
	require.Equal(t, doc.ID, byPrefix.ID)
	require.NotEmpty(t, byPrefix.Data)
	byName, err := resolveDocument(ctx, repo, "twill")
	require.NoError(t, err)
	require.Equal(t, doc.ID, byName.ID)
	_, err = resolveDocument(ctx, repo, "missing")
	require.ErrorIs(t, err, db.ErrDocumentNotFound)

	wifPath := filepath.Join(dir, "export.wif")
	require.NoError(t, runDocGet(ctx, &out, database, "twill", wifPath))
	require.Equal(t, mustLoad(t, twillPath).Drafts[0].Pattern, mustLoad(t, wifPath).Drafts[0].Pattern)

	out.Reset()
	require.NoError(t, runDocRemove(ctx, &out, database, doc.ID))
	require.Equal(t, "Removed \"twill\"\n", out.String())
	require.ErrorIs(t, runDocRemove(ctx, &out, database, doc.ID), db.ErrDocumentNotFound)
}

func TestLibraryDocumentNamesCanBeAmbiguous(t *testing.T) {
	dir := setupCLI(t)
	ctx := context.Background()
	database := openTestDatabase(t)
	path := writeTwill(t, dir, "twill.ada")

	var out bytes.Buffer
	require.NoError(t, runDocSave(ctx, &out, database, path, "same"))
	require.NoError(t, runDocSave(ctx, &out, database, path, "same"))

	_, err := resolveDocument(ctx, db.NewDocumentRepository(database), "same")
	require.ErrorContains(t, err, "matches 2 documents")
}

func TestLibraryImageIsStoredAsDocument(t *testing.T) {
	dir := setupCLI(t)
	ctx := context.Background()
	database := openTestDatabase(t)

	var out bytes.Buffer
	require.Error(t, runDocSave(ctx, &out, database, filepath.Join(dir, "absent.png"), ""))

	wif := filepath.Join(dir, "twill.wif")
	require.NoError(t, saveEnvelope(wif, testutil.FrameDocument(t, testutil.Twill(4, 4))))
	jsonOutput = true
	out.Reset()
	require.NoError(t, runDocSave(ctx, &out, database, wif, "woven"))

	var saved models.LibraryDocument
	require.NoError(t, json.Unmarshal(out.Bytes(), &saved))
	require.Equal(t, models.DocumentKindWIF, saved.Kind)

	doc, err := resolveDocument(ctx, db.NewDocumentRepository(database), "woven")
	require.NoError(t, err)
	env, err := decodeDocument(doc)
	require.NoError(t, err)
	require.Equal(t, testutil.Twill(4, 4).Pattern, env.Drafts[0].Pattern)
}

func TestDocUseDrivesShow(t *testing.T) {
	dir := setupCLI(t)
	ctx := context.Background()
	database := openTestDatabase(t)
	store := contextStore()

	var out bytes.Buffer
	require.Error(t, runShow(ctx, &out, "", showOptions{Draft: -1}))

	require.NoError(t, runDocSave(ctx, &out, database, writeTwill(t, dir, "twill.ada"), ""))
	require.Error(t, runDocUse(ctx, &out, database, store, "twill", 1))

	out.Reset()
	require.NoError(t, runDocUse(ctx, &out, database, store, "twill", 0))
	require.Equal(t, "document:twill draft:0\n", out.String())

	out.Reset()
	require.NoError(t, runShow(ctx, &out, "", showOptions{Draft: -1}))
	require.Contains(t, out.String(), "4 wefts x 4 warps\n██··\n")

	doc, err := resolveDocument(ctx, db.NewDocumentRepository(database), "twill")
	require.NoError(t, err)
	require.NoError(t, runDocRemove(ctx, &out, database, doc.ID))

	wctx, err := store.Load()
	require.NoError(t, err)
	require.True(t, wctx.IsEmpty())
}
