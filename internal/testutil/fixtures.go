// Package testutil holds shared fixtures for weaver tests.
package testutil

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/tOgg1/weaver/internal/draft"
	"github.com/tOgg1/weaver/internal/fileio"
	"github.com/tOgg1/weaver/internal/loom"
	"github.com/tOgg1/weaver/internal/models"
)

// Twill returns a wefts x warps draft woven as a 2/2 twill.
func Twill(wefts, warps int) *draft.Draft {
	d := draft.New(wefts, warps)
	for i := 0; i < wefts; i++ {
		for j := 0; j < warps; j++ {
			d.Pattern[i][j] = models.CellOf((j-i+4*wefts)%4 < 2)
		}
	}
	return d
}

// Random returns a draft with Up and Down cells drawn from seed.
func Random(wefts, warps int, seed uint64) *draft.Draft {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	d := draft.New(wefts, warps)
	for i := 0; i < wefts; i++ {
		for j := 0; j < warps; j++ {
			d.Pattern[i][j] = models.CellOf(rng.IntN(2) == 0)
		}
	}
	return d
}

// FrameDocument returns an envelope holding d and a frame loom recomputed
// from it.
func FrameDocument(t *testing.T, d *draft.Draft) *fileio.Envelope {
	t.Helper()
	l := loom.New(d, 8, 8)
	if !l.RecomputeLoom(d) {
		t.Logf("loom program is incomplete for %dx%d draft", d.Wefts, d.Warps)
	}
	env := &fileio.Envelope{Type: "weaver"}
	env.Add(d, l)
	return env
}

// WriteFile writes data under dir and returns the full path.
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteADA encodes env as a native document under dir.
func WriteADA(t *testing.T, dir, name string, env *fileio.Envelope) string {
	t.Helper()
	data, err := fileio.SaveADA(env)
	if err != nil {
		t.Fatalf("encode %s: %v", name, err)
	}
	return WriteFile(t, dir, name, data)
}
