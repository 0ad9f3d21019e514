package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tOgg1/weaver/internal/draft"
	"github.com/tOgg1/weaver/internal/fileio"
	"github.com/tOgg1/weaver/internal/loom"
)

// loadEnvelope reads and decodes a document, WIF file or image.
func loadEnvelope(path string) (*fileio.Envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	env, err := fileio.LoadFile(path, data, GetConfig().RasterOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return env, nil
}

// saveEnvelope encodes env by path's extension and writes it.
func saveEnvelope(path string, env *fileio.Envelope) error {
	data, err := fileio.SaveFile(path, env, wifHeader(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// wifHeader builds the [WIF] header from configuration.
func wifHeader(now time.Time) fileio.WIFHeader {
	h := fileio.DefaultWIFHeader(now)
	cfg := GetConfig().WIF
	if cfg.SourceProgram != "" {
		h.SourceProgram = cfg.SourceProgram
	}
	if cfg.SourceVersion != "" {
		h.SourceVersion = cfg.SourceVersion
	}
	if cfg.Developers != "" {
		h.Developers = cfg.Developers
	}
	return h
}

// pickDraft returns draft index of env and its loom.
func pickDraft(env *fileio.Envelope, index int) (*draft.Draft, *loom.Loom, error) {
	if len(env.Drafts) == 0 {
		return nil, nil, fileio.ErrNoDraft
	}
	if index < 0 || index >= len(env.Drafts) {
		return nil, nil, fmt.Errorf("draft %d out of range (document has %d)", index, len(env.Drafts))
	}
	d, l := env.Pair(index)
	return d, l, nil
}

// withExt replaces the extension of path's base name and places it in dir
// (or next to path when dir is empty).
func withExt(path, dir, ext string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + "." + strings.TrimPrefix(ext, ".")
	if dir == "" {
		dir = filepath.Dir(path)
	}
	return filepath.Join(dir, base)
}

// parseParams parses repeated key=value flags into integer parameters.
func parseParams(pairs []string) (map[string]int, error) {
	out := make(map[string]int, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q (expected name=value)", pair)
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", key, err)
		}
		out[key] = n
	}
	return out, nil
}
