package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Context is the CLI selection that commands fall back to when no file is
// given: a library document and a draft inside it.
type Context struct {
	DocumentID   string    `yaml:"document,omitempty"`
	DocumentName string    `yaml:"document_name,omitempty"`
	DraftIndex   int       `yaml:"draft,omitempty"`
	UpdatedAt    time.Time `yaml:"updated_at,omitempty"`
}

// IsEmpty reports whether no document is selected.
func (c *Context) IsEmpty() bool {
	return c.DocumentID == ""
}

// SetDocument selects a document and resets the draft index.
func (c *Context) SetDocument(id, name string) {
	*c = Context{DocumentID: id, DocumentName: name, UpdatedAt: time.Now()}
}

// SetDraft selects a draft within the current document. Negative indexes
// select the first draft.
func (c *Context) SetDraft(index int) {
	c.DraftIndex = max(index, 0)
	c.UpdatedAt = time.Now()
}

func (c *Context) String() string {
	if c.IsEmpty() {
		return "(no context set)"
	}
	name := c.DocumentName
	if name == "" {
		name = c.DocumentID
		if len(name) > 8 {
			name = name[:8]
		}
	}
	return fmt.Sprintf("document:%s draft:%d", name, c.DraftIndex)
}

// ContextStore persists a Context as YAML.
type ContextStore struct {
	path string
}

// NewContextStore returns a store at path, or at
// ~/.config/weaver/context.yaml when path is empty.
func NewContextStore(path string) *ContextStore {
	if path == "" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, ".config", "weaver", "context.yaml")
	}
	return &ContextStore{path: path}
}

// Path returns the context file path.
func (s *ContextStore) Path() string {
	return s.path
}

// Load reads the stored context. A missing file is an empty context.
func (s *ContextStore) Load() (*Context, error) {
	var c Context
	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &c, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read context file: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse context file %s: %w", s.path, err)
	}
	return &c, nil
}

// Save replaces the stored context. The file is swapped in with a rename so
// readers never see a partial write.
func (s *ContextStore) Save(c *Context) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode context: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create context directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".context-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to write context file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write context file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write context file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to write context file: %w", err)
	}
	return nil
}

// Update loads the context, applies fn and saves the result. Nothing is
// written when fn fails.
func (s *ContextStore) Update(fn func(*Context) error) (*Context, error) {
	c, err := s.Load()
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.Save(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Clear removes the context file.
func (s *ContextStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove context file: %w", err)
	}
	return nil
}
