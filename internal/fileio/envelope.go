// Package fileio moves drafts and looms to and from persisted formats: the
// native JSON document, WIF text and raster images. Every codec produces or
// consumes an Envelope.
package fileio

import (
	"encoding/json"
	"errors"

	"github.com/tOgg1/weaver/internal/draft"
	"github.com/tOgg1/weaver/internal/loom"
	"github.com/tOgg1/weaver/internal/models"
)

var (
	// ErrUnsupportedFormat is returned for file extensions with no codec.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrNoDraft is returned when a save needs a draft the envelope lacks.
	ErrNoDraft = errors.New("envelope has no draft")
)

// Envelope is the unit every codec reads and writes.
type Envelope struct {
	// Type tags the editor that produced the document.
	Type string

	Drafts   []*draft.Draft
	Looms    []*loom.Loom
	Patterns []models.Pattern

	// Nodes and Tree belong to the node-graph editor and pass through
	// untouched.
	Nodes json.RawMessage
	Tree  json.RawMessage

	Ops   []OpProxy
	Notes string
}

// OpProxy records an operation node of the graph editor.
type OpProxy struct {
	NodeID int    `json:"node_id"`
	Name   string `json:"name"`
	Params []int  `json:"params"`
}

// Pair returns draft i and the loom bound to it, or nil when there is none.
func (e *Envelope) Pair(i int) (*draft.Draft, *loom.Loom) {
	if i < 0 || i >= len(e.Drafts) {
		return nil, nil
	}
	d := e.Drafts[i]
	for _, l := range e.Looms {
		if l.Draft() == d {
			return d, l
		}
	}
	return d, nil
}

// Add appends a draft and its loom.
func (e *Envelope) Add(d *draft.Draft, l *loom.Loom) {
	e.Drafts = append(e.Drafts, d)
	if l != nil {
		e.Looms = append(e.Looms, l)
	}
}
