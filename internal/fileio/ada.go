package fileio

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tOgg1/weaver/internal/draft"
	"github.com/tOgg1/weaver/internal/logging"
	"github.com/tOgg1/weaver/internal/loom"
	"github.com/tOgg1/weaver/internal/models"
)

// Capacity used for looms whose payload omits it.
const (
	defaultLoadFrames   = 8
	defaultLoadTreadles = 8
)

// draftPatch is the optional-field view of a serialized draft.
type draftPatch struct {
	ID      Optional[int]             `json:"id"`
	Name    Optional[string]          `json:"name"`
	Notes   Optional[string]          `json:"notes"`
	Wefts   Optional[int]             `json:"wefts"`
	Warps   Optional[int]             `json:"warps"`
	Pattern Optional[[][]models.Cell] `json:"pattern"`

	Shuttles    Optional[[]models.Shuttle] `json:"shuttles"`
	WarpSystems Optional[[]models.System]  `json:"warp_systems"`
	WeftSystems Optional[[]models.System]  `json:"weft_systems"`

	RowShuttleMapping Optional[[]int] `json:"rowShuttleMapping"`
	ColShuttleMapping Optional[[]int] `json:"colShuttleMapping"`
	RowSystemMapping  Optional[[]int] `json:"rowSystemMapping"`
	ColSystemMapping  Optional[[]int] `json:"colSystemMapping"`
}

// hasGrid reports whether the patch describes a draft at all.
func (p draftPatch) hasGrid() bool {
	return p.Pattern.Set || p.Wefts.Set || p.Warps.Set
}

// build creates a draft from the patch. Absent fields keep the defaults of
// draft.New.
func (p draftPatch) build() *draft.Draft {
	var d *draft.Draft
	switch {
	case p.Wefts.Set || p.Warps.Set:
		cells := p.Pattern.Or(nil)
		wefts := p.Wefts.Or(len(cells))
		warps := 0
		if len(cells) > 0 {
			warps = len(cells[0])
		}
		warps = p.Warps.Or(warps)
		d = draft.New(wefts, warps)
		for i := 0; i < d.Wefts && i < len(cells); i++ {
			copy(d.Pattern[i], cells[i])
		}
	default:
		d = draft.FromPattern(p.Pattern.Or(nil))
	}

	apply(p.ID, d.OverloadID)
	apply(p.Shuttles, d.OverloadShuttles)
	apply(p.WeftSystems, d.OverloadWeftSystems)
	apply(p.WarpSystems, d.OverloadWarpSystems)
	apply(p.RowShuttleMapping, d.OverloadRowShuttleMapping)
	apply(p.ColShuttleMapping, d.OverloadColShuttleMapping)
	apply(p.RowSystemMapping, d.OverloadRowSystemMapping)
	apply(p.ColSystemMapping, d.OverloadColSystemMapping)
	apply(p.Notes, d.OverloadNotes)
	apply(p.Name, d.OverloadName)
	return d
}

// loomPatch is the optional-field view of a serialized loom.
type loomPatch struct {
	DraftID     Optional[int]      `json:"draft_id"`
	Type        Optional[string]   `json:"type"`
	MinFrames   Optional[int]      `json:"min_frames"`
	MinTreadles Optional[int]      `json:"min_treadles"`
	Threading   Optional[[]int]    `json:"threading"`
	Treadling   Optional[[]int]    `json:"treadling"`
	Tieup       Optional[[][]bool] `json:"tieup"`
	EPI         Optional[int]      `json:"epi"`
	Units       Optional[string]   `json:"units"`
}

// build creates a loom bound to d, which may be nil.
func (p loomPatch) build(d *draft.Draft) *loom.Loom {
	l := loom.New(d, p.MinFrames.Or(defaultLoadFrames), p.MinTreadles.Or(defaultLoadTreadles))
	apply(p.Type, func(s string) {
		t, err := loom.ParseType(s)
		if err != nil {
			log := logging.Component("fileio")
			log.Debug().Str("type", s).Msg("ignoring unknown loom type")
			return
		}
		l.OverloadType(t)
	})
	apply(p.Threading, l.OverloadThreading)
	apply(p.Treadling, l.OverloadTreadling)
	apply(p.Tieup, l.OverloadTieup)
	apply(p.EPI, l.OverloadEPI)
	apply(p.Units, l.OverloadUnits)
	return l
}

// documentPatch is the optional-field view of a whole native document.
type documentPatch struct {
	Type     Optional[string]           `json:"type"`
	Drafts   Optional[[]draftPatch]     `json:"drafts"`
	Looms    Optional[[]loomPatch]      `json:"looms"`
	Loom     Optional[loomPatch]        `json:"loom"`
	Patterns Optional[[]models.Pattern] `json:"patterns"`
	Ops      Optional[[]OpProxy]        `json:"ops"`
	Nodes    json.RawMessage            `json:"nodes"`
	Tree     json.RawMessage            `json:"tree"`
	Notes    Optional[string]           `json:"notes"`
}

// LoadADA decodes a native document. Documents that predate multi-draft
// support (a bare draft object, a singular "loom") load as one-element
// lists. The only error is a payload that is not JSON.
func LoadADA(data []byte) (*Envelope, error) {
	var doc documentPatch
	if err := json.Unmarshal(data, &doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return nil, fmt.Errorf("decode native document: %w", err)
		}
		doc = documentPatch{}
	}

	drafts := doc.Drafts
	if !drafts.Set {
		var bare draftPatch
		if err := json.Unmarshal(data, &bare); err == nil && bare.hasGrid() {
			drafts = Some([]draftPatch{bare})
		}
	}

	var legacyLooms Optional[[]loomPatch]
	if doc.Loom.Set {
		legacyLooms = Some([]loomPatch{doc.Loom.Value})
	}
	looms := Overlay(legacyLooms, doc.Looms)

	env := &Envelope{
		Type:  doc.Type.Or(""),
		Nodes: passThrough(doc.Nodes),
		Tree:  passThrough(doc.Tree),
		Ops:   doc.Ops.Or([]OpProxy{}),
		Notes: doc.Notes.Or(""),
	}

	for _, p := range drafts.Or(nil) {
		env.Drafts = append(env.Drafts, p.build())
	}
	for i, p := range looms.Or(nil) {
		env.Looms = append(env.Looms, p.build(bindDraft(env.Drafts, p.DraftID, i)))
	}

	env.Patterns = make([]models.Pattern, 0)
	for _, p := range doc.Patterns.Or(nil) {
		norm := models.NewPattern(p.Name, p.Cells)
		norm.ID = p.ID
		norm.Favorite = p.Favorite
		env.Patterns = append(env.Patterns, *norm)
	}

	log := logging.Component("fileio")
	log.Debug().
		Int("drafts", len(env.Drafts)).
		Int("looms", len(env.Looms)).
		Int("patterns", len(env.Patterns)).
		Msg("loaded native document")
	return env, nil
}

// bindDraft picks the draft for the loom at position pos: the draft whose id
// matches draftID (preferring the one at pos when ids repeat), else the draft
// at pos.
func bindDraft(drafts []*draft.Draft, draftID Optional[int], pos int) *draft.Draft {
	if draftID.Set {
		if pos < len(drafts) && drafts[pos].ID == draftID.Value {
			return drafts[pos]
		}
		for _, d := range drafts {
			if d.ID == draftID.Value {
				return d
			}
		}
	}
	if pos < len(drafts) {
		return drafts[pos]
	}
	return nil
}

func passThrough(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return json.RawMessage("[]")
	}
	return raw
}

type draftJSON struct {
	ID                int              `json:"id"`
	Name              string           `json:"name"`
	Wefts             int              `json:"wefts"`
	Warps             int              `json:"warps"`
	Pattern           [][]models.Cell  `json:"pattern"`
	Shuttles          []models.Shuttle `json:"shuttles"`
	WarpSystems       []models.System  `json:"warp_systems"`
	WeftSystems       []models.System  `json:"weft_systems"`
	RowShuttleMapping []int            `json:"rowShuttleMapping"`
	ColShuttleMapping []int            `json:"colShuttleMapping"`
	RowSystemMapping  []int            `json:"rowSystemMapping"`
	ColSystemMapping  []int            `json:"colSystemMapping"`
	Notes             string           `json:"notes"`
}

type loomJSON struct {
	DraftID *int `json:"draft_id,omitempty"`
	*loom.Loom
}

type documentJSON struct {
	Type     string           `json:"type"`
	Nodes    json.RawMessage  `json:"nodes"`
	Tree     json.RawMessage  `json:"tree"`
	Drafts   []draftJSON      `json:"drafts"`
	Looms    []loomJSON       `json:"looms"`
	Patterns []models.Pattern `json:"patterns"`
	Ops      []OpProxy        `json:"ops"`
	Notes    string           `json:"notes"`
}

// SaveADA encodes an envelope as a native document.
func SaveADA(env *Envelope) ([]byte, error) {
	doc := documentJSON{
		Type:     env.Type,
		Nodes:    passThrough(env.Nodes),
		Tree:     passThrough(env.Tree),
		Drafts:   make([]draftJSON, 0, len(env.Drafts)),
		Looms:    make([]loomJSON, 0, len(env.Looms)),
		Patterns: env.Patterns,
		Ops:      env.Ops,
		Notes:    env.Notes,
	}
	if doc.Patterns == nil {
		doc.Patterns = []models.Pattern{}
	}
	if doc.Ops == nil {
		doc.Ops = []OpProxy{}
	}

	for _, d := range env.Drafts {
		doc.Drafts = append(doc.Drafts, draftJSON{
			ID:                d.ID,
			Name:              d.Name,
			Wefts:             d.Wefts,
			Warps:             d.Warps,
			Pattern:           d.Pattern,
			Shuttles:          d.Shuttles,
			WarpSystems:       d.WarpSystems,
			WeftSystems:       d.WeftSystems,
			RowShuttleMapping: d.RowShuttleMapping,
			ColShuttleMapping: d.ColShuttleMapping,
			RowSystemMapping:  d.RowSystemMapping,
			ColSystemMapping:  d.ColSystemMapping,
			Notes:             d.Notes,
		})
	}
	for _, l := range env.Looms {
		entry := loomJSON{Loom: l}
		if d := l.Draft(); d != nil {
			id := d.ID
			entry.DraftID = &id
		}
		doc.Looms = append(doc.Looms, entry)
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode native document: %w", err)
	}
	return out, nil
}
