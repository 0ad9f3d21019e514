package fileio

import (
	"fmt"
	"math/rand/v2"

	"github.com/tOgg1/weaver/internal/draft"
	"github.com/tOgg1/weaver/internal/loom"
	"github.com/tOgg1/weaver/internal/models"
)

// FormOptions describes a new document. Zero values take defaults.
type FormOptions struct {
	Warps    int
	Wefts    int
	Frames   int
	Treadles int
	LoomType loom.Type
	EPI      int
	Units    string

	// Rand picks the second shuttle's color. Nil uses the global source.
	Rand *rand.Rand
}

// Defaults for FormOptions.
const (
	DefaultWarps    = 20
	DefaultWefts    = 20
	DefaultFrames   = 8
	DefaultTreadles = 10
)

// NewDocument creates a blank document with three shuttles and one loom.
func NewDocument(opts FormOptions) *Envelope {
	warps := orDefault(opts.Warps, DefaultWarps)
	wefts := orDefault(opts.Wefts, DefaultWefts)

	d := draft.New(wefts, warps)
	randomColor := 0
	if opts.Rand != nil {
		randomColor = opts.Rand.IntN(0xffffff)
	} else {
		randomColor = rand.IntN(0xffffff)
	}
	d.OverloadShuttles([]models.Shuttle{
		{ID: 0, Name: "Color 1", Type: models.MaterialYarn, Thickness: 50, Color: "#333333", Visible: true},
		{ID: 1, Name: "Color 2", Type: models.MaterialYarn, Thickness: 50, Color: fmt.Sprintf("#%06x", randomColor), Visible: true},
		{ID: 2, Name: "Conductive", Type: models.MaterialConductive, Thickness: 50, Color: "#61c97d", Visible: true},
	})

	l := loom.New(d, orDefault(opts.Frames, DefaultFrames), orDefault(opts.Treadles, DefaultTreadles))
	l.OverloadType(loom.TypeJacquard)
	if opts.LoomType != "" {
		l.OverloadType(opts.LoomType)
	}
	l.OverloadEPI(orDefault(opts.EPI, loom.DefaultEPI))
	if opts.Units != "" {
		l.OverloadUnits(opts.Units)
	}

	return &Envelope{
		Type:     "weaver",
		Drafts:   []*draft.Draft{d},
		Looms:    []*loom.Loom{l},
		Patterns: []models.Pattern{},
		Ops:      []OpProxy{},
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
