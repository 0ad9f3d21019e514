package fileio

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tOgg1/weaver/internal/loom"
	"github.com/tOgg1/weaver/internal/models"
)

func TestNewDocumentDefaults(t *testing.T) {
	env := NewDocument(FormOptions{Rand: rand.New(rand.NewPCG(3, 4))})
	d, l := env.Pair(0)

	require.Equal(t, 20, d.Warps)
	require.Equal(t, 20, d.Wefts)
	require.Len(t, d.Shuttles, 3)
	require.Equal(t, "#333333", d.Shuttles[0].Color)
	require.Equal(t, "Color 2", d.Shuttles[1].Name)
	require.Regexp(t, `^#[0-9a-f]{6}$`, d.Shuttles[1].Color)
	require.Equal(t, models.MaterialConductive, d.Shuttles[2].Type)
	require.Equal(t, "#61c97d", d.Shuttles[2].Color)

	require.Equal(t, loom.TypeJacquard, l.Type)
	require.Equal(t, 8, l.MinFrames)
	require.Equal(t, 10, l.MinTreadles)
	require.Equal(t, 10, l.EPI)
	require.Equal(t, "in", l.Units)
}

func TestNewDocumentOptions(t *testing.T) {
	env := NewDocument(FormOptions{
		Warps: 12, Wefts: 4, Frames: 4, Treadles: 6,
		LoomType: loom.TypeFrame, EPI: 24, Units: "cm",
	})
	d, l := env.Pair(0)
	require.Equal(t, 12, d.Warps)
	require.Equal(t, 4, d.Wefts)
	require.Equal(t, loom.TypeFrame, l.Type)
	require.Equal(t, 4, l.MinFrames)
	require.Equal(t, 24, l.EPI)
	require.Equal(t, "cm", l.Units)
	require.NoError(t, d.Validate())
}
