package draft

import "github.com/tOgg1/weaver/internal/models"

// Face says which thread shows on top at a crossing.
type Face int

const (
	// WeftOver is the face of an Up cell: the weft covers the warp.
	WeftOver Face = iota
	// WarpOver is the face of a Down cell.
	WarpOver
)

// YarnVertex is a point where a weft changes face.
type YarnVertex struct {
	Warp int
	Face Face
}

// YarnPath is the simplified route of one weft through the warps.
type YarnPath struct {
	Row     int
	Shuttle int
	// Vertices holds the first crossing, every face change and the last
	// crossing. Unset cells break the path and are skipped.
	Vertices []YarnVertex
}

// YarnPaths returns the derived weft paths, computing them on first use after
// any change to the pattern or shuttle mappings.
func (d *Draft) YarnPaths() []YarnPath {
	if d.yarnPaths == nil {
		d.yarnPaths = d.computeYarnPaths()
	}
	return d.yarnPaths
}

func (d *Draft) computeYarnPaths() []YarnPath {
	paths := make([]YarnPath, 0, d.Wefts)
	for i := 0; i < d.Wefts; i++ {
		path := YarnPath{Row: i, Shuttle: -1}
		if i < len(d.RowShuttleMapping) {
			path.Shuttle = d.RowShuttleMapping[i]
		}

		last := -1
		lastFace := WeftOver
		for j := 0; j < d.Warps; j++ {
			c := d.Pattern[i][j]
			if !c.IsSet() {
				continue
			}
			face := WarpOver
			if c == models.Up {
				face = WeftOver
			}
			if last == -1 || face != lastFace {
				path.Vertices = append(path.Vertices, YarnVertex{Warp: j, Face: face})
			}
			last = j
			lastFace = face
		}
		if n := len(path.Vertices); n > 0 && path.Vertices[n-1].Warp != last {
			path.Vertices = append(path.Vertices, YarnVertex{Warp: last, Face: lastFace})
		}
		paths = append(paths, path)
	}
	return paths
}
