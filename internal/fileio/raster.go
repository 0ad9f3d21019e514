package fileio

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/tOgg1/weaver/internal/draft"
	"github.com/tOgg1/weaver/internal/logging"
	"github.com/tOgg1/weaver/internal/loom"
	"github.com/tOgg1/weaver/internal/models"
)

// DefaultThreshold is the channel sum below which an opaque pixel is Up.
const DefaultThreshold = 750

// Capacity of the blank jacquard loom paired with raster drafts.
const (
	rasterFrames   = 8
	rasterTreadles = 10
)

// RasterMode selects how pixels become drafts.
type RasterMode string

const (
	// RasterThreshold produces one draft from dark pixels.
	RasterThreshold RasterMode = "threshold"
	// RasterColor produces one draft per distinct pixel color.
	RasterColor RasterMode = "color"
)

// RasterOptions configures image ingestion.
type RasterOptions struct {
	Mode      RasterMode
	Threshold int

	// Width and Height resample the image before ingestion when both are
	// positive.
	Width  int
	Height int
}

// ErrShortBuffer is returned when a pixel buffer is smaller than its size.
var ErrShortBuffer = errors.New("pixel buffer shorter than width*height*4")

// LoadBitmap reads an RGBA buffer as a two-color threshold image: a pixel is
// Up when r+g+b < threshold and it is not fully transparent. A threshold of
// zero uses DefaultThreshold.
func LoadBitmap(width, height int, rgba []byte, threshold int) (*Envelope, error) {
	if err := checkBuffer(width, height, rgba); err != nil {
		return nil, err
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	d := draft.New(height, width)
	for i := 0; i < height; i++ {
		for j := 0; j < width; j++ {
			px := rgba[(i*width+j)*4:]
			sum := int(px[0]) + int(px[1]) + int(px[2])
			d.Pattern[i][j] = models.CellOf(sum < threshold && px[3] != 0)
		}
	}

	env := rasterEnvelope()
	env.Add(d, jacquard(d))
	return env, nil
}

// LoadColorSeparated reads an RGBA buffer as one draft per distinct pixel
// value, in first-seen order. Each draft is Up where the pixel matches its
// color and Down elsewhere, and its first shuttle takes that color.
func LoadColorSeparated(width, height int, rgba []byte) (*Envelope, error) {
	if err := checkBuffer(width, height, rgba); err != nil {
		return nil, err
	}

	keys := make([]string, width*height)
	index := make(map[string]int)
	var colors []string
	for p := range keys {
		px := rgba[p*4 : p*4+4]
		key := fmt.Sprintf("%02x%02x%02x%02x", px[0], px[1], px[2], px[3])
		keys[p] = key
		if _, ok := index[key]; !ok {
			index[key] = len(colors)
			colors = append(colors, key)
		}
	}

	env := rasterEnvelope()
	for n, color := range colors {
		d := draft.New(height, width)
		d.OverloadID(n)
		d.OverloadName("#" + color)
		d.Shuttles[0].Color = "#" + color[:6]
		for p, key := range keys {
			d.Pattern[p/width][p%width] = models.CellOf(key == color)
		}
		env.Add(d, jacquard(d))
	}

	log := logging.Component("fileio")
	log.Debug().Int("colors", len(colors)).Msg("color separated image")
	return env, nil
}

// DecodeImage decodes a png, jpeg, gif or bmp image into non-premultiplied
// RGBA bytes. When width and height are positive the image is resampled to
// that size first.
func DecodeImage(r io.Reader, width, height int) (int, int, []byte, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	if width > 0 && height > 0 {
		dst = image.NewNRGBA(image.Rect(0, 0, width, height))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	} else {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	}

	log := logging.Component("fileio")
	log.Debug().
		Str("format", format).
		Int("width", dst.Bounds().Dx()).
		Int("height", dst.Bounds().Dy()).
		Msg("decoded image")
	return dst.Bounds().Dx(), dst.Bounds().Dy(), dst.Pix, nil
}

// LoadImage decodes an image and ingests it according to opts.
func LoadImage(r io.Reader, opts RasterOptions) (*Envelope, error) {
	w, h, pix, err := DecodeImage(r, opts.Width, opts.Height)
	if err != nil {
		return nil, err
	}
	if opts.Mode == RasterColor {
		return LoadColorSeparated(w, h, pix)
	}
	return LoadBitmap(w, h, pix, opts.Threshold)
}

func checkBuffer(width, height int, rgba []byte) error {
	if width < 0 || height < 0 || len(rgba) < width*height*4 {
		return fmt.Errorf("%w: %dx%d with %d bytes", ErrShortBuffer, width, height, len(rgba))
	}
	return nil
}

func jacquard(d *draft.Draft) *loom.Loom {
	l := loom.New(d, rasterFrames, rasterTreadles)
	l.OverloadType(loom.TypeJacquard)
	return l
}

func rasterEnvelope() *Envelope {
	return &Envelope{
		Type:     "weaver",
		Patterns: []models.Pattern{},
		Ops:      []OpProxy{},
	}
}
