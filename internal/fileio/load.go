package fileio

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// Format names a codec.
type Format string

const (
	FormatADA   Format = "ada"
	FormatWIF   Format = "wif"
	FormatImage Format = "image"
)

// FormatOf picks the codec for a file name by extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ada", ".json":
		return FormatADA, nil
	case ".wif":
		return FormatWIF, nil
	case ".bmp", ".png", ".jpg", ".jpeg", ".gif":
		return FormatImage, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// LoadFile decodes data with the codec chosen by name's extension.
func LoadFile(name string, data []byte, opts RasterOptions) (*Envelope, error) {
	format, err := FormatOf(name)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatADA:
		return LoadADA(data)
	case FormatWIF:
		base := filepath.Base(name)
		return LoadWIF(data, strings.TrimSuffix(base, filepath.Ext(base)))
	default:
		return LoadImage(bytes.NewReader(data), opts)
	}
}

// SaveFile encodes env with the codec chosen by name's extension. WIF holds
// a single draft, so only the first draft and its loom are written.
func SaveFile(name string, env *Envelope, header WIFHeader) ([]byte, error) {
	format, err := FormatOf(name)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatADA:
		return SaveADA(env)
	case FormatWIF:
		d, l := env.Pair(0)
		return SaveWIF(d, l, header)
	default:
		return nil, fmt.Errorf("%w: cannot write images", ErrUnsupportedFormat)
	}
}
