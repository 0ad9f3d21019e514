package fileio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatOf(t *testing.T) {
	for name, want := range map[string]Format{
		"a.ada":       FormatADA,
		"b.JSON":      FormatADA,
		"c.wif":       FormatWIF,
		"d.bmp":       FormatImage,
		"e.jpeg":      FormatImage,
		"dir/f.PNG":   FormatImage,
		"g.draft.gif": FormatImage,
	} {
		got, err := FormatOf(name)
		require.NoError(t, err, name)
		require.Equal(t, want, got, name)
	}

	_, err := FormatOf("notes.txt")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadFileDispatch(t *testing.T) {
	env, err := LoadFile("doc.ada", []byte(modernDocument), RasterOptions{})
	require.NoError(t, err)
	require.Len(t, env.Drafts, 1)

	d, l := twillPair(t)
	wif, err := SaveWIF(d, l, testHeader)
	require.NoError(t, err)
	env, err = LoadFile("/tmp/My Draft.wif", wif, RasterOptions{})
	require.NoError(t, err)
	require.Equal(t, "My Draft", env.Drafts[0].Name)

	out, err := SaveFile("copy.wif", env, testHeader)
	require.NoError(t, err)
	require.Equal(t, string(wif), string(out))

	_, err = SaveFile("copy.png", env, testHeader)
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = SaveFile("copy.wif", &Envelope{}, testHeader)
	require.ErrorIs(t, err, ErrNoDraft)
}

func TestDataURI(t *testing.T) {
	payload := []byte("[WIF]\nVersion=1.1 & more")

	uri := DataURI("text/plain", payload, true)
	require.Contains(t, uri, "data:text/plain;base64,")
	mime, got, err := ParseDataURI(uri)
	require.NoError(t, err)
	require.Equal(t, "text/plain", mime)
	require.Equal(t, payload, got)

	uri = DataURI("application/json", []byte(`{"a": "b c"}`), false)
	require.NotContains(t, uri, " ")
	mime, got, err = ParseDataURI(uri)
	require.NoError(t, err)
	require.Equal(t, "application/json", mime)
	require.Equal(t, `{"a": "b c"}`, string(got))

	_, _, err = ParseDataURI("http://example.com")
	require.ErrorIs(t, err, ErrInvalidDataURI)
}
