package fileio

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidDataURI is returned by ParseDataURI for malformed input.
var ErrInvalidDataURI = errors.New("invalid data uri")

// DataURI wraps payload in a data: URI, base64 encoded or percent-escaped
// UTF-8.
func DataURI(mime string, payload []byte, b64 bool) string {
	if b64 {
		return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(payload)
	}
	return "data:" + mime + ";charset=UTF-8," + url.PathEscape(string(payload))
}

// ParseDataURI returns the media type and payload of a data: URI.
func ParseDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}
	meta, body, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}

	params := strings.Split(meta, ";")
	mime := params[0]
	encoded := false
	for _, p := range params[1:] {
		if p == "base64" {
			encoded = true
		}
	}

	if encoded {
		payload, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
		}
		return mime, payload, nil
	}
	payload, err := url.PathUnescape(body)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return mime, []byte(payload), nil
}
