package models

import (
	"errors"
	"time"
)

// Library errors.
var (
	ErrInvalidLibraryName = errors.New("name is required")
	ErrInvalidDocKind     = errors.New("document kind must be ada or wif")
	ErrEmptyDocument      = errors.New("document has no content")
)

// LibraryPattern is a pattern saved in the local library so it can be
// reused across documents.
type LibraryPattern struct {
	// ID is the library identifier (uuid).
	ID string `json:"id"`

	// Pattern holds the name, size and cells.
	Pattern *Pattern `json:"pattern"`

	// CreatedAt is when the pattern was saved.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the pattern was last changed.
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks that the pattern is named and well formed.
func (p *LibraryPattern) Validate() error {
	validation := &ValidationErrors{}
	if p.Pattern == nil {
		validation.Add("pattern", ErrEmptyPattern)
		return validation.Err()
	}
	if p.Pattern.Name == "" {
		validation.Add("name", ErrInvalidLibraryName)
	}
	validation.Add("pattern", p.Pattern.Validate())
	return validation.Err()
}

// DocumentKind names the encoding a library document is stored in.
type DocumentKind string

const (
	DocumentKindADA DocumentKind = "ada"
	DocumentKindWIF DocumentKind = "wif"
)

// LibraryDocument is an encoded document saved in the local library.
type LibraryDocument struct {
	// ID is the library identifier (uuid).
	ID string `json:"id"`

	// Name is the human-friendly name.
	Name string `json:"name"`

	// Kind is the encoding of Data.
	Kind DocumentKind `json:"kind"`

	// Drafts is the number of drafts in the document.
	Drafts int `json:"drafts"`

	// Data is the encoded document.
	Data []byte `json:"-"`

	// CreatedAt is when the document was first saved.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the document was last saved.
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the document metadata.
func (d *LibraryDocument) Validate() error {
	validation := &ValidationErrors{}
	if d.Name == "" {
		validation.Add("name", ErrInvalidLibraryName)
	}
	switch d.Kind {
	case DocumentKindADA, DocumentKindWIF:
	default:
		validation.Add("kind", ErrInvalidDocKind)
	}
	if len(d.Data) == 0 {
		validation.Add("data", ErrEmptyDocument)
	}
	return validation.Err()
}
