package io

import (
	"errors"
	"maps"

	errs "github.com/matzehuels/layerstack/pkg/errors"
	"github.com/matzehuels/layerstack/pkg/stack"
)

// FormatVersion is the document version written by this package.
// Documents with a missing version are read as the current one.
const FormatVersion = 1

// ErrInvalidDocument is wrapped by every validation failure.
var ErrInvalidDocument = errors.New("invalid style document")

// Document is a named, serializable layer stack.
//
// Revision is opaque to this package; stores stamp it on every save so
// clients can tell versions apart. Metadata carries document-level values
// and is never interpreted.
type Document struct {
	Version  int            `json:"version" toml:"version" bson:"version"`
	Name     string         `json:"name,omitempty" toml:"name,omitempty" bson:"name,omitempty"`
	Revision string         `json:"revision,omitempty" toml:"revision,omitempty" bson:"revision,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty" toml:"metadata,omitempty" bson:"metadata,omitempty"`
	Layers   []stack.Layer  `json:"layers" toml:"layers" bson:"layers"`
}

// Validate checks the version and that every layer has a unique, non-empty ID.
// Failures carry the INVALID_DOCUMENT code and wrap [ErrInvalidDocument].
func (d *Document) Validate() error {
	if d.Version > FormatVersion {
		return errs.Wrap(errs.ErrCodeInvalidDocument, ErrInvalidDocument,
			"unsupported version %d (max %d)", d.Version, FormatVersion)
	}
	seen := make(map[string]bool, len(d.Layers))
	for i, l := range d.Layers {
		if l.ID == "" {
			return errs.Wrap(errs.ErrCodeInvalidDocument, ErrInvalidDocument, "layer %d has no id", i)
		}
		if seen[l.ID] {
			return errs.Wrap(errs.ErrCodeInvalidDocument, ErrInvalidDocument, "duplicate layer id %q", l.ID)
		}
		seen[l.ID] = true
	}
	return nil
}

// Stack builds an in-memory stack holding copies of the document's layers.
func (d *Document) Stack() (*stack.Stack, error) {
	return stack.New(d.Layers...)
}

// SetLayers replaces the document's layers with a snapshot of s.
func (d *Document) SetLayers(s *stack.Stack) {
	d.Layers = s.Snapshot()
}

// Clone returns a copy of d whose layers and metadata are not shared with d.
func (d *Document) Clone() *Document {
	out := *d
	out.Metadata = maps.Clone(d.Metadata)
	if d.Layers != nil {
		out.Layers = make([]stack.Layer, len(d.Layers))
		for i, l := range d.Layers {
			out.Layers[i] = l.Clone()
		}
	}
	return &out
}

// FromStack creates a current-version document named name from s.
func FromStack(name string, s *stack.Stack) *Document {
	return &Document{Version: FormatVersion, Name: name, Layers: s.Snapshot()}
}

// normalize fills defaults after decoding and validates the result.
func normalize(d *Document) (*Document, error) {
	if d.Version == 0 {
		d.Version = FormatVersion
	}
	if d.Layers == nil {
		d.Layers = []stack.Layer{}
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
