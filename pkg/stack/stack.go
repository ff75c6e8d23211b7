package stack

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	errs "github.com/matzehuels/layerstack/pkg/errors"
)

var (
	// ErrLayerNotFound is returned by [Stack.AddLayer] and [Stack.MoveLayer]
	// when the anchor does not exist, and by [Stack.MoveLayer] and
	// [Stack.RemoveLayer] when the target layer does not exist.
	ErrLayerNotFound = errors.New("layer not found")

	// ErrDuplicateLayer is returned by [Stack.AddLayer] when a layer with the
	// same ID is already in the stack. Layer IDs must be unique.
	ErrDuplicateLayer = errors.New("duplicate layer ID")

	// ErrInvalidLayerID is returned by [Stack.AddLayer] when the layer ID is empty.
	ErrInvalidLayerID = errors.New("layer ID must not be empty")
)

// GroupKey is the metadata key holding a layer's group tag.
const GroupKey = "group"

// Metadata is the mutable key-value bag attached to a layer.
// A nil Metadata is valid and behaves as empty for reads.
type Metadata map[string]any

// Clone returns a shallow copy of m. Nested maps and slices are shared.
// Clone of a nil Metadata returns nil.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}

// String returns the string value stored at key, or "" when the key is
// missing or holds a non-string value.
func (m Metadata) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// Layer is a single entry of a layer stack.
//
// Apart from ID and Metadata, fields are carried opaquely: nothing in this
// module interprets Type, Source, Paint or Layout.
type Layer struct {
	ID       string         `json:"id" toml:"id" bson:"id"`
	Type     string         `json:"type,omitempty" toml:"type,omitempty" bson:"type,omitempty"`
	Source   string         `json:"source,omitempty" toml:"source,omitempty" bson:"source,omitempty"`
	Paint    map[string]any `json:"paint,omitempty" toml:"paint,omitempty" bson:"paint,omitempty"`
	Layout   map[string]any `json:"layout,omitempty" toml:"layout,omitempty" bson:"layout,omitempty"`
	Metadata Metadata       `json:"metadata,omitempty" toml:"metadata,omitempty" bson:"metadata,omitempty"`
}

// Group returns the layer's group tag, or "" when the layer is ungrouped.
func (l *Layer) Group() string {
	if l == nil {
		return ""
	}
	return l.Metadata.String(GroupKey)
}

// Clone returns a copy of l whose top-level maps are not shared with l.
func (l Layer) Clone() Layer {
	l.Paint = maps.Clone(l.Paint)
	l.Layout = maps.Clone(l.Layout)
	l.Metadata = l.Metadata.Clone()
	return l
}

// Stack is an in-memory ordered layer sequence. Index 0 is painted first.
//
// The zero value is an empty, usable stack.
// Stack is not safe for concurrent use without external synchronization.
type Stack struct {
	layers []*Layer
	byID   map[string]*Layer
}

// New creates a stack holding copies of layers in the given order.
// Returns an error if a layer has an empty or duplicate ID.
func New(layers ...Layer) (*Stack, error) {
	s := &Stack{}
	for _, l := range layers {
		if err := s.AddLayer(l, ""); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Len returns the number of layers.
func (s *Stack) Len() int { return len(s.layers) }

// Layer returns the layer with the given ID. The returned pointer is owned by
// the stack; changes to its Metadata are visible to later reads.
func (s *Stack) Layer(id string) (*Layer, bool) {
	l, ok := s.byID[id]
	return l, ok
}

// Layers returns the layers in paint order. The slice is a fresh copy, the
// layers it points to are the live ones.
func (s *Stack) Layers() []*Layer {
	return slices.Clone(s.layers)
}

// IDs returns the layer IDs in paint order.
func (s *Stack) IDs() []string {
	ids := make([]string, len(s.layers))
	for i, l := range s.layers {
		ids[i] = l.ID
	}
	return ids
}

// Index returns the position of the layer with the given ID, or -1.
func (s *Stack) Index(id string) int {
	return slices.IndexFunc(s.layers, func(l *Layer) bool { return l.ID == id })
}

// Snapshot returns deep copies of all layers in paint order.
func (s *Stack) Snapshot() []Layer {
	out := make([]Layer, len(s.layers))
	for i, l := range s.layers {
		out[i] = l.Clone()
	}
	return out
}

// AddLayer inserts a copy of l before the layer beforeID, or appends it when
// beforeID is empty.
func (s *Stack) AddLayer(l Layer, beforeID string) error {
	if l.ID == "" {
		return errs.Wrap(errs.ErrCodeInvalidLayerID, ErrInvalidLayerID, "add layer")
	}
	if _, exists := s.byID[l.ID]; exists {
		return errs.Wrap(errs.ErrCodeLayerExists, ErrDuplicateLayer, "add layer %q", l.ID)
	}
	pos := len(s.layers)
	if beforeID != "" {
		if pos = s.Index(beforeID); pos < 0 {
			return errs.Wrap(errs.ErrCodeLayerNotFound, ErrLayerNotFound, "add layer %q before %q", l.ID, beforeID)
		}
	}
	if s.byID == nil {
		s.byID = make(map[string]*Layer)
	}
	layer := l.Clone()
	s.layers = slices.Insert(s.layers, pos, &layer)
	s.byID[layer.ID] = &layer
	return nil
}

// MoveLayer moves the layer id so that it sits immediately before beforeID,
// or to the end when beforeID is empty. Moving a layer before itself is a no-op.
func (s *Stack) MoveLayer(id, beforeID string) error {
	from := s.Index(id)
	if from < 0 {
		return errs.Wrap(errs.ErrCodeLayerNotFound, ErrLayerNotFound, "move layer %q", id)
	}
	if beforeID != "" && s.Index(beforeID) < 0 {
		return errs.Wrap(errs.ErrCodeLayerNotFound, ErrLayerNotFound, "move layer %q before %q", id, beforeID)
	}
	if id == beforeID {
		return nil
	}

	l := s.layers[from]
	s.layers = slices.Delete(s.layers, from, from+1)
	to := len(s.layers)
	if beforeID != "" {
		to = s.Index(beforeID)
	}
	s.layers = slices.Insert(s.layers, to, l)
	return nil
}

// RemoveLayer deletes the layer with the given ID.
func (s *Stack) RemoveLayer(id string) error {
	i := s.Index(id)
	if i < 0 {
		return errs.Wrap(errs.ErrCodeLayerNotFound, ErrLayerNotFound, "remove layer %q", id)
	}
	s.layers = slices.Delete(s.layers, i, i+1)
	delete(s.byID, id)
	return nil
}

// String renders the stack as its ID list, e.g. "[water roads labels]".
func (s *Stack) String() string {
	return fmt.Sprint(s.IDs())
}
