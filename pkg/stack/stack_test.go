package stack

import (
	"errors"
	"slices"
	"testing"

	errs "github.com/matzehuels/layerstack/pkg/errors"
)

func newTestStack(t *testing.T, ids ...string) *Stack {
	t.Helper()
	layers := make([]Layer, len(ids))
	for i, id := range ids {
		layers[i] = Layer{ID: id}
	}
	s, err := New(layers...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

func TestNew(t *testing.T) {
	s := newTestStack(t, "a", "b", "c")
	if got := s.IDs(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("IDs() = %v, want [a b c]", got)
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}

	if _, err := New(Layer{ID: "a"}, Layer{ID: "a"}); !errors.Is(err, ErrDuplicateLayer) {
		t.Errorf("New() with duplicates error = %v, want ErrDuplicateLayer", err)
	}
}

func TestZeroValueStack(t *testing.T) {
	var s Stack
	if err := s.AddLayer(Layer{ID: "a"}, ""); err != nil {
		t.Fatalf("AddLayer() on zero Stack error: %v", err)
	}
	if _, ok := s.Layer("a"); !ok {
		t.Error("Layer(a) not found after AddLayer")
	}
}

func TestAddLayer(t *testing.T) {
	tests := []struct {
		name     string
		layer    Layer
		before   string
		want     []string
		wantCode errs.Code
	}{
		{"append", Layer{ID: "x"}, "", []string{"a", "b", "c", "x"}, ""},
		{"before first", Layer{ID: "x"}, "a", []string{"x", "a", "b", "c"}, ""},
		{"before middle", Layer{ID: "x"}, "b", []string{"a", "x", "b", "c"}, ""},
		{"empty id", Layer{}, "", []string{"a", "b", "c"}, errs.ErrCodeInvalidLayerID},
		{"duplicate", Layer{ID: "b"}, "", []string{"a", "b", "c"}, errs.ErrCodeLayerExists},
		{"unknown anchor", Layer{ID: "x"}, "zzz", []string{"a", "b", "c"}, errs.ErrCodeLayerNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStack(t, "a", "b", "c")
			err := s.AddLayer(tt.layer, tt.before)
			if got := errs.GetCode(err); got != tt.wantCode {
				t.Errorf("AddLayer() code = %q, want %q (err: %v)", got, tt.wantCode, err)
			}
			if got := s.IDs(); !slices.Equal(got, tt.want) {
				t.Errorf("IDs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddLayerCopiesInput(t *testing.T) {
	s := newTestStack(t)
	in := Layer{ID: "a", Metadata: Metadata{"group": "g"}}
	if err := s.AddLayer(in, ""); err != nil {
		t.Fatal(err)
	}
	in.Metadata["group"] = "other"

	l, _ := s.Layer("a")
	if l.Group() != "g" {
		t.Errorf("stored layer group = %q, want g (input map must not be shared)", l.Group())
	}
}

func TestMoveLayer(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		before  string
		want    []string
		wantErr error
	}{
		{"to end", "a", "", []string{"b", "c", "d", "a"}, nil},
		{"forward", "a", "c", []string{"b", "a", "c", "d"}, nil},
		{"backward", "d", "b", []string{"a", "d", "b", "c"}, nil},
		{"already in place", "b", "c", []string{"a", "b", "c", "d"}, nil},
		{"before itself", "b", "b", []string{"a", "b", "c", "d"}, nil},
		{"unknown layer", "x", "a", []string{"a", "b", "c", "d"}, ErrLayerNotFound},
		{"unknown anchor", "a", "x", []string{"a", "b", "c", "d"}, ErrLayerNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStack(t, "a", "b", "c", "d")
			err := s.MoveLayer(tt.id, tt.before)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("MoveLayer() error = %v, want %v", err, tt.wantErr)
			}
			if got := s.IDs(); !slices.Equal(got, tt.want) {
				t.Errorf("IDs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRemoveLayer(t *testing.T) {
	s := newTestStack(t, "a", "b", "c")
	if err := s.RemoveLayer("b"); err != nil {
		t.Fatalf("RemoveLayer() error: %v", err)
	}
	if got := s.IDs(); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("IDs() = %v, want [a c]", got)
	}
	if _, ok := s.Layer("b"); ok {
		t.Error("removed layer still reachable by ID")
	}
	if err := s.RemoveLayer("b"); !errs.Is(err, errs.ErrCodeLayerNotFound) {
		t.Errorf("second RemoveLayer() error = %v, want LAYER_NOT_FOUND", err)
	}
}

func TestLayersIsFreshRead(t *testing.T) {
	s := newTestStack(t, "a", "b")
	view := s.Layers()
	_ = s.AddLayer(Layer{ID: "c"}, "a")

	if len(view) != 2 {
		t.Errorf("earlier Layers() result changed length to %d", len(view))
	}

	// Metadata edits through the returned pointers are live.
	view[0].Metadata = Metadata{GroupKey: "g"}
	l, _ := s.Layer("a")
	if l.Group() != "g" {
		t.Errorf("Group() = %q, want g", l.Group())
	}
}

func TestSnapshotIsDeep(t *testing.T) {
	s, _ := New(Layer{ID: "a", Metadata: Metadata{GroupKey: "g"}})
	snap := s.Snapshot()
	snap[0].Metadata[GroupKey] = "changed"

	l, _ := s.Layer("a")
	if l.Group() != "g" {
		t.Errorf("Snapshot shares metadata with the stack")
	}
}

func TestLayerGroup(t *testing.T) {
	tests := []struct {
		name  string
		layer *Layer
		want  string
	}{
		{"nil layer", nil, ""},
		{"nil metadata", &Layer{ID: "a"}, ""},
		{"tagged", &Layer{ID: "a", Metadata: Metadata{GroupKey: "roads"}}, "roads"},
		{"non-string tag", &Layer{ID: "a", Metadata: Metadata{GroupKey: 42}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.layer.Group(); got != tt.want {
				t.Errorf("Group() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	s := newTestStack(t, "water", "roads")
	if got := s.String(); got != "[water roads]" {
		t.Errorf("String() = %q", got)
	}
}
