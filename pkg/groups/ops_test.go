package groups

import (
	"errors"
	"slices"
	"testing"
	"time"

	errs "github.com/matzehuels/layerstack/pkg/errors"
	"github.com/matzehuels/layerstack/pkg/observability"
	"github.com/matzehuels/layerstack/pkg/stack"
)

func TestAddGroupScenario(t *testing.T) {
	m, h := newTestManager(t, "A", "B", "C")

	if err := m.AddGroup("g1", layersOf("X", "Y"), ""); err != nil {
		t.Fatalf("AddGroup() error: %v", err)
	}
	assertIDs(t, h, "A", "B", "C", "X", "Y")
	for _, id := range []string{"X", "Y"} {
		if g, _ := m.GroupOf(id); g != "g1" {
			t.Errorf("GroupOf(%s) = %q, want g1", id, g)
		}
	}
	if id, _ := m.FirstID("g1"); id != "X" {
		t.Errorf("FirstID(g1) = %q, want X", id)
	}
	if id, _ := m.LastID("g1"); id != "Y" {
		t.Errorf("LastID(g1) = %q, want Y", id)
	}

	// A second batch is anchored before the group's current first layer.
	if err := m.AddGroup("g1", layersOf("Z"), ""); err != nil {
		t.Fatalf("AddGroup() error: %v", err)
	}
	assertIDs(t, h, "A", "B", "C", "Z", "X", "Y")
	if id, _ := m.FirstID("g1"); id != "Z" {
		t.Errorf("FirstID(g1) = %q, want Z", id)
	}

	// Metadata-only reassignment leaves A in place and fragments g1.
	if !m.MoveLayerToGroup("g1", "A") {
		t.Error("MoveLayerToGroup(g1, A) = false, want true")
	}
	assertIDs(t, h, "A", "B", "C", "Z", "X", "Y")
	if g, _ := m.GroupOf("A"); g != "g1" {
		t.Errorf("GroupOf(A) = %q, want g1", g)
	}
	if got := m.FirstIndex("g1"); got != 0 {
		t.Errorf("FirstIndex(g1) = %d, want 0", got)
	}
	if got := m.LastIndex("g1"); got != 0 {
		t.Errorf("LastIndex(g1) = %d, want 0", got)
	}
	if m.Contiguous("g1") {
		t.Error("Contiguous(g1) = true after metadata-only move")
	}
}

func TestAddGroupContiguity(t *testing.T) {
	tests := []struct {
		name   string
		before string
		want   []string
	}{
		{"append", "", []string{"a", "x", "y", "b", "n1", "n2", "n3"}},
		{"before ungrouped layer", "b", []string{"a", "x", "y", "n1", "n2", "n3", "b"}},
		{"before group id", "h", []string{"a", "n1", "n2", "n3", "x", "y", "b"}},
		{"before inner member", "y", []string{"a", "n1", "n2", "n3", "x", "y", "b"}},
		{"before unknown id", "nothing", []string{"a", "x", "y", "b", "n1", "n2", "n3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, h := newTestManager(t, "a", "x:h", "y:h", "b")
			items := layersOf("n1", "n2", "n3")
			if err := m.AddGroup("g", items, tt.before); err != nil {
				t.Fatalf("AddGroup() error: %v", err)
			}
			assertIDs(t, h, tt.want...)

			if n := m.LastIndex("g") - m.FirstIndex("g") + 1; n != len(items) {
				t.Errorf("group span = %d, want %d", n, len(items))
			}
			if got := m.Layers("g"); !slices.Equal(got, []string{"n1", "n2", "n3"}) {
				t.Errorf("Layers(g) = %v, want input order", got)
			}
			if !m.Contiguous("h") {
				t.Error("existing group h was split")
			}
		})
	}
}

func TestAddGroupCopiesAndMergesMetadata(t *testing.T) {
	m, h := newTestManager(t, "a")
	in := []stack.Layer{{ID: "x", Metadata: stack.Metadata{"minzoom": 4, stack.GroupKey: "old"}}}

	if err := m.AddGroup("g", in, ""); err != nil {
		t.Fatal(err)
	}

	if in[0].Metadata[stack.GroupKey] != "old" {
		t.Error("AddGroup modified the caller's metadata")
	}
	l, _ := h.Layer("x")
	if l.Group() != "g" {
		t.Errorf("Group() = %q, want g", l.Group())
	}
	if l.Metadata["minzoom"] != 4 {
		t.Error("unrelated metadata key was dropped")
	}
}

func TestAddGroupIsNotTransactional(t *testing.T) {
	m, h := newTestManager(t, "a")
	h.failAt = 2

	err := m.AddGroup("g", layersOf("x", "y", "z"), "")
	if !errors.Is(err, errHostFailure) {
		t.Fatalf("AddGroup() error = %v, want host failure", err)
	}
	assertIDs(t, h, "a", "x")
}

func TestAddLayerToGroup(t *testing.T) {
	tests := []struct {
		name     string
		group    string
		before   string
		want     []string
		wantCode errs.Code
	}{
		{"no anchor becomes first member", "g", "", []string{"a", "n", "x", "y", "b", "o"}, ""},
		{"anchor inside group", "g", "y", []string{"a", "x", "n", "y", "b", "o"}, ""},
		{"anchor in other group", "g", "o", []string{"a", "x", "y", "b", "o"}, errs.ErrCodeInvalidAnchor},
		{"ungrouped anchor", "g", "b", []string{"a", "x", "y", "b", "o"}, errs.ErrCodeInvalidAnchor},
		{"unknown anchor", "g", "zzz", []string{"a", "x", "y", "b", "o"}, errs.ErrCodeInvalidAnchor},
		{"group id as anchor", "g", "g", []string{"a", "x", "y", "b", "o"}, errs.ErrCodeInvalidAnchor},
		{"empty group with ungrouped anchor", "", "b", []string{"a", "x", "y", "b", "o"}, errs.ErrCodeInvalidGroupID},
		{"empty group with unknown anchor", "", "zzz", []string{"a", "x", "y", "b", "o"}, errs.ErrCodeInvalidGroupID},
		{"empty group without anchor", "", "", []string{"a", "x", "y", "b", "o"}, errs.ErrCodeInvalidGroupID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, h := newTestManager(t, "a", "x:g", "y:g", "b", "o:other")
			err := m.AddLayerToGroup(tt.group, stack.Layer{ID: "n"}, tt.before)
			if got := errs.GetCode(err); got != tt.wantCode {
				t.Fatalf("AddLayerToGroup() code = %q, want %q (err: %v)", got, tt.wantCode, err)
			}
			if tt.wantCode == errs.ErrCodeInvalidAnchor && !errors.Is(err, ErrInvalidAnchor) {
				t.Errorf("error does not wrap ErrInvalidAnchor: %v", err)
			}
			assertIDs(t, h, tt.want...)
			if len(h.calls) != 0 && err != nil {
				t.Errorf("rejected call reached the host: %v", h.calls)
			}
			if err == nil {
				if g, _ := m.GroupOf("n"); g != tt.group {
					t.Errorf("GroupOf(n) = %q, want %q", g, tt.group)
				}
			}
		})
	}
}

// The membership check rejects an ungrouped anchor even for the empty group id.
func TestAddLayerToGroupUngroupedAnchorCheck(t *testing.T) {
	m, h := newTestManager(t, "A", "B:g")
	err := m.addLayerToGroup("", stack.Layer{ID: "N"}, "A", false)
	if !errors.Is(err, ErrInvalidAnchor) {
		t.Fatalf("addLayerToGroup(\"\", N, A) error = %v, want ErrInvalidAnchor", err)
	}
	assertIDs(t, h, "A", "B")
}

func TestEmptyGroupIDRejected(t *testing.T) {
	m, h := newTestManager(t, "a", "x:g")

	if err := m.AddGroup("", layersOf("n1", "n2"), ""); !errs.Is(err, errs.ErrCodeInvalidGroupID) {
		t.Errorf("AddGroup(\"\") error = %v, want INVALID_GROUP_ID", err)
	}
	if m.MoveLayerToGroup("", "x") {
		t.Error("MoveLayerToGroup(\"\", x) = true, want false")
	}
	if g, ok := m.GroupOf("x"); !ok || g != "g" {
		t.Errorf("GroupOf(x) = %q, %v; want g, true", g, ok)
	}
	l, _ := h.Layer("a")
	if m.MoveLayerToGroup("", "a") || l.Metadata != nil {
		t.Errorf("MoveLayerToGroup(\"\", a) wrote metadata %v", l.Metadata)
	}
	assertIDs(t, h, "a", "x")
	if len(h.calls) != 0 {
		t.Errorf("host calls = %v, want none", h.calls)
	}
}

func TestAddLayerToNewGroupAppends(t *testing.T) {
	m, h := newTestManager(t, "a", "b")
	if err := m.AddLayerToGroup("g", stack.Layer{ID: "n"}, ""); err != nil {
		t.Fatal(err)
	}
	assertIDs(t, h, "a", "b", "n")
	if id, _ := m.FirstID("g"); id != "n" {
		t.Errorf("FirstID(g) = %q, want n", id)
	}
}

func TestMoveGroup(t *testing.T) {
	tests := []struct {
		name   string
		layers []string
		group  string
		before string
		want   []string
	}{
		{"to end", []string{"x:g", "y:g", "a", "b"}, "g", "", []string{"a", "b", "x", "y"}},
		{"before ungrouped", []string{"a", "b", "x:g", "y:g"}, "g", "a", []string{"x", "y", "a", "b"}},
		{"before other group id", []string{"p:h", "q:h", "x:g", "y:g"}, "g", "h", []string{"x", "y", "p", "q"}},
		{"before inner member of other group", []string{"p:h", "q:h", "x:g", "y:g"}, "g", "q", []string{"x", "y", "p", "q"}},
		{"unknown anchor moves to end", []string{"x:g", "a"}, "g", "nothing", []string{"a", "x"}},
		{"repairs fragments", []string{"x:g", "a", "y:g", "b", "z:g"}, "g", "", []string{"a", "b", "x", "y", "z"}},
		{"compacts when anchored on itself", []string{"a", "x:g", "b", "y:g", "c"}, "g", "y", []string{"a", "x", "y", "b", "c"}},
		{"compacts on group id", []string{"x:g", "a", "y:g"}, "g", "g", []string{"x", "y", "a"}},
		{"compacts at end", []string{"a", "x:g", "y:g"}, "g", "g", []string{"a", "x", "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, h := newTestManager(t, tt.layers...)
			before := m.Layers(tt.group)

			if err := m.MoveGroup(tt.group, tt.before); err != nil {
				t.Fatalf("MoveGroup() error: %v", err)
			}
			assertIDs(t, h, tt.want...)

			if !m.Contiguous(tt.group) {
				t.Errorf("group %q not contiguous after MoveGroup", tt.group)
			}
			if got := m.Layers(tt.group); !slices.Equal(got, before) {
				t.Errorf("internal order = %v, want %v", got, before)
			}
			if n := m.LastIndex(tt.group) - m.FirstIndex(tt.group) + 1; n != len(before) {
				t.Errorf("group span = %d, want %d", n, len(before))
			}
		})
	}
}

func TestMoveGroupUnknownGroupIsNoop(t *testing.T) {
	m, h := newTestManager(t, "a", "x:g")
	if err := m.MoveGroup("missing", "a"); err != nil {
		t.Fatal(err)
	}
	if len(h.calls) != 0 {
		t.Errorf("host calls = %v, want none", h.calls)
	}
}

func TestRemoveGroup(t *testing.T) {
	m, h := newTestManager(t, "x:g", "a", "y:g", "z:g", "b:h")
	if err := m.RemoveGroup("g"); err != nil {
		t.Fatalf("RemoveGroup() error: %v", err)
	}
	assertIDs(t, h, "a", "b")
	if m.Exists("g") {
		t.Error("group still exists after RemoveGroup")
	}
	if want := []string{"remove x", "remove y", "remove z"}; !slices.Equal(h.calls, want) {
		t.Errorf("host calls = %v, want %v", h.calls, want)
	}
}

func TestRemoveGroupUnknownGroupIsNoop(t *testing.T) {
	m, h := newTestManager(t, "a", "x:g")
	if err := m.RemoveGroup("missing"); err != nil {
		t.Fatal(err)
	}
	if len(h.calls) != 0 {
		t.Errorf("host calls = %v, want none", h.calls)
	}
	assertIDs(t, h, "a", "x")
}

func TestRemoveGroupStopsOnHostError(t *testing.T) {
	m, h := newTestManager(t, "x:g", "y:g", "z:g")
	h.failAt = 2
	if err := m.RemoveGroup("g"); !errors.Is(err, errHostFailure) {
		t.Fatalf("RemoveGroup() error = %v, want host failure", err)
	}
	assertIDs(t, h, "y", "z")
}

func TestMoveLayerToGroup(t *testing.T) {
	m, h := newTestManager(t, "a", "x:g", "b:h")

	if !m.MoveLayerToGroup("g", "b") {
		t.Error("MoveLayerToGroup(g, b) = false, want true")
	}
	if m.MoveLayerToGroup("g", "b") {
		t.Error("repeated MoveLayerToGroup reported a change")
	}
	if m.MoveLayerToGroup("g", "missing") {
		t.Error("MoveLayerToGroup on unknown layer reported a change")
	}
	if g, _ := m.GroupOf("b"); g != "g" {
		t.Errorf("GroupOf(b) = %q, want g", g)
	}
	assertIDs(t, h, "a", "x", "b")
	if len(h.calls) != 0 {
		t.Errorf("metadata-only op issued host calls: %v", h.calls)
	}
}

func TestRemoveLayerFromGroup(t *testing.T) {
	m, h := newTestManager(t, "a", "x:g", "y:g")
	l, _ := h.Layer("x")
	l.Metadata["minzoom"] = 3

	if m.RemoveLayerFromGroup("other", "x") {
		t.Error("RemoveLayerFromGroup with wrong group reported a change")
	}
	if g, _ := m.GroupOf("x"); g != "g" {
		t.Errorf("GroupOf(x) = %q after no-op, want g", g)
	}

	if !m.RemoveLayerFromGroup("g", "x") {
		t.Error("RemoveLayerFromGroup(g, x) = false, want true")
	}
	if _, ok := m.GroupOf("x"); ok {
		t.Error("x still grouped")
	}
	if l.Metadata["minzoom"] != 3 {
		t.Error("unrelated metadata key was dropped")
	}
	if m.RemoveLayerFromGroup("g", "a") || m.RemoveLayerFromGroup("g", "missing") {
		t.Error("RemoveLayerFromGroup on non-member reported a change")
	}
	assertIDs(t, h, "a", "x", "y")
	if len(h.calls) != 0 {
		t.Errorf("metadata-only op issued host calls: %v", h.calls)
	}
}

type opRecord struct {
	op    observability.Op
	group string
	calls int
	err   error
}

type recordingHooks struct{ ops []opRecord }

func (r *recordingHooks) OnGroupOp(op observability.Op, groupID string, calls int, _ time.Duration, err error) {
	r.ops = append(r.ops, opRecord{op, groupID, calls, err})
}

func TestOperationsReportHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetGroupHooks(hooks)
	defer observability.Reset()

	m, _ := newTestManager(t, "a")
	_ = m.AddGroup("g", layersOf("x", "y"), "")
	_ = m.AddLayerToGroup("g", stack.Layer{ID: "n"}, "a")
	_ = m.MoveGroup("g", "a")
	m.MoveLayerToGroup("g", "a")
	m.RemoveLayerFromGroup("g", "a")
	_ = m.RemoveGroup("g")

	want := []struct {
		op    observability.Op
		calls int
		err   bool
	}{
		{observability.OpAddGroup, 2, false},
		{observability.OpAddLayerToGroup, 0, true},
		{observability.OpMoveGroup, 2, false},
		{observability.OpMoveLayerToGroup, 0, false},
		{observability.OpRemoveLayerFromGroup, 0, false},
		{observability.OpRemoveGroup, 2, false},
	}
	if len(hooks.ops) != len(want) {
		t.Fatalf("got %d hook events, want %d: %+v", len(hooks.ops), len(want), hooks.ops)
	}
	for i, w := range want {
		got := hooks.ops[i]
		if got.op != w.op || got.calls != w.calls || (got.err != nil) != w.err || got.group != "g" {
			t.Errorf("event %d = %+v, want op=%s calls=%d err=%v", i, got, w.op, w.calls, w.err)
		}
	}
}
