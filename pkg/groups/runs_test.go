package groups

import (
	"reflect"
	"slices"
	"testing"
)

func TestRuns(t *testing.T) {
	m, _ := newTestManager(t, "x:g", "y:g", "a", "p:h", "z:g", "q:h", "r:h")

	want := []Run{
		{Group: "g", Start: 0, End: 1, LayerIDs: []string{"x", "y"}},
		{Group: "h", Start: 3, End: 3, LayerIDs: []string{"p"}},
		{Group: "g", Start: 4, End: 4, LayerIDs: []string{"z"}},
		{Group: "h", Start: 5, End: 6, LayerIDs: []string{"q", "r"}},
	}
	got := m.Runs()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Runs() = %+v, want %+v", got, want)
	}
	if got[3].Len() != 2 {
		t.Errorf("Run.Len() = %d, want 2", got[3].Len())
	}
}

func TestRunsEmpty(t *testing.T) {
	m, _ := newTestManager(t, "a", "b")
	if runs := m.Runs(); len(runs) != 0 {
		t.Errorf("Runs() = %v, want none", runs)
	}
	if groups := m.Groups(); len(groups) != 0 {
		t.Errorf("Groups() = %v, want none", groups)
	}
}

func TestGroupsAndFragmented(t *testing.T) {
	m, _ := newTestManager(t, "p:h", "x:g", "a", "y:g", "z:k", "q:h")

	if got := m.Groups(); !slices.Equal(got, []string{"h", "g", "k"}) {
		t.Errorf("Groups() = %v, want [h g k]", got)
	}
	if got := m.Fragmented(); !slices.Equal(got, []string{"h", "g"}) {
		t.Errorf("Fragmented() = %v, want [h g]", got)
	}

	tests := map[string]bool{"g": false, "h": false, "k": true, "missing": true}
	for g, want := range tests {
		if got := m.Contiguous(g); got != want {
			t.Errorf("Contiguous(%q) = %v, want %v", g, got, want)
		}
	}
}

func TestMoveGroupRepairsFragmented(t *testing.T) {
	m, _ := newTestManager(t, "p:h", "x:g", "a", "y:g", "q:h")
	for _, g := range m.Fragmented() {
		if err := m.MoveGroup(g, g); err != nil {
			t.Fatalf("MoveGroup(%q) error: %v", g, err)
		}
	}
	if got := m.Fragmented(); len(got) != 0 {
		t.Errorf("Fragmented() after repair = %v, want none", got)
	}
}
