package groups

import "github.com/matzehuels/layerstack/pkg/stack"

// Run is a maximal block of consecutive layers sharing one group tag.
// Start and End are inclusive sequence indices.
type Run struct {
	Group    string   `json:"group"`
	Start    int      `json:"start"`
	End      int      `json:"end"`
	LayerIDs []string `json:"layers"`
}

// Len returns the number of layers in the run.
func (r Run) Len() int { return r.End - r.Start + 1 }

// Runs returns the group runs of the current sequence in paint order.
// Ungrouped layers separate runs but are not reported. A contiguous group
// yields exactly one run; a fragmented one yields several.
func (m *Manager) Runs() []Run {
	return RunsOf(m.host.Layers())
}

// RunsOf computes the group runs of layers in sequence order. It is the
// stateless form of [Manager.Runs] for callers that already hold a snapshot.
func RunsOf(layers []*stack.Layer) []Run {
	var runs []Run
	for i, l := range layers {
		g := l.Group()
		if g == "" {
			continue
		}
		if n := len(runs); n > 0 && runs[n-1].Group == g && runs[n-1].End == i-1 {
			runs[n-1].End = i
			runs[n-1].LayerIDs = append(runs[n-1].LayerIDs, l.ID)
			continue
		}
		runs = append(runs, Run{Group: g, Start: i, End: i, LayerIDs: []string{l.ID}})
	}
	return runs
}

// Groups returns the distinct group IDs in order of first appearance.
func (m *Manager) Groups() []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range m.Runs() {
		if !seen[r.Group] {
			seen[r.Group] = true
			out = append(out, r.Group)
		}
	}
	return out
}

// Contiguous reports whether all layers tagged groupID form a single run.
// A group that does not exist is trivially contiguous.
func (m *Manager) Contiguous(groupID string) bool {
	n := 0
	for _, r := range m.Runs() {
		if r.Group == groupID {
			n++
		}
	}
	return n <= 1
}

// Fragmented returns the groups split into more than one run, in order of
// first appearance. [Manager.MoveGroup] with the group's own ID repairs them.
func (m *Manager) Fragmented() []string {
	counts := make(map[string]int)
	var order []string
	for _, r := range m.Runs() {
		if counts[r.Group] == 0 {
			order = append(order, r.Group)
		}
		counts[r.Group]++
	}
	var out []string
	for _, g := range order {
		if counts[g] > 1 {
			out = append(out, g)
		}
	}
	return out
}
