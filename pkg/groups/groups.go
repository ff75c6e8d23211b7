package groups

import (
	"errors"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layerstack/pkg/stack"
)

// ErrInvalidAnchor is returned by [Manager.AddLayerToGroup] when the requested
// anchor is not a layer of the target group.
var ErrInvalidAnchor = errors.New("beforeID must be the id of a layer within the same group")

// Host is the ordered layer container a [Manager] operates on.
// [stack.Stack] is the in-memory implementation.
//
// An empty beforeID means "at the end". Layer returns the host-owned layer,
// so metadata changes made through the pointer are visible to later reads.
// Layers must return a fresh read of the sequence on every call.
type Host interface {
	Layer(id string) (*stack.Layer, bool)
	Layers() []*stack.Layer
	AddLayer(l stack.Layer, beforeID string) error
	MoveLayer(id, beforeID string) error
	RemoveLayer(id string) error
}

var _ Host = (*stack.Stack)(nil)

// Manager resolves group placement over a [Host].
//
// Manager keeps no state besides its host and logger: groups are derived
// from layer tags on every call, so the host sequence is the only source of
// truth. Manager is not safe for concurrent use; callers must serialize
// operations on the same host.
type Manager struct {
	host   Host
	logger *log.Logger
}

// New creates a manager for host. If logger is nil, log.Default() is used.
func New(host Host, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{host: host, logger: logger}
}

// Host returns the host the manager operates on.
func (m *Manager) Host() Host { return m.host }

// =============================================================================
// Scan queries
// =============================================================================

// FirstIndex returns the index of the first layer tagged groupID, or -1.
// The empty group ID never matches.
func (m *Manager) FirstIndex(groupID string) int {
	if groupID == "" {
		return -1
	}
	for i, l := range m.host.Layers() {
		if l.Group() == groupID {
			return i
		}
	}
	return -1
}

// LastIndex returns the index of the last layer of the run starting at
// [Manager.FirstIndex], or -1 when the group does not exist.
//
// The run extends over layers tagged groupID and over layers whose ID equals
// groupID, so a placeholder layer named after an empty group counts as part
// of it. Members beyond the first run (a fragmented group) are not reached.
func (m *Manager) LastIndex(groupID string) int {
	i := m.FirstIndex(groupID)
	if i < 0 {
		return -1
	}
	layers := m.host.Layers()
	for i < len(layers) && (layers[i].ID == groupID || layers[i].Group() == groupID) {
		i++
	}
	return i - 1
}

// FirstID returns the ID of the group's first layer.
func (m *Manager) FirstID(groupID string) (string, bool) {
	return m.idAt(m.FirstIndex(groupID))
}

// LastID returns the ID of the last layer of the group's first run.
func (m *Manager) LastID(groupID string) (string, bool) {
	return m.idAt(m.LastIndex(groupID))
}

func (m *Manager) idAt(i int) (string, bool) {
	if i < 0 {
		return "", false
	}
	layers := m.host.Layers()
	if i >= len(layers) {
		return "", false
	}
	return layers[i].ID, true
}

// GroupOf returns the group tag of the layer layerID. It reports false when
// the layer does not exist or carries no non-empty tag.
func (m *Manager) GroupOf(layerID string) (string, bool) {
	l, ok := m.host.Layer(layerID)
	if !ok {
		return "", false
	}
	g := l.Group()
	return g, g != ""
}

// Exists reports whether at least one layer is tagged groupID.
func (m *Manager) Exists(groupID string) bool {
	return m.FirstIndex(groupID) >= 0
}

// Layers returns the IDs of all layers tagged groupID in sequence order,
// including members outside the first run.
func (m *Manager) Layers(groupID string) []string {
	if groupID == "" {
		return nil
	}
	var ids []string
	for _, l := range m.host.Layers() {
		if l.Group() == groupID {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

// =============================================================================
// Anchor resolution
// =============================================================================

// ResolveAnchor maps a "before" reference to the layer ID to insert before.
// An empty result means "append at the end".
//
// beforeID may name a layer or a group:
//   - not a layer: it is taken as a group ID and resolves to that group's
//     first layer ("" if there is no such group)
//   - a grouped layer: resolves to the first layer of its group, so nothing
//     is ever placed strictly inside an existing group
//   - an ungrouped layer: resolves to itself
func (m *Manager) ResolveAnchor(beforeID string) string {
	if beforeID == "" {
		return ""
	}
	if _, isLayer := m.host.Layer(beforeID); !isLayer {
		id, _ := m.FirstID(beforeID)
		return id
	}
	if g, ok := m.GroupOf(beforeID); ok {
		id, _ := m.FirstID(g)
		return id
	}
	return beforeID
}
