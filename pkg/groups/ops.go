package groups

import (
	"fmt"
	"time"

	errs "github.com/matzehuels/layerstack/pkg/errors"
	"github.com/matzehuels/layerstack/pkg/observability"
	"github.com/matzehuels/layerstack/pkg/stack"
)

// AddGroup inserts layers as a new block tagged groupID.
//
// The anchor is resolved once for the whole batch. With a beforeID it is
// [Manager.ResolveAnchor] of that reference; without one it is the group's
// current first layer, so repeated calls grow an existing group at its top
// instead of fragmenting it. A group that does not exist yet is appended.
//
// Each layer is copied and tagged before insertion; unrelated metadata keys
// are kept and the caller's layers are not modified. The batch is not
// transactional: on a host error the layers already inserted stay in place.
// An invalid groupID, such as "", is rejected with INVALID_GROUP_ID before any
// host call.
func (m *Manager) AddGroup(groupID string, layers []stack.Layer, beforeID string) (err error) {
	start, calls := time.Now(), 0
	defer func() { m.record(observability.OpAddGroup, groupID, start, calls, err) }()

	if err := errs.ValidateGroupID(groupID); err != nil {
		return err
	}

	var anchor string
	if beforeID != "" {
		anchor = m.ResolveAnchor(beforeID)
	} else {
		anchor, _ = m.FirstID(groupID)
	}

	for _, l := range layers {
		if err := m.addLayerToGroup(groupID, l, anchor, true); err != nil {
			return fmt.Errorf("add group %q: %w", groupID, err)
		}
		calls++
	}
	return nil
}

// AddLayerToGroup inserts a single layer tagged groupID.
//
// A non-empty beforeID must name a layer of the same group, otherwise an
// INVALID_ANCHOR error wrapping [ErrInvalidAnchor] is returned and nothing is
// inserted. Without a beforeID the layer becomes the group's new first layer
// (or is appended when the group does not exist yet). An invalid groupID is
// rejected with INVALID_GROUP_ID.
func (m *Manager) AddLayerToGroup(groupID string, l stack.Layer, beforeID string) (err error) {
	start, calls := time.Now(), 0
	defer func() { m.record(observability.OpAddLayerToGroup, groupID, start, calls, err) }()

	if err := errs.ValidateGroupID(groupID); err != nil {
		return err
	}

	if err := m.addLayerToGroup(groupID, l, beforeID, false); err != nil {
		return err
	}
	calls++
	return nil
}

// addLayerToGroup tags l and inserts it. skipCheck is used by AddGroup, which
// resolves its anchor once per batch and passes it through unchanged.
func (m *Manager) addLayerToGroup(groupID string, l stack.Layer, beforeID string, skipCheck bool) error {
	if !skipCheck {
		if beforeID != "" {
			if g, ok := m.GroupOf(beforeID); !ok || g != groupID {
				return errs.Wrap(errs.ErrCodeInvalidAnchor, ErrInvalidAnchor,
					"add layer %q to group %q before %q", l.ID, groupID, beforeID)
			}
		} else {
			beforeID, _ = m.FirstID(groupID)
		}
	}

	tagged := l.Clone()
	if tagged.Metadata == nil {
		tagged.Metadata = stack.Metadata{}
	}
	tagged.Metadata[stack.GroupKey] = groupID

	m.logger.Debug("add layer", "group", groupID, "layer", l.ID, "before", beforeID)
	return m.host.AddLayer(tagged, beforeID)
}

// MoveGroup moves every layer tagged groupID before the layer or group named
// by beforeID (to the end when beforeID is empty or resolves to nothing).
//
// Members are collected first and moved one by one in their current order,
// so the group's internal order is kept and the group ends up contiguous even
// if it was fragmented by [Manager.MoveLayerToGroup]. When beforeID resolves
// into the group itself the group is compacted in place, before the first
// foreign layer that follows its first member.
//
// An unknown group issues no host calls.
func (m *Manager) MoveGroup(groupID, beforeID string) (err error) {
	start, calls := time.Now(), 0
	defer func() { m.record(observability.OpMoveGroup, groupID, start, calls, err) }()

	anchor := m.ResolveAnchor(beforeID)
	members := m.Layers(groupID)
	if len(members) == 0 {
		return nil
	}
	if g, _ := m.GroupOf(anchor); anchor != "" && g == groupID {
		anchor = m.compactionAnchor(groupID)
	}

	for _, id := range members {
		m.logger.Debug("move layer", "group", groupID, "layer", id, "before", anchor)
		if err := m.host.MoveLayer(id, anchor); err != nil {
			return fmt.Errorf("move group %q: %w", groupID, err)
		}
		calls++
	}
	return nil
}

// compactionAnchor returns the first layer after the group's first member that
// does not belong to the group, or "" when there is none.
func (m *Manager) compactionAnchor(groupID string) string {
	layers := m.host.Layers()
	for i := m.FirstIndex(groupID) + 1; i < len(layers); i++ {
		if layers[i].Group() != groupID {
			return layers[i].ID
		}
	}
	return ""
}

// RemoveGroup removes every layer tagged groupID from the host.
// IDs are collected before the first removal so index shifts cannot skip
// layers. An unknown group issues no host calls.
func (m *Manager) RemoveGroup(groupID string) (err error) {
	start, calls := time.Now(), 0
	defer func() { m.record(observability.OpRemoveGroup, groupID, start, calls, err) }()

	for _, id := range m.Layers(groupID) {
		m.logger.Debug("remove layer", "group", groupID, "layer", id)
		if err := m.host.RemoveLayer(id); err != nil {
			return fmt.Errorf("remove group %q: %w", groupID, err)
		}
		calls++
	}
	return nil
}

// MoveLayerToGroup tags the layer layerID with groupID.
//
// This is a metadata-only change: the layer is not repositioned, so it may
// sit outside the group's run afterwards. Use [Manager.MoveGroup] to make the
// group contiguous again. Reports whether the tag changed; unknown layers and
// invalid group ids, such as "", are ignored.
func (m *Manager) MoveLayerToGroup(groupID, layerID string) bool {
	start := time.Now()
	defer func() { m.record(observability.OpMoveLayerToGroup, groupID, start, 0, nil) }()

	if errs.ValidateGroupID(groupID) != nil {
		return false
	}
	l, ok := m.host.Layer(layerID)
	if !ok {
		return false
	}

	changed := l.Group() != groupID
	if l.Metadata == nil {
		l.Metadata = stack.Metadata{}
	}
	l.Metadata[stack.GroupKey] = groupID

	m.logger.Debug("tag layer", "group", groupID, "layer", layerID, "changed", changed)
	return changed
}

// RemoveLayerFromGroup clears the group tag of layerID if it currently equals
// groupID. Like [Manager.MoveLayerToGroup] it never repositions the layer.
// Reports whether the tag was cleared.
func (m *Manager) RemoveLayerFromGroup(groupID, layerID string) bool {
	start := time.Now()
	defer func() { m.record(observability.OpRemoveLayerFromGroup, groupID, start, 0, nil) }()

	l, ok := m.host.Layer(layerID)
	if !ok {
		return false
	}
	if g, tagged := l.Metadata[stack.GroupKey].(string); !tagged || g != groupID {
		return false
	}
	delete(l.Metadata, stack.GroupKey)

	m.logger.Debug("untag layer", "group", groupID, "layer", layerID)
	return true
}

func (m *Manager) record(op observability.Op, groupID string, start time.Time, calls int, err error) {
	observability.Groups().OnGroupOp(op, groupID, calls, time.Since(start), err)
}
