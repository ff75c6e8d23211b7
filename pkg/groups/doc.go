// Package groups manages virtual layer groups inside an ordered layer stack.
//
// # Overview
//
// A group is not stored anywhere. A layer belongs to group G when its
// metadata carries group = G, and G exists while at least one layer is
// tagged with it. Every query scans the host's current sequence, so the host
// stays the single source of truth and there is no second structure to keep
// in sync.
//
// The intended invariant is contiguity: all layers of a group occupy one
// consecutive run of the sequence. [Manager.AddGroup], [Manager.AddLayerToGroup]
// and [Manager.MoveGroup] preserve it. [Manager.MoveLayerToGroup] and
// [Manager.RemoveLayerFromGroup] only edit metadata and may break it;
// [Manager.MoveGroup] is the repair operation.
//
// # Anchors
//
// Placement operations take a beforeID that may name a layer or a whole
// group. [Manager.ResolveAnchor] turns it into a concrete layer ID:
//
//	m := groups.New(s, nil)
//	m.ResolveAnchor("roads")         // first layer of group "roads"
//	m.ResolveAnchor("road-primary")  // also the first layer of "roads"
//	m.ResolveAnchor("water")         // "water", an ungrouped layer
//	m.ResolveAnchor("")              // "", append at the end
//
// Because a grouped layer always resolves to its group's first layer, new or
// moved content never lands strictly inside another group.
//
// # Basic Usage
//
//	s, _ := stack.New(stack.Layer{ID: "background"}, stack.Layer{ID: "water"})
//	m := groups.New(s, logger)
//
//	_ = m.AddGroup("roads", []stack.Layer{{ID: "road-minor"}, {ID: "road-major"}}, "")
//	_ = m.AddGroup("labels", []stack.Layer{{ID: "place-label"}}, "")
//	_ = m.MoveGroup("labels", "roads") // labels now paint below roads
//
// # Errors
//
// [Manager.AddGroup] and [Manager.AddLayerToGroup] reject an invalid group ID,
// such as "", with INVALID_GROUP_ID; [Manager.MoveLayerToGroup] ignores it.
// [Manager.AddLayerToGroup] also checks its anchor: one outside the target
// group yields an INVALID_ANCHOR error wrapping [ErrInvalidAnchor].
// Other operations ignore unknown IDs. Batch operations stop at the first
// host error and leave earlier host calls applied.
//
// # Complexity
//
// Each query is O(n) in the sequence length and nothing is memoized.
// Callers that issue many queries against an unchanged sequence should batch
// them at a higher layer.
package groups
