// Package stack provides an in-memory ordered layer sequence.
//
// # Overview
//
// A layer stack is the ordered list that decides paint order: the layer at
// index 0 is drawn first, every later layer is drawn on top of it. Each
// [Layer] is an opaque record identified by a unique ID and carrying a
// mutable [Metadata] bag.
//
// [Stack] implements the host contract expected by the groups package:
// lookup by ID, a fresh read of the full sequence, insert-before, move-before
// and remove-by-ID. Insert and move take an anchor ID; an empty anchor means
// "at the end".
//
//	s, _ := stack.New(
//	    stack.Layer{ID: "background"},
//	    stack.Layer{ID: "water"},
//	)
//	_ = s.AddLayer(stack.Layer{ID: "land"}, "water") // [background land water]
//	_ = s.MoveLayer("background", "")                 // [land water background]
//
// # Errors
//
// Mutations return structured errors from the errors package that also wrap
// the sentinels [ErrLayerNotFound], [ErrDuplicateLayer] and
// [ErrInvalidLayerID], so both errors.Is and code checks work.
//
// # Concurrency
//
// Stack is not safe for concurrent use. Callers serialize access.
package stack
