// Package pkg provides the core libraries for Layerstack, which keeps named
// groups of layers together inside an ordered style layer list.
//
// # Overview
//
// A style document holds layers in paint order. A group is nothing more than
// a metadata tag on its layers; the libraries place new and moved layers so
// that every group stays one contiguous block. The pkg directory is organized
// into four areas:
//
//  1. [stack] and [groups] - Domain logic (the layer sequence, group queries and edits)
//  2. [io] - Style documents in JSON and TOML
//  3. [store] and [server] - Persistence backends and the HTTP API
//  4. [render] - Graphviz diagrams of the layer stack
//
// # Architecture
//
// The typical data flow:
//
//	style.json / store backend
//	         ↓
//	    [io] package (decode + validate document)
//	         ↓
//	    [stack] package (ordered layers)
//	         ↓
//	    [groups] package (anchor resolution, group placement)
//	         ↓
//	    [io] / [store] (write back), [render] (DOT/SVG)
//
// # Quick Start
//
//	doc, _ := io.Import("style.json")
//	s, _ := doc.Stack()
//	m := groups.New(s, logger)
//
//	_ = m.AddGroup("labels", []stack.Layer{{ID: "place-label"}}, "")
//	_ = m.MoveGroup("labels", "roads") // paint labels below roads
//
//	doc.SetLayers(s)
//	_ = io.Export(doc, "style.json")
//
// # Supporting Packages
//
// [errors] - Coded errors and input validation shared by the CLI and server.
//
// [observability] - No-op-by-default hooks for group operations and store calls.
//
// [buildinfo] - Version information set at link time.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test -run Example ./pkg/groups    # Examples only
//	go test -tags integration ./pkg/...  # Include redis and mongo tests
//
// [stack]: https://pkg.go.dev/github.com/matzehuels/layerstack/pkg/stack
// [groups]: https://pkg.go.dev/github.com/matzehuels/layerstack/pkg/groups
// [io]: https://pkg.go.dev/github.com/matzehuels/layerstack/pkg/io
// [store]: https://pkg.go.dev/github.com/matzehuels/layerstack/pkg/store
// [server]: https://pkg.go.dev/github.com/matzehuels/layerstack/pkg/server
// [render]: https://pkg.go.dev/github.com/matzehuels/layerstack/pkg/render
// [errors]: https://pkg.go.dev/github.com/matzehuels/layerstack/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/layerstack/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/layerstack/pkg/buildinfo
package pkg
