// Package cli implements the layerstack command-line interface.
//
// Commands operate on one style document, selected with --file (-f) and
// read as JSON or TOML by extension. Every editing command loads the file,
// applies one group operation and writes the file back.
//
// # Commands
//
//   - groups: list group runs and flag fragmented groups
//   - group show|add|add-layer|move|remove: edit whole groups
//   - layer assign|unassign: retag a single layer without moving it
//   - check: exit non-zero when a group is fragmented
//   - compact: make every fragmented group contiguous again
//   - render: write the layer list as Graphviz DOT or SVG
//   - browse: interactive terminal editor
//   - serve: HTTP API over a document store
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so the group manager, stores and server log
// through the same logger.
package cli
