// Package render draws layer stacks as Graphviz diagrams.
//
// # Usage
//
// Convert a layer sequence to DOT, then render it to SVG:
//
//	dot := render.ToDOT(s.Layers(), render.Options{Title: "streets"})
//	svg, err := render.RenderSVG(ctx, dot)
//
// Layers appear top to bottom in paint order. Each contiguous run of a group
// is a coloured cluster; a fragmented group shows its extra runs as dashed
// red clusters labelled "(fragment n)".
//
// # Dependencies
//
// SVG rendering runs Graphviz in-process through [github.com/goccy/go-graphviz];
// no external binary is needed. The DOT output can also be fed to any
// Graphviz installation.
package render
