package render

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/layerstack/pkg/groups"
	"github.com/matzehuels/layerstack/pkg/stack"
)

// Options configures layer diagram rendering.
type Options struct {
	// Title is drawn above the diagram when set.
	Title string

	// Detailed adds type, source and non-group metadata to node labels.
	// When false, only the layer ID is shown.
	Detailed bool
}

var palette = []string{
	"#4e79a7", "#f28e2b", "#59a14f", "#b07aa1",
	"#76b7b2", "#edc948", "#ff9da7", "#9c755f",
}

// ToDOT converts a layer sequence to Graphviz DOT. Layers are drawn top to
// bottom in paint order and chained so Graphviz keeps that order.
//
// Each group run becomes a cluster coloured per group. When a group is split
// into several runs, every run after the first is drawn dashed in red and
// labelled as a fragment, so contiguity violations stand out.
func ToDOT(layers []*stack.Layer, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph layers {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowhead=none, color=grey60];\n")
	buf.WriteString("  ranksep=0.2;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%s;\n  labelloc=t;\n", dotQuote(opts.Title))
	}
	buf.WriteString("\n")

	inRun := make(map[int]bool)
	colors := make(map[string]string)
	seen := make(map[string]int)
	for i, r := range groups.RunsOf(layers) {
		color, ok := colors[r.Group]
		if !ok {
			color = palette[len(colors)%len(palette)]
			colors[r.Group] = color
		}
		seen[r.Group]++

		label, style := r.Group, "rounded"
		if n := seen[r.Group]; n > 1 {
			label = fmt.Sprintf("%s (fragment %d)", r.Group, n)
			style, color = "rounded,dashed", "red"
		}

		fmt.Fprintf(&buf, "  subgraph \"cluster_%d\" {\n", i)
		fmt.Fprintf(&buf, "    label=%s;\n    style=%s;\n    color=%s;\n", dotQuote(label), dotQuote(style), dotQuote(color))
		for idx := r.Start; idx <= r.End; idx++ {
			writeNode(&buf, "    ", layers[idx], opts.Detailed)
			inRun[idx] = true
		}
		buf.WriteString("  }\n")
	}

	for i, l := range layers {
		if !inRun[i] {
			writeNode(&buf, "  ", l, opts.Detailed)
		}
	}

	if len(layers) > 1 {
		buf.WriteString("\n")
		for i := 1; i < len(layers); i++ {
			fmt.Fprintf(&buf, "  %s -> %s;\n", dotQuote(layers[i-1].ID), dotQuote(layers[i].ID))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, indent string, l *stack.Layer, detailed bool) {
	fmt.Fprintf(buf, "%s%s [label=%s];\n", indent, dotQuote(l.ID), dotQuote(fmtLabel(l, detailed)))
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", "")

// dotQuote returns s as a DOT quoted string. Only quotes and backslashes are
// escaped; newlines become Graphviz line breaks and other runes pass through.
func dotQuote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

func fmtLabel(l *stack.Layer, detailed bool) string {
	if !detailed {
		return l.ID
	}

	var parts []string
	if l.Type != "" {
		parts = append(parts, "type: "+l.Type)
	}
	if l.Source != "" {
		parts = append(parts, "source: "+l.Source)
	}
	for _, k := range slices.Sorted(maps.Keys(l.Metadata)) {
		if k == stack.GroupKey {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", k, l.Metadata[k]))
	}
	if len(parts) == 0 {
		return l.ID
	}
	return l.ID + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one whose
// viewBox starts at the origin and whose size matches it.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
