package render

import (
	"strings"
	"testing"

	"github.com/matzehuels/layerstack/pkg/stack"
)

func testLayers(t *testing.T, layers ...stack.Layer) []*stack.Layer {
	t.Helper()
	s, err := stack.New(layers...)
	if err != nil {
		t.Fatal(err)
	}
	return s.Layers()
}

func grouped(id, group string) stack.Layer {
	return stack.Layer{ID: id, Metadata: stack.Metadata{stack.GroupKey: group}}
}

func TestToDOT(t *testing.T) {
	layers := testLayers(t,
		stack.Layer{ID: "background"},
		grouped("road-minor", "roads"),
		grouped("road-major", "roads"),
		stack.Layer{ID: "water"},
	)
	dot := ToDOT(layers, Options{Title: "streets"})

	for _, want := range []string{
		"digraph layers {",
		`label="streets";`,
		`subgraph "cluster_0" {`,
		`label="roads";`,
		`"road-minor" [label="road-minor"];`,
		`"background" -> "road-minor";`,
		`"road-major" -> "water";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "fragment") {
		t.Errorf("contiguous group rendered as fragment:\n%s", dot)
	}
	if n := strings.Count(dot, "subgraph"); n != 1 {
		t.Errorf("subgraph count = %d, want 1", n)
	}
}

func TestToDOTMarksFragments(t *testing.T) {
	layers := testLayers(t,
		grouped("x", "g"),
		stack.Layer{ID: "a"},
		grouped("y", "g"),
		grouped("z", "g"),
	)
	dot := ToDOT(layers, Options{})

	if n := strings.Count(dot, "subgraph"); n != 2 {
		t.Errorf("subgraph count = %d, want 2", n)
	}
	if !strings.Contains(dot, `label="g (fragment 2)";`) {
		t.Errorf("second run not labelled as fragment:\n%s", dot)
	}
	if !strings.Contains(dot, `style="rounded,dashed";`) {
		t.Errorf("fragment not dashed:\n%s", dot)
	}
}

func TestToDOTEmpty(t *testing.T) {
	dot := ToDOT(nil, Options{})
	if strings.Contains(dot, "->") || strings.Contains(dot, "subgraph") {
		t.Errorf("empty stack produced content:\n%s", dot)
	}
}

func TestFmtLabel(t *testing.T) {
	l := &stack.Layer{
		ID:       "road",
		Type:     "line",
		Source:   "osm",
		Metadata: stack.Metadata{stack.GroupKey: "roads", "minzoom": 5, "class": "major"},
	}

	if got := fmtLabel(l, false); got != "road" {
		t.Errorf("fmtLabel(brief) = %q, want road", got)
	}
	want := "road\ntype: line\nsource: osm\nclass: major\nminzoom: 5"
	if got := fmtLabel(l, true); got != want {
		t.Errorf("fmtLabel(detailed) = %q, want %q", got, want)
	}
	if got := fmtLabel(&stack.Layer{ID: "bare"}, true); got != "bare" {
		t.Errorf("fmtLabel(bare) = %q, want bare", got)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("normalizeViewBox(no viewBox) changed input: %s", got)
	}
}

func TestDotQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"road", `"road"`},
		{`say "hi"`, `"say \"hi\""`},
		{`a\b`, `"a\\b"`},
		{"line\nline", `"line\nline"`},
		{"crlf\r\n", `"crlf\n"`},
		{"straße\u00a0ü", "\"straße\u00a0ü\""},
		{"tab\there", "\"tab\there\""},
	}
	for _, tt := range tests {
		if got := dotQuote(tt.in); got != tt.want {
			t.Errorf("dotQuote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestToDOTKeepsNonASCIIIDs(t *testing.T) {
	dot := ToDOT(testLayers(t, stack.Layer{ID: "straße"}, stack.Layer{ID: "ü\u00a0label"}), Options{})
	for _, want := range []string{`"straße" -> "ü` + "\u00a0" + `label";`, `"straße" [label="straße"];`} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `\u`) || strings.Contains(dot, `\x`) {
		t.Errorf("DOT contains Go escapes:\n%s", dot)
	}
}
