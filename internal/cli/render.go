package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/layerstack/pkg/errors"
	"github.com/matzehuels/layerstack/pkg/render"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file; stdout when empty
	format   string // "dot" or "svg"; inferred from output when empty
	title    string // diagram title, defaults to the document name
	detailed bool   // include type, source and metadata in node labels
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the layer stack as a Graphviz diagram",
		Long: `Render the layer stack top to bottom in paint order. Each group run is drawn
as a cluster; fragments of split groups are drawn dashed in red.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveFormat(opts.format, opts.output)
			if err != nil {
				return err
			}
			opts.format = format
			return c.runRender(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.format, "format", "", "output format: dot, svg (default: from --output, else dot)")
	cmd.Flags().StringVar(&opts.title, "title", "", "diagram title (default: document name)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show layer type, source and metadata")

	return cmd
}

// resolveFormat validates format, falling back to the output extension and
// then to DOT.
func resolveFormat(format, output string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(output), ".")
		if format != formatSVG {
			format = formatDOT
		}
	}
	switch format {
	case formatDOT, formatSVG:
		return format, nil
	default:
		return "", errs.New(errs.ErrCodeInvalidFormat, "invalid format %q (must be 'dot' or 'svg')", format)
	}
}

func (c *CLI) runRender(ctx context.Context, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	f, err := c.open(ctx)
	if err != nil {
		return err
	}

	title := opts.title
	if title == "" {
		title = f.doc.Name
	}
	dot := render.ToDOT(f.stack.Layers(), render.Options{Title: title, Detailed: opts.detailed})

	data := []byte(dot)
	if opts.format == formatSVG {
		data, err = renderSVG(ctx, dot, opts.output != "")
		if err != nil {
			return err
		}
	}
	logger.Debugf("Generated %s: %d bytes", opts.format, len(data))

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return err
	}
	if opts.output != "" {
		printSuccess("Rendered %s", opts.format)
		printFile(opts.output)
	}
	return nil
}

// renderSVG runs Graphviz, showing a spinner unless the SVG goes to stdout.
func renderSVG(ctx context.Context, dot string, spin bool) ([]byte, error) {
	if !spin {
		return render.RenderSVG(ctx, dot)
	}
	var data []byte
	err := withSpinner(ctx, os.Stderr, "Rendering SVG...", func() error {
		var err error
		data, err = render.RenderSVG(ctx, dot)
		return err
	})
	return data, err
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return out, nil
}
