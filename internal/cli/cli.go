package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/layerstack/pkg/groups"
	pkgio "github.com/matzehuels/layerstack/pkg/io"
	"github.com/matzehuels/layerstack/pkg/stack"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "layerstack"

	// defaultFile is the style document used when --file is not given.
	defaultFile = "style.json"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	file string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), file: defaultFile}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Style Documents
// =============================================================================

// styleFile is a style document opened from disk together with the stack and
// group manager built over it.
type styleFile struct {
	path   string
	doc    *pkgio.Document
	stack  *stack.Stack
	groups *groups.Manager
}

// open reads the --file document.
func (c *CLI) open(ctx context.Context) (*styleFile, error) {
	logger := loggerFromContext(ctx)

	doc, err := pkgio.Import(c.file)
	if err != nil {
		return nil, err
	}
	s, err := doc.Stack()
	if err != nil {
		return nil, err
	}
	logger.Debug("opened style", "file", c.file, "layers", s.Len())
	return &styleFile{path: c.file, doc: doc, stack: s, groups: groups.New(s, logger)}, nil
}

// save writes the current stack back to the file it was read from.
func (f *styleFile) save() error {
	f.doc.SetLayers(f.stack)
	return pkgio.Export(f.doc, f.path)
}

// edit opens the document, applies fn and saves the result when fn succeeds.
func (c *CLI) edit(cmd *cobra.Command, fn func(f *styleFile) error) error {
	f, err := c.open(cmd.Context())
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		return err
	}
	if err := f.save(); err != nil {
		return err
	}
	loggerFromContext(cmd.Context()).Debug("saved style", "file", f.path)
	return nil
}
