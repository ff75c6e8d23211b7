package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/layerstack/pkg/errors"
	"github.com/matzehuels/layerstack/pkg/groups"
	"github.com/matzehuels/layerstack/pkg/stack"
)

// errFragmented is returned by the check command so the process exits
// non-zero when any group is split.
var errFragmented = errors.New("fragmented groups found")

// =============================================================================
// groups
// =============================================================================

func (c *CLI) groupsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List group runs in paint order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			printRuns(f.groups.Runs())
			printStats(f.stack.Len(), len(f.groups.Groups()), len(f.groups.Fragmented()))
			return nil
		},
	}
}

func printRuns(runs []groups.Run) {
	if len(runs) == 0 {
		printInfo("No groups")
		return
	}

	seen := make(map[string]int)
	rows := make([][]string, len(runs))
	fragment := make([]bool, len(runs))
	for i, r := range runs {
		seen[r.Group]++
		fragment[i] = seen[r.Group] > 1
		span := strconv.Itoa(r.Start)
		if r.End != r.Start {
			span = fmt.Sprintf("%d-%d", r.Start, r.End)
		}
		rows[i] = []string{r.Group, span, strings.Join(r.LayerIDs, ", ")}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Group", "Index", "Layers").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= len(fragment):
				return lipgloss.NewStyle()
			case fragment[row]:
				return styleFragmented
			case col == 0:
				return StyleHighlight
			}
			return StyleValue
		})
	fmt.Fprintln(stdout, t.Render())
}

// =============================================================================
// group
// =============================================================================

func (c *CLI) groupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Inspect and edit a group",
	}
	cmd.AddCommand(c.groupShowCommand())
	cmd.AddCommand(c.groupAddCommand())
	cmd.AddCommand(c.groupAddLayerCommand())
	cmd.AddCommand(c.groupMoveCommand())
	cmd.AddCommand(c.groupRemoveCommand())
	return cmd
}

func (c *CLI) groupShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <group>",
		Short: "Show a group's position and members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			g := args[0]
			if !f.groups.Exists(g) {
				return errs.New(errs.ErrCodeNotFound, "group %q not found", g)
			}

			first, _ := f.groups.FirstID(g)
			last, _ := f.groups.LastID(g)
			fmt.Fprintln(stdout, StyleTitle.Render(g))
			printKeyValue("first", fmt.Sprintf("%s (%s)", first, StyleNumber.Render(strconv.Itoa(f.groups.FirstIndex(g)))))
			printKeyValue("last", fmt.Sprintf("%s (%s)", last, StyleNumber.Render(strconv.Itoa(f.groups.LastIndex(g)))))
			printKeyValue("layers", strings.Join(f.groups.Layers(g), ", "))
			if f.groups.Contiguous(g) {
				printKeyValue("contiguous", StyleSuccess.Render("yes"))
			} else {
				printKeyValue("contiguous", StyleWarning.Render("no"))
			}
			return nil
		},
	}
}

// layerFlags collects the optional fields of layers created on the command line.
type layerFlags struct {
	layerType string
	source    string
	before    string
}

func (lf *layerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&lf.layerType, "type", "", "layer type of new layers")
	cmd.Flags().StringVar(&lf.source, "source", "", "source of new layers")
	cmd.Flags().StringVar(&lf.before, "before", "", "layer or group to insert before (default: group top, or end)")
}

func (lf *layerFlags) layer(id string) (stack.Layer, error) {
	if err := errs.ValidateLayerID(id); err != nil {
		return stack.Layer{}, err
	}
	return stack.Layer{ID: id, Type: lf.layerType, Source: lf.source}, nil
}

func (c *CLI) groupAddCommand() *cobra.Command {
	var lf layerFlags
	cmd := &cobra.Command{
		Use:   "add <group> <layer-id>...",
		Short: "Insert new layers as a block of a group",
		Long: `Insert new layers tagged with the group, in the given order.

Without --before the layers go on top of the group's existing block, or at the
end when the group is new. --before may name a layer or a group; a layer inside
another group resolves to that group's first layer.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g := args[0]
			if err := errs.ValidateGroupID(g); err != nil {
				return err
			}
			layers := make([]stack.Layer, 0, len(args)-1)
			for _, id := range args[1:] {
				l, err := lf.layer(id)
				if err != nil {
					return err
				}
				layers = append(layers, l)
			}
			return c.edit(cmd, func(f *styleFile) error {
				if err := f.groups.AddGroup(g, layers, lf.before); err != nil {
					return err
				}
				printSuccess("Added %d layers to %s", len(layers), StyleHighlight.Render(g))
				return nil
			})
		},
	}
	lf.register(cmd)
	return cmd
}

func (c *CLI) groupAddLayerCommand() *cobra.Command {
	var lf layerFlags
	cmd := &cobra.Command{
		Use:   "add-layer <group> <layer-id>",
		Short: "Insert one layer into a group",
		Long: `Insert one layer tagged with the group.

--before must name a layer of the same group; without it the layer becomes the
group's first layer.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g := args[0]
			if err := errs.ValidateGroupID(g); err != nil {
				return err
			}
			l, err := lf.layer(args[1])
			if err != nil {
				return err
			}
			return c.edit(cmd, func(f *styleFile) error {
				if err := f.groups.AddLayerToGroup(g, l, lf.before); err != nil {
					return err
				}
				printSuccess("Added %s to %s", l.ID, StyleHighlight.Render(g))
				return nil
			})
		},
	}
	lf.register(cmd)
	return cmd
}

func (c *CLI) groupMoveCommand() *cobra.Command {
	var before string
	cmd := &cobra.Command{
		Use:   "move <group>",
		Short: "Move a whole group",
		Long: `Move every layer of the group, keeping their order, before the layer or
group named by --before (default: the end). The group ends up contiguous.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g := args[0]
			return c.edit(cmd, func(f *styleFile) error {
				if !f.groups.Exists(g) {
					return errs.New(errs.ErrCodeNotFound, "group %q not found", g)
				}
				if err := f.groups.MoveGroup(g, before); err != nil {
					return err
				}
				printSuccess("Moved %s", StyleHighlight.Render(g))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&before, "before", "", "layer or group to move before (default: end)")
	return cmd
}

func (c *CLI) groupRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <group>",
		Short: "Delete every layer of a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g := args[0]
			return c.edit(cmd, func(f *styleFile) error {
				n := len(f.groups.Layers(g))
				if err := f.groups.RemoveGroup(g); err != nil {
					return err
				}
				printSuccess("Removed %s (%d layers)", StyleHighlight.Render(g), n)
				return nil
			})
		},
	}
}

// =============================================================================
// layer
// =============================================================================

func (c *CLI) layerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layer",
		Short: "Change the group of a single layer",
		Long: `Change the group tag of a single layer. The layer is not moved, so the
group may become fragmented; run "layerstack compact" or "group move" to fix it.`,
	}
	cmd.AddCommand(c.layerAssignCommand())
	cmd.AddCommand(c.layerUnassignCommand())
	return cmd
}

func (c *CLI) layerAssignCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "assign <layer-id> <group>",
		Short: "Tag a layer with a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, g := args[0], args[1]
			if err := errs.ValidateGroupID(g); err != nil {
				return err
			}
			return c.edit(cmd, func(f *styleFile) error {
				if _, ok := f.stack.Layer(id); !ok {
					return errs.Wrap(errs.ErrCodeLayerNotFound, stack.ErrLayerNotFound, "layer %q", id)
				}
				if !f.groups.MoveLayerToGroup(g, id) {
					printInfo("%s already in %s", id, StyleHighlight.Render(g))
					return nil
				}
				printSuccess("Assigned %s to %s", id, StyleHighlight.Render(g))
				warnFragmented(f.groups, g)
				return nil
			})
		},
	}
}

func (c *CLI) layerUnassignCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unassign <layer-id> <group>",
		Short: "Clear a layer's group tag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, g := args[0], args[1]
			return c.edit(cmd, func(f *styleFile) error {
				if _, ok := f.stack.Layer(id); !ok {
					return errs.Wrap(errs.ErrCodeLayerNotFound, stack.ErrLayerNotFound, "layer %q", id)
				}
				if !f.groups.RemoveLayerFromGroup(g, id) {
					printInfo("%s is not in %s", id, StyleHighlight.Render(g))
					return nil
				}
				printSuccess("Removed %s from %s", id, StyleHighlight.Render(g))
				warnFragmented(f.groups, g)
				return nil
			})
		},
	}
}

func warnFragmented(m *groups.Manager, g string) {
	if m.Contiguous(g) {
		return
	}
	printWarning("%s is now fragmented", g)
	printNextStep("Repair with", fmt.Sprintf("%s group move %s --before %s", appName, g, g))
}

// =============================================================================
// check / compact
// =============================================================================

func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Fail if any group is fragmented",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			fragmented := f.groups.Fragmented()
			if len(fragmented) == 0 {
				printSuccess("All %d groups are contiguous", len(f.groups.Groups()))
				return nil
			}
			for _, g := range fragmented {
				printError("%s is split: %s", g, strings.Join(f.groups.Layers(g), ", "))
			}
			printNextStep("Repair with", appName+" compact")
			return errFragmented
		},
	}
}

func (c *CLI) compactCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compact",
		Short: "Make every fragmented group contiguous",
		Long: `Move each fragmented group into one block, in place: the block starts where
the group's first layer is. Member order is kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prog := newProgress(loggerFromContext(cmd.Context()))
			var n int
			err := c.edit(cmd, func(f *styleFile) error {
				for _, g := range f.groups.Fragmented() {
					if err := f.groups.MoveGroup(g, g); err != nil {
						return err
					}
					printDetail("compacted %s", g)
					n++
				}
				return nil
			})
			if err != nil {
				return err
			}
			prog.done("Compacted %d groups", n)
			return nil
		},
	}
}
