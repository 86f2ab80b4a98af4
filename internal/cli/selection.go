package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/carta/internal/catalog"
)

// NewSelectionCommand creates the selection command group for the diner's
// saved dishes.
func NewSelectionCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "selection",
		Aliases: []string{"sel"},
		Short:   "Manage the saved dish selection",
	}

	cmd.AddCommand(newSelectionListCommand(rootOpts))
	cmd.AddCommand(newSelectionToggleCommand(rootOpts))
	cmd.AddCommand(newSelectionSetCommand(rootOpts))
	cmd.AddCommand(newSelectionAdjustCommand(rootOpts))
	cmd.AddCommand(newSelectionRemoveCommand(rootOpts))

	return cmd
}

// selectionView is the selection as shown to the diner.
type selectionView struct {
	Lines []catalog.Line `json:"lines"`
	Total float64        `json:"total"`
}

func currentSelection(c *catalog.Catalog) selectionView {
	lines := c.SelectionLines()
	if lines == nil {
		lines = []catalog.Line{}
	}
	return selectionView{Lines: lines, Total: c.SelectionTotal()}
}

func newSelectionListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show saved dishes and the running total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			s, err := openSession(rootOpts, f)
			if err != nil {
				return err
			}
			defer s.Close()

			view := currentSelection(s.catalog)
			return f.Success(view, renderSelection(view))
		},
	}
}

func newSelectionToggleCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Save a dish, or unsave it if already saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			id, err := parseID(f, args[0])
			if err != nil {
				return err
			}
			s, err := openSession(rootOpts, f)
			if err != nil {
				return err
			}
			defer s.Close()

			saved := s.catalog.Selection.Toggle(id)
			msg := fmt.Sprintf("✓ Saved dish %d", id)
			if !saved {
				msg = fmt.Sprintf("✓ Removed dish %d", id)
			}
			return f.Success(map[string]interface{}{"id": id, "saved": saved}, msg)
		},
	}
}

func newSelectionSetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <quantity>",
		Short: "Set the quantity of a dish (0 removes it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			id, err := parseID(f, args[0])
			if err != nil {
				return err
			}
			qty, err := parseInt(f, "quantity", args[1])
			if err != nil {
				return err
			}
			s, err := openSession(rootOpts, f)
			if err != nil {
				return err
			}
			defer s.Close()

			s.catalog.Selection.SetQuantity(id, qty)
			return quantityResult(f, s.catalog, id)
		},
	}
}

func newSelectionAdjustCommand(rootOpts *RootOptions) *cobra.Command {
	var by int

	cmd := &cobra.Command{
		Use:   "adjust <id>",
		Short: "Change the quantity of a dish by a delta",
		Long: `Change the quantity of a dish. A result below 1 removes it.

Examples:
  carta selection adjust 3            # one more
  carta selection adjust 3 --by -1    # one less`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			id, err := parseID(f, args[0])
			if err != nil {
				return err
			}
			s, err := openSession(rootOpts, f)
			if err != nil {
				return err
			}
			defer s.Close()

			s.catalog.Selection.Adjust(id, by)
			return quantityResult(f, s.catalog, id)
		},
	}

	cmd.Flags().IntVar(&by, "by", 1, "delta to apply")
	return cmd
}

func newSelectionRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a dish from the selection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			id, err := parseID(f, args[0])
			if err != nil {
				return err
			}
			s, err := openSession(rootOpts, f)
			if err != nil {
				return err
			}
			defer s.Close()

			s.catalog.Selection.Remove(id)
			return quantityResult(f, s.catalog, id)
		},
	}
}

func quantityResult(f *OutputFormatter, c *catalog.Catalog, id int64) error {
	qty := c.Selection.Quantity(id)
	data := map[string]interface{}{"id": id, "quantity": qty}
	if qty == 0 {
		return f.Success(data, fmt.Sprintf("✓ Dish %d is not in the selection", id))
	}
	return f.Success(data, fmt.Sprintf("✓ Dish %d × %d", id, qty))
}

func renderSelection(view selectionView) string {
	if len(view.Lines) == 0 {
		return "No saved dishes."
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	for _, l := range view.Lines {
		fmt.Fprintf(w, "%d ×\t%s\t%s\n", l.Quantity, l.Item.Name, catalog.FormatPrice(l.Subtotal))
	}
	fmt.Fprintf(w, "\tTotal\t%s\n", catalog.FormatPrice(view.Total))
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}
