package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/carta/internal/menu"
)

// NewCategoriesCommand creates the categories command group.
func NewCategoriesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "Manage categories",
	}

	cmd.AddCommand(newCategoriesListCommand(rootOpts))
	cmd.AddCommand(newCategoriesAddCommand(rootOpts))
	cmd.AddCommand(newCategoriesRenameCommand(rootOpts))
	cmd.AddCommand(newCategoriesDeleteCommand(rootOpts))

	return cmd
}

// categoryCount is a category with the number of dishes filed under it.
type categoryCount struct {
	menu.Category
	Items int `json:"items"`
}

func newCategoriesListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			s, err := openSession(rootOpts, f)
			if err != nil {
				return err
			}
			defer s.Close()

			cats := s.catalog.Categories.Categories()
			out := make([]categoryCount, 0, len(cats))
			for _, c := range cats {
				out = append(out, categoryCount{c, s.catalog.Items.CountInCategory(c.Name)})
			}
			return f.Success(out, renderCategories(out))
		},
	}
}

func newCategoriesAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			s, err := openSession(rootOpts, f)
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := s.catalog.Categories.Add(args[0])
			if err != nil {
				return f.Reject(err)
			}
			return f.Success(c, fmt.Sprintf("✓ Added category %d: %s", c.ID, c.Name))
		},
	}
}

func newCategoriesRenameCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id|name> <new-name>",
		Short: "Rename a category and the dishes filed under it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			s, err := openSession(rootOpts, f)
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := lookupCategory(s.catalog.Categories, args[0])
			if err != nil {
				return f.Reject(err)
			}
			moved, err := s.catalog.RenameCategory(c.ID, args[1])
			if err != nil {
				return f.Reject(err)
			}

			renamed, _ := s.catalog.Categories.FindByID(c.ID)
			data := map[string]interface{}{"category": renamed, "itemsMoved": moved}
			return f.Success(data, fmt.Sprintf("✓ Renamed %q to %q (%d dishes updated)", c.Name, renamed.Name, moved))
		},
	}
}

func newCategoriesDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id|name>",
		Short: "Delete an empty category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			s, err := openSession(rootOpts, f)
			if err != nil {
				return err
			}
			defer s.Close()

			c, err := lookupCategory(s.catalog.Categories, args[0])
			if err != nil {
				return f.Reject(err)
			}
			if err := s.catalog.DeleteCategory(c.ID); err != nil {
				return f.Reject(err)
			}
			return f.Success(c, fmt.Sprintf("✓ Deleted category %s", c.Name))
		},
	}
}

// lookupCategory resolves a numeric id first, then an exact name.
func lookupCategory(cats *menu.CategoryStore, ref string) (menu.Category, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if c, ok := cats.FindByID(id); ok {
			return c, nil
		}
	}
	if c, ok := cats.FindByName(ref); ok {
		return c, nil
	}
	return menu.Category{}, fmt.Errorf("category %q: %w", ref, menu.ErrNotFound)
}

func renderCategories(cats []categoryCount) string {
	if len(cats) == 0 {
		return "No categories."
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDISHES")
	for _, c := range cats {
		fmt.Fprintf(w, "%d\t%s\t%d\n", c.ID, c.Name, c.Items)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}
