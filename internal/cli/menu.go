package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/carta/internal/catalog"
	"github.com/roach88/carta/internal/menu"
)

// NewMenuCommand creates the menu command, which prints the public menu.
func NewMenuCommand(rootOpts *RootOptions) *cobra.Command {
	var exclude []string

	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Print the public menu",
		Long: `Print the public menu: every category in display order with its
visible dishes.

--exclude hides dishes declaring any of the given allergens.

Examples:
  carta menu
  carta menu --exclude gluten --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			var allergens []menu.Allergen
			if len(exclude) > 0 {
				var err error
				if allergens, err = parseAllergens(f, exclude); err != nil {
					return err
				}
			}

			s, err := openSession(rootOpts, f)
			if err != nil {
				return err
			}
			defer s.Close()

			sections := s.catalog.PublicMenu()
			for i := range sections {
				sections[i].Items = filterAllergens(sections[i].Items, allergens)
			}
			return f.Success(sections, renderMenu(sections))
		},
	}

	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "hide dishes with this allergen (repeatable)")
	return cmd
}

func filterAllergens(items []menu.MenuItem, exclude []menu.Allergen) []menu.MenuItem {
	if len(exclude) == 0 {
		return items
	}
	out := []menu.MenuItem{}
	for _, item := range items {
		if !catalog.ContainsAllergen(item, exclude) {
			out = append(out, item)
		}
	}
	return out
}

func renderMenu(sections []catalog.Section) string {
	if len(sections) == 0 {
		return "The menu is empty."
	}

	var b strings.Builder
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s\n", strings.ToUpper(sec.Category.Name))
		if len(sec.Items) == 0 {
			b.WriteString("  (nothing available)\n")
			continue
		}
		for _, item := range sec.Items {
			fmt.Fprintf(&b, "  %-40s %10s\n", item.Name, catalog.FormatPrice(item.Price))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
