package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/carta/internal/catalog"
	"github.com/roach88/carta/internal/menu"
)

// NewGroupsCommand creates the groups command group for sharing options.
func NewGroupsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Manage sharing menus for 2, 4, 6 and 8 people",
	}

	cmd.AddCommand(newGroupsListCommand(rootOpts))
	cmd.AddCommand(newGroupsShowCommand(rootOpts))
	cmd.AddCommand(newGroupsAddCommand(rootOpts))
	cmd.AddCommand(newGroupsUpdateCommand(rootOpts))
	cmd.AddCommand(newGroupsDeleteCommand(rootOpts))

	return cmd
}

// sizeOptions is one party size with its options, in display order.
type sizeOptions struct {
	Size    menu.PartySize       `json:"size"`
	Options []menu.SharingOption `json:"options"`
}

func newGroupsListCommand(rootOpts *RootOptions) *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sharing options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			sizes := menu.PartySizes
			if cmd.Flags().Changed("size") {
				if !menu.PartySize(size).Valid() {
					return f.Reject(fmt.Errorf("list group options for %d: %w", size, menu.ErrInvalidPartySize))
				}
				sizes = []menu.PartySize{menu.PartySize(size)}
			}

			s, err := openSession(rootOpts, f)
			if err != nil {
				return err
			}
			defer s.Close()

			out := make([]sizeOptions, 0, len(sizes))
			for _, ps := range sizes {
				out = append(out, sizeOptions{ps, s.catalog.Groups.Options(ps)})
			}
			return f.Success(out, renderGroups(out))
		},
	}

	cmd.Flags().IntVar(&size, "size", 0, "only this party size")
	return cmd
}

func newGroupsShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <size> <id>",
		Short: "Show a sharing option with its dishes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			size, err := parseInt(f, "party size", args[0])
			if err != nil {
				return err
			}
			s, err := openSession(rootOpts, f)
			if err != nil {
				return err
			}
			defer s.Close()

			res, ok := s.catalog.ResolveOption(menu.PartySize(size), args[1])
			if !ok {
				return f.Reject(fmt.Errorf("group option %q for %d: %w", args[1], size, menu.ErrNotFound))
			}
			if res.Items == nil {
				res.Items = []menu.MenuItem{}
			}
			return f.Success(res, renderResolved(res))
		},
	}
}

// groupFlags holds the option form flags shared by add and update.
type groupFlags struct {
	name        string
	description string
	price       float64
	items       []int
}

func (g *groupFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&g.name, "name", "", "option name")
	cmd.Flags().StringVar(&g.description, "description", "", "description")
	cmd.Flags().Float64Var(&g.price, "price", 0, "price per person in euros")
	cmd.Flags().IntSliceVar(&g.items, "item", nil, "dish id included in the option (repeatable)")
}

func (g *groupFlags) itemIDs() []int64 {
	ids := make([]int64, len(g.items))
	for i, id := range g.items {
		ids[i] = int64(id)
	}
	return ids
}

func (g *groupFlags) input(cmd *cobra.Command) menu.OptionInput {
	in := menu.OptionInput{
		Name:        g.name,
		Description: g.description,
		MenuItemIDs: g.itemIDs(),
	}
	if cmd.Flags().Changed("price") {
		p := g.price
		in.Price = &p
	}
	return in
}

func (g *groupFlags) update(cmd *cobra.Command) menu.OptionUpdate {
	var upd menu.OptionUpdate
	set := cmd.Flags().Changed
	if set("name") {
		upd.Name = &g.name
	}
	if set("description") {
		upd.Description = &g.description
	}
	if set("price") {
		upd.Price = &g.price
	}
	if set("item") {
		ids := g.itemIDs()
		upd.MenuItemIDs = &ids
	}
	return upd
}

func newGroupsAddCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &groupFlags{}

	cmd := &cobra.Command{
		Use:   "add <size>",
		Short: "Add a sharing option",
		Long: `Add a sharing option for a party of 2, 4, 6 or 8.

Example:
  carta groups add 4 --name "Menú degustación" --price 28 --item 1 --item 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			size, err := parseInt(f, "party size", args[0])
			if err != nil {
				return err
			}
			s, err := openSession(rootOpts, f)
			if err != nil {
				return err
			}
			defer s.Close()

			o, err := s.catalog.Groups.AddOption(menu.PartySize(size), flags.input(cmd))
			if err != nil {
				return f.Reject(err)
			}
			return f.Success(o, fmt.Sprintf("✓ Added option %s: %s", o.ID, o.Name))
		},
	}

	flags.register(cmd)
	return cmd
}

func newGroupsUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &groupFlags{}

	cmd := &cobra.Command{
		Use:   "update <size> <id>",
		Short: "Update a sharing option",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			size, err := parseInt(f, "party size", args[0])
			if err != nil {
				return err
			}
			s, err := openSession(rootOpts, f)
			if err != nil {
				return err
			}
			defer s.Close()

			ps := menu.PartySize(size)
			if err := s.catalog.Groups.UpdateOption(ps, args[1], flags.update(cmd)); err != nil {
				return f.Reject(err)
			}
			o, _ := s.catalog.Groups.Find(ps, args[1])
			return f.Success(o, fmt.Sprintf("✓ Updated option %s", o.ID))
		},
	}

	flags.register(cmd)
	return cmd
}

func newGroupsDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <size> <id>",
		Short: "Delete a sharing option",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			size, err := parseInt(f, "party size", args[0])
			if err != nil {
				return err
			}
			s, err := openSession(rootOpts, f)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.catalog.Groups.DeleteOption(menu.PartySize(size), args[1]); err != nil {
				return f.Reject(err)
			}
			return f.Success(map[string]string{"deleted": args[1]}, fmt.Sprintf("✓ Deleted option %s", args[1]))
		},
	}
}

func optionPrice(o menu.SharingOption) string {
	if o.Price == nil {
		return "-"
	}
	return catalog.FormatPrice(*o.Price)
}

func renderGroups(groups []sizeOptions) string {
	var b strings.Builder
	for i, g := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "For %d people:\n", g.Size)
		if len(g.Options) == 0 {
			b.WriteString("  (none)\n")
			continue
		}
		w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
		for _, o := range g.Options {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%d dishes\n", o.ID, o.Name, optionPrice(o), len(o.MenuItemIDs))
		}
		w.Flush()
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderResolved(res catalog.ResolvedOption) string {
	var b strings.Builder
	o := res.Option
	fmt.Fprintf(&b, "%s (%s)\n", o.Name, o.ID)
	fmt.Fprintf(&b, "  Price: %s\n", optionPrice(o))
	if o.Description != "" {
		fmt.Fprintf(&b, "  About: %s\n", o.Description)
	}
	for _, item := range res.Items {
		fmt.Fprintf(&b, "  - %s (#%d)\n", item.Name, item.ID)
	}
	for _, id := range res.Missing {
		fmt.Fprintf(&b, "  - #%d (no longer on the menu)\n", id)
	}
	return strings.TrimRight(b.String(), "\n")
}
