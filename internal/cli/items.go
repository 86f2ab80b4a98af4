package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/carta/internal/catalog"
	"github.com/roach88/carta/internal/menu"
)

// itemFlags holds the dish form flags shared by add and update.
type itemFlags struct {
	name        string
	category    string
	price       string
	image       string
	videoURL    string
	description string
	allergens   []string
	suggestions []string
}

func (f *itemFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "dish name")
	cmd.Flags().StringVar(&f.category, "category", "", "category name (must exist)")
	cmd.Flags().StringVar(&f.price, "price", "", "price in euros, e.g. 12.50")
	cmd.Flags().StringVar(&f.image, "image", "", "image URL or path")
	cmd.Flags().StringVar(&f.videoURL, "video", "", "video URL")
	cmd.Flags().StringVar(&f.description, "description", "", "description")
	cmd.Flags().StringSliceVar(&f.allergens, "allergen", nil, "allergen id (repeatable, see 'carta allergens')")
	cmd.Flags().StringArrayVar(&f.suggestions, "suggestion", nil, "pairing suggestion (repeatable)")
}

func (f *itemFlags) form() menu.ItemForm {
	return menu.ItemForm{
		Name:        f.name,
		Category:    f.category,
		Price:       f.price,
		Image:       f.image,
		VideoURL:    f.videoURL,
		Description: f.description,
		Allergens:   f.allergens,
		Suggestions: f.suggestions,
	}
}

// merge returns the form of item with the flags that were set applied on top.
func (f *itemFlags) merge(cmd *cobra.Command, item menu.MenuItem) menu.ItemForm {
	form := menu.ItemForm{
		Name:        item.Name,
		Category:    item.Category,
		Price:       fmt.Sprint(item.Price),
		Image:       item.Image,
		VideoURL:    item.VideoURL,
		Description: item.Description,
		Suggestions: item.Suggestions,
	}
	for _, a := range item.Allergens {
		form.Allergens = append(form.Allergens, string(a))
	}

	set := cmd.Flags().Changed
	if set("name") {
		form.Name = f.name
	}
	if set("category") {
		form.Category = f.category
	}
	if set("price") {
		form.Price = f.price
	}
	if set("image") {
		form.Image = f.image
	}
	if set("video") {
		form.VideoURL = f.videoURL
	}
	if set("description") {
		form.Description = f.description
	}
	if set("allergen") {
		form.Allergens = f.allergens
	}
	if set("suggestion") {
		form.Suggestions = f.suggestions
	}
	return form
}

// NewItemsCommand creates the items command group.
func NewItemsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Manage dishes",
	}

	cmd.AddCommand(newItemsListCommand(rootOpts))
	cmd.AddCommand(newItemsShowCommand(rootOpts))
	cmd.AddCommand(newItemsAddCommand(rootOpts))
	cmd.AddCommand(newItemsUpdateCommand(rootOpts))
	cmd.AddCommand(newItemsSetActiveCommand(rootOpts, "activate", true))
	cmd.AddCommand(newItemsSetActiveCommand(rootOpts, "deactivate", false))
	cmd.AddCommand(newItemsDeleteCommand(rootOpts))

	return cmd
}

func newItemsListCommand(rootOpts *RootOptions) *cobra.Command {
	var where string
	var exclude []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List dishes",
		Long: `List every dish, active or not.

--where filters with an expression over name, category, price, active,
allergens, suggestions and description. --exclude hides inactive dishes
and dishes declaring any of the given allergens.

Examples:
  carta items list
  carta items list --where 'price < 15 && category == "Postres"'
  carta items list --exclude gluten --exclude milk`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			s, err := openSession(rootOpts, f)
			if err != nil {
				return err
			}
			defer s.Close()

			items := s.catalog.Items.Items()
			if where != "" {
				if items, err = s.catalog.Query(where); err != nil {
					_ = f.Error(ErrCodeQuery, err.Error(), nil)
					return WrapExitError(ExitCommandError, "invalid query", err)
				}
			}
			if len(exclude) > 0 {
				allergens, err := parseAllergens(f, exclude)
				if err != nil {
					return err
				}
				items = filterItems(items, func(item menu.MenuItem) bool {
					return item.IsActive() && !catalog.ContainsAllergen(item, allergens)
				})
			}
			if items == nil {
				items = []menu.MenuItem{}
			}

			return f.Success(items, renderItems(items))
		},
	}

	cmd.Flags().StringVar(&where, "where", "", "filter expression")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "hide dishes with this allergen (repeatable)")
	return cmd
}

func newItemsShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one dish",
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

			item, ok := s.catalog.Items.FindByID(id)
			if !ok {
				return f.Reject(fmt.Errorf("menu item %d: %w", id, menu.ErrNotFound))
			}

			share := catalog.ShareURL(item, item.Category)
			data := struct {
				menu.MenuItem
				ShareURL string `json:"shareUrl"`
			}{item, share}
			return f.Success(data, renderItem(item, share))
		},
	}
}

func newItemsAddCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &itemFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a dish",
		Long: `Add a dish. The category must already exist.

Example:
  carta items add --name "Tarta de queso" --category Postres --price 6.5 --allergen milk --allergen eggs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			s, err := openSession(rootOpts, f)
			if err != nil {
				return err
			}
			defer s.Close()

			item, err := s.catalog.AddItem(flags.form())
			if err != nil {
				return f.Reject(err)
			}
			return f.Success(item, fmt.Sprintf("✓ Added dish %d: %s", item.ID, item.Name))
		},
	}

	flags.register(cmd)
	return cmd
}

func newItemsUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &itemFlags{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a dish",
		Long: `Update a dish. Fields whose flag is not given keep their current value;
the visibility flag is never changed by update.

Example:
  carta items update 3 --price 17.50`,
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

			current, ok := s.catalog.Items.FindByID(id)
			if !ok {
				return f.Reject(fmt.Errorf("update menu item %d: %w", id, menu.ErrNotFound))
			}
			if err := s.catalog.UpdateItem(id, flags.merge(cmd, current)); err != nil {
				return f.Reject(err)
			}

			item, _ := s.catalog.Items.FindByID(id)
			return f.Success(item, fmt.Sprintf("✓ Updated dish %d: %s", item.ID, item.Name))
		},
	}

	flags.register(cmd)
	return cmd
}

func newItemsSetActiveCommand(rootOpts *RootOptions, use string, active bool) *cobra.Command {
	short := "Show a dish on the public menu"
	if !active {
		short = "Hide a dish from the public menu"
	}

	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
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

			if err := s.catalog.Items.SetActive(id, active); err != nil {
				return f.Reject(err)
			}
			item, _ := s.catalog.Items.FindByID(id)
			return f.Success(item, fmt.Sprintf("✓ Dish %d is now %s", id, visibility(active)))
		},
	}
}

func newItemsDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a dish",
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

			if err := s.catalog.Items.Remove(id); err != nil {
				return f.Reject(err)
			}
			return f.Success(map[string]int64{"deleted": id}, fmt.Sprintf("✓ Deleted dish %d", id))
		},
	}
}

func parseAllergens(f *OutputFormatter, ids []string) ([]menu.Allergen, error) {
	out := make([]menu.Allergen, 0, len(ids))
	for _, id := range ids {
		info, ok := menu.LookupAllergen(strings.TrimSpace(id))
		if !ok {
			return nil, f.Fail(ErrCodeArgs, fmt.Sprintf("unknown allergen %q", id), nil)
		}
		out = append(out, info.ID)
	}
	return out, nil
}

func filterItems(items []menu.MenuItem, keep func(menu.MenuItem) bool) []menu.MenuItem {
	var out []menu.MenuItem
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func visibility(active bool) string {
	if active {
		return "visible"
	}
	return "hidden"
}

func allergenList(item menu.MenuItem) string {
	if len(item.Allergens) == 0 {
		return "-"
	}
	ids := make([]string, len(item.Allergens))
	for i, a := range item.Allergens {
		ids[i] = string(a)
	}
	return strings.Join(ids, ",")
}

func renderItems(items []menu.MenuItem) string {
	if len(items) == 0 {
		return "No dishes."
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tVISIBLE\tALLERGENS")
	for _, item := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			item.ID, item.Name, item.Category, catalog.FormatPrice(item.Price),
			yesNo(item.IsActive()), allergenList(item))
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func renderItem(item menu.MenuItem, share string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (#%d)\n", item.Name, item.ID)
	fmt.Fprintf(&b, "  Category:  %s\n", item.Category)
	fmt.Fprintf(&b, "  Price:     %s\n", catalog.FormatPrice(item.Price))
	fmt.Fprintf(&b, "  Visible:   %s\n", yesNo(item.IsActive()))
	fmt.Fprintf(&b, "  Allergens: %s\n", allergenNames(item))
	if item.Description != "" {
		fmt.Fprintf(&b, "  About:     %s\n", item.Description)
	}
	if len(item.Suggestions) > 0 {
		fmt.Fprintf(&b, "  Pairs with: %s\n", strings.Join(item.Suggestions, "; "))
	}
	if item.Image != "" {
		fmt.Fprintf(&b, "  Image:     %s\n", item.Image)
	}
	if item.VideoURL != "" {
		fmt.Fprintf(&b, "  Video:     %s\n", item.VideoURL)
	}
	fmt.Fprintf(&b, "  Share:     %s", share)
	return b.String()
}

func allergenNames(item menu.MenuItem) string {
	if len(item.Allergens) == 0 {
		return "none declared"
	}
	names := make([]string, 0, len(item.Allergens))
	for _, a := range item.Allergens {
		if info, ok := menu.LookupAllergen(string(a)); ok {
			names = append(names, info.Name)
		}
	}
	return strings.Join(names, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
