package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/carta/internal/menu"
)

// NewAllergensCommand creates the allergens command, which lists the
// allergen vocabulary accepted by --allergen and --exclude.
func NewAllergensCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "allergens",
		Short: "List the allergen vocabulary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			list := menu.Allergens()

			var b strings.Builder
			w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME")
			for _, a := range list {
				fmt.Fprintf(w, "%s\t%s\n", a.ID, a.Name)
			}
			w.Flush()

			return f.Success(list, strings.TrimRight(b.String(), "\n"))
		},
	}
}
