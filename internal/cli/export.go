package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/carta/internal/store"
)

// NewExportCommand creates the export command, which dumps a namespace's
// persisted state as JSON.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the namespace as JSON",
		Long: `Export categories, dishes, sharing options and the selection as one JSON
document. The document is printed, or written to --output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			s, err := openSession(rootOpts, f)
			if err != nil {
				return err
			}
			defer s.Close()

			snap := s.catalog.Export()
			if output != "" {
				data, err := json.MarshalIndent(snap, "", "  ")
				if err != nil {
					return f.Fail(ErrCodeGeneric, "failed to encode export", err)
				}
				if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
					return f.Fail(ErrCodeGeneric, "failed to write export", err)
				}
				return f.Success(map[string]string{"written": output},
					fmt.Sprintf("✓ Exported %d dishes to %s", len(snap.MenuItems), output))
			}

			if f.Format == "json" {
				return f.Success(snap, "")
			}
			return f.encode(snap)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the export to this file")
	return cmd
}

// NewResetCommand creates the reset command, which wipes a namespace and
// reinstalls the seed data.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear the namespace and reinstall the seed data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			if !yes {
				return f.Fail(ErrCodeArgs, "reset discards every change in namespace "+rootOpts.Namespace+"; pass --yes to confirm", nil)
			}
			s, err := openSession(rootOpts, f)
			if err != nil {
				return err
			}
			defer s.Close()

			s.catalog.Reset()
			snap := s.catalog.Export()
			return f.Success(snap, fmt.Sprintf("✓ Reset %s: %d categories, %d dishes",
				rootOpts.Namespace, len(snap.Categories), len(snap.MenuItems)))
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the reset")
	return cmd
}

// namespaceInfo is one namespace with its keys, most recently written first.
type namespaceInfo struct {
	Name string   `json:"name"`
	Keys []string `json:"keys"`
}

// NewNamespacesCommand creates the namespaces command, which lists the
// namespaces stored in the database.
func NewNamespacesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "namespaces",
		Short: "List namespaces in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			st, err := store.Open(rootOpts.Database)
			if err != nil {
				return f.Fail(ErrCodeStorage, "failed to open database", err)
			}
			defer st.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), storageTimeout)
			defer cancel()

			names, err := st.Namespaces(ctx)
			if err != nil {
				return f.Fail(ErrCodeStorage, "failed to list namespaces", err)
			}
			out := make([]namespaceInfo, 0, len(names))
			for _, name := range names {
				keys, err := st.Namespace(name).RecentKeys(ctx)
				if err != nil {
					return f.Fail(ErrCodeStorage, "failed to list keys", err)
				}
				out = append(out, namespaceInfo{Name: name, Keys: keys})
			}

			if len(out) == 0 {
				return f.Success(out, "No namespaces.")
			}
			var b strings.Builder
			for _, ns := range out {
				fmt.Fprintf(&b, "%s: %s\n", ns.Name, strings.Join(ns.Keys, ", "))
			}
			return f.Success(out, strings.TrimRight(b.String(), "\n"))
		},
	}
}
