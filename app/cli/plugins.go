package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gridview/app/plugin"
)

func newPluginsCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "List the converter plugins enabled in the settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			plugins := e.plugins.List()
			if len(plugins) == 0 {
				_, err := fmt.Fprintln(out, "no plugins enabled")
				return err
			}
			rows := make([][]string, len(plugins))
			for i, p := range plugins {
				rows[i] = []string{
					p.Manifest.Name,
					p.Manifest.Version,
					strings.Join(p.Manifest.Extensions, " "),
					p.ExecPath,
				}
			}
			return writeGrid(out, []string{"Name", "Version", "Extensions", "Executable"}, rows)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <path>",
		Short: "Validate a plugin directory, manifest or executable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, execPath, err := plugin.Validate(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s) reads %s via %s\n",
				manifest.Name, manifest.Version, manifest.ID, strings.Join(manifest.Extensions, ", "), execPath)
			return err
		},
	})
	return cmd
}
