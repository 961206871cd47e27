package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newColumnsCommand(e *env) *cobra.Command {
	f := &loaderFlags{}
	cmd := &cobra.Command{
		Use:   "columns <path>",
		Short: "Print the columns inferred from a file and how each one filters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := f.load(cmd.Context(), e, args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, len(ds.Columns))
			for i, c := range ds.Columns {
				rows[i] = []string{
					c.Name,
					c.Type.String(),
					c.FilterKind.String(),
					strconv.Itoa(c.Distinct),
					strconv.Itoa(c.Empty),
				}
			}
			out := cmd.OutOrStdout()
			if err := writeGrid(out, []string{"Column", "Type", "Filter", "Distinct", "Empty"}, rows); err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "%d rows, %d columns, hash %s\n", len(ds.Records), len(ds.Columns), ds.Hash)
			return err
		},
	}
	f.bind(cmd)
	return cmd
}
