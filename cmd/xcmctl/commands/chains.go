package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func chainsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "chains",
		Short: "List chains known to the registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RELAY\tID\tSPEC NAME\tTOKENS")
			for _, c := range e.registry.Chains() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", c.Relay, c.ID, c.SpecName, c.Tokens)
			}
			return w.Flush()
		},
	}
}
