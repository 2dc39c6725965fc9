package commands

import (
	"github.com/spf13/cobra"

	"xcmkit/internal/directive/handler"
)

func classifyCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "classify [origin] [destination]",
		Short: "Classify the transfer leg between two chains",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := e.service.Classify(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), handler.FromClassification(c))
		},
	}
}
