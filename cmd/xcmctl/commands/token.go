package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"xcmkit/pkg/platform/middleware/admin"
)

// tokenCmd issues registry admin tokens. It needs no registry, so it skips
// the root setup.
func tokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a registry admin JWT signed with XCMKIT_SERVER_ADMIN_JWT_SECRET",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv("XCMKIT_SERVER_ADMIN_JWT_SECRET")
			if secret == "" {
				return errors.New("XCMKIT_SERVER_ADMIN_JWT_SECRET is not set")
			}
			token, err := admin.IssueToken([]byte(secret), subject, ttl, time.Now())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "operator name recorded in audit events")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
