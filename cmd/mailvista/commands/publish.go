package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Publish the public bundle and prekey pool to the key directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			acct, err := requireAccount()
			if err != nil {
				return err
			}
			if err := appCtx.Keys.PublishBundle(cmd.Context(), acct); err != nil {
				return err
			}
			fmt.Println("Bundle published.")
			return nil
		},
	}
}
