package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func refillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refill",
		Short: "Top up the one-time prekey pool if it has run low",
		RunE: func(cmd *cobra.Command, args []string) error {
			acct, err := requireAccount()
			if err != nil {
				return err
			}
			n, err := appCtx.Keys.RefreshOneTimePreKeys(acct)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Println("Pool above threshold; nothing generated.")
			} else {
				fmt.Printf("Generated %d one-time prekeys.\n", n)
			}
			return nil
		},
	}
}
