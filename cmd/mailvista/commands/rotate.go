package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func rotateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate",
		Short: "Rotate the signed prekey if it is older than the rotation period",
		RunE: func(cmd *cobra.Command, args []string) error {
			acct, err := requireAccount()
			if err != nil {
				return err
			}
			rotated, err := appCtx.Keys.RotateSignedPreKeyIfNeeded(acct)
			if err != nil {
				return err
			}
			if rotated {
				fmt.Println("Signed prekey rotated.")
			} else {
				fmt.Println("Signed prekey still fresh; nothing to do.")
			}
			return nil
		},
	}
}
