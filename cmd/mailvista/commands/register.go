package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssabro/MailVista-sub001/internal/crypto"
)

func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create identity keys and the prekey pool for this account",
		RunE: func(cmd *cobra.Command, args []string) error {
			acct, err := requireAccount()
			if err != nil {
				return err
			}
			bundle, err := appCtx.Keys.RegisterAccount(acct)
			if err != nil {
				return err
			}
			fmt.Printf("Account registered.\n")
			fmt.Printf("Registration ID: %d\n", bundle.RegistrationID)
			fmt.Printf("Fingerprint: %s\n", crypto.Fingerprint(bundle.IdentityKey.Slice()))
			return nil
		},
	}
}
