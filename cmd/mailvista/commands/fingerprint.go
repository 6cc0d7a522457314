package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssabro/MailVista-sub001/internal/crypto"
	"github.com/ssabro/MailVista-sub001/internal/domain"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Show the identity key fingerprint for this account",
		RunE: func(cmd *cobra.Command, args []string) error {
			acct, err := requireAccount()
			if err != nil {
				return err
			}
			id, ok, err := appCtx.Identities.LoadIdentity(acct)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrNotRegistered
			}
			fmt.Println(crypto.Fingerprint(id.XPub.Slice()))
			return nil
		},
	}
}
