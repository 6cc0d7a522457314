package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssabro/MailVista-sub001/internal/domain"
)

// encrypt <peer> <message>: produce the transport payload for a message.
func encryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt <peer> <message>",
		Short: "Encrypt a message body for a peer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			acct, err := requireAccount()
			if err != nil {
				return err
			}
			peer := domain.PeerID(args[0])

			payload, err := appCtx.Engine.Encrypt(cmd.Context(), acct, peer, []byte(args[1]))
			if err != nil {
				return err
			}
			fmt.Println(payload)
			return nil
		},
	}
}
