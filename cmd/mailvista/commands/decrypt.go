package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssabro/MailVista-sub001/internal/domain"
)

// decrypt <peer> [payload]: open a transport payload. Reads stdin when the
// payload argument is "-" or absent.
func decryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decrypt <peer> [payload]",
		Short: "Decrypt a transport payload from a peer",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			acct, err := requireAccount()
			if err != nil {
				return err
			}
			peer := domain.PeerID(args[0])

			payload := ""
			if len(args) == 2 && args[1] != "-" {
				payload = args[1]
			} else {
				b, err := io.ReadAll(os.Stdin)
				if err != nil {
					return err
				}
				payload = strings.TrimSpace(string(b))
			}

			pt, err := appCtx.Engine.Decrypt(acct, peer, payload)
			if err != nil {
				return err
			}
			fmt.Println(string(pt))
			return nil
		},
	}
}
