package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssabro/MailVista-sub001/internal/domain"
)

func sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and manage established sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			acct, err := requireAccount()
			if err != nil {
				return err
			}
			peers, err := appCtx.Engine.ListSessions(acct)
			if err != nil {
				return err
			}
			if len(peers) == 0 {
				fmt.Println("No sessions.")
				return nil
			}
			for _, p := range peers {
				fmt.Println(p)
			}
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <peer>",
		Short: "Delete the session with a peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			acct, err := requireAccount()
			if err != nil {
				return err
			}
			peer := domain.PeerID(args[0])
			ok, err := appCtx.Engine.HasSession(acct, peer)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no session with %s", peer)
			}
			if err := appCtx.Engine.DeleteSession(acct, peer); err != nil {
				return err
			}
			fmt.Printf("Session with %s deleted.\n", peer)
			return nil
		},
	})
	return cmd
}
