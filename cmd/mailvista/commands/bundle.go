package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssabro/MailVista-sub001/internal/domain"
)

func bundleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Export or import public key bundles",
	}
	cmd.AddCommand(bundleExportCmd(), bundleImportCmd())
	return cmd
}

// bundle export: print this account's public bundle as JSON for out-of-band
// exchange.
func bundleExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export this account's public key bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			acct, err := requireAccount()
			if err != nil {
				return err
			}
			bundle, err := appCtx.Keys.ExportPublicBundle(acct)
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(bundle, "", "  ")
			if err != nil {
				return err
			}
			if out == "" {
				fmt.Println(string(b))
				return nil
			}
			return os.WriteFile(out, b, 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write bundle to file instead of stdout")
	return cmd
}

// bundle import <peer> <file>: validate and pin a peer's bundle.
func bundleImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <peer> <file>",
		Short: "Import and pin a peer's public key bundle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			acct, err := requireAccount()
			if err != nil {
				return err
			}
			peer := domain.PeerID(args[0])

			raw, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			var bundle domain.PreKeyBundle
			if err := json.Unmarshal(raw, &bundle); err != nil {
				return fmt.Errorf("parse bundle: %w", err)
			}
			if err := appCtx.Keys.ImportBundle(acct, peer, bundle); err != nil {
				return err
			}
			fmt.Printf("Imported bundle for %s\n", peer)
			return nil
		},
	}
}
