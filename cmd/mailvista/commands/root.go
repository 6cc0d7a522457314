package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ssabro/MailVista-sub001/internal/app"
	"github.com/ssabro/MailVista-sub001/internal/domain"
)

var (
	home         string
	account      string
	directoryURL string

	appCtx *app.Wire
)

// Execute builds and runs the root command.
func Execute() error {
	root := &cobra.Command{
		Use:   "mailvista",
		Short: "End-to-end encrypted mail crypto engine CLI",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Optional .env for local development; flags still win.
			_ = godotenv.Load()

			if home == "" {
				home = os.Getenv("MAILVISTA_HOME")
			}
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".mailvista")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}
			if account == "" {
				account = os.Getenv("MAILVISTA_ACCOUNT")
			}
			if directoryURL == "" {
				directoryURL = os.Getenv("MAILVISTA_DIRECTORY_URL")
			}

			cfg := app.Config{Home: home}
			if directoryURL != "" {
				cfg.Directory = app.DirectoryConfig{Enabled: true, BaseURL: directoryURL}
			}
			wire, err := app.NewWire(cfg)
			if err != nil {
				return err
			}
			appCtx = wire
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "keystore dir (default ~/.mailvista)")
	root.PersistentFlags().StringVarP(&account, "account", "a", "", "local account address")
	root.PersistentFlags().StringVar(
		&directoryURL, "directory", "", "key directory base URL (optional)",
	)

	root.AddCommand(
		registerCmd(),
		fingerprintCmd(),
		bundleCmd(),
		encryptCmd(),
		decryptCmd(),
		sessionsCmd(),
		rotateCmd(),
		refillCmd(),
		publishCmd(),
	)
	return root.Execute()
}

// requireAccount validates the shared --account flag.
func requireAccount() (domain.AccountID, error) {
	if account == "" {
		return "", fmt.Errorf("account required (-a or MAILVISTA_ACCOUNT)")
	}
	return domain.AccountID(account), nil
}
