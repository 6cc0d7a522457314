package main

import (
	"os"

	"github.com/ssabro/MailVista-sub001/cmd/mailvista/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
