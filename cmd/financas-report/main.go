package main

import (
	"os"

	"financas/internal/cli"
	"financas/internal/commands"
)

func main() {
	cli.LoadEnvFile()

	if err := commands.NewRootCommand(commands.EnvStoreOpener(os.Stderr)).Execute(); err != nil {
		os.Exit(1)
	}
}
