package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/apexfield/clientsync/internal/commands"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "clientsync",
		Short: "Client record synchronization and caching engine",
		Long: `Clientsync keeps a client-intake CRM's relational store and its legacy
spreadsheet mirror approximately consistent. It ingests loosely-schematized
spreadsheet exports, reconciles them into canonical client records, serves
reads through a TTL cache with deferred invalidation, and dual-writes with a
best-effort mirror path and an append-only audit trail.`,
		Version: version,
	}

	root.AddCommand(
		commands.NewInitCmd(),
		commands.NewServeCmd(),
		commands.NewImportCmd(),
		commands.NewExportCmd(),
		commands.NewStatusCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
