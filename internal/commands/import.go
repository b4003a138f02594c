package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/apexfield/clientsync/internal/config"
	"github.com/apexfield/clientsync/internal/reconcile"
	"github.com/apexfield/clientsync/internal/service"
	"github.com/apexfield/clientsync/internal/tabular"
	"github.com/apexfield/clientsync/pkg/types"
)

const importTimeout = 60 * time.Second

// NewImportCmd creates the import command.
func NewImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [export-file]",
		Short: "Ingest a delimited spreadsheet export into the relational store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args[0])
		},
	}
}

func runImport(path string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading export: %w", err)
	}

	rows, err := tabular.Parse(string(raw))
	if err != nil {
		return fmt.Errorf("parsing export: %w", err)
	}

	rowIndexBase := 0
	if cfg.Mirror != nil {
		rowIndexBase = cfg.Mirror.RowIndexBase
	}
	batch := reconcile.New(rowIndexBase).Reconcile(rows)
	if len(batch) == 0 {
		color.Yellow("No importable records in %s", path)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
	defer cancel()

	svc, st, c, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		svc.Close()
		_ = c.Close()
		st.Close()
	}()

	res := svc.ImportFromExternalSource(ctx, batch, types.Actor{})
	if !res.Success {
		return fmt.Errorf("import failed: %s", res.Error)
	}

	summary, _ := res.Data.(service.ImportSummary)
	color.Green("✓ %s", res.Message)
	if len(summary.Conflicts) > 0 {
		color.Yellow("  %d duplicate client ids skipped:", len(summary.Conflicts))
		for _, id := range summary.Conflicts {
			fmt.Printf("    %s\n", id)
		}
	}
	return nil
}
