package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/apexfield/clientsync/internal/config"
	"github.com/apexfield/clientsync/pkg/types"
)

const exportTimeout = 60 * time.Second

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump every canonical client record as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(outPath)
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to file instead of stdout")
	return cmd
}

func runExport(outPath string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
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

	res := svc.ExportAll(ctx)
	if !res.Success {
		return fmt.Errorf("export failed: %s", res.Error)
	}

	recs, _ := res.Data.([]types.ClientRecord)
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	data = append(data, '\n')

	if outPath == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	fmt.Fprintf(os.Stderr, "wrote %d records to %s\n", len(recs), outPath)
	return nil
}
