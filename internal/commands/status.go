package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/apexfield/clientsync/internal/config"
	"github.com/apexfield/clientsync/pkg/types"
)

const statusTimeout = 10 * time.Second

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show store and mirror health, plus client counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}
}

func runStatus() error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), statusTimeout)
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

	bold := color.New(color.Bold)
	_, _ = bold.Println("clientsync status")
	fmt.Println()

	if res := svc.HealthCheck(ctx); res.Success {
		color.Green("  ✓ relational store: reachable")
	} else {
		color.Red("  ✗ relational store: %s", res.Error)
		return nil
	}

	if res := svc.MirrorStatus(ctx); res.Success {
		color.Green("  ✓ mirror: %s", res.Message)
	} else {
		color.Yellow("  ⚠ mirror: %s", res.Error)
	}

	res := svc.GetClientStats(ctx)
	if !res.Success {
		color.Red("  ✗ stats: %s", res.Error)
		return nil
	}
	stats, ok := res.Data.(*types.ClientStats)
	if !ok {
		return nil
	}

	fmt.Println()
	_, _ = bold.Println("  Clients:")
	fmt.Printf("    total:      %d\n", stats.Total)
	fmt.Printf("    new leads:  %d\n", stats.NewLeads)
	fmt.Printf("    this week:  %d\n", stats.ThisWeek)

	if len(stats.ByStatus) > 0 {
		fmt.Println()
		_, _ = bold.Println("  By status:")
		for _, s := range types.ClientStatuses {
			if n := stats.ByStatus[s]; n > 0 {
				fmt.Printf("    %-20s %d\n", s, n)
			}
		}
	}
	if len(stats.ByChannel) > 0 {
		fmt.Println()
		_, _ = bold.Println("  By channel:")
		for _, ch := range types.Channels {
			if n := stats.ByChannel[ch]; n > 0 {
				fmt.Printf("    %-20s %d\n", ch, n)
			}
		}
	}
	fmt.Println()
	return nil
}
