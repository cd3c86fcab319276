package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newDiagCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diag",
		Short: "Inspect console diagnostics",
	}
	cmd.AddCommand(newDiagLogsCmd(a), newDiagReportsCmd(a))
	return cmd
}

func newDiagLogsCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent diagnostics log entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logs, err := a.client().DiagLogs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, entry := range logs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-5s [%s] %s\n",
					entry.Timestamp.Format("15:04:05"), entry.Level, entry.Component, entry.Message)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum entries to show")
	return cmd
}

func newDiagReportsCmd(a *app) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Show recent hierarchy resolution reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reports, err := a.client().DiagReports(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(reports)
			}

			for _, rep := range reports {
				source := "live"
				if rep.CacheHit {
					source = "cache"
				}
				if rep.Stale {
					source = "cache (stale)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s mcc=%s strategy=%s source=%s attempts=%d took=%s\n",
					rep.CreatedAt.Format("15:04:05"), rep.MCCID, rep.Strategy, source,
					len(rep.Attempts), rep.Total)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum reports to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
