package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/campaignlabs/ads-console/internal/models"
)

func newAccountsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Browse manager accounts and their hierarchies",
	}
	cmd.AddCommand(newAccountsManagersCmd(a), newAccountsTreeCmd(a))
	return cmd
}

func newAccountsManagersCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "managers",
		Short: "List the manager (MCC) accounts you can select",
		RunE: func(cmd *cobra.Command, _ []string) error {
			managers, err := a.client().ListManagers(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(managers)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tMCC")
			for _, m := range managers {
				fmt.Fprintf(w, "%s\t%s\t%v\n", m.ID, m.DisplayName, m.IsMCC)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newAccountsTreeCmd(a *app) *cobra.Command {
	var refresh, asJSON bool

	cmd := &cobra.Command{
		Use:   "tree <mcc-id>",
		Short: "Show the account hierarchy under an MCC",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.client().Hierarchy(cmd.Context(), args[0], refresh)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(h)
			}

			source := "live"
			if h.FromCache {
				source = "cache"
			}
			if h.Stale {
				source = "cache (stale)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mcc %s  strategy=%s  source=%s  accounts=%d\n",
				h.MCCID, h.Strategy, source, len(h.Accounts))

			printTree(cmd, h, h.MCCID, 0)
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and resolve live")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func printTree(cmd *cobra.Command, h *models.Hierarchy, parentID string, depth int) {
	for _, acc := range h.SubAccounts(parentID) {
		for i := 0; i < depth; i++ {
			fmt.Fprint(cmd.OutOrStdout(), "  ")
		}
		marker := ""
		if acc.IsMCC {
			marker = " [mcc]"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "- %s  %s%s\n", acc.ID, acc.DisplayName, marker)
		printTree(cmd, h, acc.ID, depth+1)
	}
}
