package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/campaignlabs/ads-console/internal/models"
)

func newCampaignCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaign",
		Short: "Validate and create search campaigns",
	}
	cmd.AddCommand(newCampaignValidateCmd(a), newCampaignCreateCmd(a), newCampaignListCmd(a))
	return cmd
}

// loadCampaignForm reads a campaign form from a YAML or JSON file. JSON is a
// subset of YAML, so one decoder covers both. Unknown keys are rejected so a
// typoed field name fails loudly instead of submitting a half-empty form.
func loadCampaignForm(path string) (*models.CampaignForm, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read campaign file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var form models.CampaignForm
	if err := dec.Decode(&form); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("campaign file %s is empty", path)
		}
		return nil, fmt.Errorf("parse campaign file: %w", err)
	}
	return &form, nil
}

func newCampaignValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <form-file>",
		Short: "Validate a campaign form file without submitting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := loadCampaignForm(args[0])
			if err != nil {
				return err
			}

			errs, err := a.client().ValidateCampaign(cmd.Context(), form)
			if err != nil {
				return err
			}
			if len(errs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "form is valid")
				return nil
			}

			for _, e := range errs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", e.Field, e.Message)
			}
			return fmt.Errorf("%d validation errors", len(errs))
		},
	}
}

func newCampaignCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <form-file>",
		Short: "Create a paused search campaign from a form file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := loadCampaignForm(args[0])
			if err != nil {
				return err
			}

			record, err := a.client().CreateCampaign(cmd.Context(), form)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "campaign %q created (record %s)\n", record.Name, record.ID)
			if record.ResourceName != "" {
				fmt.Fprintln(cmd.OutOrStdout(), "resource:", record.ResourceName)
			}
			return nil
		},
	}
}

func newCampaignListCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent campaign submissions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := a.client().ListCampaigns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCUSTOMER\tSTATUS\tCREATED")
			for _, rec := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					rec.ID, rec.Name, rec.CustomerID, rec.Status,
					rec.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum records to list")
	return cmd
}
