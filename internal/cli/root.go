package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Execute runs the adsctl root command.
func Execute() error {
	return newRootCmd().Execute()
}

// app carries the wired client and config shared by subcommands.
type app struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "adsctl",
		Short:         "adsctl: manage ads console accounts and campaigns from the terminal",
		Long:          "adsctl talks to the ads console API: sign in, browse the MCC account hierarchy, validate and create search campaigns, and tail diagnostics.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	a, err := wireApp(rootCmd)
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(a),
		newAccountsCmd(a),
		newCampaignCmd(a),
		newDiagCmd(a),
	)

	return rootCmd
}

func wireApp(rootCmd *cobra.Command) (*app, error) {
	v := viper.New()
	v.SetEnvPrefix("ADSCTL")
	v.AutomaticEnv()
	v.SetDefault("api_url", "http://localhost:8080")

	home, err := os.UserHomeDir()
	if err == nil {
		v.SetConfigName(".adsctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(home)
		// Missing config file is fine; flags and env still apply.
		_ = v.ReadInConfig()
	}

	rootCmd.PersistentFlags().String("api-url", v.GetString("api_url"), "ads console API base URL")
	if err := v.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url")); err != nil {
		return nil, fmt.Errorf("bind api-url flag: %w", err)
	}

	return &app{v: v}, nil
}

// client builds an API client carrying the stored session token.
func (a *app) client() *Client {
	c := NewClient(a.v.GetString("api_url"))
	if token := a.readToken(); token != "" {
		c = c.WithToken(token)
	}
	return c
}

func (a *app) tokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".adsctl-token"), nil
}

func (a *app) readToken() string {
	path, err := a.tokenPath()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

func (a *app) writeToken(token string) error {
	path, err := a.tokenPath()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the adsctl version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "adsctl", Version)
			return err
		},
	}
}

// Version is set at build time using ldflags.
var Version = "dev"
