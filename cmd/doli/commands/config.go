package commands

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/dolibarr-client/internal/constants"
	"github.com/fivetwenty-io/dolibarr-client/pkg/doli"
)

// configView is the effective configuration with the API key masked.
type configView struct {
	BaseURL         string `json:"base_url"         yaml:"base_url"`
	APIKey          string `json:"api_key"          yaml:"api_key"`
	EnvFile         string `json:"env_file"         yaml:"env_file"`
	CredentialStore string `json:"credential_store" yaml:"credential_store"`
	NATSURL         string `json:"nats_url,omitempty"    yaml:"nats_url,omitempty"`
	NATSBucket      string `json:"nats_bucket,omitempty" yaml:"nats_bucket,omitempty"`
	Timeout         string `json:"timeout"          yaml:"timeout"`
	RetryMax        int    `json:"retry_max"        yaml:"retry_max"`
	UserAgent       string `json:"user_agent"       yaml:"user_agent"`
	Debug           bool   `json:"debug"            yaml:"debug"`
}

// newConfigCommand creates the config command.
func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect CLI configuration",
		Long:  "Inspect the configuration read from the environment and the settings file",
	}

	cmd.AddCommand(newConfigShowCommand(a))

	return cmd
}

func newConfigShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration. The API key is masked.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := checkOutputFormat(a.output())
			if err != nil {
				return err
			}

			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}

			view := newConfigView(cfg)
			out := cmd.OutOrStdout()

			switch a.output() {
			case constants.FormatJSON:
				return StandardJSONRenderer(out, view)
			case constants.FormatYAML:
				return StandardYAMLRenderer(out, view)
			default:
				return displayConfigTable(out, view)
			}
		},
	}
}

func newConfigView(cfg *doli.Config) configView {
	view := configView{
		BaseURL:         cfg.BaseURL,
		APIKey:          maskSecret(cfg.APIKey),
		EnvFile:         cfg.EnvFile,
		CredentialStore: cfg.CredentialStore,
		Timeout:         constants.NotAvailable,
		RetryMax:        cfg.RetryMax,
		UserAgent:       cfg.UserAgent,
		Debug:           cfg.Debug,
	}

	if cfg.Timeout > 0 {
		view.Timeout = cfg.Timeout.String()
	}

	if cfg.CredentialStore == constants.CredentialStoreNATS {
		view.NATSURL = cfg.NATSURL
		view.NATSBucket = cfg.NATSBucket
	}

	return view
}

func displayConfigTable(w io.Writer, view configView) error {
	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	_ = table.Append("Base URL", view.BaseURL)
	_ = table.Append("API Key", view.APIKey)
	_ = table.Append("Settings File", view.EnvFile)
	_ = table.Append("Credential Store", view.CredentialStore)

	if view.NATSURL != "" {
		_ = table.Append("NATS URL", view.NATSURL)
		_ = table.Append("NATS Bucket", view.NATSBucket)
	}

	_ = table.Append("Timeout", view.Timeout)
	_ = table.Append("Retries", fmt.Sprintf("%d", view.RetryMax))
	_ = table.Append("User Agent", view.UserAgent)
	_ = table.Append("Debug", fmt.Sprintf("%t", view.Debug))

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
