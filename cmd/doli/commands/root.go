package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/dolibarr-client/internal/auth"
	"github.com/fivetwenty-io/dolibarr-client/internal/config"
	"github.com/fivetwenty-io/dolibarr-client/internal/constants"
	"github.com/fivetwenty-io/dolibarr-client/internal/logging"
	"github.com/fivetwenty-io/dolibarr-client/pkg/doli"
	"github.com/fivetwenty-io/dolibarr-client/pkg/doliclient"
)

// Global flag names.
const (
	flagEnvFile = "env-file"
	flagBaseURL = "base-url"
	flagAPIKey  = "api-key"
	flagPrompt  = "prompt"
	flagCache   = "cache"
	flagOutput  = "output"
	flagVerbose = "verbose"
)

// app carries the settings shared by all commands of one root.
type app struct {
	v *viper.Viper
}

// NewRootCommand creates the doli command tree.
func NewRootCommand(version, commit, date string) *cobra.Command {
	a := &app{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "doli",
		Short: "Dolibarr ERP REST API CLI",
		Long: `A command-line interface for the Dolibarr ERP REST API.

BASE_URL and API_KEY are read from the environment and from the nearest .env
file. When no API key is available you are asked to log in, and the obtained
key is cached in the .env file for later runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.String(flagEnvFile, "", "settings file (default is the nearest .env)")
	flags.String(flagBaseURL, "", "ERP base URL, overrides BASE_URL")
	flags.String(flagAPIKey, "", "API key to use instead of the configured or cached one")
	flags.Bool(flagPrompt, true, "prompt for credentials when no API key is available")
	flags.Bool(flagCache, true, "cache an API key obtained by login")
	flags.StringP(flagOutput, "o", constants.FormatTable, "output format (table, json, yaml)")
	flags.BoolP(flagVerbose, "v", false, "verbose output")

	_ = a.v.BindPFlags(flags)
	a.v.SetEnvPrefix(constants.EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	cmd.AddCommand(newVersionCommand(a, version, commit, date))
	cmd.AddCommand(newLoginCommand(a))
	cmd.AddCommand(newInvoicesCommand(a))
	cmd.AddCommand(newThirdPartiesCommand(a))
	cmd.AddCommand(newCallCommand(a))
	cmd.AddCommand(newConfigCommand(a))

	return cmd
}

// loadConfig reads the settings file and environment, then applies flags.
func (a *app) loadConfig(cmd *cobra.Command) (*doli.Config, error) {
	opts := []config.Option{
		config.WithOverride(config.KeyBaseURL, a.v.GetString(flagBaseURL)),
	}

	if envFile := a.v.GetString(flagEnvFile); envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, err
	}

	verbose := a.v.GetBool(flagVerbose)
	cfg.Logger = logging.New(cmd.ErrOrStderr(), verbose)
	cfg.Debug = cfg.Debug || verbose

	return cfg, nil
}

// newClient builds a client for cmd, prompting on its input when allowed.
func (a *app) newClient(cmd *cobra.Command, extra ...doliclient.Option) (doli.Client, error) {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	opts := []doliclient.Option{
		doliclient.WithAPIKey(a.v.GetString(flagAPIKey)),
		doliclient.WithPersist(a.v.GetBool(flagCache)),
	}

	if a.v.GetBool(flagPrompt) {
		opts = append(opts, doliclient.WithPrompt(auth.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())))
	}

	return doliclient.New(commandContext(cmd), cfg, append(opts, extra...)...)
}

func (a *app) output() string {
	return a.v.GetString(flagOutput)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
