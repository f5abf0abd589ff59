package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/smartsales/salesctl/client"
	"github.com/smartsales/salesctl/internal/config"
)

type globalOptions struct {
	configPath string
	verbose    bool
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "salesctl",
		Short:         "Command line client for the Smart Sales API",
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			displayAppName(config.New().GetAppName())
			_ = cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML settings file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newLoginCommand(opts))
	cmd.AddCommand(newRegisterCommand(opts))
	cmd.AddCommand(newLogoutCommand(opts))
	cmd.AddCommand(newWhoamiCommand(opts))
	cmd.AddCommand(newProfileCommand(opts))
	cmd.AddCommand(newCustomersCommand(opts))
	cmd.AddCommand(newProductsCommand(opts))
	cmd.AddCommand(newSalesCommand(opts))
	cmd.AddCommand(newInventoryCommand(opts))
	cmd.AddCommand(newForecastsCommand(opts))
	cmd.AddCommand(newDashboardCommand(opts))
	cmd.AddCommand(newDemoCommand())
	return cmd
}

func (o *globalOptions) loadConfig() (config.Config, error) {
	if o.configPath != "" {
		return config.NewFromFile(o.configPath)
	}
	return config.New(), nil
}

func (o *globalOptions) logger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	if o.verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// newClient builds the client and settles the session: the bootstrap check
// runs to completion before any command logic observes auth state.
func (o *globalOptions) newClient(ctx context.Context) (*client.Client, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	c, err := client.New(cfg, client.WithLogger(o.logger(cfg)))
	if err != nil {
		return nil, err
	}
	if err := c.Session.Bootstrap(ctx); err != nil {
		return nil, errors.Wrap(err, "session bootstrap")
	}
	return c, nil
}

// requireAuth fails fast with a sign-in hint instead of letting every
// request bounce off the backend.
func requireAuth(c *client.Client) error {
	if !c.Session.IsAuthenticated() {
		return errors.New("not signed in, run `salesctl login` first")
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
