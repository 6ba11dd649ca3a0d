package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vanshika/linktrace/backend/internal/app"
	"github.com/vanshika/linktrace/backend/internal/config"
	"github.com/vanshika/linktrace/backend/internal/logging"
)

// cli carries the viper instance shared by every subcommand.
type cli struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:           "linkpath",
		Short:         "Find the shortest link path between two Wikipedia pages",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.initViper(cmd)
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().String("backend", "", "knowledge backend (wikipedia|neo4j)")
	root.PersistentFlags().String("base-url", "", "knowledge service endpoint")
	root.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error)")

	root.AddCommand(
		newConnectCmd(c),
		newInfoCmd(c),
		newSearchCmd(c),
	)
	return root
}

// initViper applies defaults, env bindings, the optional config file and
// flag overrides, in increasing precedence.
func (c *cli) initViper(cmd *cobra.Command) error {
	config.SetDefaults(c.v)
	config.SetupEnv(c.v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		c.v.SetConfigFile(cfgFile)
		if err := c.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	flags := cmd.Root().PersistentFlags()
	bindings := map[string]string{
		"knowledge.backend":  "backend",
		"knowledge.base_url": "base-url",
		"log.level":          "log-level",
	}
	for key, name := range bindings {
		if !flags.Changed(name) {
			continue
		}
		if err := c.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("binding %s flag: %w", name, err)
		}
	}
	return nil
}

// build decodes the configuration and wires the application. Logs go to
// stderr so command output stays clean.
func (c *cli) build(ctx context.Context, cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.FromViper(c.v)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger := logging.NewWithWriter(cfg.Logging, cmd.ErrOrStderr())
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("wiring application: %w", err)
	}
	return a, nil
}
