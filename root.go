package main

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfg "github.com/maastricht-university/speakerai/config"
	"github.com/maastricht-university/speakerai/orchestrator"
	"github.com/maastricht-university/speakerai/store"
)

type commandContext struct {
	configPath string
	logLevel   string
	cfg        *cfg.Root
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "speakerai",
		Short:         "Meeting transcription and speaker analytics",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&ctx.logLevel, "log", "", "Log level (overrides pipeline.log_level)")

	rootCmd.AddCommand(newProcessCommand(ctx))
	rootCmd.AddCommand(newSpeakersCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())
	return rootCmd
}

// config loads the configuration once and applies the log level.
func (c *commandContext) config() (*cfg.Root, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	var (
		conf *cfg.Root
		err  error
	)
	if c.configPath != "" {
		conf, err = cfg.LoadFile(c.configPath)
	} else {
		conf, err = cfg.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := setupLogging(firstNonEmpty(c.logLevel, conf.Pipeline.LogLvl)); err != nil {
		return nil, err
	}
	if err := conf.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	c.cfg = conf
	return conf, nil
}

// pipeline opens the speaker store and wires a pipeline around it. The
// caller closes the store.
func (c *commandContext) pipeline() (*orchestrator.Pipeline, *store.Store, error) {
	conf, err := c.config()
	if err != nil {
		return nil, nil, err
	}
	db, err := store.Open(conf.Paths.Database)
	if err != nil {
		return nil, nil, err
	}
	logrus.WithField("path", db.Path()).Debug("opened speaker store")
	return orchestrator.NewPipeline(conf, db, orchestrator.WithMetrics(orchestrator.DefaultMetrics())), db, nil
}

func setupLogging(level string) error {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level == "" {
		return nil
	}
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logrus.SetLevel(lvl)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
