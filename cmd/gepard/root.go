package main

import (
	"github.com/spf13/cobra"

	"github.com/robna/gepard-BlindCorr/internal"
	"github.com/robna/gepard-BlindCorr/internal/config"
)

// commandContext carries the lazily loaded processing configuration and the
// shared logger into every subcommand.
type commandContext struct {
	processingFlag *string
	logger         *internal.Logger

	processing *config.ProcessingConfig
}

func newCommandContext(processingFlag *string) *commandContext {
	return &commandContext{
		processingFlag: processingFlag,
		logger:         internal.NewDefaultLogger(),
	}
}

// processingConfig resolves the processing configuration once: the file from
// --processing-config when given, built-in defaults otherwise.
func (c *commandContext) processingConfig() (*config.ProcessingConfig, error) {
	if c.processing != nil {
		return c.processing, nil
	}
	if *c.processingFlag == "" {
		c.processing = config.DefaultProcessingConfig()
		return c.processing, nil
	}
	cfg, err := config.LoadProcessingConfig(*c.processingFlag)
	if err != nil {
		return nil, err
	}
	c.processing = cfg
	return c.processing, nil
}

func newRootCommand() *cobra.Command {
	var processingFlag string

	ctx := newCommandContext(&processingFlag)

	rootCmd := &cobra.Command{
		Use:           "gepard",
		Short:         "Blank and blind correction for microplastics particle datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&processingFlag, "processing-config", "p", "",
		"Processing configuration file (YAML)")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newCorrectCommand(ctx))
	rootCmd.AddCommand(newOrganizeCommand(ctx))
	rootCmd.AddCommand(newInspectCommand(ctx))

	return rootCmd
}
