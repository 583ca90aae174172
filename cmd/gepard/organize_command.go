package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robna/gepard-BlindCorr/internal/organize"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "organize <directory>",
		Short: "Sort dataset files into environmental, blank and blind folders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			procCfg, err := ctx.processingConfig()
			if err != nil {
				return err
			}

			organizer := organize.NewOrganizer(procCfg, ctx.logger)
			moves, err := organizer.Plan(args[0])
			if err != nil {
				return err
			}
			if len(moves) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no dataset files found")
				return nil
			}
			if err := organizer.Apply(moves, dryRun); err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%d files would be moved\n", len(moves))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%d files sorted\n", len(moves))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan only, do not move files")
	return cmd
}
