package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/robna/gepard-BlindCorr/adapters/excel"
	"github.com/robna/gepard-BlindCorr/internal/config"
	"github.com/robna/gepard-BlindCorr/internal/process"
	"github.com/robna/gepard-BlindCorr/internal/report"
	"github.com/robna/gepard-BlindCorr/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var withReport bool

	cmd := &cobra.Command{
		Use:   "run <workflow.yaml>",
		Short: "Execute a declarative correction workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wfCfg, err := workflow.LoadCorrectionConfig(args[0])
			if err != nil {
				return err
			}
			procCfg, err := ctx.processingConfig()
			if err != nil {
				return err
			}

			orch := workflow.NewOrchestrator(
				wfCfg,
				excel.NewLoader(config.ExcelColumnMapping(), ctx.logger),
				process.NewProcessor(procCfg, ctx.logger),
				excel.NewWriter(ctx.logger),
				ctx.logger,
			)
			result, err := orch.Run(cmd.Context())
			if err != nil {
				return err
			}

			for _, step := range result.Steps {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d -> %d particles (%d eliminated)\n",
					filepath.Base(step.TargetFile), step.OriginalParticles,
					step.FinalParticles, step.Eliminated)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d corrections, %d particles eliminated\n",
				result.RunID, result.TotalCorrections, result.TotalEliminated)

			if withReport {
				renderer := report.NewRenderer()
				mdPath, err := renderer.WriteMarkdown(result, wfCfg.Output.Directory)
				if err != nil {
					return err
				}
				htmlPath, err := renderer.WriteHTML(result, wfCfg.Output.Directory)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "report written to %s and %s\n", mdPath, htmlPath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withReport, "report", false, "Write markdown and HTML run reports")
	return cmd
}
