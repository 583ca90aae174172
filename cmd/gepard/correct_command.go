package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robna/gepard-BlindCorr/adapters/excel"
	"github.com/robna/gepard-BlindCorr/app"
	"github.com/robna/gepard-BlindCorr/domain/particle"
	"github.com/robna/gepard-BlindCorr/internal/config"
	apperrors "github.com/robna/gepard-BlindCorr/internal/errors"
	"github.com/robna/gepard-BlindCorr/internal/matching"
	"github.com/robna/gepard-BlindCorr/internal/process"
	"github.com/robna/gepard-BlindCorr/ports"
)

func newCorrectCommand(ctx *commandContext) *cobra.Command {
	var (
		dimension     string
		matchOnSample bool
		outputDir     string
		suffix        string
		format        string
	)

	cmd := &cobra.Command{
		Use:   "correct <target> <control>",
		Short: "Apply a single control dataset to a target dataset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dim := particle.SizeDimension(dimension)
			if !dim.IsValid() {
				return apperrors.ConfigInvalid(fmt.Sprintf("unknown size dimension %q", dimension))
			}
			outFormat := ports.OutputFormat(format)
			if !outFormat.IsValid() {
				return apperrors.ConfigInvalid(fmt.Sprintf("unknown output format %q", format))
			}
			procCfg, err := ctx.processingConfig()
			if err != nil {
				return err
			}

			service := app.NewCorrectionService(
				excel.NewLoader(config.ExcelColumnMapping(), ctx.logger),
				process.NewProcessor(procCfg, ctx.logger),
				ctx.logger,
			)
			result, err := service.Correct(cmd.Context(), args[0], args[1], matching.Options{
				Dimension:     dim,
				MatchOnSample: matchOnSample,
			})
			if err != nil {
				return err
			}

			stem := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			outPath := filepath.Join(outputDir, fmt.Sprintf("%s%s.%s", stem, suffix, outFormat.Extension()))
			logPath := filepath.Join(outputDir, fmt.Sprintf("%s%s_log.%s", stem, suffix, outFormat.Extension()))

			writer := excel.NewWriter(ctx.logger)
			if err := writer.ExportTable(cmd.Context(), result.Corrected, outPath, outFormat); err != nil {
				return err
			}
			if err := writer.ExportLog(cmd.Context(), result.Log, logPath, outFormat); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d particles eliminated, corrected table written to %s\n",
				result.Log.Len(), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dimension, "dimension", string(particle.DimGeomMean),
		"Size dimension used for matching (size_1, size_2, size_3, size_geom_mean)")
	cmd.Flags().BoolVar(&matchOnSample, "match-on-sample", true,
		"Require matching sample names between control and target particles")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".", "Directory for corrected outputs")
	cmd.Flags().StringVar(&suffix, "suffix", "_corrected", "Suffix appended to output file names")
	cmd.Flags().StringVar(&format, "format", string(ports.FormatXLSX), "Output format (xlsx or csv)")
	return cmd
}
