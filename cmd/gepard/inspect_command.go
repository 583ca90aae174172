package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/robna/gepard-BlindCorr/adapters/excel"
	"github.com/robna/gepard-BlindCorr/adapters/postgres"
	"github.com/robna/gepard-BlindCorr/domain/particle"
	"github.com/robna/gepard-BlindCorr/internal/config"
	apperrors "github.com/robna/gepard-BlindCorr/internal/errors"
	"github.com/robna/gepard-BlindCorr/internal/process"
	"github.com/robna/gepard-BlindCorr/internal/report"
	"github.com/robna/gepard-BlindCorr/ports"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var (
		fromDB    bool
		dimension string
	)

	cmd := &cobra.Command{
		Use:   "inspect <file-or-sample>",
		Short: "Show per-sample size statistics for a dataset",
		Long: "Loads a dataset, applies the processing pipeline and prints per-sample " +
			"size statistics. The argument is a spreadsheet path, or with --db the " +
			"name of a sample in the configured database.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dim := particle.SizeDimension(dimension)
			if !dim.IsValid() {
				return apperrors.ConfigInvalid(fmt.Sprintf("unknown size dimension %q", dimension))
			}
			procCfg, err := ctx.processingConfig()
			if err != nil {
				return err
			}

			loader, cleanup, err := newInspectLoader(ctx, fromDB)
			if err != nil {
				return err
			}
			defer cleanup()

			raw, err := loader.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			processed, err := process.NewProcessor(procCfg, ctx.logger).Process(raw)
			if err != nil {
				return err
			}

			analyzer := report.NewAnalyzer(dim)
			fmt.Fprintf(cmd.OutOrStdout(), "%-24s %8s %10s %10s %10s %10s %9s\n",
				"sample", "count", "mean", "median", "min", "max", "outliers")
			for _, s := range analyzer.AnalyzeTable(processed) {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %8d %10.2f %10.2f %10.2f %10.2f %9d\n",
					s.SampleName, s.Count, s.Mean, s.Median, s.Min, s.Max, s.Outliers)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromDB, "db", false, "Load the sample from the configured database")
	cmd.Flags().StringVar(&dimension, "dimension", string(particle.DimGeomMean),
		"Size dimension to summarize (size_1, size_2, size_3, size_geom_mean)")
	return cmd
}

func newInspectLoader(ctx *commandContext, fromDB bool) (ports.TableLoader, func(), error) {
	if !fromDB {
		return excel.NewLoader(config.ExcelColumnMapping(), ctx.logger), func() {}, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.URL == "" {
		return nil, nil, apperrors.ConfigInvalid("DATABASE_URL is required for --db")
	}
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "cannot connect to database")
	}
	loader := postgres.NewLoader(db, cfg.Database.Table, config.SQLColumnMapping(), ctx.logger)
	return loader, func() { _ = db.Close() }, nil
}
