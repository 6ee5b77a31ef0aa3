package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"datapulse/internal/services"
	"datapulse/internal/validation"
)

func newPricesCmd(a *app) *cobra.Command {
	var (
		exports exportFlags
		symbol  string
		sortBy  string
		sheet   string
	)

	cmd := &cobra.Command{
		Use:   "prices [file|dir]...",
		Short: "Clean daily price tables and rank symbols by volatility",
		Long: `Loads each CSV or Excel price table, reports its missing values, repairs
and validates it, and summarizes the close price per symbol. A directory
argument contributes every table inside it. Without arguments every table in
the configured data directory is read. A missing file is reported and skipped
rather than failing the run.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			defer a.finish(ctx)

			if cmd.Flags().Changed("symbol") {
				a.cfg.Prices.DefaultSymbol = symbol
			}
			if cmd.Flags().Changed("sort-by") {
				a.cfg.Prices.SortBy = sortBy
			}
			if cmd.Flags().Changed("sheet") {
				a.cfg.Prices.Sheet = sheet
			}
			if err := a.validate(); err != nil {
				return err
			}
			return a.runPrices(ctx, args, exports)
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "symbol for tables without a symbol column (default: file name)")
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "group order: variability or mean")
	cmd.Flags().StringVar(&sheet, "sheet", "", "worksheet to read from Excel inputs (default: first sheet)")
	exports.register(cmd, true)

	return cmd
}

func (a *app) runPrices(ctx context.Context, args []string, exports exportFlags) error {
	validator := validation.NewFileValidator(a.logger)
	discovery, args := a.inputs(args)
	if err := a.checkInputDirs(validator, discovery, args, ""); err != nil {
		return err
	}

	inputs, err := discovery.ExpandTables(args...)
	if err != nil {
		return err
	}

	for _, in := range inputs {
		if err := validator.ValidateTableFormat(in); err != nil {
			return err
		}
	}

	svc, err := services.NewSummaryService(a.cfg, a.logger, services.WithMetrics(a.metrics))
	if err != nil {
		return err
	}

	results := make([]*services.PriceResult, 0, len(inputs))
	for _, in := range inputs {
		res, err := svc.RunPrices(ctx, in)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	if a.output == "json" {
		if err := printJSON(a.stdout, results); err != nil {
			return err
		}
	}

	for i, res := range results {
		if a.output != "json" {
			if i > 0 {
				fmt.Fprintln(a.stdout)
			}
			if err := printPriceReport(a.stdout, res); err != nil {
				return err
			}
		}

		tag := ""
		if len(results) > 1 {
			tag = inputTag(res.Source)
		}
		written, err := a.exportRun(exports, tag, res.Summary, res.Missing, res.Table)
		if err != nil {
			return err
		}
		if a.output != "json" {
			for _, path := range written {
				fmt.Fprintf(a.stdout, "wrote %s\n", path)
			}
		}
	}
	return nil
}
