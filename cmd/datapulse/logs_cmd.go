package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"datapulse/internal/services"
	"datapulse/internal/validation"
)

func newLogsCmd(a *app) *cobra.Command {
	var (
		exports      exportFlags
		memberPrefix string
		sortBy       string
	)

	cmd := &cobra.Command{
		Use:   "logs [archive|dir]...",
		Short: "Decode zipped JSON-lines logs and rank API methods by latency variability",
		Long: `Walks every member of each zip archive in order, decodes one JSON record
per line and summarizes latency per API method. A directory argument
contributes its .zip files sorted by name. Without arguments the archives of
the configured data directory are read. Malformed lines are counted and
skipped; a missing or corrupt archive fails the run.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			defer a.finish(ctx)

			if cmd.Flags().Changed("member-prefix") {
				a.cfg.Logs.MemberPrefix = memberPrefix
			}
			if cmd.Flags().Changed("sort-by") {
				a.cfg.Logs.SortBy = sortBy
			}
			if err := a.validate(); err != nil {
				return err
			}
			return a.runLogs(ctx, args, exports)
		},
	}

	cmd.Flags().StringVar(&memberPrefix, "member-prefix", "", "only decode archive members whose name starts with this prefix")
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "group order: variability or mean")
	exports.register(cmd, false)

	return cmd
}

func (a *app) runLogs(ctx context.Context, args []string, exports exportFlags) error {
	validator := validation.NewFileValidator(a.logger)
	discovery, args := a.inputs(args)
	if err := a.checkInputDirs(validator, discovery, args, "*.zip"); err != nil {
		return err
	}

	archives, err := discovery.ExpandArchives(args...)
	if err != nil {
		return err
	}

	for _, archive := range archives {
		if err := validator.ValidateArchiveFile(archive); err != nil {
			return err
		}
	}

	svc, err := services.NewSummaryService(a.cfg, a.logger, services.WithMetrics(a.metrics))
	if err != nil {
		return err
	}

	res, err := svc.RunLogs(ctx, archives...)
	if err != nil {
		return err
	}

	if a.output == "json" {
		if err := printJSON(a.stdout, res); err != nil {
			return err
		}
	} else if err := printLogReport(a.stdout, res); err != nil {
		return err
	}

	written, err := a.exportRun(exports, "", res.Summary, nil, res.Table)
	if err != nil {
		return err
	}
	if a.output != "json" {
		for _, path := range written {
			fmt.Fprintf(a.stdout, "wrote %s\n", path)
		}
	}
	return nil
}
