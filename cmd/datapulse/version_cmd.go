package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"datapulse/internal/config"
)

// buildTime is stamped by the build script through -ldflags
var buildTime string

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the datapulse version",
		Args:  cobra.NoArgs,
		// version needs no configuration or telemetry
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.checkOutput(); err != nil {
				return err
			}
			if a.output == "json" {
				return printJSON(a.stdout, map[string]string{
					"name":       config.AppName,
					"version":    config.AppVersion,
					"build_time": buildTime,
				})
			}
			if buildTime != "" {
				_, err := fmt.Fprintf(a.stdout, "%s version %s (built %s)\n", config.AppName, config.AppVersion, buildTime)
				return err
			}
			_, err := fmt.Fprintf(a.stdout, "%s version %s\n", config.AppName, config.AppVersion)
			return err
		},
	}
}
