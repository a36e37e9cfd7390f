package main

import (
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/modhost/internal/advisory"
	"github.com/GriffinCanCode/modhost/internal/infrastructure/config"
)

func newExecCmd(cfg *config.Config) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "exec [flags] -- ARGS...",
		Short: "Run the module with the given arguments",
		Long: `Runs the module once with ARGS after argv[0] and prints what it wrote
to stdout and stderr, in write order.`,
		Example: `  modrun exec -- fortinet affected --product FortiOS --version 7.2.4
  modrun exec --format html --module ./web/main.wasm -- fortinet affected --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModule(cmd.Context(), cfg, args, format, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatAuto, "Output format: auto, raw, html or text")
	return cmd
}

func newQueryCmd(cfg *config.Config) *cobra.Command {
	var (
		q       advisory.Query
		format  string
		presets string
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run an advisory search built from form-style flags",
		Example: `  modrun query --product FortiOS --version 7.2.4 --severity critical
  modrun query --product FortiGate --version 7.0.1 --min-cvss 7.5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := q.Validate(); err != nil {
				return err
			}
			p := advisory.DefaultPresets()
			if presets != "" {
				var err error
				if p, err = advisory.LoadPresets(presets); err != nil {
					return err
				}
			}
			args := q.WithPresetBounds(p).Args(p)
			return runModule(cmd.Context(), cfg, args, format, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&q.Product, "product", "", "Product name")
	flags.StringVar(&q.Version, "version", "", "Product version")
	flags.StringVar(&q.Severity, "severity", "", "Severity preset (critical, high, medium, low)")
	flags.StringVar(&q.MinCVSS, "min-cvss", "", "Minimum CVSS score")
	flags.StringVar(&q.MaxCVSS, "max-cvss", "", "Maximum CVSS score")
	flags.BoolVar(&q.JSON, "json", false, "Ask the module for JSON output")
	flags.BoolVar(&q.NoBorder, "no-border", false, "Ask the module to drop table borders")
	flags.StringVar(&presets, "presets", cfg.Advisory.PresetsFile, "Severity presets YAML file")
	flags.StringVarP(&format, "format", "f", formatAuto, "Output format: auto, raw, html or text")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("version")
	return cmd
}
