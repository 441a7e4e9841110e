package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ecomsim/internal/etl"
	"ecomsim/internal/generator"
	"ecomsim/internal/report"
)

func (a *app) generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the raw synthetic tables",
		Long: `Generate writes customers.csv, products.csv, orders.csv, sessions.csv and
ad_spend_monthly.csv into the raw data directory. The same seed always yields the
same files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runGenerate(cmd)
		},
	}
	a.generatorFlags(cmd)
	a.rawDirFlag(cmd)
	return cmd
}

func (a *app) etlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "etl",
		Short: "Deduplicate the raw tables and build the master dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runETL(cmd)
		},
	}
	a.etlFlags(cmd)
	return cmd
}

func (a *app) reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the analytics tables and charts for the master dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runReport(cmd)
		},
	}
	a.masterFlag(cmd)
	a.reportFlags(cmd)
	return cmd
}

func (a *app) runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate, merge and report in a single invocation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.runGenerate(cmd); err != nil {
				return err
			}
			if err := a.runETL(cmd); err != nil {
				return err
			}
			return a.runReport(cmd)
		},
	}
	a.generatorFlags(cmd)
	a.etlFlags(cmd)
	a.reportFlags(cmd)
	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command) error {
	gcfg, err := generator.ConfigFrom(a.cfg.Generator)
	if err != nil {
		return err
	}
	summary, err := generator.Run(cmd.Context(), gcfg, a.cfg.Data.RawDir, a.logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "generated %d customers, %d products, %d orders, %d sessions, %d ad spend rows in %s\n",
		summary.Customers, summary.Products, summary.Orders, summary.Sessions, summary.AdSpend, summary.Dir)
	return nil
}

func (a *app) runETL(cmd *cobra.Command) error {
	summary, err := etl.Run(cmd.Context(), etl.ConfigFrom(a.cfg.Data), a.logger)
	if err != nil {
		return err
	}
	for _, t := range summary.Tables {
		fmt.Fprintf(a.out, "%-10s %8d loaded %8d after dedup\n", t.Name, t.Loaded, t.Cleaned)
	}
	fmt.Fprintf(a.out, "master dataset: %d rows in %s\n", summary.MasterRows, summary.MasterPath)
	return nil
}

func (a *app) runReport(cmd *cobra.Command) error {
	summary, err := report.Run(cmd.Context(), report.ConfigFrom(a.cfg), a.logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s\n", report.FormatAverageOrderValue(summary.AverageOrderValue))
	fmt.Fprintf(a.out, "report: %d files in %s\n", len(summary.Files), summary.Dir)
	return nil
}
