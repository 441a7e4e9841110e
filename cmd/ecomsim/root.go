package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ecomsim/internal/config"
	"ecomsim/internal/observability"
)

const version = "1.0.0"

// app carries state shared by every subcommand: the loaded configuration,
// the logger and the flag overrides registered per command.
type app struct {
	out        io.Writer
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
	overrides  map[*cobra.Command][]func(cmd *cobra.Command, c *config.Config)
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{
		out:       out,
		overrides: make(map[*cobra.Command][]func(*cobra.Command, *config.Config)),
	}

	root := &cobra.Command{
		Use:   "ecomsim",
		Short: "Synthetic e-commerce data generator, merger and reporter",
		Long: `ecomsim produces a reproducible synthetic e-commerce dataset and analyses it:

  generate  write customers, products, orders, sessions and ad spend CSVs
  etl       deduplicate the raw tables and build master_dataset.csv
  report    aggregate the master dataset into CSV, text and PNG artifacts
  run       generate, etl and report in one go
  serve     browse the aggregates in a live dashboard`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	defaults := config.Default()
	a.persistentStringFlag(root, "log-level", defaults.Logger.Level, "log level (debug, info, warn, error)",
		func(c *config.Config, v string) { c.Logger.Level = v })
	a.persistentStringFlag(root, "log-format", defaults.Logger.Format, "log format (text, json)",
		func(c *config.Config, v string) { c.Logger.Format = v })

	root.AddCommand(
		a.generateCmd(),
		a.etlCmd(),
		a.reportCmd(),
		a.runCmd(),
		a.serveCmd(),
	)
	return root
}

// setup loads the configuration, applies the flags the user set on the
// executing command and its parents, and installs the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	for c := cmd; c != nil; c = c.Parent() {
		for _, apply := range a.overrides[c] {
			apply(cmd, cfg)
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.cfg = cfg
	a.logger = observability.NewLogger(cfg.Logger)
	slog.SetDefault(a.logger)

	runID := uuid.NewString()
	cmd.SetContext(observability.WithRunID(cmd.Context(), runID))
	a.logger.Debug("configuration loaded", "command", cmd.Name(), "config_file", a.configPath, "run_id", runID)
	return nil
}

// bind records apply to run when flag name was set explicitly. Persistent
// flags are looked up on the executing command so they work from any
// subcommand.
func (a *app) bind(owner *cobra.Command, name string, apply func(c *config.Config)) {
	a.overrides[owner] = append(a.overrides[owner], func(cmd *cobra.Command, c *config.Config) {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			apply(c)
		}
	})
}

func (a *app) stringFlag(cmd *cobra.Command, name, value, usage string, set func(*config.Config, string)) {
	p := cmd.Flags().String(name, value, usage)
	a.bind(cmd, name, func(c *config.Config) { set(c, *p) })
}

func (a *app) persistentStringFlag(cmd *cobra.Command, name, value, usage string, set func(*config.Config, string)) {
	p := cmd.PersistentFlags().String(name, value, usage)
	a.bind(cmd, name, func(c *config.Config) { set(c, *p) })
}

func (a *app) intFlag(cmd *cobra.Command, name string, value int, usage string, set func(*config.Config, int)) {
	p := cmd.Flags().Int(name, value, usage)
	a.bind(cmd, name, func(c *config.Config) { set(c, *p) })
}

func (a *app) int64Flag(cmd *cobra.Command, name string, value int64, usage string, set func(*config.Config, int64)) {
	p := cmd.Flags().Int64(name, value, usage)
	a.bind(cmd, name, func(c *config.Config) { set(c, *p) })
}

func (a *app) generatorFlags(cmd *cobra.Command) {
	d := config.Default().Generator
	a.int64Flag(cmd, "seed", d.Seed, "random seed", func(c *config.Config, v int64) { c.Generator.Seed = v })
	a.intFlag(cmd, "customers", d.Customers, "customer rows", func(c *config.Config, v int) { c.Generator.Customers = v })
	a.intFlag(cmd, "products", d.Products, "product rows", func(c *config.Config, v int) { c.Generator.Products = v })
	a.intFlag(cmd, "orders", d.Orders, "order rows", func(c *config.Config, v int) { c.Generator.Orders = v })
	a.intFlag(cmd, "sessions", d.Sessions, "session rows", func(c *config.Config, v int) { c.Generator.Sessions = v })
	a.stringFlag(cmd, "start", d.Start, "first day of the simulation window (YYYY-MM-DD)",
		func(c *config.Config, v string) { c.Generator.Start = v })
	a.stringFlag(cmd, "end", d.End, "last day of the simulation window (YYYY-MM-DD)",
		func(c *config.Config, v string) { c.Generator.End = v })
}

func (a *app) rawDirFlag(cmd *cobra.Command) {
	a.stringFlag(cmd, "raw-dir", config.Default().Data.RawDir, "directory holding the raw generator tables",
		func(c *config.Config, v string) { c.Data.RawDir = v })
}

func (a *app) masterFlag(cmd *cobra.Command) {
	a.stringFlag(cmd, "master", config.Default().Data.MasterPath, "master dataset path",
		func(c *config.Config, v string) { c.Data.MasterPath = v })
}

func (a *app) etlFlags(cmd *cobra.Command) {
	d := config.Default().Data
	a.rawDirFlag(cmd)
	a.stringFlag(cmd, "clean-dir", d.CleanDir, "directory for the deduplicated tables",
		func(c *config.Config, v string) { c.Data.CleanDir = v })
	a.masterFlag(cmd)
	a.stringFlag(cmd, "sqlite", d.SQLitePath, "mirror the cleaned tables into this SQLite file",
		func(c *config.Config, v string) { c.Data.SQLitePath = v })
}

func (a *app) reportFlags(cmd *cobra.Command) {
	d := config.Default().Report
	a.stringFlag(cmd, "out", d.OutputDir, "report output directory",
		func(c *config.Config, v string) { c.Report.OutputDir = v })
	a.intFlag(cmd, "top-n", d.TopN, "customers listed in the top customers table",
		func(c *config.Config, v int) { c.Report.TopN = v })
	a.stringFlag(cmd, "cache-dir", d.CacheDir, "aggregate cache directory, empty to disable",
		func(c *config.Config, v string) { c.Report.CacheDir = v })
}
