package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jenz26/Chef-Generator/internal/infrastructure/config"
	"github.com/jenz26/Chef-Generator/internal/infrastructure/dataset"
	"github.com/jenz26/Chef-Generator/pkg/logger"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

// CLI holds the flags shared by every subcommand
type CLI struct {
	configPath    string
	dataDir       string
	templatesPath string
	noFallback    bool
	noColor       bool
	verbose       bool
}

// NewRootCommand creates the root cobra command
func NewRootCommand() *cobra.Command {
	cli := &CLI{}

	root := &cobra.Command{
		Use:           "planner",
		Short:         "Offline recipe and menu planning tool",
		Long:          "Generate, price, rate and fit recipe variants against a customer segment using a local dataset.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cli.noColor {
				color.NoColor = true
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&cli.configPath, "config", "c", "", "config file (defaults to ./config.yaml when present)")
	flags.StringVarP(&cli.dataDir, "data-dir", "d", "", "directory holding customer_types.json, ingredients_data.json and matches_data.json")
	flags.StringVar(&cli.templatesPath, "templates", "", "YAML template catalog replacing the built-in one")
	flags.BoolVar(&cli.noFallback, "no-demo-fallback", false, "fail instead of falling back to the embedded demo data")
	flags.BoolVar(&cli.noColor, "no-color", false, "disable colored output")
	flags.BoolVarP(&cli.verbose, "verbose", "v", false, "log loader activity to stderr")

	root.AddCommand(
		newProposeCommand(cli),
		newValidateCommand(cli),
		newTemplatesCommand(cli),
	)
	return root
}

// loadConfig reads the config file and applies the dataset flags on top
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.dataDir != "" {
		cfg.Data.Dir = c.dataDir
	}
	if c.templatesPath != "" {
		cfg.Data.TemplatesPath = c.templatesPath
	}
	if c.noFallback {
		cfg.Data.FallbackToDemo = false
	}
	return cfg, nil
}

func (c *CLI) logger() (*zap.Logger, error) {
	if !c.verbose {
		return zap.NewNop(), nil
	}
	return logger.New(logger.Config{Level: "debug", Format: "console", OutputPaths: []string{"stderr"}})
}

// loadStore builds a dataset store for one command run
func (c *CLI) loadStore(cfg *config.Config, log *zap.Logger) (*dataset.Store, error) {
	loader := dataset.NewLoader(dataset.Options{
		Dir:            cfg.Data.Dir,
		TemplatesPath:  cfg.Data.TemplatesPath,
		FallbackToDemo: cfg.Data.FallbackToDemo,
	}, log)
	store, err := dataset.NewStore(loader, log)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return store, nil
}

func stars(n int) string {
	const full, empty = "★", "☆"
	out := ""
	for i := 1; i <= 5; i++ {
		if i <= n {
			out += full
		} else {
			out += empty
		}
	}
	switch {
	case n >= 4:
		return green(out)
	case n >= 3:
		return yellow(out)
	default:
		return red(out)
	}
}
