package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jenz26/Chef-Generator/internal/infrastructure/dataset"
)

func newValidateCommand(cli *CLI) *cobra.Command {
	var asJSON, strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load a dataset and report its contents and warnings",
		Long: `Load the dataset from --data-dir (or the embedded demo data), normalise it and
print what was loaded. Structural problems fail the command; recoverable problems
are listed as warnings. With --strict any warning fails the command as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.runValidate(cmd.OutOrStdout(), asJSON, strict)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the load report as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	return cmd
}

func (c *CLI) runValidate(out io.Writer, asJSON, strict bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	log, err := c.logger()
	if err != nil {
		return err
	}

	loader := dataset.NewLoader(dataset.Options{
		Dir:            cfg.Data.Dir,
		TemplatesPath:  cfg.Data.TemplatesPath,
		FallbackToDemo: cfg.Data.FallbackToDemo,
	}, log)
	_, report, err := loader.Load()
	if err != nil {
		fmt.Fprintf(out, "%s %v\n", red("invalid dataset:"), err)
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printReport(out, report)
	}

	if strict && len(report.Warnings) > 0 {
		return fmt.Errorf("%d warning(s) in strict mode", len(report.Warnings))
	}
	return nil
}

func printReport(out io.Writer, report dataset.Report) {
	fmt.Fprintf(out, "%s %s\n", bold("source:"), report.Source)
	fmt.Fprintf(out, "%s %s\n", bold("fingerprint:"), report.Fingerprint)
	fmt.Fprintf(out, "ingredients %d, segments %d, templates %d, compatibility edges %d\n",
		report.Ingredients, report.Segments, report.Templates, report.Edges)

	if len(report.Warnings) == 0 {
		fmt.Fprintln(out, green("no warnings"))
		return
	}
	fmt.Fprintf(out, "%s\n", yellow(fmt.Sprintf("%d warning(s):", len(report.Warnings))))
	for _, w := range report.Warnings {
		fmt.Fprintf(out, "  - %s\n", w)
	}
}
