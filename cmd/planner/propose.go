package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jenz26/Chef-Generator/internal/application/planner"
	"github.com/jenz26/Chef-Generator/internal/infrastructure/persistence/memory"
	"github.com/jenz26/Chef-Generator/internal/ports/inbound"
)

type proposeOptions struct {
	segment  string
	section  string
	template string
	anchor   string
	asJSON   bool
}

func newProposeCommand(cli *CLI) *cobra.Command {
	opts := &proposeOptions{}

	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Propose priced, rated and fitted variants of a template around an anchor",
		Example: `  planner propose --segment Gourmet --section MainCourse --template "Grilled Fish" --anchor Salmon
  planner propose -d ./data -s Family --section Dessert -t Pie -a Strawberry --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.runPropose(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.segment, "segment", "s", "", "customer segment")
	f.StringVar(&opts.section, "section", "", "menu section, e.g. MainCourse")
	f.StringVarP(&opts.template, "template", "t", "", "recipe template")
	f.StringVarP(&opts.anchor, "anchor", "a", "", "anchor (hero) ingredient")
	f.BoolVar(&opts.asJSON, "json", false, "print the proposal batch as JSON")
	for _, name := range []string{"segment", "section", "template", "anchor"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (c *CLI) runPropose(ctx context.Context, out io.Writer, opts *proposeOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	log, err := c.logger()
	if err != nil {
		return err
	}
	store, err := c.loadStore(cfg, log)
	if err != nil {
		return err
	}

	service := planner.NewService(
		memory.NewSessionRepository(time.Hour, 1, log),
		nil,
		store,
		nil,
		planner.Options{Tuning: cfg.Tuning(), Analytics: cfg.Analytics()},
		log,
	)

	sess, err := service.CreateSession(ctx, inbound.CreateSessionCommand{Segment: opts.segment})
	if err != nil {
		return err
	}
	batch, err := service.ProposeVariants(ctx, inbound.ProposeCommand{
		SessionID: sess.ID,
		Section:   opts.section,
		Template:  opts.template,
		Anchor:    opts.anchor,
	})
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(batch)
	}
	printBatch(out, opts, batch)
	return nil
}

func printBatch(out io.Writer, opts *proposeOptions, batch *inbound.ProposalBatch) {
	fmt.Fprintf(out, "%s %s with %s for %s (%s, target %.2f)\n\n",
		bold("Proposals:"), opts.template, opts.anchor, opts.segment, opts.section, batch.TargetCost)

	for _, v := range batch.Variants {
		fmt.Fprintf(out, "%s  %s  fit %.1f  cost %.2f  price %.2f  points %d\n",
			bold(fmt.Sprintf("%-8s", v.Style)),
			stars(v.Rating.Stars),
			v.Fit.Total,
			v.Pricing.TotalCost,
			v.Pricing.SuggestedPrice,
			v.Pricing.PointsCost,
		)
		parts := make([]string, 0, len(v.Components))
		for _, comp := range v.Components {
			parts = append(parts, fmt.Sprintf("%s [%s, %s]", comp.Ingredient, comp.Role, comp.Tier))
		}
		fmt.Fprintf(out, "          %s\n", strings.Join(parts, ", "))
		if len(v.Rating.Perks) > 0 {
			fmt.Fprintf(out, "          perks: %s\n", green(strings.Join(v.Rating.Perks, ", ")))
		}
		for _, w := range v.Warnings {
			fmt.Fprintf(out, "          %s %s\n", yellow("warning:"), w)
		}
		if v.Notes != "" {
			fmt.Fprintf(out, "          %s\n", gray(v.Notes))
		}
		fmt.Fprintln(out)
	}
}
