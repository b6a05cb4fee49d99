package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jenz26/Chef-Generator/internal/application/planner"
	"github.com/jenz26/Chef-Generator/internal/infrastructure/persistence/memory"
)

func newTemplatesCommand(cli *CLI) *cobra.Command {
	var category string
	var maxPoints int

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the recipe template catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.runTemplates(cmd.Context(), cmd.OutOrStdout(), category, maxPoints)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list templates of this category")
	cmd.Flags().IntVar(&maxPoints, "max-points", -1, "only list templates unlockable with at most this many points")
	return cmd
}

func (c *CLI) runTemplates(ctx context.Context, out io.Writer, category string, maxPoints int) error {
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

	service := planner.NewService(memory.NewSessionRepository(0, 0, log), nil, store, nil, planner.DefaultOptions(), log)
	templates, err := service.ListTemplates(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tPOINTS\tRULE\tSECTIONS")
	shown := 0
	for _, tpl := range templates {
		if category != "" && !strings.EqualFold(tpl.Category, category) {
			continue
		}
		if maxPoints >= 0 && tpl.UnlockPoints > maxPoints {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			tpl.Name, tpl.Category, tpl.UnlockPoints, tpl.Rule, strings.Join(tpl.Sections, ", "))
		shown++
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d of %d templates\n", shown, len(templates))
	return nil
}
