package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"storefront/cmd/internal/app"
	"storefront/cmd/internal/pages"
	"storefront/cmd/internal/placeholder"
)

func newRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the page route table and each page's loading skeleton",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			layouts, err := placeholder.LoadLayoutsFile(app.LoadConfig().LayoutsFile)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PATTERN\tPAGE\tTITLE\tADMIN\tSKELETON")
			for _, r := range pages.DefaultRoutes() {
				layout, ok := layouts.Get(r.Name)
				if !ok {
					return fmt.Errorf("page %q has no layout", r.Name)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", r.Pattern, r.Name, r.Title, r.Admin, skeletonSummary(layout))
			}
			return tw.Flush()
		},
	}
}

func skeletonSummary(l placeholder.Layout) string {
	parts := make([]string, 0, len(l.Specs))
	for _, s := range l.Specs {
		parts = append(parts, fmt.Sprintf("%s x%d", s.Kind(), s.Count()))
	}
	return strings.Join(parts, ", ")
}
