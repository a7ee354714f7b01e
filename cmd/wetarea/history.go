package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/wgdzlh/wetarea/estimate"
	"github.com/wgdzlh/wetarea/store"

	"github.com/spf13/cobra"
)

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var archive string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the latest archived report of a basin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if archive == "" || len(root.basins) != 1 {
				return errors.New("--archive and exactly one --basin are required")
			}
			basin := root.basins[0]
			s, err := store.Open(archive)
			if err != nil {
				return
			}
			defer s.Close()
			runID, r, err := s.LatestReport(cmd.Context(), basin)
			if err != nil {
				return fmt.Errorf("latest report of %s: %w", basin, err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "basin %s, run %s\n", basin, runID)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for i, c := range estimate.ReportColumns {
				if i > 0 {
					fmt.Fprint(tw, "\t")
				}
				fmt.Fprint(tw, c)
			}
			fmt.Fprintln(tw)
			for _, rec := range r.Records {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", rec.Model, rec.Class, rec.PixelCount, rec.AreaKm2)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&archive, "archive", "", "SQLite archive written by run")
	return cmd
}
