package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/wgdzlh/wetarea/estimate"
	"github.com/wgdzlh/wetarea/store"

	"github.com/spf13/cobra"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	var (
		workers int
		archive string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Mask rasters to basin boundaries and write one area report per basin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			c, err := root.load()
			if err != nil {
				return
			}
			if workers > 0 {
				c.Workers = workers
			}
			if archive != "" {
				c.Archive = archive
			}
			var opts []estimate.Option
			if c.Archive != "" {
				var s *store.Store
				if s, err = store.Open(c.Archive); err != nil {
					return
				}
				defer s.Close()
				opts = append(opts, estimate.WithArchive(s))
			}
			e, err := newEstimator(c, opts...)
			if err != nil {
				return
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			sum := e.Run(ctx, c.Basins)
			printSummary(cmd, sum)
			if failed := sum.Failed(); len(failed) > 0 {
				return fmt.Errorf("%d of %d basins failed", len(failed), len(sum.Results))
			}
			return
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "basins processed in parallel (overrides config)")
	cmd.Flags().StringVar(&archive, "archive", "", "SQLite file archiving every report (overrides config)")
	return cmd
}

func printSummary(cmd *cobra.Command, sum estimate.RunSummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s\n", sum.RunID)
	for _, r := range sum.Results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(out, "  FAIL %s\n", r.Err)
		case r.ReportPath == "":
			fmt.Fprintf(out, "  SKIP %s: no data processed\n", r.Basin)
		default:
			fmt.Fprintf(out, "  OK   %s: %d rows, %d pixels -> %s\n", r.Basin, r.Rows, r.Pixels, r.ReportPath)
		}
	}
}
