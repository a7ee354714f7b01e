package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the spatial reference of every basin's boundary and rasters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			c, err := root.load()
			if err != nil {
				return
			}
			e, err := newEstimator(c)
			if err != nil {
				return
			}
			out := cmd.OutOrStdout()
			failed := 0
			for _, b := range c.Basins {
				if cErr := e.CheckBasin(b); cErr != nil {
					failed++
					fmt.Fprintf(out, "FAIL %s\n", cErr)
					continue
				}
				fmt.Fprintf(out, "OK   %s (%s)\n", b, e.Settings().ExpectedCRS)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d basins failed crs check", failed, len(c.Basins))
			}
			return
		},
	}
}
