package main

import (
	"github.com/wgdzlh/wetarea"
	"github.com/wgdzlh/wetarea/config"
	"github.com/wgdzlh/wetarea/estimate"
	"github.com/wgdzlh/wetarea/log"
	"github.com/wgdzlh/wetarea/report"
	"github.com/wgdzlh/wetarea/utils"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	basins     []string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "wetarea",
		Short:         "Wetland area estimates per basin from classified prediction rasters",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return log.Init(opts.debug)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Sync()
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file (defaults are used when empty)")
	cmd.PersistentFlags().StringSliceVarP(&opts.basins, "basin", "b", nil, "process only these basins (repeatable)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "development logging")

	cmd.AddCommand(newRunCmd(opts), newCheckCmd(opts), newHistoryCmd(opts))
	return cmd
}

// 读取配置并应用命令行覆盖
func (o *rootOptions) load() (c config.Config, err error) {
	if o.configPath == "" {
		c = config.Default()
	} else if c, err = config.Load(o.configPath); err != nil {
		return
	}
	if len(o.basins) > 0 {
		c.Basins = o.basins
	}
	err = c.Validate()
	return
}

func newEstimator(c config.Config, opts ...estimate.Option) (*estimate.Estimator, error) {
	g := wetarea.NewGdalToolbox(c.ExpectedCRS)
	boundaries := estimate.ExtBoundaryLoader{
		utils.FILE_EXT_SHP:     g,
		utils.FILE_EXT_GEOJSON: estimate.GeoJSONLoader{},
		utils.FILE_EXT_JSON:    estimate.GeoJSONLoader{},
	}
	return estimate.NewEstimator(c.Settings(), c.Layout(), g, boundaries, report.NewXLSXWriter(), opts...)
}
