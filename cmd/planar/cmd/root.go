// SPDX-License-Identifier: MIT

// Package cmd holds planar's cobra command tree.
package cmd

import (
	"fmt"

	"github.com/katalvlaran/planar/config"
	"github.com/katalvlaran/planar/homography"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app is the state shared by one command tree.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	log     *zap.SugaredLogger
}

// NewRootCommand builds a fresh command tree with its own viper instance.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New(), log: zap.NewNop().Sugar()}

	root := &cobra.Command{
		Use:   "planar",
		Short: "Planar homography estimation and refinement",
		Long: `planar estimates 3×3 homographies between planes.

Correspondence jobs are solved with the normalized Direct Linear Transform.
Target jobs (ellipses with known reference positions) are solved with the DLT
and, when its error is above the accept threshold, refined by Levenberg–Marquardt.

Examples:
  planar solve -i corners.yaml
  planar refine -i targets.json --format yaml
  planar batch -i jobs/ --workers 8 --metrics-out planar.prom`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is planar.yaml in ., $XDG_CONFIG_HOME/planar, /etc/planar)")
	pf.BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("format", config.FormatText, "output format (text, yaml, json)")
	_ = a.v.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = a.v.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = a.v.BindPFlag("output.format", pf.Lookup("format"))

	root.AddCommand(
		newSolveCommand(a),
		newRefineCommand(a),
		newBatchCommand(a),
		newVersionCommand(),
	)

	return root
}

// init loads the configuration and builds the logger.
func (a *app) init() error {
	cfg, err := config.NewLoaderWith(a.v).LoadFile(a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.Level = zap.NewAtomicLevelAt(cfg.Level())
	zc.OutputPaths = []string{"stderr"}
	logger, err := zc.Build()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	a.log = logger.Sugar().Named("planar")
	a.log.Debugw("configuration loaded", "file", a.v.ConfigFileUsed(), "backend", cfg.Solver.SVDBackend,
		"jacobian", cfg.Refine.Jacobian)

	return nil
}

// solverOptions is the configured estimator option set with the command logger.
func (a *app) solverOptions() []homography.Option {
	return append(a.cfg.SolverOptions(), homography.WithLogger(a.log))
}
