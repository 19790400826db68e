// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name searched for (planar.yaml).
	ConfigFileName = "planar"

	// EnvPrefix prefixes environment overrides, e.g. PLANAR_MINIMIZER_MAX_ITERS.
	EnvPrefix = "PLANAR"
)

// Loader resolves a Config through a viper instance.
type Loader struct {
	v *viper.Viper
}

// NewLoader uses a private viper instance.
func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

// NewLoaderWith uses v, typically the one command-line flags are bound to.
func NewLoaderWith(v *viper.Viper) *Loader {
	if v == nil {
		v = viper.New()
	}

	return &Loader{v: v}
}

// Viper returns the underlying instance.
func (l *Loader) Viper() *viper.Viper { return l.v }

// Load searches the standard paths for planar.yaml. A missing file is not an error.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	for _, p := range SearchPaths() {
		l.v.AddConfigPath(p)
	}
	l.prepare()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading file: %w", err)
		}
	}

	return l.decode()
}

// LoadFile reads the given file; an empty path falls back to Load.
func (l *Loader) LoadFile(path string) (*Config, error) {
	if path == "" {
		return l.Load()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	l.v.SetConfigFile(path)
	l.prepare()
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	return l.decode()
}

// ConfigFileUsed returns the file that was read, if any.
func (l *Loader) ConfigFileUsed() string { return l.v.ConfigFileUsed() }

func (l *Loader) prepare() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	l.v.AutomaticEnv()
	setDefaults(l.v)
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("verbose", d.Verbose)

	v.SetDefault("solver.normalize", d.Solver.Normalize)
	v.SetDefault("solver.ratio_extremes", d.Solver.RatioExtremes)
	v.SetDefault("solver.ratio2_min", d.Solver.Ratio2Min)
	v.SetDefault("solver.svd_backend", d.Solver.SVDBackend)
	v.SetDefault("solver.epsilon", d.Solver.Epsilon)
	v.SetDefault("solver.max_sweeps", d.Solver.MaxSweeps)

	v.SetDefault("minimizer.target_rmse", d.Minimizer.TargetRMSE)
	v.SetDefault("minimizer.max_iters", d.Minimizer.MaxIters)
	v.SetDefault("minimizer.relative_tol", d.Minimizer.RelativeTol)
	v.SetDefault("minimizer.lambda_init", d.Minimizer.LambdaInit)
	v.SetDefault("minimizer.lambda_factor", d.Minimizer.LambdaFactor)
	v.SetDefault("minimizer.kernel_epsilon", d.Minimizer.KernelEpsilon)

	v.SetDefault("refine.jacobian", d.Refine.Jacobian)
	v.SetDefault("refine.difference_step", d.Refine.DifferenceStep)
	v.SetDefault("refine.accept_rmse", d.Refine.AcceptRMSE)

	v.SetDefault("batch.workers", d.Batch.Workers)
	v.SetDefault("batch.continue_on_error", d.Batch.ContinueOnError)
	v.SetDefault("batch.metrics_out", d.Batch.MetricsOut)

	v.SetDefault("output.format", d.Output.Format)
}

// SearchPaths lists the directories searched for planar.yaml, in order.
func SearchPaths() []string {
	paths := []string{"."}
	if dir, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		paths = append(paths, filepath.Join(dir, "planar"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "planar"))
	}

	return append(paths, "/etc/planar")
}
