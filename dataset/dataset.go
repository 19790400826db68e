// SPDX-License-Identifier: MIT

// Package dataset reads and writes planar job files.
//
// A job is YAML (.yaml, .yml) or JSON (.json) and holds either point
// correspondences or calibration targets:
//
//	name: bench-01
//	kind: targets
//	targets:
//	  - reference: [0, 0]
//	    ellipse: {center: [5.1, 3.2], semi_major: 0.6, semi_minor: 0.5, angle: 0.1}
//	  - reference: [1, 0]
//	    conic: [1, 0, 1, -2, 0, 0.75]   # a b c d e f
//
// Points are [x, y] or homogeneous [x, y, w].
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/katalvlaran/planar/homography"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Kind tells which estimator a job feeds.
type Kind string

const (
	KindCorrespondences Kind = "correspondences"
	KindTargets         Kind = "targets"
)

// Format is a file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

var (
	// ErrUnknownFormat is returned for unsupported file extensions.
	ErrUnknownFormat = errors.New("dataset: unknown format")
	// ErrInvalidJob wraps every validation failure.
	ErrInvalidJob = errors.New("dataset: invalid job")
)

// Job is one estimation problem.
type Job struct {
	Name            string               `yaml:"name,omitempty" json:"name,omitempty"`
	Kind            Kind                 `yaml:"kind,omitempty" json:"kind,omitempty"`
	Correspondences []CorrespondenceSpec `yaml:"correspondences,omitempty" json:"correspondences,omitempty"`
	Targets         []TargetSpec         `yaml:"targets,omitempty" json:"targets,omitempty"`
}

// CorrespondenceSpec is a source/target pair.
type CorrespondenceSpec struct {
	Source []float64 `yaml:"source,flow" json:"source"`
	Target []float64 `yaml:"target,flow" json:"target"`
}

// TargetSpec is a calibration target given either as an ellipse or as conic coefficients.
type TargetSpec struct {
	Reference []float64    `yaml:"reference,flow" json:"reference"`
	Ellipse   *EllipseSpec `yaml:"ellipse,omitempty" json:"ellipse,omitempty"`
	Conic     []float64    `yaml:"conic,omitempty,flow" json:"conic,omitempty"`
}

// EllipseSpec is the geometric form of an image ellipse.
type EllipseSpec struct {
	Center    []float64 `yaml:"center,flow" json:"center"`
	SemiMajor float64   `yaml:"semi_major" json:"semi_major"`
	SemiMinor float64   `yaml:"semi_minor" json:"semi_minor"`
	Angle     float64   `yaml:"angle" json:"angle"`
}

// FormatOf maps a file extension to a Format.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Load reads and validates a job file. An empty name defaults to the file's base name.
func Load(path string) (*Job, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	job, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", path, err)
	}
	if job.Name == "" {
		job.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return job, nil
}

// Decode parses a job, rejecting unknown fields, and validates it.
func Decode(r io.Reader, format Format) (*Job, error) {
	var job Job
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&job); err != nil {
			return nil, err
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&job); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if job.Kind == "" {
		job.Kind = job.inferKind()
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}

	return &job, nil
}

// Save writes job to path in the format its extension names.
func Save(path string, job *Job) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dataset: %w", err)
	}
	err = Encode(f, format, job)

	return multierr.Append(err, f.Close())
}

// Encode writes any value as YAML or indented JSON.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return multierr.Append(enc.Encode(v), enc.Close())
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Glob lists the job files directly inside dir, sorted by name.
func Glob(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := FormatOf(e.Name()); err == nil {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)

	return out, nil
}

func (j *Job) inferKind() Kind {
	switch {
	case len(j.Targets) > 0 && len(j.Correspondences) == 0:
		return KindTargets
	case len(j.Correspondences) > 0 && len(j.Targets) == 0:
		return KindCorrespondences
	default:
		return ""
	}
}

// Validate reports every malformed entry at once.
func (j *Job) Validate() error {
	var errs error
	add := func(format string, args ...any) {
		errs = multierr.Append(errs, fmt.Errorf(format, args...))
	}
	switch j.Kind {
	case KindCorrespondences:
		if len(j.Targets) > 0 {
			add("correspondences job carries %d targets", len(j.Targets))
		}
		if len(j.Correspondences) < homography.MinCorrespondences {
			add("need at least %d correspondences, got %d", homography.MinCorrespondences, len(j.Correspondences))
		}
		for i, c := range j.Correspondences {
			if !validPoint(c.Source) {
				add("correspondences[%d].source: want 2 or 3 coordinates, got %d", i, len(c.Source))
			}
			if !validPoint(c.Target) {
				add("correspondences[%d].target: want 2 or 3 coordinates, got %d", i, len(c.Target))
			}
		}
	case KindTargets:
		if len(j.Correspondences) > 0 {
			add("targets job carries %d correspondences", len(j.Correspondences))
		}
		if len(j.Targets) < homography.MinCorrespondences {
			add("need at least %d targets, got %d", homography.MinCorrespondences, len(j.Targets))
		}
		for i, t := range j.Targets {
			if len(t.Reference) != 2 {
				add("targets[%d].reference: want 2 coordinates, got %d", i, len(t.Reference))
			}
			switch {
			case t.Ellipse != nil && t.Conic != nil:
				add("targets[%d]: both ellipse and conic given", i)
			case t.Ellipse != nil:
				if len(t.Ellipse.Center) != 2 {
					add("targets[%d].ellipse.center: want 2 coordinates, got %d", i, len(t.Ellipse.Center))
				}
				if t.Ellipse.SemiMajor <= 0 || t.Ellipse.SemiMinor <= 0 {
					add("targets[%d].ellipse: semi-axes must be > 0", i)
				}
			case len(t.Conic) != 6:
				add("targets[%d].conic: want 6 coefficients, got %d", i, len(t.Conic))
			}
		}
	default:
		add("unknown kind %q", j.Kind)
	}
	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalidJob, errs)
	}

	return nil
}

func validPoint(p []float64) bool { return len(p) == 2 || len(p) == 3 }

func vec(p []float64) r3.Vector {
	if len(p) == 3 {
		return r3.Vector{X: p[0], Y: p[1], Z: p[2]}
	}

	return r3.Vector{X: p[0], Y: p[1], Z: 1}
}

// BuildCorrespondences converts a validated correspondences job.
func (j *Job) BuildCorrespondences() ([]homography.Correspondence, error) {
	if j.Kind != KindCorrespondences {
		return nil, fmt.Errorf("%w: kind %q has no correspondences", ErrInvalidJob, j.Kind)
	}
	out := make([]homography.Correspondence, len(j.Correspondences))
	for i, c := range j.Correspondences {
		out[i] = homography.Correspondence{Source: vec(c.Source), Target: vec(c.Target)}
	}

	return out, nil
}

// BuildTargets converts a validated targets job.
func (j *Job) BuildTargets() ([]homography.Target, error) {
	if j.Kind != KindTargets {
		return nil, fmt.Errorf("%w: kind %q has no targets", ErrInvalidJob, j.Kind)
	}
	out := make([]homography.Target, len(j.Targets))
	for i, t := range j.Targets {
		var c homography.Conic
		if t.Ellipse != nil {
			e := t.Ellipse
			var err error
			c, err = homography.NewEllipse(r2.Point{X: e.Center[0], Y: e.Center[1]}, e.SemiMajor, e.SemiMinor, e.Angle)
			if err != nil {
				return nil, fmt.Errorf("targets[%d]: %w", i, err)
			}
		} else {
			k := t.Conic
			c = homography.NewConicCoefficients(k[0], k[1], k[2], k[3], k[4], k[5])
		}
		out[i] = homography.Target{Conic: c, Reference: r2.Point{X: t.Reference[0], Y: t.Reference[1]}}
	}

	return out, nil
}

// FromCorrespondences builds a job from Euclidean point lists.
func FromCorrespondences(name string, src, dst []r2.Point) *Job {
	j := &Job{Name: name, Kind: KindCorrespondences}
	for i := range src {
		j.Correspondences = append(j.Correspondences, CorrespondenceSpec{
			Source: []float64{src[i].X, src[i].Y},
			Target: []float64{dst[i].X, dst[i].Y},
		})
	}

	return j
}

// FromTargets builds a job storing each target's conic coefficients.
func FromTargets(name string, targets []homography.Target) *Job {
	j := &Job{Name: name, Kind: KindTargets}
	for _, t := range targets {
		k := t.Conic.Coefficients()
		j.Targets = append(j.Targets, TargetSpec{
			Reference: []float64{t.Reference.X, t.Reference.Y},
			Conic:     k[:],
		})
	}

	return j
}
