// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config contains the configuration structs for
// Gaussian splatting model setup, optimization, and the
// densification schedule of training.
package config

import (
	"os"
	"path/filepath"

	"cogentcore.org/gsplat/base/errors"
	"cogentcore.org/gsplat/base/iox/tomlx"
	"cogentcore.org/gsplat/base/iox/yamlx"
	"cogentcore.org/gsplat/base/reflectx"
)

// Config is the main config struct that contains all of the
// configuration options for training a Gaussian set.
type Config struct {

	// Model has the model and data location parameters.
	Model Model `toml:"model" yaml:"model"`

	// Optimization has the learning rate and densification parameters.
	Optimization Optimization `toml:"optimization" yaml:"optimization"`

	// Pipeline has the rendering pipeline switches passed to the renderer.
	Pipeline Pipeline `toml:"pipeline" yaml:"pipeline"`

	// SaveIterations are the iterations at which the Gaussian set is saved as PLY.
	SaveIterations []int `toml:"save_iterations" yaml:"save_iterations"`

	// CheckpointIterations are the iterations at which the full training
	// state is saved to the checkpoint store.
	CheckpointIterations []int `toml:"checkpoint_iterations" yaml:"checkpoint_iterations"`

	// Seed is the random seed for split sampling.
	// Zero uses the global random source.
	Seed int64 `toml:"seed" yaml:"seed" default:"0"`
}

// Model has the parameters of the model and its data.
type Model struct {

	// SHDegree is the maximum spherical harmonic degree, from 0 to 3.
	SHDegree int `toml:"sh_degree" yaml:"sh_degree" default:"3"`

	// SourcePath is the directory of the input scene.
	SourcePath string `toml:"source_path" yaml:"source_path"`

	// ModelPath is the output directory for saved sets and checkpoints.
	ModelPath string `toml:"model_path" yaml:"model_path"`

	// Images is the name of the image directory within SourcePath.
	Images string `toml:"images" yaml:"images" default:"images"`

	// Resolution is the image downscale factor; -1 is automatic.
	Resolution int `toml:"resolution" yaml:"resolution" default:"-1"`

	// WhiteBackground renders against a white instead of black background.
	WhiteBackground bool `toml:"white_background" yaml:"white_background"`

	// Eval holds out every 8th image for evaluation.
	Eval bool `toml:"eval" yaml:"eval"`
}

// Optimization has the learning rate and densification parameters.
type Optimization struct {

	// Iterations is the total number of training iterations.
	Iterations int `toml:"iterations" yaml:"iterations" default:"30000"`

	// PositionLRInit is the initial position learning rate,
	// before scaling by the spatial extent.
	PositionLRInit float32 `toml:"position_lr_init" yaml:"position_lr_init" default:"0.00016"`

	// PositionLRFinal is the final position learning rate,
	// before scaling by the spatial extent.
	PositionLRFinal float32 `toml:"position_lr_final" yaml:"position_lr_final" default:"0.0000016"`

	// PositionLRDelayMult is the warm-up multiplier at step 0.
	PositionLRDelayMult float32 `toml:"position_lr_delay_mult" yaml:"position_lr_delay_mult" default:"0.01"`

	// PositionLRDelaySteps is the number of warm-up steps; 0 disables warm-up.
	PositionLRDelaySteps int `toml:"position_lr_delay_steps" yaml:"position_lr_delay_steps" default:"0"`

	// PositionLRMaxSteps is the step at which PositionLRFinal is reached.
	PositionLRMaxSteps int `toml:"position_lr_max_steps" yaml:"position_lr_max_steps" default:"30000"`

	// FeatureLR is the learning rate of the DC colour coefficients;
	// the rest coefficients use 1/20 of it.
	FeatureLR float32 `toml:"feature_lr" yaml:"feature_lr" default:"0.0025"`

	OpacityLR float32 `toml:"opacity_lr" yaml:"opacity_lr" default:"0.05"`

	ScalingLR float32 `toml:"scaling_lr" yaml:"scaling_lr" default:"0.005"`

	RotationLR float32 `toml:"rotation_lr" yaml:"rotation_lr" default:"0.001"`

	// PercentDense is the fraction of the scene extent that separates
	// small primitives (cloned) from large ones (split).
	PercentDense float32 `toml:"percent_dense" yaml:"percent_dense" default:"0.01"`

	// LambdaDSSIM is the weight of the structural similarity term in the loss.
	LambdaDSSIM float32 `toml:"lambda_dssim" yaml:"lambda_dssim" default:"0.2"`

	// DensificationInterval is the number of iterations between densify-and-prune cycles.
	DensificationInterval int `toml:"densification_interval" yaml:"densification_interval" default:"100"`

	// OpacityResetInterval is the number of iterations between opacity resets.
	OpacityResetInterval int `toml:"opacity_reset_interval" yaml:"opacity_reset_interval" default:"3000"`

	// DensifyFromIter is the iteration after which densification starts.
	DensifyFromIter int `toml:"densify_from_iter" yaml:"densify_from_iter" default:"500"`

	// DensifyUntilIter is the iteration at which densification stops.
	DensifyUntilIter int `toml:"densify_until_iter" yaml:"densify_until_iter" default:"15000"`

	// DensifyGradThreshold is the mean view-space gradient at or above
	// which a primitive is cloned or split.
	DensifyGradThreshold float32 `toml:"densify_grad_threshold" yaml:"densify_grad_threshold" default:"0.0002"`

	// MinOpacity is the activated opacity below which primitives are pruned.
	MinOpacity float32 `toml:"min_opacity" yaml:"min_opacity" default:"0.005"`

	// MaxScreenSize is the screen-space radius above which primitives are
	// pruned, once the first opacity reset has passed; 0 disables it.
	MaxScreenSize float32 `toml:"max_screen_size" yaml:"max_screen_size" default:"20"`

	// SHUpInterval is the number of iterations between increases of the
	// active spherical harmonic degree.
	SHUpInterval int `toml:"sh_up_interval" yaml:"sh_up_interval" default:"1000"`

	// RandomBackground uses a random background colour for each iteration.
	RandomBackground bool `toml:"random_background" yaml:"random_background"`
}

// Pipeline has the switches passed through to the renderer.
type Pipeline struct {
	ConvertSHsPython bool `toml:"convert_shs_python" yaml:"convert_shs_python"`

	ComputeCov3DPython bool `toml:"compute_cov3d_python" yaml:"compute_cov3d_python"`

	Debug bool `toml:"debug" yaml:"debug"`
}

// Defaults sets the default values of all fields.
func (cfg *Config) Defaults() {
	errors.Log(reflectx.SetFromDefaultTags(cfg))
	cfg.SaveIterations = []int{7000, 30000}
	cfg.CheckpointIterations = nil
}

// Defaults sets the default values of all fields.
func (op *Optimization) Defaults() {
	errors.Log(reflectx.SetFromDefaultTags(op))
}

// New returns a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.Defaults()
	return cfg
}

// Open returns the default config overwritten by the values
// in the given TOML files, in order.
func Open(filenames ...string) (*Config, error) {
	cfg := New()
	if err := tomlx.OpenFiles(cfg, filenames...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SnapshotFile is the name of the config snapshot saved in the model path.
const SnapshotFile = "cfg_args.yaml"

// SaveSnapshot saves the config as YAML in the model path,
// recording the parameters of a training run.
func (cfg *Config) SaveSnapshot() error {
	if err := os.MkdirAll(cfg.Model.ModelPath, 0o755); err != nil {
		return err
	}
	return yamlx.Save(cfg, filepath.Join(cfg.Model.ModelPath, SnapshotFile))
}

// OpenSnapshot reads a config snapshot from the given model path.
func OpenSnapshot(modelPath string) (*Config, error) {
	cfg := New()
	if err := yamlx.Open(cfg, filepath.Join(modelPath, SnapshotFile)); err != nil {
		return nil, err
	}
	return cfg, nil
}
