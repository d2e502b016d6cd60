// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"cogentcore.org/gsplat/base/errors"
	"cogentcore.org/gsplat/base/iox/tomlx"
	"cogentcore.org/gsplat/base/iox/yamlx"
	"cogentcore.org/gsplat/base/slicesx"
	"cogentcore.org/gsplat/checkpoint"
	"cogentcore.org/gsplat/config"
	"cogentcore.org/gsplat/gaussian"
	"cogentcore.org/gsplat/pointcloud"
	"cogentcore.org/gsplat/tensor/tmath"
	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v2"
)

// args returns the n positional arguments with home directories
// expanded, or a usage error.
func args(c *cli.Context, n int) ([]string, error) {
	if c.NArg() != n {
		return nil, fmt.Errorf("%s: want %d arguments, got %d", c.Command.Name, n, c.NArg())
	}
	out := make([]string, n)
	for i := range n {
		p, err := homedir.Expand(c.Args().Get(i))
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// openConfig returns the config from the --config files, if any.
func openConfig(c *cli.Context) (*config.Config, error) {
	var fns []string
	for _, fn := range c.StringSlice("config") {
		p, err := homedir.Expand(fn)
		if err != nil {
			return nil, err
		}
		fns = append(fns, p)
	}
	return config.Open(fns...)
}

var configFlag = &cli.StringSliceFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "TOML config files, applied in order over the defaults",
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "create a Gaussian model from a point cloud",
		ArgsUsage: "<points.ply> <gaussians.ply>",
		Flags: []cli.Flag{
			configFlag,
			&cli.IntFlag{
				Name:  "sh-degree",
				Value: -1,
				Usage: "maximum SH degree; the config value is used if negative",
			},
			&cli.Float64Flag{
				Name:  "extent",
				Usage: "scene extent for the position learning rate; from the point bounds if zero",
			},
		},
		Action: func(c *cli.Context) error {
			fns, err := args(c, 2)
			if err != nil {
				return err
			}
			cfg, err := openConfig(c)
			if err != nil {
				return err
			}
			deg := cfg.Model.SHDegree
			if d := c.Int("sh-degree"); d >= 0 {
				deg = d
			}
			pc, err := pointcloud.Open(fns[0])
			if err != nil {
				return err
			}
			extent := float32(c.Float64("extent"))
			if extent <= 0 {
				extent = pointExtent(pc)
			}
			gs := gaussian.NewSet(deg)
			if err := gs.CreateFromPCD(pc, extent); err != nil {
				return err
			}
			slog.Info("saving gaussians", "file", fns[1], "extent", extent)
			return gs.SavePLYFile(fns[1])
		},
	}
}

// pointExtent returns the radius of the sphere around the center
// of the point bounds that contains them, enlarged by 10%.
func pointExtent(pc *pointcloud.PointCloud) float32 {
	if pc.Len() == 0 {
		return 1
	}
	lo, hi := pc.Bounds()
	r := 1.1 * hi.Sub(lo).Length() / 2
	if r == 0 {
		return 1
	}
	return r
}

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "print a summary of a Gaussian model",
		ArgsUsage: "<gaussians.ply>",
		Action: func(c *cli.Context) error {
			fns, err := args(c, 1)
			if err != nil {
				return err
			}
			gs, err := gaussian.OpenPLY(fns[0], -1)
			if err != nil {
				return err
			}
			w := c.App.Writer
			fmt.Fprintf(w, "points:     %d\n", gs.NumPoints())
			fmt.Fprintf(w, "sh degree:  %d\n", gs.MaxSHDegree)
			if gs.NumPoints() == 0 {
				return nil
			}
			omin, omax, _, _ := gs.Opacity().Range()
			fmt.Fprintf(w, "opacity:    %g .. %g\n", omin, omax)
			smin, smax, _, _ := gs.Scaling().Range()
			fmt.Fprintf(w, "scale:      %g .. %g\n", smin, smax)
			xyz := gs.XYZ().Values
			lo := [3]float32{xyz[0], xyz[1], xyz[2]}
			hi := lo
			for i := 3; i < len(xyz); i++ {
				lo[i%3] = min(lo[i%3], xyz[i])
				hi[i%3] = max(hi[i%3], xyz[i])
			}
			fmt.Fprintf(w, "bounds:     %v .. %v\n", lo, hi)
			return nil
		},
	}
}

func pruneCommand() *cli.Command {
	return &cli.Command{
		Name:      "prune",
		Usage:     "remove nearly transparent Gaussians from a model",
		ArgsUsage: "<in.ply> <out.ply>",
		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:  "min-opacity",
				Value: 0.005,
				Usage: "Gaussians with a lower opacity are removed",
			},
		},
		Action: func(c *cli.Context) error {
			fns, err := args(c, 2)
			if err != nil {
				return err
			}
			gs, err := gaussian.OpenPLY(fns[0], -1)
			if err != nil {
				return err
			}
			mask := tmath.Less(gs.Opacity(), float32(c.Float64("min-opacity")))
			n := gs.NumPoints()
			gs.Prune(mask)
			slog.Info("pruned", "removed", slicesx.Count(mask), "before", n, "after", gs.NumPoints())
			return gs.SavePLYFile(fns[1])
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "export a training checkpoint as a Gaussian model",
		ArgsUsage: "<checkpoint.db> <out.ply>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "iteration",
				Usage: "checkpoint iteration; the latest if zero",
			},
		},
		Action: func(c *cli.Context) error {
			fns, err := args(c, 2)
			if err != nil {
				return err
			}
			st, err := checkpoint.Open(fns[0])
			if err != nil {
				return err
			}
			defer st.Close()
			var ck *checkpoint.Container
			if it := c.Int("iteration"); it > 0 {
				ck, err = st.Load(it)
			} else {
				ck, err = st.Latest()
			}
			if err != nil {
				return err
			}
			op := &config.Optimization{}
			op.Defaults()
			cfg, err := config.OpenSnapshot(filepath.Dir(fns[0]))
			switch {
			case err == nil:
				op = &cfg.Optimization
			case !errors.Is(err, fs.ErrNotExist):
				return err
			}
			gs, err := gaussian.Restore(ck.State, op)
			if err != nil {
				return err
			}
			slog.Info("exporting checkpoint", "iteration", ck.Iteration, "points", gs.NumPoints())
			return gs.SavePLYFile(fns[1])
		},
	}
}

func checkpointsCommand() *cli.Command {
	return &cli.Command{
		Name:      "checkpoints",
		Usage:     "list the iterations stored in a checkpoint file",
		ArgsUsage: "<checkpoint.db>",
		Action: func(c *cli.Context) error {
			fns, err := args(c, 1)
			if err != nil {
				return err
			}
			st, err := checkpoint.Open(fns[0])
			if err != nil {
				return err
			}
			defer st.Close()
			its, err := st.Iterations()
			if err != nil {
				return err
			}
			for _, it := range its {
				fmt.Fprintln(c.App.Writer, it)
			}
			return nil
		},
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "print the configuration resolved from the defaults and --config files",
		Flags: []cli.Flag{
			configFlag,
			&cli.BoolFlag{
				Name:  "yaml",
				Usage: "print as YAML instead of TOML",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "save to this file instead, as YAML if it ends in .yaml",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := openConfig(c)
			if err != nil {
				return err
			}
			if out := c.String("out"); out != "" {
				out, err = homedir.Expand(out)
				if err != nil {
					return err
				}
				if strings.HasSuffix(out, ".yaml") {
					return yamlx.Save(cfg, out)
				}
				return tomlx.Save(cfg, out)
			}
			if c.Bool("yaml") {
				return yamlx.Write(cfg, c.App.Writer)
			}
			return tomlx.Write(cfg, c.App.Writer)
		},
	}
}
