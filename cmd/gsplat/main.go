// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command gsplat creates, inspects, prunes, and exports
// 3D Gaussian splatting models.
package main

import (
	"log/slog"
	"os"

	"cogentcore.org/gsplat/logx"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "gsplat",
		Usage: "3D Gaussian splatting model tool",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "show info messages",
			},
			&cli.BoolFlag{
				Name:  "vv",
				Usage: "show debug messages",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "only show errors",
			},
		},
		Before: func(c *cli.Context) error {
			logx.UserLevel = logx.LevelFromFlags(c.Bool("vv"), c.Bool("verbose"), c.Bool("quiet"))
			slog.SetDefault(logx.NewLogger(c.App.ErrWriter))
			return nil
		},
		Commands: []*cli.Command{
			initCommand(),
			infoCommand(),
			pruneCommand(),
			exportCommand(),
			checkpointsCommand(),
			configCommand(),
		},
	}
}
