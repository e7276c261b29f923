// Copyright 2025 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Sqrd serves an HTTP endpoint decoding keyed QR codes from uploaded
// images.
//
// Usage:
//
//	sqrd [-c file] [-l addr] [--level level] [--key-hex hex]
//	     [--max-upload bytes] [--max-pixels pixels]
//
// POST an image in the multipart field "file" to /upload; the reply is
// JSON {"message": text}.  The key is read from the configuration
// file or the SECQR_KEY or SECQR_KEY_HEX environment variables.
package main

import (
	"os"
	"runtime"

	"github.com/urfave/cli"

	"github.com/unixdj/secqr"
	"github.com/unixdj/secqr/server"
)

const version = "0.1.0"

func main() {
	app := cli.NewApp()
	app.Name = "sqrd"
	app.Usage = "Decode keyed QR codes uploaded over HTTP"
	app.Version = version
	app.Flags = getFlags()
	app.Action = func(c *cli.Context) error {
		// The flag takes precedence like the environment does.
		if h := c.String("key-hex"); h != "" {
			os.Setenv("SECQR_KEY_HEX", h)
		}
		config, err := server.NewConfig(c.String("config"))
		if err != nil {
			return cli.NewExitError(err, 2)
		}
		if c.IsSet("listen") {
			hp, err := server.ParseHostPort(c.String("listen"))
			if err != nil {
				return cli.NewExitError(err, 2)
			}
			config.Listen = hp
		}
		if c.IsSet("level") {
			level, err := server.GetLogLevel(c.String("level"))
			if err != nil {
				return cli.NewExitError(err, 2)
			}
			config.LogLevel = level
		}
		if c.IsSet("max-upload") {
			config.Upload.MaxBytes = c.Int64("max-upload")
		}
		if c.IsSet("max-pixels") {
			config.Upload.MaxPixels = c.Int64("max-pixels")
		}
		if err := config.Upload.Validate(); err != nil {
			return cli.NewExitError(err, 2)
		}
		config.HandleSignals = true

		s := server.New(config)
		if err := s.Start(); err != nil {
			return cli.NewExitError(err, 1)
		}
		runtime.Goexit()
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func getFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load configuration from `FILE`",
		},
		cli.StringFlag{
			Name:  "listen, l",
			Usage: "listen on `ADDR` (host:port or port)",
		},
		cli.StringFlag{
			Name:  "level",
			Usage: "logging level [debug|info|warn|error]",
			Value: "info",
		},
		cli.StringFlag{
			Name:  "key-hex",
			Usage: "unmask codes with `KEY`, 64 hexadecimal digits",
		},
		cli.Int64Flag{
			Name:  "max-upload",
			Usage: "refuse uploads over `BYTES`",
			Value: 10 << 20,
		},
		cli.Int64Flag{
			Name:  "max-pixels",
			Usage: "refuse images over `PIXELS` in area",
			Value: secqr.MaxPixels,
		},
	}
}
