package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dargueta/adfuse/logging"
)

func main() {
	app := cli.App{
		Name:  "adfuse",
		Usage: "Mount and inspect Acorn ADFS disc images",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "one of debug, info, warn, error",
				EnvVars: []string{"ADFUSE_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "console",
				Usage:   "json or console",
				EnvVars: []string{"ADFUSE_LOG_FORMAT"},
			},
			&cli.BoolFlag{
				Name:    "no-verify",
				Usage:   "open images even if their maps or directories are damaged",
				EnvVars: []string{"ADFUSE_NO_VERIFY"},
			},
		},
		Before: func(c *cli.Context) error {
			return logging.Init(logging.Config{
				Level:  c.String("log-level"),
				Format: c.String("log-format"),
			})
		},
		After: func(*cli.Context) error {
			_ = logging.Sync()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "mount",
				Usage:     "Mount an image read-only",
				ArgsUsage: "MOUNT_POINT IMAGE",
				Action:    mountImage,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "allow-other",
						Usage:   "let other users access the mount",
						EnvVars: []string{"ADFUSE_ALLOW_OTHER"},
					},
					&cli.BoolFlag{
						Name:  "fuse-debug",
						Usage: "log every FUSE request",
					},
					&cli.BoolFlag{
						Name:    "list-inf",
						Usage:   "show .inf sidecars in directory listings",
						EnvVars: []string{"ADFUSE_LIST_INF"},
					},
					&cli.DurationFlag{
						Name:    "timeout",
						Usage:   "how long the kernel may cache entries and attributes",
						EnvVars: []string{"ADFUSE_TIMEOUT"},
					},
				},
			},
			{
				Name:      "ls",
				Usage:     "List a directory in an image",
				ArgsUsage: "IMAGE [PATH]",
				Action:    listDirectory,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "list-inf",
						Usage: "include .inf sidecars",
					},
				},
			},
			{
				Name:      "cat",
				Usage:     "Write a file from an image to stdout",
				ArgsUsage: "IMAGE PATH",
				Action:    catFile,
			},
			{
				Name:      "info",
				Usage:     "Show what's known about an image",
				ArgsUsage: "IMAGE",
				Action:    showInfo,
			},
			{
				Name:      "catalogue",
				Usage:     "Write every object in an image to stdout as CSV",
				ArgsUsage: "IMAGE",
				Action:    writeCatalogue,
			},
			{
				Name:      "compress",
				Usage:     "Compress an image using RLE8 and gzip",
				ArgsUsage: "INPUT_FILE OUTPUT_FILE",
				Action:    compressImage,
			},
			{
				Name:      "decompress",
				Usage:     "Expand an image compressed with RLE8 and gzip",
				ArgsUsage: "INPUT_FILE OUTPUT_FILE",
				Action:    decompressImage,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %s\n", err.Error())
		os.Exit(1)
	}
}
