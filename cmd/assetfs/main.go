package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "assetfs",
		Usage: "Classifies and mounts read-only asset stores",
		Commands: []*cli.Command{
			{
				Name:      "classify",
				Category:  "Query the store",
				Usage:     "Prints whether each path is a file, a directory or invalid",
				ArgsUsage: "path...",
				Action:    classifyAction,
			},
			{
				Name:      "inspect",
				Category:  "Query the store",
				Usage:     "Classifies paths and detects the content type of files",
				ArgsUsage: "path...",
				Action:    inspectAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Value: formatText,
						Usage: "Output format: text, json or yaml",
					},
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Maximum number of paths inspected at once (default from config)",
					},
				},
			},
			{
				Name:      "mount",
				Category:  "Serve the store",
				Usage:     "Mounts the store as a read-only filesystem until interrupted",
				ArgsUsage: "mountpoint",
				Action:    mountAction,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "umount",
						Aliases: []string{"u"},
						Usage: "Unmount the mountpoint first if needed before mounting again. " +
							"Useful for debuggers that don't exit properly.",
					},
					&cli.StringFlag{
						Name:  "root",
						Usage: "Asset path served as the mount root (default from config)",
					},
				},
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "store",
				Aliases: []string{"s"},
				Usage:   "Path of the store definition file (.json, .yaml or .yml)",
				EnvVars: []string{"ASSETFS_STORE"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path of a config file (.json, .yaml or .yml)",
				EnvVars: []string{"ASSETFS_CONFIG"},
			},
			&cli.IntFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Value:   3,
				Usage:   "Log verbosity level between 1 (error) and 5 (trace)",
			},
		},
		Suggest: true,
	}
}
