package main

import (
	"fmt"
	"os"
	"time"

	"github.com/SUSean/2015osteam20MP4/pkg/config"
	"github.com/SUSean/2015osteam20MP4/pkg/logg"
	"github.com/SUSean/2015osteam20MP4/pkg/types"
	"gopkg.in/yaml.v2"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const (
	// flags
	C_HELP              = "help, h"
	C_DISK              = "disk, d"
	C_CONFIG            = "config"
	C_LEVEL             = "level"
	C_LOG_DIR           = "log_dir"
	C_LOG_MAX_AGE       = "log_max_age"
	C_LOG_ROTATION_TIME = "log_rotation_time"
	C_FORCE             = "force, f"
	C_SIZE              = "size, s"
	C_RECURSIVE         = "r"
)

func VersionPrinter(c *cli.Context) {
	fmt.Printf("%v", c.App.Version)
}

func init() {
	cli.VersionPrinter = VersionPrinter
}

func NewApp() *cli.App {
	version := "SECTORFS Version: " + types.FS_VERSION + "\n" +
		"  Commit ID: " + types.COMMIT_ID + "\n" +
		"  Build: " + types.BUILD_TIME + "\n" +
		"  Go Version: " + types.GO_VERSION + "\n"

	app := &cli.App{
		Name:     "sectorfs",
		HideHelp: false,
		Version:  version,
		Usage:    "sectorfs [global options] command [arguments]",
		Writer:   os.Stderr,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  C_DISK,
				Value: types.DEFAULT_DISK_PATH,
				Usage: "path of the disk image",
			},
			cli.StringFlag{
				Name:  C_CONFIG,
				Usage: "path of a yaml volume config file",
			},
			cli.StringFlag{
				Name:  C_LEVEL,
				Value: types.DEFAULT_LEVEL,
				Usage: "log level: debug|info|warn|error",
			},
			cli.StringFlag{
				Name:  C_LOG_DIR,
				Usage: "write logs into this directory instead of syslog",
			},
			cli.StringFlag{
				Name:  C_LOG_MAX_AGE,
				Usage: "how long rotated logs are kept, e.g. 72h",
			},
			cli.StringFlag{
				Name:  C_LOG_ROTATION_TIME,
				Usage: "log rotation interval, e.g. 1h",
			},
		},
		Commands: []cli.Command{
			{
				Name:  "format",
				Usage: "initialize an empty volume on the disk image",
				Flags: []cli.Flag{
					cli.BoolFlag{
						Name:  C_FORCE,
						Usage: "reformat an existing image without asking",
					},
				},
				Action: runFormat,
			},
			{
				Name:      "create",
				Usage:     "create an empty file of a fixed size",
				ArgsUsage: "<path>",
				Flags: []cli.Flag{
					cli.IntFlag{
						Name:  C_SIZE,
						Usage: "file size in bytes, fixed at creation",
					},
				},
				Action: runCreate,
			},
			{
				Name:      "mkdir",
				Usage:     "create a subdirectory",
				ArgsUsage: "<path>",
				Action:    runMkdir,
			},
			{
				Name:      "put",
				Usage:     "copy a host file onto the volume",
				ArgsUsage: "<hostpath> <path>",
				Action:    runPut,
			},
			{
				Name:      "cat",
				Usage:     "write a file's content to stdout",
				ArgsUsage: "<path>",
				Action:    runCat,
			},
			{
				Name:      "ls",
				Usage:     "list a directory",
				ArgsUsage: "<path>",
				Flags: []cli.Flag{
					cli.BoolFlag{
						Name:  C_RECURSIVE,
						Usage: "list the whole subtree as full paths",
					},
				},
				Action: runLs,
			},
			{
				Name:      "rm",
				Usage:     "remove a file or subdirectory",
				ArgsUsage: "<path>",
				Flags: []cli.Flag{
					cli.BoolFlag{
						Name:  C_RECURSIVE,
						Usage: "remove a subdirectory and everything below it",
					},
				},
				Action: runRm,
			},
			{
				Name:   "print",
				Usage:  "dump the volume's headers, free map and entries",
				Action: runPrint,
			},
		},
	}
	return app
}

// PopulateConfig merges the optional yaml config file and the command
// line; flags win.
func PopulateConfig(c *cli.Context) (*config.FSConfig, error) {
	fsconfig := &config.FSConfig{
		DiskPath:        c.GlobalString("disk"),
		LogDir:          c.GlobalString("log_dir"),
		LogMaxAge:       types.DEFAULT_LOG_MAX_AGE,
		LogRotationTime: types.DEFAULT_LOG_ROTATION_TIME,
	}

	level := c.GlobalString("level")

	if path := c.GlobalString("config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		vc := &config.VolumeConfig{}
		if err := yaml.Unmarshal(data, vc); err != nil {
			return nil, err
		}

		if !c.GlobalIsSet("disk") && vc.Disk_path != "" {
			fsconfig.DiskPath = vc.Disk_path
		}
		if fsconfig.LogDir == "" {
			fsconfig.LogDir = vc.LogDir
		}
		if !c.GlobalIsSet("level") && vc.Log_level != "" {
			level = vc.Log_level
		}
		if vc.LogMaxAge != "" {
			d, err := time.ParseDuration(vc.LogMaxAge)
			if err != nil {
				return nil, fmt.Errorf("parse log_max_age: %w", err)
			}
			fsconfig.LogMaxAge = d
		}
		if vc.LogRotationTime != "" {
			d, err := time.ParseDuration(vc.LogRotationTime)
			if err != nil {
				return nil, fmt.Errorf("parse log_rotation_time: %w", err)
			}
			fsconfig.LogRotationTime = d
		}
	}

	if s := c.GlobalString("log_max_age"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, err
		}
		fsconfig.LogMaxAge = d
	}
	if s := c.GlobalString("log_rotation_time"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, err
		}
		fsconfig.LogRotationTime = d
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	fsconfig.Log_level = lvl
	logg.SetLevel(lvl)

	return fsconfig, nil
}
