package main

import (
	"os"

	"github.com/jfrog/workspace-packager/cli"
	"github.com/jfrog/workspace-packager/utils"
	clitool "github.com/urfave/cli/v2"
)

var log utils.Log

func main() {
	log = utils.NewDefaultLogger(utils.ParseLogLevel(os.Getenv(utils.LogLevelEnv)))
	app := &clitool.App{
		Name:     "Workspace Packager",
		Usage:    "pack the workspaces of a Yarn monorepo and publish them as release assets",
		Commands: cli.GetCommands(log),
		Before: func(*clitool.Context) error {
			// Temp dirs of interrupted runs are left behind.
			if err := utils.CleanOldDirs(); err != nil {
				log.Warn("Failed removing old temporary directories:", err.Error())
			}
			return nil
		},
	}
	err := app.Run(os.Args)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
