package build

import (
	"os/exec"
	"strings"

	"github.com/jfrog/gofrog/version"
	"github.com/pkg/errors"

	buildutils "github.com/jfrog/workspace-packager/build/utils"
	"github.com/jfrog/workspace-packager/entities"
	"github.com/jfrog/workspace-packager/utils"
)

// 'yarn workspaces list --json' and 'yarn workspaces foreach' are only available from Yarn Berry.
const minSupportedYarnVersion = "2.0.0"

// WorkspaceTool is the workspace-aware package manager of the source monorepo.
type WorkspaceTool interface {
	// ListWorkspaces returns every workspace of the monorepo, including unrelated ones.
	ListWorkspaces() ([]entities.Workspace, error)
	Install() error
	// BuildWorkspaces builds the scope's workspaces in dependency order, skipping the excluded ones.
	BuildWorkspaces(scope string, excludes []string) error
	// Pack writes the archive of workspace to outFile.
	Pack(workspace entities.Workspace, outFile string) error
}

type YarnRunner struct {
	executablePath string
	srcPath        string
	runner         utils.CommandRunner
	log            utils.Log
	versionChecked bool
}

// NewYarnRunner returns a runner for the Yarn project at srcPath. srcPath doesn't have to exist yet.
func NewYarnRunner(srcPath string, runner utils.CommandRunner, log utils.Log) (*YarnRunner, error) {
	executablePath, err := exec.LookPath("yarn")
	if err != nil {
		return nil, errors.Wrap(err, "couldn't find the Yarn executable")
	}
	log.Debug("Found Yarn executable at:", executablePath)
	return &YarnRunner{executablePath: executablePath, srcPath: srcPath, runner: runner, log: log}, nil
}

func (yr *YarnRunner) ListWorkspaces() ([]entities.Workspace, error) {
	if err := yr.validateVersion(); err != nil {
		return nil, err
	}
	output, err := yr.runner.RunOutput(yr.command("workspaces", "list", "--json"))
	if err != nil {
		return nil, errors.Wrap(err, "failed listing the Yarn workspaces")
	}
	return buildutils.ParseWorkspacesList(output)
}

func (yr *YarnRunner) Install() error {
	yr.log.Info("Installing dependencies in", yr.srcPath)
	return yr.runner.Run(yr.command("install"))
}

func (yr *YarnRunner) BuildWorkspaces(scope string, excludes []string) error {
	yr.log.Info("Building the " + scope + " workspaces")
	return yr.runner.Run(yr.command(buildCommandArgs(scope, excludes)...))
}

func (yr *YarnRunner) Pack(workspace entities.Workspace, outFile string) error {
	yr.log.Info("Packing " + workspace.Name)
	return yr.runner.Run(yr.command("workspace", workspace.Name, "pack", "--out", outFile))
}

func buildCommandArgs(scope string, excludes []string) []string {
	args := []string{"workspaces", "foreach", "--all", "--topological-dev", "--verbose", "--include", scope + "/*"}
	for _, exclude := range excludes {
		args = append(args, "--exclude", exclude)
	}
	return append(args, "run", "build")
}

func (yr *YarnRunner) command(args ...string) *utils.Cmd {
	return &utils.Cmd{ExecPath: yr.executablePath, Command: args, Dir: yr.srcPath}
}

// The Yarn version is project specific (packageManager / yarnPath), so it can only be checked after checkout.
func (yr *YarnRunner) validateVersion() error {
	if yr.versionChecked {
		return nil
	}
	output, err := yr.runner.RunOutput(yr.command("--version"))
	if err != nil {
		return err
	}
	yarnVersionStr := strings.TrimSpace(output)
	yarnVersion := version.NewVersion(yarnVersionStr)
	if yarnVersion.Compare(minSupportedYarnVersion) > 0 {
		return errors.New("Yarn must have version " + minSupportedYarnVersion + " or higher. The current version is: " + yarnVersionStr)
	}
	yr.versionChecked = true
	return nil
}
