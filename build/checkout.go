package build

import (
	"os"
	"os/exec"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/pkg/errors"

	"github.com/jfrog/workspace-packager/utils"
)

// SourceCheckout brings a local directory to a shallow, clean checkout of a reference.
type SourceCheckout interface {
	Checkout(dir, ref, sourceURL string) error
}

// GitCheckout manages the repository with go-git and fetches through the git CLI,
// which supports a depth-one fetch of any reference (branch, tag or commit).
type GitCheckout struct {
	gitExecPath string
	runner      utils.CommandRunner
	log         utils.Log
}

func NewGitCheckout(runner utils.CommandRunner, log utils.Log) (*GitCheckout, error) {
	gitExecPath, err := exec.LookPath("git")
	if err != nil {
		return nil, errors.Wrap(err, "couldn't find the git executable")
	}
	return &GitCheckout{gitExecPath: gitExecPath, runner: runner, log: log}, nil
}

func (gc *GitCheckout) Checkout(dir, ref, sourceURL string) error {
	if err := gc.prepareRepository(dir, sourceURL); err != nil {
		return err
	}
	gc.log.Info("Fetching '" + ref + "' from " + utils.MaskCredentials(sourceURL))
	if err := gc.runner.Run(gc.command(dir, "fetch", "--depth", "1", "origin", ref)); err != nil {
		return errors.Wrapf(err, "failed fetching '%s'", ref)
	}
	if err := gc.runner.Run(gc.command(dir, "checkout", "--force", "FETCH_HEAD")); err != nil {
		return errors.Wrapf(err, "failed checking out '%s'", ref)
	}
	return gc.assertClean(dir)
}

// prepareRepository initializes dir when it isn't a valid repository and points origin at sourceURL.
func (gc *GitCheckout) prepareRepository(dir, sourceURL string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		gc.log.Info("Initializing a new repository at", dir, "("+err.Error()+")")
		if err = os.RemoveAll(dir); err != nil {
			return err
		}
		if err = os.MkdirAll(dir, 0777); err != nil {
			return err
		}
		if repo, err = git.PlainInit(dir, false); err != nil {
			return errors.Wrapf(err, "failed initializing a repository at '%s'", dir)
		}
	}
	return setOriginURL(repo, sourceURL)
}

// setOriginURL forces origin to point at url, so the same directory can be retargeted across runs.
func setOriginURL(repo *git.Repository, url string) error {
	remote, err := repo.Remote(git.DefaultRemoteName)
	switch {
	case err == nil:
		if urls := remote.Config().URLs; len(urls) == 1 && urls[0] == url {
			return nil
		}
		if err = repo.DeleteRemote(git.DefaultRemoteName); err != nil {
			return err
		}
	case !errors.Is(err, git.ErrRemoteNotFound):
		return err
	}
	_, err = repo.CreateRemote(&config.RemoteConfig{Name: git.DefaultRemoteName, URLs: []string{url}})
	return err
}

func (gc *GitCheckout) assertClean(dir string) error {
	output, err := gc.runner.RunOutput(gc.command(dir, "status", "--porcelain"))
	if err != nil {
		return err
	}
	var changes []string
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) != "" {
			changes = append(changes, strings.TrimRight(line, "\r"))
		}
	}
	if len(changes) > 0 {
		return &DirtyCheckoutError{Dir: dir, Changes: changes}
	}
	return nil
}

func (gc *GitCheckout) command(dir string, args ...string) *utils.Cmd {
	return &utils.Cmd{ExecPath: gc.gitExecPath, Command: args, Dir: dir}
}
