package utils

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	gofrogcmd "github.com/jfrog/gofrog/io"
)

type Cmd struct {
	ExecPath  string
	Command   []string
	Dir       string
	Env       map[string]string
	StrWriter io.WriteCloser
	ErrWriter io.WriteCloser
}

func (config *Cmd) GetCmd() (cmd *exec.Cmd) {
	var cmdStr []string
	cmdStr = append(cmdStr, config.ExecPath)
	cmdStr = append(cmdStr, config.Command...)
	cmd = exec.Command(cmdStr[0], cmdStr[1:]...)
	cmd.Dir = config.Dir
	if len(config.Env) > 0 {
		cmd.Env = os.Environ()
		for key, value := range config.Env {
			cmd.Env = append(cmd.Env, key+"="+value)
		}
	}
	return
}

// Env is applied on the exec.Cmd in GetCmd and must not reach os.Setenv.
func (config *Cmd) GetEnv() map[string]string {
	return map[string]string{}
}

func (config *Cmd) GetStdWriter() io.WriteCloser {
	return config.StrWriter
}

func (config *Cmd) GetErrWriter() io.WriteCloser {
	return config.ErrWriter
}

func (config *Cmd) String() string {
	return strings.TrimSpace(config.ExecPath + " " + strings.Join(config.Command, " "))
}

// CommandRunner executes external tools. Run streams the tool's output to the process' own stdout and stderr,
// RunOutput captures and returns stdout.
type CommandRunner interface {
	Run(cmd *Cmd) error
	RunOutput(cmd *Cmd) (string, error)
}

type defaultRunner struct {
	log Log
}

func NewCommandRunner(log Log) CommandRunner {
	if log == nil {
		log = &NullLog{}
	}
	return &defaultRunner{log: log}
}

func (r *defaultRunner) Run(cmd *Cmd) error {
	r.log.Debug("Running '" + cmd.String() + "' in " + cmd.Dir)
	return plainError(gofrogcmd.RunCmd(cmd))
}

func (r *defaultRunner) RunOutput(cmd *Cmd) (string, error) {
	r.log.Debug("Running '" + cmd.String() + "' in " + cmd.Dir)
	out, err := gofrogcmd.RunCmdOutput(cmd)
	return out, plainError(err)
}

// urfave/cli exits when an ExitError is returned, so if it's an ExitError we'll convert it to a regular error.
func plainError(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return errors.New(err.Error())
	}
	return err
}
