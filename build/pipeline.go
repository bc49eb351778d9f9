package build

import (
	"github.com/jfrog/workspace-packager/entities"
	"github.com/jfrog/workspace-packager/utils"
)

// Pipeline runs one packaging request: checkout, enumerate, install, build and pack.
// Every directory it touches comes from the request.
type Pipeline struct {
	request  *entities.BuildRequest
	checkout SourceCheckout
	tool     WorkspaceTool
	logger   utils.Log
}

func NewPipeline(request *entities.BuildRequest, checkout SourceCheckout, tool WorkspaceTool) *Pipeline {
	return &Pipeline{request: request, checkout: checkout, tool: tool, logger: &utils.NullLog{}}
}

// NewDefaultPipeline wires the pipeline to the git and Yarn executables found in PATH.
func NewDefaultPipeline(request *entities.BuildRequest, logger utils.Log) (*Pipeline, error) {
	runner := utils.NewCommandRunner(logger)
	checkout, err := NewGitCheckout(runner, logger)
	if err != nil {
		return nil, err
	}
	yarn, err := NewYarnRunner(request.CheckoutDir, runner, logger)
	if err != nil {
		return nil, err
	}
	pipeline := NewPipeline(request, checkout, yarn)
	pipeline.SetLogger(logger)
	return pipeline, nil
}

func (p *Pipeline) SetLogger(logger utils.Log) {
	p.logger = logger
}

func (p *Pipeline) Run() (*entities.ArchiveResult, error) {
	req := p.request
	if err := p.checkout.Checkout(req.CheckoutDir, req.Ref, req.SourceRepo); err != nil {
		return nil, err
	}
	workspaces, err := ListScopedWorkspaces(p.tool, req.CheckoutDir, req.Scope, p.logger)
	if err != nil {
		return nil, err
	}
	// Configuration problems must surface before the long install and build steps.
	targets, err := SelectTargets(workspaces, req.Packages, req.Excludes)
	if err != nil {
		return nil, err
	}
	if err = CheckArchiveNames(workspaces); err != nil {
		return nil, err
	}
	if req.SkipInstall {
		p.logger.Info("Skipping the dependencies installation")
	} else if err = p.tool.Install(); err != nil {
		return nil, err
	}
	if err = p.tool.BuildWorkspaces(req.Scope, req.Excludes); err != nil {
		return nil, err
	}
	return NewArchiver(p.tool, req, p.logger).Pack(targets)
}
