package build

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfrog/workspace-packager/entities"
)

func newPipelineRequest(t *testing.T) *entities.BuildRequest {
	root := t.TempDir()
	request := &entities.BuildRequest{
		Ref:         entities.DefaultRef,
		SourceRepo:  testSourceURL,
		CheckoutDir: filepath.Join(root, "checkout"),
		OutputDir:   filepath.Join(root, "out"),
		Scope:       "@acme",
		Excludes:    entities.DefaultExcludes,
		Clean:       true,
	}
	require.NoError(t, request.Validate())
	return request
}

func TestPipelineRun(t *testing.T) {
	request := newPipelineRequest(t)
	tool := &fakeTool{workspaces: testWorkspaces}
	checkout := &fakeCheckout{}

	result, err := NewPipeline(request, checkout, tool).Run()
	require.NoError(t, err)
	assert.Equal(t, 1, checkout.calls)
	assert.Equal(t, []string{
		"list",
		"install",
		"build @acme @acme/e2e-tests,@acme/playground,@acme/storybook",
		"pack @acme/icons",
		"pack @acme/ui",
	}, tool.calls)
	// One archive per non-excluded workspace, plus the overrides file.
	assert.Len(t, result.Files, 2)
	assert.Equal(t, []string{"acme-icons.tgz", "acme-ui.tgz", entities.OverridesFileName}, listFileNames(t, request.OutputDir))
}

func TestPipelineCleanRerunIsIdempotent(t *testing.T) {
	request := newPipelineRequest(t)
	var runs [][]string
	for i := 0; i < 2; i++ {
		_, err := NewPipeline(request, &fakeCheckout{}, &fakeTool{workspaces: testWorkspaces}).Run()
		require.NoError(t, err)
		runs = append(runs, listFileNames(t, request.OutputDir))
	}
	assert.Equal(t, runs[0], runs[1])
}

func TestPipelineSkipInstall(t *testing.T) {
	request := newPipelineRequest(t)
	request.SkipInstall = true
	tool := &fakeTool{workspaces: testWorkspaces}
	_, err := NewPipeline(request, &fakeCheckout{}, tool).Run()
	require.NoError(t, err)
	assert.Zero(t, tool.countCalls("install"))
}

func TestPipelineUnknownPackageFailsBeforeBuild(t *testing.T) {
	request := newPipelineRequest(t)
	request.Packages = []string{"@acme/missing"}
	tool := &fakeTool{workspaces: testWorkspaces}

	_, err := NewPipeline(request, &fakeCheckout{}, tool).Run()
	var unknownErr *UnknownPackageError
	assert.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, []string{"list"}, tool.calls)
}

func TestPipelineArchiveNameCollisionOutsideSelection(t *testing.T) {
	request := newPipelineRequest(t)
	request.Packages = []string{"@acme/icons"}
	workspaces := append([]entities.Workspace{
		{Name: "@acme/ui-kit", Location: "packages/ui-kit"},
		{Name: "@acme/ui/kit", Location: "legacy/ui-kit"},
	}, testWorkspaces...)
	tool := &fakeTool{workspaces: workspaces}

	_, err := NewPipeline(request, &fakeCheckout{}, tool).Run()
	assert.ErrorIs(t, err, ErrArchiveNameCollision)
	assert.Equal(t, []string{"list"}, tool.calls)
}

func TestPipelineNoScopedWorkspaces(t *testing.T) {
	request := newPipelineRequest(t)
	tool := &fakeTool{workspaces: []entities.Workspace{{Name: "acme-monorepo", Location: "."}}}

	_, err := NewPipeline(request, &fakeCheckout{}, tool).Run()
	var layoutErr *WorkspaceLayoutError
	assert.ErrorAs(t, err, &layoutErr)
	assert.Equal(t, []string{"list"}, tool.calls)
}

func TestPipelineCheckoutFailure(t *testing.T) {
	request := newPipelineRequest(t)
	checkoutErr := &DirtyCheckoutError{Dir: request.CheckoutDir, Changes: []string{" M package.json"}}
	tool := &fakeTool{workspaces: testWorkspaces}

	_, err := NewPipeline(request, &fakeCheckout{err: checkoutErr}, tool).Run()
	assert.ErrorIs(t, err, checkoutErr)
	assert.Empty(t, tool.calls)
}

func TestPipelineBuildFailureStopsPacking(t *testing.T) {
	request := newPipelineRequest(t)
	buildErr := errors.New("build failed")
	tool := &fakeTool{workspaces: testWorkspaces, buildErr: buildErr}

	_, err := NewPipeline(request, &fakeCheckout{}, tool).Run()
	assert.ErrorIs(t, err, buildErr)
	assert.Zero(t, tool.countCalls("pack"))
}
