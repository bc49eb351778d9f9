package build

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jfrog/workspace-packager/entities"
	"github.com/jfrog/workspace-packager/utils"
)

// fakeRunner records the commands it receives. Outputs and failures are keyed by the joined arguments.
type fakeRunner struct {
	commands []string
	outputs  map[string]string
	failures map[string]error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{outputs: map[string]string{}, failures: map[string]error{}}
}

func (fr *fakeRunner) Run(cmd *utils.Cmd) error {
	_, err := fr.RunOutput(cmd)
	return err
}

func (fr *fakeRunner) RunOutput(cmd *utils.Cmd) (string, error) {
	key := strings.Join(cmd.Command, " ")
	fr.commands = append(fr.commands, key)
	if err, ok := fr.failures[key]; ok {
		return "", err
	}
	return fr.outputs[key], nil
}

// fakeTool stands in for Yarn. Pack writes the workspace name into the archive, unless the workspace is listed in skipPack.
type fakeTool struct {
	workspaces []entities.Workspace
	skipPack   map[string]bool
	installErr error
	buildErr   error
	calls      []string
	// packedManifests holds the package.json content of each workspace at the time it was packed.
	packedManifests map[string]string
	checkoutDir     string
}

func (ft *fakeTool) ListWorkspaces() ([]entities.Workspace, error) {
	ft.calls = append(ft.calls, "list")
	return ft.workspaces, nil
}

func (ft *fakeTool) Install() error {
	ft.calls = append(ft.calls, "install")
	return ft.installErr
}

func (ft *fakeTool) BuildWorkspaces(scope string, excludes []string) error {
	ft.calls = append(ft.calls, "build "+scope+" "+strings.Join(excludes, ","))
	return ft.buildErr
}

func (ft *fakeTool) Pack(workspace entities.Workspace, outFile string) error {
	ft.calls = append(ft.calls, "pack "+workspace.Name)
	if ft.checkoutDir != "" {
		content, err := os.ReadFile(filepath.Join(workspace.Dir(ft.checkoutDir), "package.json"))
		if err == nil {
			if ft.packedManifests == nil {
				ft.packedManifests = map[string]string{}
			}
			ft.packedManifests[workspace.Name] = string(content)
		}
	}
	if ft.skipPack[workspace.Name] {
		return nil
	}
	return os.WriteFile(outFile, []byte(workspace.Name), 0644)
}

func (ft *fakeTool) countCalls(prefix string) (count int) {
	for _, call := range ft.calls {
		if strings.HasPrefix(call, prefix) {
			count++
		}
	}
	return
}

type fakeCheckout struct {
	err   error
	calls int
}

func (fc *fakeCheckout) Checkout(dir, ref, sourceURL string) error {
	fc.calls++
	if fc.err != nil {
		return fc.err
	}
	return os.MkdirAll(dir, 0777)
}

func writePackageJson(t *testing.T, dir, content string) {
	require.NoError(t, os.MkdirAll(dir, 0777))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(content), 0644))
}

func listFileNames(t *testing.T, dir string) []string {
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}
