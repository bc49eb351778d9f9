package utils

import (
	"bufio"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/pkg/errors"

	"github.com/jfrog/workspace-packager/entities"
)

const rootWorkspaceLocation = "."

// ParseWorkspacesList parses the output of 'yarn workspaces list --json'.
// Each line is a JSON object, for example: {"location":"packages/ui","name":"@scope/ui"}.
// Lines that aren't JSON objects (Yarn sometimes prints notices) are skipped.
func ParseWorkspacesList(output string) ([]entities.Workspace, error) {
	var workspaces []entities.Workspace
	scanner := bufio.NewScanner(strings.NewReader(output))
	// Big monorepos can print long lines.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "{") {
			continue
		}
		data := []byte(line)
		location, err := jsonparser.GetString(data, "location")
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read the location of workspace entry: %s", line)
		}
		// The root workspace of a private monorepo may have no name.
		name, err := jsonparser.GetString(data, "name")
		if err != nil && !errors.Is(err, jsonparser.KeyPathNotFoundError) {
			return nil, errors.Wrapf(err, "failed to read the name of workspace entry: %s", line)
		}
		workspaces = append(workspaces, entities.Workspace{Name: name, Location: location})
	}
	return workspaces, scanner.Err()
}

// FilterByScope keeps the workspaces whose name starts with '<scope>/'.
// The root workspace is never kept: packing it would pack the whole monorepo.
func FilterByScope(workspaces []entities.Workspace, scope string) (matched []entities.Workspace) {
	prefix := scope + "/"
	for _, workspace := range workspaces {
		if workspace.Location == rootWorkspaceLocation {
			continue
		}
		if strings.HasPrefix(workspace.Name, prefix) {
			matched = append(matched, workspace)
		}
	}
	return
}

// ReadPackageVersion returns the 'version' field of a package.json content. An absent version is returned as empty.
func ReadPackageVersion(packageJson []byte) (string, error) {
	version, err := jsonparser.GetString(packageJson, "version")
	if errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return "", nil
	}
	return version, err
}
