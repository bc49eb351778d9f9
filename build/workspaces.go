package build

import (
	"path"
	"path/filepath"
	"sort"

	buildutils "github.com/jfrog/workspace-packager/build/utils"
	"github.com/jfrog/workspace-packager/entities"
	"github.com/jfrog/workspace-packager/utils"
)

// Conventional directory of the monorepo's packages, listed to help diagnosing a missing layout.
const packagesDir = "packages"

// ListScopedWorkspaces lists the workspaces of the checkout whose names carry the scope, sorted by name.
// Enumeration is never cached: the layout may change between references.
func ListScopedWorkspaces(tool WorkspaceTool, checkoutDir, scope string, log utils.Log) ([]entities.Workspace, error) {
	all, err := tool.ListWorkspaces()
	if err != nil {
		return nil, err
	}
	matched := buildutils.FilterByScope(all, scope)
	if len(matched) == 0 {
		found, err := alternativeLocations(all, checkoutDir)
		if err != nil {
			return nil, err
		}
		return nil, &WorkspaceLayoutError{Scope: scope, Found: found}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Name < matched[j].Name
	})
	log.Info("Found", len(matched), "workspaces in scope", scope)
	for _, workspace := range matched {
		log.Debug("  " + workspace.String())
	}
	return matched, nil
}

func alternativeLocations(all []entities.Workspace, checkoutDir string) ([]string, error) {
	found := utils.NewStringSet()
	for _, workspace := range all {
		if workspace.Location != "" && workspace.Location != "." {
			found.Add(workspace.Location)
		}
	}
	dirs, err := utils.ListDirNames(filepath.Join(checkoutDir, packagesDir))
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		found.Add(path.Join(packagesDir, dir))
	}
	return found.ToSlice(), nil
}

// SelectTargets returns the workspaces to pack: the requested packages, or every non-excluded workspace when none were requested.
func SelectTargets(workspaces []entities.Workspace, packages, excludes []string) ([]entities.Workspace, error) {
	byName := make(map[string]entities.Workspace, len(workspaces))
	var names []string
	for _, workspace := range workspaces {
		byName[workspace.Name] = workspace
		names = append(names, workspace.Name)
	}
	if len(packages) == 0 {
		excluded := utils.NewStringSet(excludes...)
		var targets []entities.Workspace
		for _, workspace := range workspaces {
			if !excluded.Contains(workspace.Name) {
				targets = append(targets, workspace)
			}
		}
		return targets, nil
	}
	targets := make([]entities.Workspace, 0, len(packages))
	for _, pkg := range packages {
		workspace, ok := byName[pkg]
		if !ok {
			return nil, &UnknownPackageError{Package: pkg, Available: names}
		}
		targets = append(targets, workspace)
	}
	return targets, nil
}
