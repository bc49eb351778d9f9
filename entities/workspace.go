package entities

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	ArchiveExtension = ".tgz"
	// OverridesFileName maps each packed workspace to its archive, in a form a dependent project can merge into its manifest.
	OverridesFileName = "resolutions.json"
	SbomFileName      = "bom.cdx.json"
)

// Workspace is one package of the source monorepo, as listed by the package manager.
type Workspace struct {
	Name string `json:"name"`
	// Location is relative to the checkout root.
	Location string `json:"location"`
}

// ShortName returns the name without its scope.
func (w Workspace) ShortName() string {
	if idx := strings.Index(w.Name, "/"); idx != -1 {
		return w.Name[idx+1:]
	}
	return w.Name
}

// ArchiveFileName maps '@scope/name' to 'scope-name.tgz'.
func (w Workspace) ArchiveFileName() string {
	return ArchiveFileName(w.Name)
}

func ArchiveFileName(packageName string) string {
	name := strings.ReplaceAll(packageName, "@", "")
	name = strings.ReplaceAll(name, "/", "-")
	return name + ArchiveExtension
}

func (w Workspace) Dir(checkoutDir string) string {
	return filepath.Join(checkoutDir, filepath.FromSlash(w.Location))
}

func (w Workspace) String() string {
	return fmt.Sprintf("%s (%s)", w.Name, w.Location)
}

type ArchiveFile struct {
	Workspace Workspace
	// Path is absolute.
	Path string
}

func (af ArchiveFile) FileName() string {
	return filepath.Base(af.Path)
}

// ArchiveResult lists the archives produced by one run, in packing order.
type ArchiveResult struct {
	OutputDir string
	Files     []ArchiveFile
}

func (ar *ArchiveResult) Paths() []string {
	paths := make([]string, 0, len(ar.Files))
	for _, file := range ar.Files {
		paths = append(paths, file.Path)
	}
	return paths
}

// ReleaseTarget is a tagged release of the artifacts repository. ID and Assets are filled once the release is resolved.
type ReleaseTarget struct {
	Owner string
	Repo  string
	Tag   string
	ID    int64
	// Assets maps an asset's file name to its ID.
	Assets map[string]int64
}

func (rt *ReleaseTarget) String() string {
	return fmt.Sprintf("%s/%s@%s", rt.Owner, rt.Repo, rt.Tag)
}
