package compare

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mholt/archiver/v3"
	"github.com/pkg/errors"

	"github.com/jfrog/workspace-packager/entities"
	"github.com/jfrog/workspace-packager/utils"
)

const (
	localDirName    = "local"
	registryDirName = "registry"
)

// MismatchError is returned when the local build of a package differs from its published tarball.
type MismatchError struct {
	Package string
	Version string
	Diff    string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("the local build of %s differs from the published %s:\n%s", e.Package, e.Version, e.Diff)
}

// Packager runs the packaging pipeline for a single package.
type Packager interface {
	Run() (*entities.ArchiveResult, error)
}

// Comparator verifies that a package built from source is byte identical to the one in the registry.
// It never uploads anything.
type Comparator struct {
	packager Packager
	registry *RegistryClient
	log      utils.Log
}

func NewComparator(packager Packager, registry *RegistryClient, log utils.Log) *Comparator {
	return &Comparator{packager: packager, registry: registry, log: log}
}

func (c *Comparator) Compare(ctx context.Context, request *entities.CompareRequest) (err error) {
	result, err := c.packager.Run()
	if err != nil {
		return err
	}
	localArchive, err := findArchive(result, request.Package)
	if err != nil {
		return err
	}
	version := request.RegistryVersion()
	tarballURL, err := c.registry.TarballURL(ctx, request.Package, version)
	if err != nil {
		return err
	}

	tempDir, err := utils.CreateTempDir()
	if err != nil {
		return err
	}
	defer func() {
		if removeErr := utils.RemoveTempDir(tempDir); err == nil {
			err = removeErr
		}
	}()
	registryArchive := filepath.Join(tempDir, entities.ArchiveFileName(request.Package))
	c.log.Info("Downloading", tarballURL)
	if err = c.registry.Download(ctx, tarballURL, registryArchive); err != nil {
		return err
	}
	localDir, registryDir := filepath.Join(tempDir, localDirName), filepath.Join(tempDir, registryDirName)
	if err = archiver.Unarchive(localArchive, localDir); err != nil {
		return errors.Wrapf(err, "failed extracting '%s'", localArchive)
	}
	if err = archiver.Unarchive(registryArchive, registryDir); err != nil {
		return errors.Wrapf(err, "failed extracting the registry tarball of %s@%s", request.Package, version)
	}

	diff, err := DiffTrees(registryDir, localDir)
	if err != nil {
		return err
	}
	if diff != "" {
		return &MismatchError{Package: request.Package, Version: version, Diff: diff}
	}
	c.log.Output(fmt.Sprintf("The local build of %s is identical to the published %s", request.Package, version))
	return nil
}

func findArchive(result *entities.ArchiveResult, packageName string) (string, error) {
	for _, file := range result.Files {
		if file.Workspace.Name == packageName {
			return file.Path, nil
		}
	}
	return "", errors.Errorf("no archive was produced for %s", packageName)
}
