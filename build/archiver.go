package build

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/jfrog/workspace-packager/entities"
	"github.com/jfrog/workspace-packager/utils"
)

// Archiver packs workspaces into deterministic archive files inside the output directory.
type Archiver struct {
	tool               WorkspaceTool
	checkoutDir        string
	outputDir          string
	clean              bool
	patchPublishConfig bool
	sbom               bool
	log                utils.Log
}

func NewArchiver(tool WorkspaceTool, request *entities.BuildRequest, log utils.Log) *Archiver {
	return &Archiver{
		tool:               tool,
		checkoutDir:        request.CheckoutDir,
		outputDir:          request.OutputDir,
		clean:              request.Clean,
		patchPublishConfig: request.PatchPublishConfig,
		sbom:               request.SBOM,
		log:                log,
	}
}

// CheckArchiveNames fails when two workspaces map to the same archive file name.
func CheckArchiveNames(workspaces []entities.Workspace) error {
	owners := make(map[string]string, len(workspaces))
	for _, workspace := range workspaces {
		fileName := workspace.ArchiveFileName()
		if owner, exists := owners[fileName]; exists {
			return errors.Wrapf(ErrArchiveNameCollision, "'%s' and '%s' both map to '%s'", owner, workspace.Name, fileName)
		}
		owners[fileName] = workspace.Name
	}
	return nil
}

// Pack produces one archive per target, then writes the overrides file (and the BOM if requested) next to them.
func (a *Archiver) Pack(targets []entities.Workspace) (*entities.ArchiveResult, error) {
	if err := CheckArchiveNames(targets); err != nil {
		return nil, err
	}
	if err := a.prepareOutputDir(); err != nil {
		return nil, err
	}
	result := &entities.ArchiveResult{OutputDir: a.outputDir}
	for _, workspace := range targets {
		outFile := filepath.Join(a.outputDir, workspace.ArchiveFileName())
		if err := a.packWorkspace(workspace, outFile); err != nil {
			return nil, err
		}
		exists, err := utils.IsFileExists(outFile, false)
		if err != nil {
			return nil, err
		}
		if !exists {
			a.log.Warn("Packing " + workspace.Name + " didn't produce " + outFile)
			continue
		}
		result.Files = append(result.Files, entities.ArchiveFile{Workspace: workspace, Path: outFile})
	}
	if len(result.Files) == 0 {
		return nil, errors.Wrapf(ErrNoArchives, "packed %d workspaces into '%s'", len(targets), a.outputDir)
	}
	if err := writeOverrides(result); err != nil {
		return nil, err
	}
	if a.sbom {
		if err := writeSbom(result, a.checkoutDir); err != nil {
			return nil, err
		}
	}
	a.log.Info("Packed", len(result.Files), "archives into", a.outputDir)
	return result, nil
}

func (a *Archiver) prepareOutputDir() error {
	if a.clean {
		a.log.Debug("Cleaning the output directory", a.outputDir)
		return utils.ResetDir(a.outputDir)
	}
	return utils.CreateDirIfNotExist(a.outputDir)
}

func (a *Archiver) packWorkspace(workspace entities.Workspace, outFile string) (err error) {
	if a.patchPublishConfig {
		var restore func() error
		restore, err = patchPublishConfig(workspace.Dir(a.checkoutDir), a.log)
		if err != nil {
			return err
		}
		defer func() {
			if restoreErr := restore(); restoreErr != nil && err == nil {
				err = errors.Wrapf(restoreErr, "failed restoring the package.json of '%s'", workspace.Name)
			}
		}()
	}
	return a.tool.Pack(workspace, outFile)
}

type overrides struct {
	Resolutions map[string]string `json:"resolutions"`
}

// writeOverrides maps each packed workspace to its archive, relative to the output directory,
// using the 'file:' protocol understood by Yarn and npm.
func writeOverrides(result *entities.ArchiveResult) error {
	content := overrides{Resolutions: make(map[string]string, len(result.Files))}
	for _, file := range result.Files {
		content.Resolutions[file.Workspace.Name] = "file:./" + file.FileName()
	}
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(result.OutputDir, entities.OverridesFileName), append(data, '\n'), 0644)
}
