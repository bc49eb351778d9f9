package build

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	cdx "github.com/CycloneDX/cyclonedx-go"

	buildutils "github.com/jfrog/workspace-packager/build/utils"
	"github.com/jfrog/workspace-packager/entities"
	"github.com/jfrog/workspace-packager/utils"
)

// writeSbom describes the archives as a CycloneDX BOM, one library component per archive.
func writeSbom(result *entities.ArchiveResult, checkoutDir string) (err error) {
	components := make([]cdx.Component, 0, len(result.Files))
	for _, file := range result.Files {
		component, err := archiveToComponent(file, checkoutDir)
		if err != nil {
			return err
		}
		components = append(components, *component)
	}
	bom := cdx.NewBOM()
	bom.Components = &components

	out, err := os.Create(filepath.Join(result.OutputDir, entities.SbomFileName))
	if err != nil {
		return
	}
	defer func() {
		err = errors.Join(err, out.Close())
	}()
	encoder := cdx.NewBOMEncoder(out, cdx.BOMFileFormatJSON)
	encoder.SetPretty(true)
	return encoder.Encode(bom)
}

func archiveToComponent(file entities.ArchiveFile, checkoutDir string) (*cdx.Component, error) {
	packageJson, err := os.ReadFile(filepath.Join(file.Workspace.Dir(checkoutDir), "package.json"))
	if err != nil {
		return nil, err
	}
	version, err := buildutils.ReadPackageVersion(packageJson)
	if err != nil {
		return nil, err
	}
	details, err := utils.GetFileDetails(file.Path)
	if err != nil {
		return nil, err
	}
	purl := npmPackageUrl(file.Workspace.Name, version)
	component := &cdx.Component{
		BOMRef:     purl,
		Type:       cdx.ComponentTypeLibrary,
		Name:       file.Workspace.ShortName(),
		Version:    version,
		PackageURL: purl,
		Hashes: &[]cdx.Hash{
			{Algorithm: cdx.HashAlgoSHA256, Value: details.Sha256},
			{Algorithm: cdx.HashAlgoSHA1, Value: details.Sha1},
		},
		Properties: &[]cdx.Property{{Name: "archive", Value: file.FileName()}},
	}
	if strings.HasPrefix(file.Workspace.Name, "@") && strings.Contains(file.Workspace.Name, "/") {
		component.Group = file.Workspace.Name[:strings.Index(file.Workspace.Name, "/")]
	}
	return component, nil
}

// npmPackageUrl builds a purl such as 'pkg:npm/%40scope/name@1.0.0'.
func npmPackageUrl(name, version string) string {
	purl := "pkg:npm/" + strings.Replace(name, "@", "%40", 1)
	if version != "" {
		purl += "@" + version
	}
	return purl
}
