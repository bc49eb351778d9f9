package entities

import (
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"
)

const (
	DefaultRef          = "main"
	DefaultArtifactName = "workspace-archives"
	DefaultRegistryURL  = "https://registry.npmjs.org"
)

// DefaultExcludes are the workspaces of the component library that are never distributed:
// the end-to-end test harness and the interactive demos.
var DefaultExcludes = []string{"e2e-tests", "playground", "storybook"}

// BuildRequest is the validated input of one packaging run.
type BuildRequest struct {
	Ref          string   `json:"ref" toml:"ref"`
	SourceRepo   string   `json:"sourceRepo" toml:"source-repo"`
	CheckoutDir  string   `json:"checkoutDir" toml:"checkout-dir"`
	OutputDir    string   `json:"outputDir" toml:"output-dir"`
	Scope        string   `json:"scope" toml:"scope"`
	Packages     []string `json:"packages" toml:"packages"`
	Excludes     []string `json:"excludes" toml:"excludes"`
	SkipInstall  bool     `json:"skipInstall" toml:"skip-install"`
	Clean        bool     `json:"clean" toml:"clean"`
	ArtifactName string   `json:"artifactName" toml:"artifact-name"`
	CIArtifact   bool     `json:"ciArtifact" toml:"ci-artifact"`
	// PatchPublishConfig promotes the publishConfig entry points of each package.json before packing.
	PatchPublishConfig bool `json:"patchPublishConfig" toml:"patch-publish-config"`
	SBOM               bool `json:"sbom" toml:"sbom"`
}

// Validate checks the request once at the CLI boundary and normalizes it: directories become absolute,
// and package and exclude names are qualified with the scope.
func (br *BuildRequest) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"ref", br.Ref},
		{"source-repo", br.SourceRepo},
		{"checkout-dir", br.CheckoutDir},
		{"output-dir", br.OutputDir},
		{"scope", br.Scope},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return NewConfigError(r.field, "is required")
		}
	}
	if !strings.HasPrefix(br.Scope, "@") || strings.Contains(br.Scope, "/") || len(br.Scope) < 2 {
		return NewConfigError("scope", "must look like '@name', got '"+br.Scope+"'")
	}
	var err error
	if br.CheckoutDir, err = filepath.Abs(br.CheckoutDir); err != nil {
		return err
	}
	if br.OutputDir, err = filepath.Abs(br.OutputDir); err != nil {
		return err
	}
	// The checkout must stay clean between runs, and cleaning the output must never reach the checkout.
	if br.OutputDir == br.CheckoutDir || isSubPath(br.OutputDir, br.CheckoutDir) || isSubPath(br.CheckoutDir, br.OutputDir) {
		return NewConfigError("output-dir", "must be outside the checkout directory")
	}
	if br.CIArtifact && strings.TrimSpace(br.ArtifactName) == "" {
		return NewConfigError("artifact-name", "is required when uploading a CI artifact")
	}
	br.Packages = br.qualifyAll(br.Packages)
	br.Excludes = br.qualifyAll(br.Excludes)
	for _, pkg := range br.Packages {
		if slices.Contains(br.Excludes, pkg) {
			return NewConfigError("package", "'"+pkg+"' is both requested and excluded")
		}
	}
	return nil
}

// QualifiedName prefixes a scope-relative package name with the request's scope.
// Names that already carry a scope are returned unchanged.
func (br *BuildRequest) QualifiedName(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "@") {
		return name
	}
	return br.Scope + "/" + name
}

func (br *BuildRequest) qualifyAll(names []string) []string {
	var qualified []string
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if q := br.QualifiedName(name); !slices.Contains(qualified, q) {
			qualified = append(qualified, q)
		}
	}
	return qualified
}

// isSubPath reports whether parent contains child.
func isSubPath(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	return err == nil && rel != "." && !strings.HasPrefix(rel, "..")
}

// ReleaseRequest packages the workspaces and attaches them to a release of Owner/Repo tagged Tag.
type ReleaseRequest struct {
	Build      BuildRequest
	Version    string
	Tag        string
	Repository string
	Owner      string
	Repo       string
	Token      string
}

func (rr *ReleaseRequest) Validate() error {
	if strings.TrimSpace(rr.Version) == "" {
		return NewConfigError("version", "is required")
	}
	if rr.Tag == "" {
		rr.Tag = rr.Version
	}
	if rr.Build.CIArtifact {
		return NewConfigError("ci-artifact", "can't be combined with uploading release assets")
	}
	if strings.TrimSpace(rr.Token) == "" {
		return NewConfigError("token", "is required for uploading release assets")
	}
	if strings.TrimSpace(rr.Repository) == "" {
		return NewConfigError("repo", "is required for uploading release assets")
	}
	parts := strings.Split(rr.Repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return NewConfigError("repo", "must be in the form 'owner/name', got '"+rr.Repository+"'")
	}
	rr.Owner, rr.Repo = parts[0], parts[1]
	return rr.Build.Validate()
}

func (rr *ReleaseRequest) Target() *ReleaseTarget {
	return &ReleaseTarget{Owner: rr.Owner, Repo: rr.Repo, Tag: rr.Tag}
}

// CompareRequest rebuilds Package from the source repository and compares it with the registry tarball of Version.
type CompareRequest struct {
	Build       BuildRequest
	Version     string
	Package     string
	RegistryURL string
}

func (cr *CompareRequest) Validate() error {
	if strings.TrimSpace(cr.Version) == "" {
		return NewConfigError("version", "is required")
	}
	if strings.TrimSpace(cr.Package) == "" {
		return NewConfigError("package", "is required")
	}
	if cr.Build.Ref == "" {
		cr.Build.Ref = cr.Version
	}
	if cr.RegistryURL == "" {
		cr.RegistryURL = DefaultRegistryURL
	}
	cr.RegistryURL = strings.TrimSuffix(cr.RegistryURL, "/")
	cr.Build.Packages = []string{cr.Package}
	cr.Build.CIArtifact = false
	cr.Build.SBOM = false
	if err := cr.Build.Validate(); err != nil {
		return err
	}
	cr.Package = cr.Build.Packages[0]
	return nil
}

// RegistryVersion is the version as published to the registry, without the tag's 'v' prefix.
func (cr *CompareRequest) RegistryVersion() string {
	return strings.TrimPrefix(cr.Version, "v")
}
