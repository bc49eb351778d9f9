package entities

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidBuildRequest(t *testing.T) BuildRequest {
	root := t.TempDir()
	return BuildRequest{
		Ref:         DefaultRef,
		SourceRepo:  "https://github.com/acme/monorepo.git",
		CheckoutDir: filepath.Join(root, "checkout"),
		OutputDir:   filepath.Join(root, "dist"),
		Scope:       "@acme",
		Excludes:    DefaultExcludes,
	}
}

func TestBuildRequestValidate(t *testing.T) {
	request := newValidBuildRequest(t)
	request.Packages = []string{"ui", "@acme/icons", "ui", " "}
	require.NoError(t, request.Validate())
	assert.Equal(t, []string{"@acme/ui", "@acme/icons"}, request.Packages)
	assert.Equal(t, []string{"@acme/e2e-tests", "@acme/playground", "@acme/storybook"}, request.Excludes)
	assert.True(t, filepath.IsAbs(request.CheckoutDir))
	assert.True(t, filepath.IsAbs(request.OutputDir))
}

func TestBuildRequestValidateErrors(t *testing.T) {
	testCases := []struct {
		name          string
		mutate        func(br *BuildRequest)
		expectedField string
	}{
		{"missing ref", func(br *BuildRequest) { br.Ref = "" }, "ref"},
		{"missing source repo", func(br *BuildRequest) { br.SourceRepo = " " }, "source-repo"},
		{"missing scope", func(br *BuildRequest) { br.Scope = "" }, "scope"},
		{"scope without at sign", func(br *BuildRequest) { br.Scope = "acme" }, "scope"},
		{"scope with slash", func(br *BuildRequest) { br.Scope = "@acme/ui" }, "scope"},
		{"output equals checkout", func(br *BuildRequest) { br.OutputDir = br.CheckoutDir }, "output-dir"},
		{"output inside checkout", func(br *BuildRequest) { br.OutputDir = filepath.Join(br.CheckoutDir, "dist") }, "output-dir"},
		{"checkout inside output", func(br *BuildRequest) { br.CheckoutDir = filepath.Join(br.OutputDir, "src") }, "output-dir"},
		{"artifact without name", func(br *BuildRequest) { br.CIArtifact = true }, "artifact-name"},
		{"package excluded", func(br *BuildRequest) { br.Packages = []string{"playground"} }, "package"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			request := newValidBuildRequest(t)
			testCase.mutate(&request)
			err := request.Validate()
			var configErr *ConfigError
			require.True(t, errors.As(err, &configErr), "expected a ConfigError, got %v", err)
			assert.Equal(t, testCase.expectedField, configErr.Field)
		})
	}
}

func TestReleaseRequestValidate(t *testing.T) {
	request := ReleaseRequest{Build: newValidBuildRequest(t), Version: "0.25.5", Repository: "acme/ui-artifacts", Token: "token"}
	require.NoError(t, request.Validate())
	assert.Equal(t, "0.25.5", request.Tag)
	assert.Equal(t, "acme", request.Owner)
	assert.Equal(t, "ui-artifacts", request.Repo)
	assert.Equal(t, "acme/ui-artifacts@0.25.5", request.Target().String())

	custom := ReleaseRequest{Build: newValidBuildRequest(t), Version: "0.25.5", Tag: "ui-0.25.5", Repository: "acme/ui-artifacts", Token: "token"}
	require.NoError(t, custom.Validate())
	assert.Equal(t, "ui-0.25.5", custom.Tag)

	ciBuild := newValidBuildRequest(t)
	ciBuild.CIArtifact = true
	for name, request := range map[string]ReleaseRequest{
		"ci-artifact": {Build: ciBuild, Version: "1.0.0", Repository: "acme/ui-artifacts", Token: "token"},
		"version":     {Build: newValidBuildRequest(t), Repository: "acme/ui-artifacts", Token: "token"},
		"token":       {Build: newValidBuildRequest(t), Version: "1.0.0", Repository: "acme/ui-artifacts"},
		"repo":        {Build: newValidBuildRequest(t), Version: "1.0.0", Repository: "acme", Token: "token"},
	} {
		err := request.Validate()
		var configErr *ConfigError
		require.True(t, errors.As(err, &configErr), name)
		assert.Equal(t, name, configErr.Field)
	}
}

func TestCompareRequestValidate(t *testing.T) {
	build := newValidBuildRequest(t)
	build.Ref = ""
	build.Packages = []string{"icons"}
	request := CompareRequest{Build: build, Version: "v1.2.3", Package: "ui", RegistryURL: "https://registry.example.com/"}
	require.NoError(t, request.Validate())
	assert.Equal(t, "v1.2.3", request.Build.Ref)
	assert.Equal(t, "@acme/ui", request.Package)
	assert.Equal(t, []string{"@acme/ui"}, request.Build.Packages)
	assert.Equal(t, "1.2.3", request.RegistryVersion())
	assert.Equal(t, "https://registry.example.com", request.RegistryURL)

	missing := CompareRequest{Build: newValidBuildRequest(t), Version: "1.2.3"}
	assert.ErrorContains(t, missing.Validate(), "'package' is required")
}
