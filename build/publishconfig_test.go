package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/buger/jsonparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfrog/workspace-packager/utils"
)

const packageJsonWithPublishConfig = `{
  "name": "@acme/ui",
  "version": "0.25.5",
  "main": "src/index.ts",
  "exports": {".": "./src/index.ts"},
  "publishConfig": {
    "access": "public",
    "main": "dist/index.js",
    "types": "dist/index.d.ts",
    "exports": {".": {"import": "./dist/index.mjs", "require": "./dist/index.js"}}
  }
}`

func TestPromotePublishConfig(t *testing.T) {
	patched, changed, err := promotePublishConfig([]byte(packageJsonWithPublishConfig))
	require.NoError(t, err)
	assert.True(t, changed)

	main, err := jsonparser.GetString(patched, "main")
	require.NoError(t, err)
	assert.Equal(t, "dist/index.js", main)
	types, err := jsonparser.GetString(patched, "types")
	require.NoError(t, err)
	assert.Equal(t, "dist/index.d.ts", types)
	imported, err := jsonparser.GetString(patched, "exports", ".", "import")
	require.NoError(t, err)
	assert.Equal(t, "./dist/index.mjs", imported)
	// Only entry points are promoted.
	_, _, _, err = jsonparser.Get(patched, "access")
	assert.ErrorIs(t, err, jsonparser.KeyPathNotFoundError)
	// The publishConfig itself is kept.
	access, err := jsonparser.GetString(patched, "publishConfig", "access")
	require.NoError(t, err)
	assert.Equal(t, "public", access)
}

func TestPromotePublishConfigWithoutEntryPoints(t *testing.T) {
	testCases := []string{
		`{"name":"@acme/ui","main":"index.js"}`,
		`{"name":"@acme/ui","publishConfig":{"access":"public"}}`,
		`{"name":"@acme/ui","publishConfig":"public"}`,
	}
	for _, packageJson := range testCases {
		patched, changed, err := promotePublishConfig([]byte(packageJson))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, packageJson, string(patched))
	}
}

func TestPatchPublishConfigRestores(t *testing.T) {
	dir := t.TempDir()
	writePackageJson(t, dir, packageJsonWithPublishConfig)

	restore, err := patchPublishConfig(dir, &utils.NullLog{})
	require.NoError(t, err)
	patched, err := os.ReadFile(filepath.Join(dir, "package.json"))
	require.NoError(t, err)
	assert.NotEqual(t, packageJsonWithPublishConfig, string(patched))

	require.NoError(t, restore())
	restored, err := os.ReadFile(filepath.Join(dir, "package.json"))
	require.NoError(t, err)
	assert.Equal(t, packageJsonWithPublishConfig, string(restored))
}

func TestPatchPublishConfigMissingPackageJson(t *testing.T) {
	_, err := patchPublishConfig(t.TempDir(), &utils.NullLog{})
	assert.Error(t, err)
}
