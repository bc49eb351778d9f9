package build

import (
	"os"
	"path/filepath"

	"github.com/buger/jsonparser"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/jfrog/workspace-packager/utils"
)

// Entry points that publishConfig may redirect to the built output.
var publishConfigEntryPoints = []string{"main", "module", "types", "typings", "exports", "bin"}

// patchPublishConfig copies the entry points declared under publishConfig in the workspace's package.json
// to the top level, so the archive's export paths point at the built files.
// The returned function restores the original package.json and must be called after packing.
func patchPublishConfig(workspaceDir string, log utils.Log) (restore func() error, err error) {
	restore = func() error { return nil }
	packageJsonPath := filepath.Join(workspaceDir, "package.json")
	info, err := os.Stat(packageJsonPath)
	if err != nil {
		return restore, errors.Wrapf(err, "couldn't read the package.json of '%s'", workspaceDir)
	}
	original, err := os.ReadFile(packageJsonPath)
	if err != nil {
		return
	}
	patched, changed, err := promotePublishConfig(original)
	if err != nil {
		return restore, errors.Wrapf(err, "failed patching '%s'", packageJsonPath)
	}
	if !changed {
		return
	}
	log.Debug("Promoting publishConfig entry points in", packageJsonPath)
	if err = os.WriteFile(packageJsonPath, patched, info.Mode().Perm()); err != nil {
		return
	}
	return func() error {
		return os.WriteFile(packageJsonPath, original, info.Mode().Perm())
	}, nil
}

func promotePublishConfig(packageJson []byte) (patched []byte, changed bool, err error) {
	publishConfig, dataType, _, err := jsonparser.Get(packageJson, "publishConfig")
	if errors.Is(err, jsonparser.KeyPathNotFoundError) || (err == nil && dataType != jsonparser.Object) {
		return packageJson, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	// jsonparser.Set may write into its input, which still backs publishConfig.
	patched = append([]byte(nil), packageJson...)
	err = jsonparser.ObjectEach(publishConfig, func(key []byte, value []byte, dataType jsonparser.ValueType, offset int) error {
		if !slices.Contains(publishConfigEntryPoints, string(key)) {
			return nil
		}
		raw := value
		// String values are returned unquoted but still escaped.
		if dataType == jsonparser.String {
			raw = append(append([]byte{'"'}, value...), '"')
		}
		var setErr error
		patched, setErr = jsonparser.Set(patched, raw, string(key))
		changed = true
		return setErr
	})
	return
}
