package compare

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0777))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestDiffTreesIdentical(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{"package/package.json": "{}\n", "package/dist/index.js": "a\nb\n"}
	writeTree(t, filepath.Join(root, "registry"), files)
	writeTree(t, filepath.Join(root, "local"), files)

	diff, err := DiffTrees(filepath.Join(root, "registry"), filepath.Join(root, "local"))
	require.NoError(t, err)
	assert.Empty(t, diff)
}

func TestDiffTrees(t *testing.T) {
	root := t.TempDir()
	writeTree(t, filepath.Join(root, "registry"), map[string]string{
		"package/dist/index.js": "a\nb\nc\n",
		"package/CHANGELOG.md":  "changes\n",
		"package/font.woff":     "\x00old",
	})
	writeTree(t, filepath.Join(root, "local"), map[string]string{
		"package/dist/index.js": "a\nB\nc\n",
		"package/dist/extra.js": "extra\n",
		"package/font.woff":     "\x00new",
	})

	diff, err := DiffTrees(filepath.Join(root, "registry"), filepath.Join(root, "local"))
	require.NoError(t, err)
	assert.Equal(t, `Only in registry: package/CHANGELOG.md
Only in local: package/dist/extra.js
--- registry/package/dist/index.js
+++ local/package/dist/index.js
@@ -1,3 +1,3 @@
 a
-b
+B
 c
Binary files registry/package/font.woff and local/package/font.woff differ
`, diff)
}
