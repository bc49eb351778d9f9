package compare

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

const diffContextLines = 3

// DiffTrees compares two directory trees file by file and returns a unified diff, or an empty string when they are identical.
// Paths in the diff are prefixed with the base names of the directories.
func DiffTrees(fromDir, toDir string) (string, error) {
	fromFiles, err := listFiles(fromDir)
	if err != nil {
		return "", err
	}
	toFiles, err := listFiles(toDir)
	if err != nil {
		return "", err
	}
	fromName, toName := filepath.Base(fromDir), filepath.Base(toDir)
	var out strings.Builder
	for _, path := range unionKeys(fromFiles, toFiles) {
		fromContent, inFrom := fromFiles[path]
		toContent, inTo := toFiles[path]
		switch {
		case !inTo:
			out.WriteString("Only in " + fromName + ": " + path + "\n")
		case !inFrom:
			out.WriteString("Only in " + toName + ": " + path + "\n")
		case !bytes.Equal(fromContent, toContent):
			diff, err := diffFile(fromName+"/"+path, toName+"/"+path, fromContent, toContent)
			if err != nil {
				return "", err
			}
			out.WriteString(diff)
		}
	}
	return out.String(), nil
}

func diffFile(fromPath, toPath string, fromContent, toContent []byte) (string, error) {
	if !isText(fromContent) || !isText(toContent) {
		return "Binary files " + fromPath + " and " + toPath + " differ\n", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(fromContent)),
		B:        difflib.SplitLines(string(toContent)),
		FromFile: fromPath,
		ToFile:   toPath,
		Context:  diffContextLines,
	})
}

func isText(content []byte) bool {
	return utf8.Valid(content) && bytes.IndexByte(content, 0) == -1
}

// listFiles reads every regular file under root, keyed by its slash separated relative path.
func listFiles(root string) (map[string][]byte, error) {
	files := map[string][]byte{}
	fsys := os.DirFS(root)
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, err error) error {
		if err != nil || !entry.Type().IsRegular() {
			return err
		}
		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		files[path] = content
		return nil
	})
	return files, err
}

func unionKeys(a, b map[string][]byte) []string {
	var keys []string
	for key := range a {
		keys = append(keys, key)
	}
	for key := range b {
		if _, ok := a[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}
