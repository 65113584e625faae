package imports_test

import (
	"bytes"
	"go/format"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSourcesAreGofmtted(t *testing.T) {
	root := filepath.Clean("../..")
	var unformatted []string

	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if strings.HasPrefix(rel, "_") || strings.HasPrefix(rel, ".") && rel != "." {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		formatted, err := format.Source(src)
		if err != nil {
			unformatted = append(unformatted, rel+": "+err.Error())
			return nil
		}
		if !bytes.Equal(src, formatted) {
			unformatted = append(unformatted, rel)
		}
		return nil
	})

	if len(unformatted) > 0 {
		t.Fatalf("files need gofmt:\n  %s", strings.Join(unformatted, "\n  "))
	}
}
