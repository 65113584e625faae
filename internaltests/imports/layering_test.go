package imports_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// forbidden maps a directory prefix to import paths its files must not use.
var forbidden = map[string][]string{
	"": {
		"github.com/leeforge/framework",
	},
	"media/processor": {
		"github.com/leeforge/imagekit/media/batch",
		"github.com/leeforge/imagekit/media/storage",
		"github.com/leeforge/imagekit/metrics",
	},
	"media/storage": {
		"github.com/leeforge/imagekit/media/processor",
	},
	"metrics": {
		"github.com/leeforge/imagekit/media/",
	},
}

// cliOnly may only be imported under cmd/.
var cliOnly = []string{
	"\"github.com/spf13/cobra\"",
	"\"github.com/spf13/pflag\"",
	"\"github.com/leeforge/imagekit/cmd/",
}

func TestPackageLayering(t *testing.T) {
	root := filepath.Clean("../..")
	var hits []string

	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if strings.HasPrefix(rel, "_") || rel == "internaltests" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		b, _ := os.ReadFile(path)
		content := string(b)

		for prefix, imports := range forbidden {
			if !strings.HasPrefix(rel, prefix) {
				continue
			}
			for _, k := range imports {
				if strings.Contains(content, "\""+k) {
					hits = append(hits, rel+" -> "+k)
				}
			}
		}
		if !strings.HasPrefix(rel, "cmd/") {
			for _, k := range cliOnly {
				if strings.Contains(content, k) {
					hits = append(hits, rel+" -> "+k)
				}
			}
		}
		return nil
	})

	if len(hits) > 0 {
		t.Fatalf("layering violations: %v", hits[:min(10, len(hits))])
	}
}
