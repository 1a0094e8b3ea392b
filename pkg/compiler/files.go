package compiler

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

func writeFiles(dir string, files map[string][]byte) error {
	if dir == "" {
		return errors.New("compiler: empty output dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "compiler: create output dir")
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, files[name], 0o644); err != nil {
			return errors.Wrapf(err, "compiler: write %s", name)
		}
	}
	return nil
}
