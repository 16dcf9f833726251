package project

import (
	"os"
	"path"

	"github.com/mandelsoft/vfs/pkg/vfs"
)

// copyTree copies the file or directory src to dst, merging into an
// existing directory and replacing existing files. Entries for which skip
// returns true are left out at every depth.
func copyTree(fs vfs.FileSystem, src, dst string, skip func(string) bool) error {
	fi, err := fs.Stat(src)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return copyFile(fs, src, dst, fi.Mode().Perm())
	}
	if err := fs.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	for _, e := range listDir(fs, src) {
		if skip != nil && skip(e.name) {
			continue
		}
		if err := copyTree(fs, path.Join(src, e.name), path.Join(dst, e.name), skip); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(fs vfs.FileSystem, src, dst string, perm os.FileMode) error {
	data, err := vfs.ReadFile(fs, src)
	if err != nil {
		return err
	}
	if perm == 0 {
		perm = 0o644
	}
	if err := fs.MkdirAll(path.Dir(dst), 0o755); err != nil {
		return err
	}
	return vfs.WriteFile(fs, dst, data, perm)
}
