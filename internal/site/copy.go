package site

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// copyDirContents recursively copies everything under src into dst.
func copyDirContents(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("resolving relative path for %s: %w", path, err)
		}
		dstPath := filepath.Join(dst, relPath)

		if d.IsDir() {
			// os.ModePerm here on purpose: the umask trims it, whereas
			// copying a restrictive source mode can make the output
			// unreadable to the web server.
			if err := os.MkdirAll(dstPath, os.ModePerm); err != nil {
				return fmt.Errorf("creating directory %s: %w", dstPath, err)
			}
			return nil
		}
		if err := copyFile(path, dstPath); err != nil {
			return fmt.Errorf("copying %s to %s: %w", path, dstPath, err)
		}
		return nil
	})
}

func copyFile(srcFile, dstFile string) error {
	srcF, err := os.Open(srcFile)
	if err != nil {
		return err
	}
	defer srcF.Close()

	if err := os.MkdirAll(filepath.Dir(dstFile), os.ModePerm); err != nil {
		return err
	}
	dstF, err := os.Create(dstFile)
	if err != nil {
		return err
	}
	defer dstF.Close()

	if _, err := io.Copy(dstF, srcF); err != nil {
		return err
	}
	return nil
}
