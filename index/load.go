package index

import (
	"os"
	"path/filepath"
	"strings"
)

// LoadIndex resolves a path to the right backend: zip archives open as
// ZipFileIndex, Badger store directories as BadgerIndex, other directories
// load as MultiIndex over their signature files, everything else as a
// LinearIndex from one signature file.
func LoadIndex(path string) (Index, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		if isBadgerDir(path) {
			return OpenBadgerIndex(path)
		}
		return MultiIndexFromPath(path, false)
	}
	if strings.HasSuffix(path, ".zip") {
		return OpenZipFileIndex(path, false)
	}
	return LoadLinearIndex(path)
}

func isBadgerDir(path string) bool {
	_, err := os.Stat(filepath.Join(path, "MANIFEST"))
	return err == nil
}
