package platform

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	// SystemDir is the hidden directory holding the data file and config.
	SystemDir = ".recall"
	// RootDataFile marks a root whose document lives in plain sight.
	RootDataFile = "recall.yaml"
	// ConfigFile is the CLI configuration inside SystemDir.
	ConfigFile = "config.yaml"

	defaultDataFile = "recall.json"
	defaultDBFile   = "recall.db"
)

// ErrRootNotFound is returned by FindRoot when no marker is found.
var ErrRootNotFound = errors.New("recall root not found")

// FindRoot looks upwards from startDir for a directory holding a .recall
// directory or a recall.yaml file and returns its absolute path.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for dir := abs; ; {
		if isDir(filepath.Join(dir, SystemDir)) || isFile(filepath.Join(dir, RootDataFile)) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrRootNotFound
		}
		dir = parent
	}
}

// DataPath resolves the storage location for uri. A uri naming a file with
// an extension is used as is. A directory resolves to its recall.yaml when
// present, otherwise to the adapter's default file inside .recall.
func DataPath(uri, adapter string) string {
	if ext := strings.ToLower(filepath.Ext(uri)); ext != "" && !isDir(uri) {
		return uri
	}
	if adapter != AdapterSQLite {
		if root := filepath.Join(uri, RootDataFile); isFile(root) {
			return root
		}
	}
	if adapter == AdapterSQLite {
		return filepath.Join(uri, SystemDir, defaultDBFile)
	}
	return filepath.Join(uri, SystemDir, defaultDataFile)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
