// Package utils collects the small filesystem and TOML helpers shared by
// the config layer and the binaries.
package utils

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// DirCheckResult reports what a directory probe found.
type DirCheckResult struct {
	Exists   bool
	Writable bool
	Error    error
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDir creates the directory if it doesn't exist.
func EnsureDir(dirPath string) error {
	return os.MkdirAll(dirPath, 0755)
}

// SaveTOMLFile writes data to filePath as TOML.
func SaveTOMLFile(data any, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		log.Errorf("Failed to create file: %v", err)
		return err
	}
	defer file.Close()
	return toml.NewEncoder(file).Encode(data)
}

// GetAbsolutePath returns path made absolute when possible.
func GetAbsolutePath(path string) string {
	if path == "" {
		return "unknown"
	}
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
	}
	return path
}

// GetExecutableDir returns the directory of the running binary. Fallback
// for environments where the user config dir cannot be used.
func GetExecutableDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(execPath), nil
}

// CheckDirStatus probes whether a directory exists (creating it if it
// doesn't) and whether it is writable.
func CheckDirStatus(dirPath string) DirCheckResult {
	info, err := os.Stat(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			if mkErr := os.MkdirAll(dirPath, 0755); mkErr != nil {
				return DirCheckResult{Error: mkErr}
			}
			return DirCheckResult{Exists: true, Writable: testWriteAccess(dirPath)}
		}
		return DirCheckResult{Error: err}
	}
	if !info.IsDir() {
		return DirCheckResult{Exists: false}
	}
	return DirCheckResult{Exists: true, Writable: testWriteAccess(dirPath)}
}

func testWriteAccess(dirPath string) bool {
	testFile := filepath.Join(dirPath, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		log.Warnf("Cannot write to directory %s: %v", dirPath, err)
		return false
	}
	file.Close()
	os.Remove(testFile)
	return true
}
