package config

import (
	"os"
	"path/filepath"
)

// Discover returns the config file eva should read: .eva/config.yaml in the
// current directory or the nearest ancestor, else the user-level file.
// It returns "" when neither exists.
func Discover() string {
	if root, ok := DetectProjectRoot(); ok {
		path := filepath.Join(root, DirName, FileName)
		if fileExists(path) {
			return path
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		path := filepath.Join(dir, "eva", FileName)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// DetectProjectRoot attempts to find the current project by walking up from
// the current directory looking for .eva/.
func DetectProjectRoot() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	return findProjectRoot(dir)
}

// findProjectRoot walks up from dir looking for a .eva/ directory.
func findProjectRoot(dir string) (string, bool) {
	home, _ := os.UserHomeDir()

	for {
		evaDir := filepath.Join(dir, DirName)
		if info, err := os.Stat(evaDir); err == nil && info.IsDir() {
			// ~/.eva is not a project
			if home == "" || dir != home {
				return dir, true
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached filesystem root
		}
		// Don't go above home directory
		if home != "" && dir == home {
			break
		}
		dir = parent
	}
	return "", false
}

// defaultDataDir keeps history next to a project config, otherwise in the
// user data directory.
func defaultDataDir(configPath string) string {
	if configPath != "" && filepath.Base(filepath.Dir(configPath)) == DirName {
		return filepath.Dir(configPath)
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "eva")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "eva")
	}
	return DirName
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
