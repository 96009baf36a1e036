package xdg

import (
	"os"
	"path/filepath"
)

// CacheHome returns the XDG cache directory for user-specific
// non-essential data, with XDG Base Directory fallbacks when unset.
func CacheHome() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv("HOME")
		if homeDir == "" {
			homeDir = "/tmp" // Last resort fallback
		}
	}
	return filepath.Join(homeDir, ".cache")
}

// CacheDir returns a subdirectory of the cache home for app to use.
func CacheDir(app string, parts ...string) string {
	elems := append([]string{CacheHome(), app}, parts...)
	return filepath.Join(elems...)
}
