package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Permission constants for file and directory modes.
const (
	// PermUserRead is the user-read permission bit (0400).
	PermUserRead os.FileMode = 0400
	// PermUserWrite is the user-write permission bit (0200).
	PermUserWrite os.FileMode = 0200

	// UserWritableDirPerms represents the standard permissions for newly created directories (rwxr-xr-x).
	UserWritableDirPerms os.FileMode = 0755
	// UserWritableFilePerms represents the standard permissions for newly created files (rw-r--r--).
	UserWritableFilePerms os.FileMode = 0644
)

// ErrMalformedPath is returned by AbsPath for paths that can never name a filesystem entry.
var ErrMalformedPath = errors.New("malformed path")

// WithUserWritePermission ensures that any directory/file permission has the owner-write
// bit (0200) set. A copied read-only file must stay deletable by the user who copied it.
func WithUserWritePermission(basePerm os.FileMode) os.FileMode {
	return basePerm | PermUserWrite
}

// IsHostCaseInsensitiveFS checks if the current operating system (the "host") has a case-insensitive filesystem by default.
func IsHostCaseInsensitiveFS() bool {
	return runtime.GOOS == "windows" || runtime.GOOS == "darwin"
}

// ExpandPath expands the tilde (~) prefix in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil // No tilde, return as-is.
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get user home directory: %w", err)
	}

	// Replace the tilde with the home directory.
	return filepath.Join(home, path[1:]), nil
}

// AbsPath resolves a caller supplied path to its absolute, cleaned form.
// Every path is passed through here before it is compared or mutated.
func AbsPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: empty path", ErrMalformedPath)
	}
	if strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("%w: %q contains a NUL byte", ErrMalformedPath, path)
	}
	expanded, err := ExpandPath(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("%w: cannot resolve %q: %v", ErrMalformedPath, path, err)
	}
	return filepath.Clean(abs), nil
}

// PathSegments returns every prefix of an absolute path, ordered from the
// filesystem root down to the path itself. The root is always the first element.
func PathSegments(absPath string) []string {
	var segments []string
	for p := filepath.Clean(absPath); ; p = filepath.Dir(p) {
		segments = append(segments, p)
		if filepath.Dir(p) == p {
			break
		}
	}
	// Reverse so the root comes first.
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return segments
}

// IsRoot reports whether p is a filesystem root ("/", "C:\", "\\server\share\").
func IsRoot(p string) bool {
	return filepath.Dir(p) == p
}

// IsSubPath reports whether child lies strictly below parent. Both must be
// absolute and clean. Case is ignored where SamePath ignores it.
func IsSubPath(parent, child string) bool {
	if IsHostCaseInsensitiveFS() {
		parent, child = strings.ToLower(parent), strings.ToLower(child)
	}
	rel, err := filepath.Rel(parent, child)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// SamePath compares two absolute paths, ignoring case on hosts whose default filesystem does.
func SamePath(a, b string) bool {
	if IsHostCaseInsensitiveFS() {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// Rebase replaces the leading base of path with newBase. Paths not under base
// are returned unchanged. The prefix match follows SamePath.
func Rebase(path, base, newBase string) string {
	if len(path) < len(base) || !SamePath(path[:len(base)], base) {
		return path
	}
	rest := path[len(base):]
	if rest != "" && !os.IsPathSeparator(rest[0]) {
		return path
	}
	return newBase + rest
}
