// Package dirs provides project root resolution for startsvc.
// Service sources, the virtual environment and the logs directory are all
// addressed relative to this root, regardless of the caller's working
// directory.
package dirs

import (
	"os"
	"path/filepath"
)

// SourcesDir is the directory under the root that holds one subdirectory per service.
const SourcesDir = "src"

// LogsDir is the directory under the root that receives log and PID files.
const LogsDir = "logs"

// Root returns the default project root: the directory of the running binary
// or its parent if either holds src/, otherwise the working directory.
// Explicit overrides (--root, STARTSVC_ROOT) are the caller's business.
func Root() string {
	for _, dir := range candidates() {
		if isDir(filepath.Join(dir, SourcesDir)) {
			return dir
		}
	}

	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// candidates returns root candidates in priority order.
func candidates() []string {
	var out []string
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		dir := filepath.Dir(exe)
		// Binaries installed under <root>/bin are common too.
		out = append(out, dir, filepath.Dir(dir))
	}
	return out
}

// ServiceDir returns src/<name> under root.
func ServiceDir(root, name string) string {
	return filepath.Join(root, SourcesDir, name)
}

// LogPath returns logs/<name>_<port>.log under root.
func LogPath(root, name, port string) string {
	return filepath.Join(root, LogsDir, name+"_"+port+".log")
}

// PIDPath returns logs/<name>_<port>.pid under root.
func PIDPath(root, name, port string) string {
	return filepath.Join(root, LogsDir, name+"_"+port+".pid")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
