// Package config resolves the workspace base directory.
//
// The entire configuration surface is one environment variable: WORKOS_HOME
// points at the workspace root (holding .system/, Knowledge/, and People/).
// When unset, the current working directory is used.
package config

import (
	"os"
	"path/filepath"
)

// EnvHome is the environment variable naming the workspace root.
const EnvHome = "WORKOS_HOME"

// BaseDir returns the workspace root: WORKOS_HOME when set, otherwise the
// current working directory. Relative paths are made absolute.
func BaseDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return filepath.Abs(dir)
	}
	return os.Getwd()
}
