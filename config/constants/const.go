package constants

import (
	"os"
	"path/filepath"
)

const (
	DefaultHomeEnv = "XCALL_HOME"
	ConfigEnv      = "XCALL_CONFIG"
)

// DefaultHome holds xcall.yaml when it is not in the working directory: $XCALL_HOME, else ~/.xcall
var DefaultHome = resolveHome()

func resolveHome() string {
	if home := os.Getenv(DefaultHomeEnv); home != "" {
		return home
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "/data"
	}
	return filepath.Join(userHome, ".xcall")
}
