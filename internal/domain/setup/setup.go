// Package setup initializes program directories and file paths.
package setup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	pDir = ".playlistarr"

	pFile      = "playlistarr.db"
	logFile    = "playlistarr.log"
	cookieFile = "cookies.txt"
)

var (
	CfgDir         string
	DBFilePath     string
	LogFilePath    string
	CookieFilePath string
)

// InitCfgFilesDirs initializes necessary program directories and filepaths.
func InitCfgFilesDirs() error {

	dir, err := os.UserHomeDir()
	if err != nil {
		return errors.New("failed to get home directory")
	}
	CfgDir = filepath.Join(dir, pDir)

	if _, err := os.Stat(CfgDir); os.IsNotExist(err) {
		if err := os.MkdirAll(CfgDir, 0o755); err != nil {
			return fmt.Errorf("failed to make directories: %v", err)
		}
	}

	DBFilePath = filepath.Join(CfgDir, pFile)
	LogFilePath = filepath.Join(CfgDir, logFile)
	CookieFilePath = filepath.Join(CfgDir, cookieFile)

	return nil
}
