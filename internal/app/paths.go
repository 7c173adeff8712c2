package app

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	appDirName  = "caloriequest"
	dbFileName  = "cq.db"
	envFileName = ".env"
)

func DefaultDBPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dbFileName), nil
}

// DataDir is the per-user directory holding the local database and an optional .env file.
func DataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}

// EnvFiles lists the .env candidates in load order; earlier files win.
func EnvFiles() []string {
	files := []string{envFileName}
	if dir, err := DataDir(); err == nil {
		files = append(files, filepath.Join(dir, envFileName))
	}
	return files
}

func EnsureDBDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return nil
}
