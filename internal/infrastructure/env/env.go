// Package env loads dotenv files into the process environment before the
// configuration is read.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const DefaultAppEnv = "dev"

// AppEnv is APP_ENV or "dev".
func AppEnv() string {
	if v := os.Getenv("APP_ENV"); v != "" {
		return v
	}
	return DefaultAppEnv
}

// Load reads <dir>/.env without overriding variables already set, then
// overlays <dir>/.env.<APP_ENV>. Missing files are skipped. It returns the
// files that were applied.
func Load(dir string) ([]string, error) {
	var loaded []string

	base := filepath.Join(dir, ".env")
	switch err := godotenv.Load(base); {
	case err == nil:
		loaded = append(loaded, base)
	case !errors.Is(err, fs.ErrNotExist):
		return loaded, fmt.Errorf("load %s: %w", base, err)
	}

	overlay := filepath.Join(dir, ".env."+AppEnv())
	switch err := godotenv.Overload(overlay); {
	case err == nil:
		loaded = append(loaded, overlay)
	case !errors.Is(err, fs.ErrNotExist):
		return loaded, fmt.Errorf("load %s: %w", overlay, err)
	}

	return loaded, nil
}
