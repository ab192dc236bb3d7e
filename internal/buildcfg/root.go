package buildcfg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// FindRoot walks up from dir until it finds a directory containing
// go.mod and returns it.
func FindRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve directory: %w", err)
	}

	for {
		_, err := os.Stat(filepath.Join(dir, "go.mod"))
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to search for project root: %w", err)
		}

		next := filepath.Dir(dir)
		if next == dir {
			break
		}
		dir = next
	}

	return "", errors.New("project root not found (no go.mod in this directory or any parent)")
}

// LoadDotEnv reads the optional .env file at the project root and
// returns its entries as KEY=VALUE pairs for subprocess environments.
// A missing file yields no entries.
func LoadDotEnv(root string) ([]string, error) {
	path := filepath.Join(root, ".env")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	env := make([]string, 0, len(values))
	for key, value := range values {
		env = append(env, key+"="+value)
	}
	return env, nil
}
