package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/trebuchet-org/salvo/internal/domain/config"
)

// loadEnvFiles loads .env and .env.local from the project root, if present.
// Variables already set in the environment win.
func loadEnvFiles(projectRoot string) {
	envFiles := []string{
		filepath.Join(projectRoot, ".env"),
		filepath.Join(projectRoot, ".env.local"),
	}

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				// Log warning but don't fail
				fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
			}
		}
	}
}

// loadProjectFile reads salvo.toml from the project root. A missing file is not
// an error; the returned source is empty in that case.
func loadProjectFile(projectRoot string) (*config.ProjectFile, string, error) {
	path := filepath.Join(projectRoot, ProjectFileName)
	project := &config.ProjectFile{}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return project, "", nil
	}

	if _, err := toml.DecodeFile(path, project); err != nil {
		return nil, "", fmt.Errorf("failed to parse %s: %w", ProjectFileName, err)
	}

	for name, network := range project.Networks {
		if network == nil {
			return nil, "", fmt.Errorf("network %s in %s is empty", name, ProjectFileName)
		}
		network.Name = name
		network.RPCURL = os.ExpandEnv(network.RPCURL)
		network.ExplorerURL = os.ExpandEnv(network.ExplorerURL)
	}

	return project, path, nil
}
