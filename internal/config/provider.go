package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/salvo/internal/domain/config"
)

const (
	// ProjectFileName is the project configuration file looked up from the working directory
	ProjectFileName = "salvo.toml"

	// DefaultNetwork matches the network the built-in plan targets
	DefaultNetwork = "base-sepolia"

	// DefaultRegistry is the registry file name relative to the project root
	DefaultRegistry = "contracts.json"
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	// .env files first so ${VAR} references in salvo.toml resolve
	loadEnvFiles(projectRoot)

	project, source, err := loadProjectFile(projectRoot)
	if err != nil {
		return nil, err
	}

	// Values from salvo.toml sit below flags and environment
	if project.Network != "" {
		v.SetDefault("network", project.Network)
	}
	if project.Registry != "" {
		v.SetDefault("registry", project.Registry)
	}
	if project.ReceiptTimeout != "" {
		v.SetDefault("receipt_timeout", project.ReceiptTimeout)
	}

	receiptTimeout := v.GetDuration("receipt_timeout")
	if receiptTimeout <= 0 {
		receiptTimeout = config.DefaultReceiptTimeout
	}

	registryPath := v.GetString("registry")
	if !filepath.IsAbs(registryPath) {
		registryPath = filepath.Join(projectRoot, registryPath)
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		RegistryPath:   registryPath,
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		JSON:           v.GetBool("json"),
		Timeout:        v.GetDuration("timeout"),
		ReceiptTimeout: receiptTimeout,
		PrivateKey:     v.GetString("private_key"),
		ConfigSource:   source,
	}

	resolver := NewNetworkResolver(project.Networks)
	cfg.Networks = resolver.All()

	if networkName := v.GetString("network"); networkName != "" {
		network, err := resolver.Resolve(networkName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve network %s: %w", networkName, err)
		}
		cfg.Network = network
	}

	return cfg, nil
}

// FindProjectRoot walks up from current directory to find salvo.toml.
// Without one, the working directory is the project root.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := cwd
	for {
		if _, err := os.Stat(filepath.Join(dir, ProjectFileName)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	// Set up environment variables
	v.SetEnvPrefix("SALVO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Set defaults
	v.SetDefault("network", DefaultNetwork)
	v.SetDefault("registry", DefaultRegistry)
	v.SetDefault("timeout", 30*time.Minute)
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("json", false)
	v.SetDefault("project_root", projectRoot)

	if cmd != nil {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if err := v.BindPFlag(key, f); err != nil {
				panic(err)
			}
		})
	}

	return v
}
