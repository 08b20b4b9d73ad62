// Package config provides the configuration loader for cabin.
package config

import (
	"os"
	"path/filepath"

	"go.cabin.build/cabin/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultBaseURL is the secured repository used when cabin.yaml does not
	// name one.
	DefaultBaseURL = "https://hackage.haskell.org"

	// DefaultDownloadPrefix is the package tarball URL prefix used when
	// cabin.yaml does not name one.
	DefaultDownloadPrefix = "https://hackage.haskell.org/package/"

	// DefaultThreshold is the default signing-key threshold.
	DefaultThreshold = 3
)

// Config is the resolved tool configuration.
type Config struct {
	// Root is the project root directory: the directory holding cabin.yaml,
	// or the working directory when no config file exists.
	Root string

	BaseURL        string
	DownloadPrefix string
	KeyIDs         []string
	Threshold      int

	DockerEnabled bool
	DockerImage   string
	EnvEnabled    bool
	EnvShell      string
}

// Loader loads cabin.yaml.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load discovers and reads the configuration starting from cwd. A missing
// config file is not an error; defaults apply and cwd becomes the root.
func (l *Loader) Load(cwd string) (*Config, error) {
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to resolve working directory")
	}

	cfg := &Config{
		Root:           abs,
		BaseURL:        DefaultBaseURL,
		DownloadPrefix: DefaultDownloadPrefix,
		Threshold:      DefaultThreshold,
	}

	configPath, found := findConfiguration(abs)
	if !found {
		return cfg, nil
	}

	var file File
	if err := readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, err
	}

	cfg.Root = resolveRoot(configPath, file.Root)
	if file.Index.BaseURL != "" {
		cfg.BaseURL = file.Index.BaseURL
	}
	if file.Index.DownloadPrefix != "" {
		cfg.DownloadPrefix = file.Index.DownloadPrefix
	}
	cfg.KeyIDs = file.Index.KeyIDs
	if file.Index.Threshold > 0 {
		cfg.Threshold = file.Index.Threshold
	}

	cfg.DockerEnabled = file.Sandbox.Docker.Enabled
	cfg.DockerImage = file.Sandbox.Docker.Image
	cfg.EnvEnabled = file.Sandbox.Env.Enabled
	cfg.EnvShell = file.Sandbox.Env.Shell

	return cfg, nil
}

// findConfiguration walks up from cwd looking for cabin.yaml.
func findConfiguration(cwd string) (string, bool) {
	currentDir := cwd
	for {
		configPath := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, true
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			return "", false
		}
		currentDir = parentDir
	}
}

// resolveRoot resolves the configured root relative to the config file.
func resolveRoot(configPath, configuredRoot string) string {
	base := filepath.Dir(configPath)
	if configuredRoot == "" {
		return base
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Join(base, configuredRoot)
}

func readAndUnmarshalYAML(configPath string, out any) error {
	//nolint:gosec // Path is discovered by walking up from the working directory
	data, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}
	return nil
}
