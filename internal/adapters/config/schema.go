package config

// File represents the structure of the cabin.yaml configuration file.
type File struct {
	Version string     `yaml:"version"`
	Root    string     `yaml:"root"`
	Index   IndexDTO   `yaml:"index"`
	Sandbox SandboxDTO `yaml:"sandbox"`
}

// IndexDTO configures the secured package index.
type IndexDTO struct {
	BaseURL        string   `yaml:"baseUrl"`
	DownloadPrefix string   `yaml:"downloadPrefix"`
	KeyIDs         []string `yaml:"keys"`
	Threshold      int      `yaml:"threshold"`
}

// SandboxDTO configures the optional re-execution layers.
type SandboxDTO struct {
	Docker DockerDTO `yaml:"docker"`
	Env    EnvDTO    `yaml:"env"`
}

// DockerDTO configures the OS-level isolation layer.
type DockerDTO struct {
	Enabled bool   `yaml:"enabled"`
	Image   string `yaml:"image"`
}

// EnvDTO configures the lightweight package-environment layer.
type EnvDTO struct {
	Enabled bool   `yaml:"enabled"`
	Shell   string `yaml:"shell"`
}
