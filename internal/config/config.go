// Package config provides configuration management for the XTCE codec
// service.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the sdn-xtce daemon configuration.
type Config struct {
	Admin AdminConfig `yaml:"admin"`
	XTCE  XTCEConfig  `yaml:"xtce"`
}

// AdminConfig contains the HTTP listener settings for the codec API.
type AdminConfig struct {
	// ListenAddr is the address the XTCE HTTP API binds to.
	ListenAddr string `yaml:"listen_addr"`

	// TLSEnabled enables native HTTPS on the API server.
	TLSEnabled bool `yaml:"tls_enabled"`

	// TLSCertFile is the PEM-encoded certificate chain path.
	TLSCertFile string `yaml:"tls_cert_file"`

	// TLSKeyFile is the PEM-encoded private key path.
	TLSKeyFile string `yaml:"tls_key_file"`
}

// XTCEConfig contains defaults for CLI/daemon XTCE operations.
type XTCEConfig struct {
	// DefaultDocPath is stored in the config file; the CLI's --doc flag is
	// required and does not fall back to it.
	DefaultDocPath string `yaml:"default_doc_path"`
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		Admin: AdminConfig{
			ListenAddr:  "127.0.0.1:5001",
			TLSEnabled:  false,
			TLSCertFile: "",
			TLSKeyFile:  "",
		},
		XTCE: XTCEConfig{
			DefaultDocPath: "",
		},
	}
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".sdn-xtce", "config.yaml")
}

// Load loads the configuration from a file, falling back to Default if the
// file does not exist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to a file.
func Save(path string, cfg *Config) error {
	if path == "" {
		path = DefaultPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
