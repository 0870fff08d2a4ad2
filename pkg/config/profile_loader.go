package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tracefoundry/receiptchain/pkg/canonicalize"
)

// Profile is a YAML configuration profile a host can ship alongside its
// deployment instead of setting individual environment variables.
type Profile struct {
	Name            string `yaml:"name" json:"name"`
	StoreBackend    string `yaml:"store_backend" json:"store_backend"`
	StorePath       string `yaml:"store_path" json:"store_path"`
	DatabaseURL     string `yaml:"database_url,omitempty" json:"database_url,omitempty"`
	DigestAlgorithm string `yaml:"digest_algorithm" json:"digest_algorithm"`
	RepairOnLoad    bool   `yaml:"repair_on_load,omitempty" json:"repair_on_load,omitempty"`
	LogLevel        string `yaml:"log_level,omitempty" json:"log_level,omitempty"`
}

// LoadProfile reads and validates a profile YAML file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load profile %q: %w", path, err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %q: %w", path, err)
	}

	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("profile %q: %w", path, err)
	}
	return &p, nil
}

func (p *Profile) validate() error {
	switch Backend(p.StoreBackend) {
	case BackendFile, BackendSQLite, BackendPostgres, "":
	default:
		return fmt.Errorf("unknown store backend %q", p.StoreBackend)
	}
	if p.DigestAlgorithm != "" {
		if _, err := canonicalize.NewHasher(canonicalize.Algorithm(p.DigestAlgorithm)); err != nil {
			return err
		}
	}
	return nil
}

// Apply overlays the profile onto a Config, leaving unset fields alone.
func (p *Profile) Apply(c *Config) {
	if p.StoreBackend != "" {
		c.StoreBackend = Backend(p.StoreBackend)
	}
	if p.StorePath != "" {
		c.StorePath = p.StorePath
	}
	if p.DatabaseURL != "" {
		c.DatabaseURL = p.DatabaseURL
	}
	if p.DigestAlgorithm != "" {
		c.DigestAlgorithm = p.DigestAlgorithm
	}
	if p.LogLevel != "" {
		c.LogLevel = p.LogLevel
	}
	if p.RepairOnLoad {
		c.RepairOnLoad = true
	}
}
