package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/dim0x69/kisss3/internal/blob"
	"github.com/dim0x69/kisss3/internal/utils"
)

var (
	home, _           = os.UserHomeDir()
	DefaultConfigPath = filepath.Join(home, ".kisss3", "config.json")
	DefaultInterval   = 30 * time.Second
)

// Config is the opaque settings object handed to the collaborators. The
// reconciliation core never looks at it beyond construction.
type Config struct {
	VaultDir  string        `json:"vault_dir"`
	Bucket    string        `json:"bucket"`
	Region    string        `json:"region"`
	AccessKey string        `json:"access_key"`
	SecretKey string        `json:"secret_key"`
	Endpoint  string        `json:"endpoint"`
	Prefix    string        `json:"prefix"`
	Interval  time.Duration `json:"interval"`
	Watch     bool          `json:"watch"`
	Path      string        `json:"-"`
}

func (c *Config) Validate() error {
	if c.VaultDir == "" {
		return errors.New("vault directory is required")
	}
	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}
	return c.S3().Validate()
}

// S3 derives the remote store configuration.
func (c *Config) S3() *blob.S3Config {
	return &blob.S3Config{
		Bucket:    c.Bucket,
		Region:    c.Region,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		Endpoint:  c.Endpoint,
		Prefix:    c.Prefix,
	}
}

func (c *Config) Save(path string) error {
	if err := utils.EnsureParent(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.Path = path
	return &cfg, nil
}
