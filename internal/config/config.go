package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 4100
	defaultEnv        = "development"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "atelier"
	defaultDBCharset  = "utf8mb4"
	defaultMode       = "json"
	defaultContentDir = "content"
	defaultSiteKey    = "studio"
)

// AppConfig holds runtime startup configuration loaded from YAML.
// The storage mode is resolved exactly once here; downstream code
// depends on the Repository's behavior, never on the raw setting.
type AppConfig struct {
	Port           int            `yaml:"port"`
	Env            string         `yaml:"env"` // "development" | "production"
	DSN            string         `yaml:"dsn"` // MySQL DSN
	RedisURL       string         `yaml:"redis_url"`
	Storage        StorageConfig  `yaml:"storage"`
	Database       DatabaseConfig `yaml:"database"`
	Paths          PathsConfig    `yaml:"paths"`
	AllowedOrigins []string       `yaml:"allowed_origins"`
}

// StorageConfig selects the content backend routing.
type StorageConfig struct {
	// Mode is one of json, db, dual_write, dual_read.
	Mode string `yaml:"mode"`
	// ContentDir is the document backend root directory.
	ContentDir string `yaml:"content_dir"`
	// DefaultSite is the distinguished tenant mapped to the root
	// document (legacy single-site installs).
	DefaultSite string `yaml:"default_site"`
}

type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
}

type PathsConfig struct {
	Logs string `yaml:"logs"`
}

// Load reads and normalizes the YAML config file. A missing file is
// not an error: everything has a default for local development.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := &AppConfig{}
	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("read config %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Env == "" {
		c.Env = defaultEnv
	}
	if c.Storage.Mode == "" {
		c.Storage.Mode = defaultMode
	}
	if c.Storage.ContentDir == "" {
		c.Storage.ContentDir = defaultContentDir
	}
	if c.Storage.DefaultSite == "" {
		c.Storage.DefaultSite = defaultSiteKey
	}
	if c.DSN == "" {
		c.DSN = c.Database.buildDSN()
	}
}

func (c *AppConfig) validate() error {
	switch c.Storage.Mode {
	case "json", "db", "dual_write", "dual_read":
	default:
		return fmt.Errorf("invalid storage mode %q (want json, db, dual_write or dual_read)", c.Storage.Mode)
	}
	return nil
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, "development") || strings.EqualFold(c.Env, "dev")
}

// NeedsDatabase reports whether the configured mode touches MySQL.
func (c *AppConfig) NeedsDatabase() bool {
	return c.Storage.Mode != "json"
}

// NeedsDocumentStore reports whether the configured mode touches the
// flat document backend.
func (c *AppConfig) NeedsDocumentStore() bool {
	return c.Storage.Mode != "db"
}

func (d DatabaseConfig) buildDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	host := d.Host
	if host == "" {
		host = defaultDBHost
	}
	port := d.Port
	if port == 0 {
		port = defaultDBPort
	}
	user := d.User
	if user == "" {
		user = defaultDBUser
	}
	password := d.Password
	if password == "" {
		password = defaultDBPassword
	}
	name := d.Name
	if name == "" {
		name = defaultDBName
	}
	charset := d.Charset
	if charset == "" {
		charset = defaultDBCharset
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		user, password, host, port, name, charset)
}
