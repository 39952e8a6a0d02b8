package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	CurrentVersion = 1
	DefaultPath    = "~/.schemasmith/schemasmith.yaml"
)

// DefaultIgnoreTables are framework infrastructure tables that never get artifacts.
var DefaultIgnoreTables = []string{"failed_jobs", "migrations", "password_reset_tokens", "personal_access_tokens"}

// Config is the top-level configuration.
type Config struct {
	Version          int               `yaml:"version"`
	Project          ProjectConfig     `yaml:"project"`
	Source           SourceConfig      `yaml:"source"`
	IgnoreTables     []string          `yaml:"ignore_tables,omitempty"`
	Snapshots        SnapshotConfig    `yaml:"snapshots,omitempty"`
	Registry         string            `yaml:"registry,omitempty"`
	Paths            PathsConfig       `yaml:"paths,omitempty"`
	Generate         GenerateConfig    `yaml:"generate,omitempty"`
	Logging          LogConfig         `yaml:"logging,omitempty"`
	TypemapFile      string            `yaml:"typemap_file,omitempty"`
	TypemapOverrides map[string]string `yaml:"typemap_overrides,omitempty"`
}

// ProjectConfig identifies the project artifacts are generated into.
type ProjectConfig struct {
	Name      string `yaml:"name,omitempty"` // snapshot key, defaults to base name of Root
	Root      string `yaml:"root"`
	Templates string `yaml:"templates,omitempty"` // optional template override directory
}

// SourceConfig defines the source database connection.
type SourceConfig struct {
	Type     string `yaml:"type"` // mysql or postgresql
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Database string `yaml:"database,omitempty"`
	Schema   string `yaml:"schema,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	SSL      bool   `yaml:"ssl,omitempty"`
	FromEnv  bool   `yaml:"from_env,omitempty"` // fill empty fields from <root>/.env
}

// SnapshotConfig selects where schema snapshots are persisted.
type SnapshotConfig struct {
	Store         string `yaml:"store,omitempty"` // file, mongodb or s3
	Directory     string `yaml:"directory,omitempty"`
	MongoURI      string `yaml:"mongo_uri,omitempty"`
	MongoDatabase string `yaml:"mongo_database,omitempty"`
	S3Bucket      string `yaml:"s3_bucket,omitempty"`
	S3Prefix      string `yaml:"s3_prefix,omitempty"`
	AWSProfile    string `yaml:"aws_profile,omitempty"`
	AWSRegion     string `yaml:"aws_region,omitempty"`
}

// PathsConfig holds artifact directories relative to the project root.
type PathsConfig struct {
	Models      string `yaml:"models,omitempty"`
	Factories   string `yaml:"factories,omitempty"`
	Requests    string `yaml:"requests,omitempty"`
	Resources   string `yaml:"resources,omitempty"`
	Lang        string `yaml:"lang,omitempty"`
	Collections string `yaml:"collections,omitempty"`
	Controllers string `yaml:"controllers,omitempty"`
	Services    string `yaml:"services,omitempty"`
	Routes      string `yaml:"routes,omitempty"` // API routes file
}

// GenerateConfig holds generation defaults.
type GenerateConfig struct {
	Artifacts     []string `yaml:"artifacts,omitempty"`
	Actions       []string `yaml:"actions,omitempty"`
	StoreBody     string   `yaml:"store_body,omitempty"`      // urlencoded, formdata or raw
	BulkStoreBody string   `yaml:"bulk_store_body,omitempty"` // urlencoded, formdata or raw
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level     string `yaml:"level,omitempty"`     // debug, info, warn, error
	Directory string `yaml:"directory,omitempty"` // default ~/.schemasmith/logs/
}

// Load reads and parses the config file from the given path.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ExpandHome(DefaultPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentVersion)
	}

	cfg.Project.Root = ExpandHome(cfg.Project.Root)
	if cfg.Source.FromEnv {
		if err := cfg.Source.FillFromEnvFile(filepath.Join(cfg.Project.Root, ".env")); err != nil {
			return nil, err
		}
	}

	if err := cfg.resolveSecrets(); err != nil {
		return nil, fmt.Errorf("resolving secrets: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the config to the given path.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ExpandHome(DefaultPath)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// ProjectName returns the configured project name, or the base name of the root.
func (c *Config) ProjectName() string {
	if c.Project.Name != "" {
		return c.Project.Name
	}
	return filepath.Base(filepath.Clean(c.Project.Root))
}

// ArtifactPath joins a configured relative directory onto the project root.
func (c *Config) ArtifactPath(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(c.Project.Root, rel)
}

func (c *Config) applyDefaults() {
	if c.Source.Type == "" {
		c.Source.Type = "mysql"
	}
	if c.Source.Port == 0 {
		switch c.Source.Type {
		case "postgresql":
			c.Source.Port = 5432
		default:
			c.Source.Port = 3306
		}
	}
	if c.IgnoreTables == nil {
		c.IgnoreTables = append([]string(nil), DefaultIgnoreTables...)
	}
	if c.Snapshots.Store == "" {
		c.Snapshots.Store = "file"
	}
	if c.Snapshots.Directory == "" {
		c.Snapshots.Directory = "~/.schemasmith/snapshots"
	}
	c.Snapshots.Directory = ExpandHome(c.Snapshots.Directory)
	if c.Snapshots.MongoDatabase == "" {
		c.Snapshots.MongoDatabase = "schemasmith"
	}
	if c.Registry == "" {
		c.Registry = "~/.schemasmith/projects.yaml"
	}
	c.Registry = ExpandHome(c.Registry)
	setDefault(&c.Paths.Models, "app/Models")
	setDefault(&c.Paths.Factories, "database/factories")
	setDefault(&c.Paths.Requests, "app/Http/Requests")
	setDefault(&c.Paths.Resources, "app/Http/Resources")
	setDefault(&c.Paths.Lang, "lang")
	setDefault(&c.Paths.Collections, "postman")
	setDefault(&c.Paths.Controllers, "app/Http/Controllers")
	setDefault(&c.Paths.Services, "app/Services")
	setDefault(&c.Paths.Routes, "routes/api.php")
	if len(c.Generate.Artifacts) == 0 {
		c.Generate.Artifacts = []string{"model", "factory", "request", "resource", "service", "controller", "routes", "lang", "collection"}
	}
	if len(c.Generate.Actions) == 0 {
		c.Generate.Actions = []string{"getAll", "findById", "store", "bulkStore", "update", "delete", "bulkDelete"}
	}
	setDefault(&c.Generate.StoreBody, "raw")
	setDefault(&c.Generate.BulkStoreBody, "raw")
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Directory == "" {
		c.Logging.Directory = "~/.schemasmith/logs/"
	}
	c.Logging.Directory = ExpandHome(c.Logging.Directory)
	c.Project.Templates = ExpandHome(c.Project.Templates)
	c.TypemapFile = ExpandHome(c.TypemapFile)
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

var secretPattern = regexp.MustCompile(`\$\{(ENV|VAULT|AWS_SM):([^}]+)\}`)

func (c *Config) resolveSecrets() error {
	var err error
	c.Source.Password, err = ResolveValue(c.Source.Password)
	if err != nil {
		return fmt.Errorf("source password: %w", err)
	}
	c.Snapshots.MongoURI, err = ResolveValue(c.Snapshots.MongoURI)
	if err != nil {
		return fmt.Errorf("snapshot mongo uri: %w", err)
	}
	return nil
}

// ResolveValue resolves secret references in a string value.
func ResolveValue(val string) (string, error) {
	matches := secretPattern.FindStringSubmatch(val)
	if matches == nil {
		return val, nil
	}

	provider := matches[1]
	ref := matches[2]

	switch provider {
	case "ENV":
		v := os.Getenv(ref)
		if v == "" {
			return "", fmt.Errorf("environment variable %s not set", ref)
		}
		return v, nil
	case "VAULT":
		return resolveVault(ref)
	case "AWS_SM":
		return resolveAWSSecretsManager(ref)
	default:
		return "", fmt.Errorf("unknown secrets provider: %s", provider)
	}
}

// ExpandHome expands ~ to the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
