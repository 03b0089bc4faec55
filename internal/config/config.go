// Package config provides configuration management for foliosync.
//
// All settings live in one explicit Config struct constructed at startup and
// passed to every component. Nothing downstream reads the environment or any
// other ambient state.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/foliosync/internal/errors"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".foliosync.yaml"

	// EnvPrefix is the prefix for all foliosync environment variables.
	EnvPrefix = "FOLIOSYNC"
)

// Environment variables recognized by Load. Flags > env > config file.
const (
	EnvWebflowToken      = "FOLIOSYNC_WEBFLOW_TOKEN"
	EnvWebflowCollection = "FOLIOSYNC_WEBFLOW_COLLECTION"
	EnvGitHubToken       = "FOLIOSYNC_GITHUB_TOKEN"
	EnvGitLabToken       = "FOLIOSYNC_GITLAB_TOKEN"
)

// SchemaVariant selects which remote field-naming convention a deployment's
// collection uses. Exactly one variant is active per run.
type SchemaVariant string

const (
	// SchemaSlug is the slug-style convention (repo-url, project-description,
	// comma-joined tags, project-type discriminator).
	SchemaSlug SchemaVariant = "slug"
	// SchemaSnake is the snake_case convention (repo_url, summary, list tags,
	// no discriminator).
	SchemaSnake SchemaVariant = "snake"
)

// SourceConfig locates the local project listing.
type SourceConfig struct {
	// Path is the JSON file holding the ordered project records.
	Path string `yaml:"path"`
}

// HostingConfig holds source-control host credentials for enrichment.
// Both tokens are optional: public repositories resolve without one, at the
// cost of tighter rate limits.
type HostingConfig struct {
	GitHubToken string `yaml:"github_token,omitempty"`
	GitLabToken string `yaml:"gitlab_token,omitempty"`
}

// WebflowConfig holds the CMS collection settings.
type WebflowConfig struct {
	// Token is the Webflow API bearer token.
	Token string `yaml:"token,omitempty"`
	// CollectionID is the CMS collection holding the project items.
	CollectionID string `yaml:"collection_id"`
	// Schema picks the field-naming variant the collection uses.
	Schema SchemaVariant `yaml:"schema"`
	// PageSize is the item-list page size (max 100 per the API).
	PageSize int `yaml:"page_size"`
}

// HistoryConfig controls the local run log.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Config represents the foliosync configuration.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Hosting HostingConfig `yaml:"hosting"`
	Webflow WebflowConfig `yaml:"webflow"`
	History HistoryConfig `yaml:"history"`

	// Timeout applies to every outbound HTTP call. There is no retry; a
	// single attempt per call is the contract.
	Timeout time.Duration `yaml:"timeout"`

	// EnrichConcurrency bounds parallel stats fetches.
	EnrichConcurrency int `yaml:"enrich_concurrency"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Path: "projects.json",
		},
		Webflow: WebflowConfig{
			Schema:   SchemaSlug,
			PageSize: 100,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    ".foliosync/history.db",
		},
		Timeout:           30 * time.Second,
		EnrichConcurrency: 4,
	}
}

// Load loads the config from the default location, applying environment
// overrides. A missing file is not an error; defaults apply.
func Load() (*Config, error) {
	return LoadFrom(ConfigFileName)
}

// LoadFrom loads the config from a specific path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.ErrConfigInvalid("config file",
				fmt.Sprintf("cannot read %s", path)).WithCause(err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.ErrConfigInvalid("config file",
			fmt.Sprintf("%s is not valid YAML", path)).WithCause(err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays environment variables onto the loaded file values.
// Credentials normally arrive this way so they stay out of the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvWebflowToken); v != "" {
		c.Webflow.Token = v
	}
	if v := os.Getenv(EnvWebflowCollection); v != "" {
		c.Webflow.CollectionID = v
	}
	if v := os.Getenv(EnvGitHubToken); v != "" {
		c.Hosting.GitHubToken = v
	}
	if v := os.Getenv(EnvGitLabToken); v != "" {
		c.Hosting.GitLabToken = v
	}
}

// Validate checks that everything a sync run needs is present and usable.
// It runs before any network call so credential problems abort early with a
// distinct exit code.
func (c *Config) Validate() error {
	if c.Source.Path == "" {
		return errors.ErrConfigInvalid("source.path", "the project source file path is empty")
	}
	if c.Webflow.Token == "" {
		return errors.ErrConfigMissing("webflow.token", EnvWebflowToken)
	}
	if c.Webflow.CollectionID == "" {
		return errors.ErrConfigMissing("webflow.collection_id", EnvWebflowCollection)
	}
	switch c.Webflow.Schema {
	case SchemaSlug, SchemaSnake:
	default:
		return errors.ErrConfigInvalid("webflow.schema",
			fmt.Sprintf("unknown schema variant %q (want %q or %q)", c.Webflow.Schema, SchemaSlug, SchemaSnake))
	}
	if c.Webflow.PageSize < 1 || c.Webflow.PageSize > 100 {
		return errors.ErrConfigInvalid("webflow.page_size",
			fmt.Sprintf("page size %d out of range [1,100]", c.Webflow.PageSize))
	}
	if c.EnrichConcurrency < 1 {
		return errors.ErrConfigInvalid("enrich_concurrency",
			fmt.Sprintf("concurrency %d must be at least 1", c.EnrichConcurrency))
	}
	return nil
}

// ValidateSource checks only the settings the offline commands need.
func (c *Config) ValidateSource() error {
	if c.Source.Path == "" {
		return errors.ErrConfigInvalid("source.path", "the project source file path is empty")
	}
	return nil
}
