// Package config loads the server configuration from lectern.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config contains all tunable server parameters.
// These can be overridden via lectern.yaml.
type Config struct {
	Address string `yaml:"address"` // Bind address (default: 127.0.0.1)
	Port    int    `yaml:"port"`    // Listen port (default: 8080)

	ArticlesDir       string `yaml:"articlesDir"`       // Root of the id-named article directories
	MaxCachedArticles int    `yaml:"maxCachedArticles"` // Render cache capacity (default: 100)
	ArticlesPerPage   int    `yaml:"articlesPerPage"`   // Default page size for listings (default: 10)

	SampleArticle    bool `yaml:"sampleArticle"`    // Serve the embedded sample article as id 0
	RecordCacheStats bool `yaml:"recordCacheStats"` // Record hit/miss counters (default: true)
	MinifyHTML       bool `yaml:"minifyHTML"`       // Minify rendered HTML before caching

	Extensions Extensions `yaml:"extensions"` // Markdown extension flags
}

// Extensions toggles individual markdown features. All default to on.
type Extensions struct {
	Strikethrough    bool `yaml:"strikethrough"`
	Table            bool `yaml:"table"`
	Autolink         bool `yaml:"autolink"`
	Tasklist         bool `yaml:"tasklist"`
	Footnotes        bool `yaml:"footnotes"`
	DescriptionLists bool `yaml:"descriptionLists"`
	Math             bool `yaml:"math"`
	Highlighting     bool `yaml:"highlighting"`
}

// Default returns the default configuration.
func Default() *Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	return &Config{
		Address:           "127.0.0.1",
		Port:              8080,
		ArticlesDir:       filepath.Join(wd, "articles"),
		MaxCachedArticles: 100,
		ArticlesPerPage:   10,
		SampleArticle:     false,
		RecordCacheStats:  true,
		MinifyHTML:        false,
		Extensions: Extensions{
			Strikethrough:    true,
			Table:            true,
			Autolink:         true,
			Tasklist:         true,
			Footnotes:        true,
			DescriptionLists: true,
			Math:             true,
			Highlighting:     true,
		},
	}
}

// Load reads configuration from the given path, falling back to defaults for
// anything the file leaves out. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.validate()
	return cfg, nil
}

// validate ensures configuration values are within reasonable bounds.
func (c *Config) validate() {
	if c.Port < 1 || c.Port > 65535 {
		c.Port = 8080
	}
	if c.Address == "" {
		c.Address = "127.0.0.1"
	}

	if c.MaxCachedArticles < 1 {
		c.MaxCachedArticles = 1
	}
	if c.MaxCachedArticles > 100000 {
		c.MaxCachedArticles = 100000
	}

	if c.ArticlesPerPage < 1 {
		c.ArticlesPerPage = 10
	}
	if c.ArticlesPerPage > 500 {
		c.ArticlesPerPage = 500
	}
}

// ListenAddr returns the host:port string the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}
