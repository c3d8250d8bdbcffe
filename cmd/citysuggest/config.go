package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"gopkg.in/yaml.v3"

	"github.com/andreiashu/citysuggest"
	"github.com/andreiashu/citysuggest/contact"
)

// Config is the citysuggest.yaml layout.
type Config struct {
	Partitions PartitionsConfig `yaml:"partitions"`
	Search     SearchConfig     `yaml:"search"`
	Relay      RelayConfig      `yaml:"relay"`
}

// PartitionsConfig describes where the dataset shards live.
type PartitionsConfig struct {
	Source      string   `yaml:"source"`   // dir, http or s3
	Dir         string   `yaml:"dir"`      // for dir
	BaseURL     string   `yaml:"base_url"` // for http
	S3          S3Config `yaml:"s3"`
	Template    string   `yaml:"template"`
	Count       int      `yaml:"count"`
	Concurrency int      `yaml:"concurrency"` // 0 = all at once
	Timeout     string   `yaml:"timeout"`     // per request, http only; empty = none
}

// S3Config selects a bucket on an S3-compatible store.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
}

// SearchConfig tunes the query engine.
type SearchConfig struct {
	Limit       int `yaml:"limit"`
	MinQueryLen int `yaml:"min_query_len"`
}

// RelayConfig holds the EmailJS account used by the send command.
type RelayConfig struct {
	Endpoint     string  `yaml:"endpoint"`
	ServiceID    string  `yaml:"service_id"`
	TemplateID   string  `yaml:"template_id"`
	PublicKey    string  `yaml:"public_key"`
	PrivateKey   string  `yaml:"private_key"`
	MaxPerMinute float64 `yaml:"max_per_minute"` // 0 = unlimited
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Partitions: PartitionsConfig{
			Source:   "dir",
			Dir:      ".",
			Template: citysuggest.DefaultPartitionTemplate,
			Count:    citysuggest.DefaultPartitionCount,
		},
		Search: SearchConfig{
			Limit:       citysuggest.DefaultResultLimit,
			MinQueryLen: citysuggest.DefaultMinQueryLen,
		},
		Relay: RelayConfig{
			Endpoint:     contact.DefaultEmailJSEndpoint,
			MaxPerMinute: 6,
		},
	}
}

// LoadConfig reads a YAML config file on top of the defaults.
// A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides lets credentials stay out of the config file.
func (c *Config) applyEnvOverrides() {
	overrides := map[string]*string{
		"CITYSUGGEST_EMAILJS_SERVICE_ID":  &c.Relay.ServiceID,
		"CITYSUGGEST_EMAILJS_TEMPLATE_ID": &c.Relay.TemplateID,
		"CITYSUGGEST_EMAILJS_PUBLIC_KEY":  &c.Relay.PublicKey,
		"CITYSUGGEST_EMAILJS_PRIVATE_KEY": &c.Relay.PrivateKey,
		"CITYSUGGEST_S3_ACCESS_KEY":       &c.Partitions.S3.AccessKey,
		"CITYSUGGEST_S3_SECRET_KEY":       &c.Partitions.S3.SecretKey,
	}
	for name, field := range overrides {
		if v := os.Getenv(name); v != "" {
			*field = v
		}
	}
}

// Validate checks the fields the commands depend on.
func (c *Config) Validate() error {
	if !strings.Contains(c.Partitions.Template, "%d") {
		return fmt.Errorf("partitions.template %q has no %%d verb", c.Partitions.Template)
	}
	if c.Partitions.Count < 0 {
		return fmt.Errorf("partitions.count must not be negative, got %d", c.Partitions.Count)
	}
	if c.Partitions.Timeout != "" {
		if _, err := time.ParseDuration(c.Partitions.Timeout); err != nil {
			return fmt.Errorf("partitions.timeout: %w", err)
		}
	}
	return nil
}

// NewSource builds the partition source the config selects.
func (c *Config) NewSource() (citysuggest.Source, error) {
	p := c.Partitions
	switch p.Source {
	case "", "dir":
		return &citysuggest.FSSource{FS: os.DirFS(p.Dir)}, nil
	case "http":
		if p.BaseURL == "" {
			return nil, fmt.Errorf("partitions.base_url is required for the http source")
		}
		client := &http.Client{}
		if p.Timeout != "" {
			d, err := time.ParseDuration(p.Timeout)
			if err != nil {
				return nil, fmt.Errorf("partitions.timeout: %w", err)
			}
			client.Timeout = d
		}
		return &citysuggest.HTTPSource{BaseURL: p.BaseURL, Client: client}, nil
	case "s3":
		if p.S3.Endpoint == "" || p.S3.Bucket == "" {
			return nil, fmt.Errorf("partitions.s3.endpoint and partitions.s3.bucket are required for the s3 source")
		}
		client, err := minio.New(p.S3.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(p.S3.AccessKey, p.S3.SecretKey, ""),
			Secure: p.S3.Secure,
			Region: p.S3.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("creating S3 client: %w", err)
		}
		return citysuggest.NewObjectStoreSource(client, p.S3.Bucket, p.S3.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown partitions.source %q (want dir, http or s3)", p.Source)
	}
}

// Refs returns the partition range the config describes.
func (c *Config) Refs() []citysuggest.PartitionRef {
	return citysuggest.Partitions(c.Partitions.Template, c.Partitions.Count)
}

// EngineOptions translates the search section.
func (c *Config) EngineOptions() []citysuggest.EngineOption {
	return []citysuggest.EngineOption{
		citysuggest.WithLimit(c.Search.Limit),
		citysuggest.WithMinQueryLen(c.Search.MinQueryLen),
	}
}

// EmailJS returns the relay settings.
func (c *Config) EmailJS() contact.EmailJSConfig {
	return contact.EmailJSConfig{
		Endpoint:   c.Relay.Endpoint,
		ServiceID:  c.Relay.ServiceID,
		TemplateID: c.Relay.TemplateID,
		PublicKey:  c.Relay.PublicKey,
		PrivateKey: c.Relay.PrivateKey,
	}
}
