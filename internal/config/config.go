package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Engine   string `yaml:"engine"` // mysql | postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"` // postgres only
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	OpenAI struct {
		APIKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
	} `yaml:"openai"`

	Scrape struct {
		UserAgent       string `yaml:"userAgent"`
		MaxContentChars int    `yaml:"maxContentChars"`
	} `yaml:"scrape"`

	Capture struct {
		FullPage bool `yaml:"fullPage"`
		Width    int  `yaml:"width"`
		Height   int  `yaml:"height"`
	} `yaml:"capture"`

	Pipeline struct {
		FetchTimeoutSec   int `yaml:"fetchTimeoutSec"`
		CaptureTimeoutSec int `yaml:"captureTimeoutSec"`
		AnalyzeTimeoutSec int `yaml:"analyzeTimeoutSec"`
		PersistTimeoutSec int `yaml:"persistTimeoutSec"`
	} `yaml:"pipeline"`

	History struct {
		DefaultLimit int `yaml:"defaultLimit"`
		MaxLimit     int `yaml:"maxLimit"`
	} `yaml:"history"`

	// Auth maps user id -> API key. Empty map disables auth.
	Auth struct {
		APIKeys map[string]string `yaml:"apiKeys"`
	} `yaml:"auth"`
}

// Load baca file config.yaml
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Engine == "" {
		c.Database.Engine = "mysql"
	}
	if c.Pipeline.FetchTimeoutSec == 0 {
		c.Pipeline.FetchTimeoutSec = 30
	}
	if c.Pipeline.CaptureTimeoutSec == 0 {
		c.Pipeline.CaptureTimeoutSec = 60
	}
	if c.Pipeline.AnalyzeTimeoutSec == 0 {
		c.Pipeline.AnalyzeTimeoutSec = 120
	}
	if c.Pipeline.PersistTimeoutSec == 0 {
		c.Pipeline.PersistTimeoutSec = 10
	}
	if c.History.DefaultLimit == 0 {
		c.History.DefaultLimit = 10
	}
	if c.History.MaxLimit == 0 {
		c.History.MaxLimit = 100
	}
	if c.Capture.Width == 0 {
		c.Capture.Width = 1280
	}
	if c.Capture.Height == 0 {
		c.Capture.Height = 800
	}
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq connection string.
func (c *Config) PostgresDSN() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		sslMode,
	)
}

// FetchTimeout et al expose the pipeline budgets as durations.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Pipeline.FetchTimeoutSec) * time.Second
}

func (c *Config) CaptureTimeout() time.Duration {
	return time.Duration(c.Pipeline.CaptureTimeoutSec) * time.Second
}

func (c *Config) AnalyzeTimeout() time.Duration {
	return time.Duration(c.Pipeline.AnalyzeTimeoutSec) * time.Second
}

func (c *Config) PersistTimeout() time.Duration {
	return time.Duration(c.Pipeline.PersistTimeoutSec) * time.Second
}
