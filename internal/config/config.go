package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	AI struct {
		Provider   string `yaml:"provider"`
		Model      string `yaml:"model"`       // text generation model
		ImageModel string `yaml:"image_model"` // image generation model
		APIKey     string `yaml:"api_key"`
		BaseURL    string `yaml:"base_url"` // OpenAI-compatible endpoint override
	} `yaml:"ai"`
	Images struct {
		UnsplashAPIKey string   `yaml:"unsplash_api_key"`
		Providers      []string `yaml:"providers"`
	} `yaml:"images"`
}

func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	var cfg Config

	// 2. Load YAML config if present; env vars alone are enough to run
	if file, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// 3. Override with environment variables if present
	if apiKey := os.Getenv("FACEWRITER_API_KEY"); apiKey != "" {
		cfg.AI.APIKey = apiKey
	}
	if provider := os.Getenv("FACEWRITER_AI_PROVIDER"); provider != "" {
		cfg.AI.Provider = provider
	}
	if model := os.Getenv("FACEWRITER_AI_MODEL"); model != "" {
		cfg.AI.Model = model
	}
	if addr := os.Getenv("FACEWRITER_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.AI.Provider == "" {
		c.AI.Provider = "gemini"
	}
	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.5-flash"
	}
	if c.AI.ImageModel == "" {
		c.AI.ImageModel = "imagen-4.0-generate-001"
	}
}
