// Package config loads the engine configuration document shared by the
// launcher targets (train, deploy).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/IndianOnRun/PredictionIO/classifier"
)

type Config struct {
	Engine   Engine   `yaml:"engine"`
	Model    Model    `yaml:"model"`
	Database Database `yaml:"database"`
	HTTP     HTTP     `yaml:"http"`
	Log      Log      `yaml:"log"`
	Eval     Eval     `yaml:"evaluation"`
	Retrain  Retrain  `yaml:"retrain"`
}

type Engine struct {
	Name   string            `yaml:"name"`
	Params classifier.Params `yaml:"params"`
}

type Model struct {
	Path string `yaml:"path"`
}

type Database struct {
	Path string `yaml:"path"`
}

type HTTP struct {
	Port      int `yaml:"port"`
	CacheSize int `yaml:"cache_size"`
}

type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type Eval struct {
	TestRatio float64 `yaml:"test_ratio"`
	Seed      int64   `yaml:"seed"`
}

type Retrain struct {
	Schedule string `yaml:"schedule"` // standard cron expression; empty disables
}

// Load reads and validates the configuration file.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cfg Config
	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Engine.Name == "" {
		c.Engine.Name = classifier.EngineName
	}
	if c.Model.Path == "" {
		c.Model.Path = "data/model.json"
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/events.db"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8000
	}
	if c.HTTP.CacheSize == 0 {
		c.HTTP.CacheSize = 1024
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Eval.TestRatio == 0 {
		c.Eval.TestRatio = 0.2
	}
}

func (c *Config) validate() error {
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http port %d out of range", c.HTTP.Port)
	}
	if c.Eval.TestRatio <= 0 || c.Eval.TestRatio >= 1 {
		return fmt.Errorf("evaluation test_ratio %v must be in (0, 1)", c.Eval.TestRatio)
	}
	return nil
}

// ModelType returns the model backend of the first configured algorithm.
// The deploy path restores this model type from the model file.
func (c *Config) ModelType() string {
	if len(c.Engine.Params.Algorithms) == 0 {
		return "naive-bayes"
	}
	return c.Engine.Params.Algorithms[0].Model
}

// Lambda returns the smoothing constant of the first configured algorithm.
func (c *Config) Lambda() float64 {
	if len(c.Engine.Params.Algorithms) == 0 {
		return 1.0
	}
	return c.Engine.Params.Algorithms[0].Lambda
}
