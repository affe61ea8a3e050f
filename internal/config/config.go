/*
Package config reads the service settings from the environment. An optional
.env file in the working directory is loaded first; variables already set in
the environment win over it.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"mealplanner/internal/document"
	"mealplanner/internal/generation"
)

const envPrefix = "MEALPLAN"

type Config struct {
	Port int

	Backend        string
	Model          string
	OllamaHost     string
	GeminiAPIKey   string
	CacheDir       string
	RequestTimeout time.Duration

	OutputDir      string
	EmergencyFile  string
	GuidelinesFile string

	LogLevel  string
	LogPretty bool
}

// Load reads .env (if present) and the MEALPLAN_* variables. PORT and
// GEMINI_API_KEY are read without the prefix.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	// Un-prefixed names shared with other tooling.
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("gemini_api_key", "GEMINI_API_KEY")

	v.SetDefault("port", 8080)
	v.SetDefault("backend", generation.BackendOllama)
	v.SetDefault("model", "tinyllama")
	v.SetDefault("ollama_host", "http://127.0.0.1:11434")
	v.SetDefault("cache_dir", "")
	v.SetDefault("request_timeout", "10m")
	v.SetDefault("output_dir", document.DefaultOutputDir)
	v.SetDefault("emergency_file", document.DefaultEmergencyFile)
	v.SetDefault("guidelines_file", "cuisine_guidelines.json")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	return v
}

func fromViper(v *viper.Viper) (*Config, error) {
	timeout, err := time.ParseDuration(v.GetString("request_timeout"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("invalid %s_REQUEST_TIMEOUT %q", envPrefix, v.GetString("request_timeout"))
	}

	port := v.GetInt("port")
	if port <= 0 {
		port = 8080
	}

	return &Config{
		Port:           port,
		Backend:        v.GetString("backend"),
		Model:          v.GetString("model"),
		OllamaHost:     v.GetString("ollama_host"),
		GeminiAPIKey:   v.GetString("gemini_api_key"),
		CacheDir:       v.GetString("cache_dir"),
		RequestTimeout: timeout,
		OutputDir:      v.GetString("output_dir"),
		EmergencyFile:  v.GetString("emergency_file"),
		GuidelinesFile: v.GetString("guidelines_file"),
		LogLevel:       v.GetString("log_level"),
		LogPretty:      v.GetBool("log_pretty"),
	}, nil
}

// Generation returns the backend settings.
func (c *Config) Generation() generation.Config {
	return generation.Config{
		Backend:      c.Backend,
		Model:        c.Model,
		OllamaHost:   c.OllamaHost,
		CacheDir:     c.CacheDir,
		GeminiAPIKey: c.GeminiAPIKey,
		Timeout:      c.RequestTimeout,
	}
}
