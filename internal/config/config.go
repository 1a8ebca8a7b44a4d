// Package config handles Wolfe configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./wolfe.yaml, ~/.config/wolfe/wolfe.yaml, /etc/wolfe/wolfe.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"wolfe.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "wolfe", "wolfe.yaml"))
	}

	paths = append(paths, "/etc/wolfe/wolfe.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
// Returns the path found, or an error if nothing was found.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds all Wolfe configuration.
type Config struct {
	Listen       ListenConfig `yaml:"listen"`
	Store        StoreConfig  `yaml:"store"`
	OpenAI       OpenAIConfig `yaml:"openai"`
	Voice        VoiceConfig  `yaml:"voice"`
	Agent        AgentConfig  `yaml:"agent"`
	TranscriptDB string       `yaml:"transcript_db"`
	LogLevel     string       `yaml:"log_level"`
}

// ListenConfig defines the session server settings.
type ListenConfig struct {
	Address string `yaml:"address"` // Bind address (default: "" = all interfaces)
	Port    int    `yaml:"port"`
}

// StoreConfig defines the reservation store connection.
type StoreConfig struct {
	// Backend selects the store implementation: "mongo" (default) or
	// "memory" for local development without a database.
	Backend    string `yaml:"backend"`
	MongoURL   string `yaml:"mongo_url"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// OpenAIConfig defines the LLM provider settings.
type OpenAIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// VoiceConfig defines the optional speech service settings.
// When a key is empty, that leg of the audio pipeline is disabled and
// the session falls back to text frames.
type VoiceConfig struct {
	Deepgram DeepgramConfig `yaml:"deepgram"`
	Cartesia CartesiaConfig `yaml:"cartesia"`
}

// DeepgramConfig defines speech-to-text settings.
type DeepgramConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // default: nova-2
}

// CartesiaConfig defines text-to-speech settings.
type CartesiaConfig struct {
	APIKey  string `yaml:"api_key"`
	VoiceID string `yaml:"voice_id"`
	ModelID string `yaml:"model_id"` // default: sonic-english
}

// AgentConfig defines conversation loop settings.
type AgentConfig struct {
	// MaxToolIterations caps how many LLM round trips a single turn may
	// spend executing tools before the loop forces a text response.
	MaxToolIterations int `yaml:"max_tool_iterations"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		Listen: ListenConfig{Port: 8080},
		Store: StoreConfig{
			Backend:    "mongo",
			MongoURL:   "mongodb://localhost:27017",
			Database:   "hotel_agent_db",
			Collection: "accounts",
		},
		OpenAI: OpenAIConfig{Model: "gpt-4o"},
		Voice: VoiceConfig{
			Deepgram: DeepgramConfig{Model: "nova-2"},
			Cartesia: CartesiaConfig{ModelID: "sonic-english"},
		},
		Agent: AgentConfig{MaxToolIterations: 8},
	}
}
