package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/opsreasoner/opsreasoner/pkg/models"
)

// OpsAgentYAMLConfig represents the complete opsagent.yaml file structure.
type OpsAgentYAMLConfig struct {
	Agents     map[string]models.AgentMetadata `yaml:"agents"`
	Defaults   *Defaults                       `yaml:"defaults"`
	Guardrails *GuardrailsConfig               `yaml:"guardrails"`
	Transport  *ToolTransportConfig            `yaml:"tool_transport"`
	Memory     *MemoryConfig                   `yaml:"memory"`
}

// LLMProvidersYAMLConfig represents the complete llm-providers.yaml file structure.
type LLMProvidersYAMLConfig struct {
	LLMProviders map[string]LLMProviderConfig `yaml:"llm_providers"`
}

// Initialize loads, validates, and returns ready-to-use configuration. This is
// the primary entry point for configuration loading.
//
// Steps performed:
//  1. Load YAML files from configDir
//  2. Expand environment variables
//  3. Parse YAML into structs
//  4. Merge built-in + user-defined configuration
//  5. Build in-memory registries
//  6. Validate all configuration
//  7. Return Config ready for use
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("initializing configuration")

	cfg, err := load(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	stats := cfg.Stats()
	log.Info("configuration initialized",
		"agents", stats.Agents,
		"llm_providers", stats.LLMProviders)

	return cfg, nil
}

func load(configDir string) (*Config, error) {
	loader := &configLoader{configDir: configDir}

	opsAgentConfig, err := loader.loadOpsAgentYAML()
	if err != nil {
		return nil, NewLoadError("opsagent.yaml", err)
	}

	llmProviders, err := loader.loadLLMProvidersYAML()
	if err != nil {
		return nil, NewLoadError("llm-providers.yaml", err)
	}

	builtin := GetBuiltinConfig()

	agents := mergeAgents(builtin.Agents, opsAgentConfig.Agents)
	llmProvidersMerged := mergeLLMProviders(builtin.LLMProviders, llmProviders)

	agentRegistry := NewAgentRegistry(agents)
	llmProviderRegistry := NewLLMProviderRegistry(llmProvidersMerged)

	defaults := opsAgentConfig.Defaults
	if defaults == nil {
		defaults = &Defaults{}
	}
	if defaults.LLMProvider == "" {
		defaults.LLMProvider = "default"
	}

	guardrails := DefaultGuardrailsConfig()
	if opsAgentConfig.Guardrails != nil {
		if err := mergo.Merge(guardrails, opsAgentConfig.Guardrails, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge guardrails config: %w", err)
		}
	}

	transport := opsAgentConfig.Transport
	if transport == nil {
		transport = &ToolTransportConfig{}
	}

	memory := opsAgentConfig.Memory
	if memory == nil {
		memory = &MemoryConfig{EmbeddingModel: "text-embedding-3-small", EmbeddingDimension: 1536}
	}

	return &Config{
		configDir:           configDir,
		Defaults:            defaults,
		Guardrails:          guardrails,
		Transport:           transport,
		Memory:              memory,
		AgentRegistry:       agentRegistry,
		LLMProviderRegistry: llmProviderRegistry,
	}, nil
}

func validate(cfg *Config) error {
	validator := NewValidator(cfg)
	return validator.ValidateAll()
}

type configLoader struct {
	configDir string
}

func (l *configLoader) loadYAML(filename string, target any) error {
	path := filepath.Join(l.configDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}

	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return nil
}

func (l *configLoader) loadOpsAgentYAML() (*OpsAgentYAMLConfig, error) {
	var cfg OpsAgentYAMLConfig
	cfg.Agents = make(map[string]models.AgentMetadata)

	if err := l.loadYAML("opsagent.yaml", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (l *configLoader) loadLLMProvidersYAML() (map[string]LLMProviderConfig, error) {
	var cfg LLMProvidersYAMLConfig
	cfg.LLMProviders = make(map[string]LLMProviderConfig)

	if err := l.loadYAML("llm-providers.yaml", &cfg); err != nil {
		return nil, err
	}
	return cfg.LLMProviders, nil
}

// mergeAgents overlays user-defined agent metadata on top of the six
// built-in agents. A user entry completely replaces the built-in entry for
// that name (metadata is small enough that partial-field merge would be
// more surprising than helpful).
func mergeAgents(builtin map[models.AgentName]*models.AgentMetadata, user map[string]models.AgentMetadata) map[models.AgentName]*models.AgentMetadata {
	merged := make(map[models.AgentName]*models.AgentMetadata, len(builtin))
	for k, v := range builtin {
		merged[k] = v
	}
	for name, meta := range user {
		meta := meta
		merged[models.AgentName(name)] = &meta
	}
	return merged
}

// mergeLLMProviders overlays user-defined LLM providers on top of the
// built-in "default" entry.
func mergeLLMProviders(builtin map[string]*LLMProviderConfig, user map[string]LLMProviderConfig) map[string]*LLMProviderConfig {
	merged := make(map[string]*LLMProviderConfig, len(builtin)+len(user))
	for k, v := range builtin {
		merged[k] = v
	}
	for name, provider := range user {
		provider := provider
		merged[name] = &provider
	}
	return merged
}
