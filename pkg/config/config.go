package config

// Config is the umbrella configuration object assembled once at startup by
// Initialize and passed by reference into every component that needs it —
// no process-wide mutable singleton.
type Config struct {
	configDir string

	Defaults    *Defaults
	Guardrails  *GuardrailsConfig
	Transport   *ToolTransportConfig
	Memory      *MemoryConfig

	AgentRegistry       *AgentRegistry
	LLMProviderRegistry *LLMProviderRegistry
}

// ConfigDir returns the configuration directory path.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// Stats contains statistics about loaded configuration, useful for startup logging.
type Stats struct {
	Agents       int
	LLMProviders int
}

// Stats returns configuration statistics for logging/monitoring.
func (c *Config) Stats() Stats {
	return Stats{
		Agents:       c.AgentRegistry.Len(),
		LLMProviders: c.LLMProviderRegistry.Len(),
	}
}
