package config

import (
	"fmt"
	"os"
)

// Validator validates configuration comprehensively with clear error messages.
type Validator struct {
	cfg *Config
}

// NewValidator creates a validator for the given configuration.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll performs comprehensive validation (fail-fast — stops at the
// first error). Order: guardrails → agents → LLM providers → transport → memory,
// so dependencies are validated before dependents.
func (v *Validator) ValidateAll() error {
	if err := v.validateGuardrails(); err != nil {
		return fmt.Errorf("guardrails validation failed: %w", err)
	}
	if err := v.validateAgents(); err != nil {
		return fmt.Errorf("agent validation failed: %w", err)
	}
	if err := v.validateLLMProviders(); err != nil {
		return fmt.Errorf("LLM provider validation failed: %w", err)
	}
	if err := v.validateTransport(); err != nil {
		return fmt.Errorf("tool transport validation failed: %w", err)
	}
	if err := v.validateMemory(); err != nil {
		return fmt.Errorf("memory validation failed: %w", err)
	}
	return nil
}

func (v *Validator) validateGuardrails() error {
	g := v.cfg.Guardrails
	if g == nil {
		return fmt.Errorf("guardrails configuration is nil")
	}
	if g.MaxReplans < 0 {
		return NewValidationError("guardrails", "", "max_replans", fmt.Errorf("must be non-negative, got %d", g.MaxReplans))
	}
	if g.RetryMaxAttempts < 1 {
		return NewValidationError("guardrails", "", "retry_max_attempts", fmt.Errorf("must be at least 1, got %d", g.RetryMaxAttempts))
	}
	if g.RetryDelay < 0 {
		return NewValidationError("guardrails", "", "retry_delay", fmt.Errorf("must be non-negative"))
	}
	if g.ToolTimeout <= 0 {
		return NewValidationError("guardrails", "", "tool_timeout", fmt.Errorf("must be positive"))
	}
	if g.MemorySaveConfidenceThreshold < 0 || g.MemorySaveConfidenceThreshold > 1 {
		return NewValidationError("guardrails", "", "memory_save_confidence_threshold", fmt.Errorf("must be in [0,1]"))
	}
	return nil
}

func (v *Validator) validateAgents() error {
	for name, agent := range v.cfg.AgentRegistry.GetAll() {
		if agent.DisplayName == "" {
			return NewValidationError("agent", string(name), "display_name", ErrMissingRequiredField)
		}
		if agent.Description == "" {
			return NewValidationError("agent", string(name), "description", ErrMissingRequiredField)
		}
		for _, cap := range agent.Capabilities {
			if cap.Name == "" {
				return NewValidationError("agent", string(name), "capabilities[].name", ErrMissingRequiredField)
			}
		}
	}
	return nil
}

func (v *Validator) validateLLMProviders() error {
	defaultName := v.cfg.Defaults.LLMProvider
	if !v.cfg.LLMProviderRegistry.Has(defaultName) {
		return NewValidationError("defaults", "", "llm_provider", fmt.Errorf("provider '%s' not found", defaultName))
	}

	for name, provider := range v.cfg.LLMProviderRegistry.GetAll() {
		if !provider.Type.IsValid() {
			return NewValidationError("llm_provider", name, "type", fmt.Errorf("invalid provider type: %s", provider.Type))
		}
		if provider.Endpoint == "" {
			return NewValidationError("llm_provider", name, "endpoint", ErrMissingRequiredField)
		}
		if provider.APIKeyEnv != "" {
			if value := os.Getenv(provider.APIKeyEnv); value == "" {
				return NewValidationError("llm_provider", name, "api_key_env", fmt.Errorf("environment variable %s is not set", provider.APIKeyEnv))
			}
		}
		if provider.Temperature < 0 || provider.Temperature > 2 {
			return NewValidationError("llm_provider", name, "temperature", fmt.Errorf("must be in [0,2]"))
		}
	}
	return nil
}

func (v *Validator) validateTransport() error {
	t := v.cfg.Transport
	if t == nil || t.Endpoint == "" {
		return NewValidationError("tool_transport", "", "endpoint", ErrMissingRequiredField)
	}
	return nil
}

func (v *Validator) validateMemory() error {
	m := v.cfg.Memory
	if m == nil {
		return fmt.Errorf("memory configuration is nil")
	}
	if m.EmbeddingDimension <= 0 {
		return NewValidationError("memory", "", "embedding_dimension", fmt.Errorf("must be positive"))
	}
	return nil
}
