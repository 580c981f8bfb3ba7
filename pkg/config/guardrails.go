package config

import "time"

// GuardrailsConfig bounds the engine's retry and re-plan behavior: how many
// times a task is attempted, how many re-plan cycles a run may take, and the
// memory-save confidence gate.
type GuardrailsConfig struct {
	// MaxReplans is the default GraphState.MaxReplans for a run.
	MaxReplans int `yaml:"max_replans"`

	// RetryMaxAttempts is the dispatcher's per-agent attempt cap.
	RetryMaxAttempts int `yaml:"retry_max_attempts"`

	// RetryDelay is the sleep between attempts.
	RetryDelay time.Duration `yaml:"retry_delay"`

	// ToolTimeout is the default per-call tool-transport deadline.
	ToolTimeout time.Duration `yaml:"tool_timeout"`

	// MemorySaveConfidenceThreshold gates the post-run incident append: only a
	// diagnosis whose confidence exceeds it is written to memory.
	MemorySaveConfidenceThreshold float64 `yaml:"memory_save_confidence_threshold"`
}

// DefaultGuardrailsConfig returns the built-in guardrails.
func DefaultGuardrailsConfig() *GuardrailsConfig {
	return &GuardrailsConfig{
		MaxReplans:                    2,
		RetryMaxAttempts:              2,
		RetryDelay:                    1 * time.Second,
		ToolTimeout:                   15 * time.Second,
		MemorySaveConfidenceThreshold: 0.7,
	}
}
