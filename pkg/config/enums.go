package config

// LLMProviderType identifies which chat-completion backend an LLM provider
// entry talks to.
type LLMProviderType string

const (
	LLMProviderTypeOpenAI      LLMProviderType = "openai"
	LLMProviderTypeAzureOpenAI LLMProviderType = "azure-openai"
	LLMProviderTypeAnthropic   LLMProviderType = "anthropic"
)

// IsValid checks if the LLM provider type is valid.
func (t LLMProviderType) IsValid() bool {
	switch t {
	case LLMProviderTypeOpenAI, LLMProviderTypeAzureOpenAI, LLMProviderTypeAnthropic:
		return true
	default:
		return false
	}
}
