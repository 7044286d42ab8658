// Package llm provides centralized LLM configuration and client abstractions.
package llm

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: extraction, classification
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: serialization, scoring
	TierStandard ModelTier = "standard"
	// TierAdvanced is for complex reasoning: resume rewriting
	TierAdvanced ModelTier = "advanced"
)

// Config holds the per-tier model names.
type Config struct {
	Models map[ModelTier]string
}

// DefaultConfig returns the default Gemini model assignment.
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Models: make(map[ModelTier]string, len(c.Models)),
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}
