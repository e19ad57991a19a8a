package llm

import "strings"

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskRecommend TaskType = "recommend"
)

// Provider selects the wire protocol.
type Provider string

const (
	// ProviderOpenAI is any OpenAI-compatible /chat/completions API.
	ProviderOpenAI Provider = "openai"
	// ProviderGroq is read from the environment and resolves to ProviderOpenAI.
	ProviderGroq   Provider = "groq"
	ProviderOllama Provider = "ollama"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// Config holds all configuration for the LLM subsystem. config.Load fills it
// from RUNBUDDY_LLM_* variables and then calls Resolve.
type Config struct {
	Provider           Provider `envconfig:"RUNBUDDY_LLM_PROVIDER" default:"groq" validate:"oneof=groq openai ollama"`
	LogCalls           bool     `envconfig:"RUNBUDDY_LLM_LOG_CALLS" default:"true"`
	Endpoint           string   `envconfig:"RUNBUDDY_LLM_ENDPOINT" validate:"omitempty,url"`
	APIKey             string   `envconfig:"RUNBUDDY_LLM_API_KEY"`
	Model              string   `envconfig:"RUNBUDDY_LLM_MODEL"`
	TimeoutMs          int      `envconfig:"RUNBUDDY_LLM_TIMEOUT_MS" default:"20000" validate:"gt=0"`
	MaxRetries         int      `envconfig:"RUNBUDDY_LLM_MAX_RETRIES" default:"1" validate:"gte=0,lte=10"`
	RecommendTimeoutMs int      `envconfig:"RUNBUDDY_LLM_RECOMMEND_TIMEOUT_MS" default:"20000" validate:"gt=0"`

	Tasks map[TaskType]TaskConfig `ignored:"true"`
}

const (
	defaultChatEndpoint   = "https://api.groq.com/openai/v1"
	defaultChatModel      = "llama3-70b-8192"
	defaultOllamaEndpoint = "http://localhost:11434"
	defaultOllamaModel    = "llama3.2"
)

// DefaultConfig targets Groq's OpenAI-compatible API.
func DefaultConfig() Config {
	cfg := Config{
		Provider:           ProviderGroq,
		LogCalls:           true,
		TimeoutMs:          20000,
		MaxRetries:         1,
		RecommendTimeoutMs: 20000,
	}
	cfg.Resolve()
	return cfg
}

// Resolve maps the groq alias onto the OpenAI protocol, fills the
// provider's endpoint and model when unset and builds the task table.
func (c *Config) Resolve() {
	switch c.Provider {
	case ProviderOllama:
		if c.Endpoint == "" {
			c.Endpoint = defaultOllamaEndpoint
		}
		if c.Model == "" {
			c.Model = defaultOllamaModel
		}
	default:
		c.Provider = ProviderOpenAI
		if c.Endpoint == "" {
			c.Endpoint = defaultChatEndpoint
		}
		if c.Model == "" {
			c.Model = defaultChatModel
		}
	}
	c.Endpoint = strings.TrimRight(c.Endpoint, "/")

	if c.Tasks == nil {
		c.Tasks = map[TaskType]TaskConfig{
			TaskRecommend: {Temperature: 0.2, MaxTokens: 512, TimeoutMs: c.RecommendTimeoutMs},
		}
	}
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c Config) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}
