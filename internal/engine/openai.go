package engine

import (
	"context"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

const jsonInstruction = "Respond with a single JSON object and nothing else."

// NewOpenAILLM returns an LLMFunc for an OpenAI-compatible chat completions API,
// using the LLM settings of c. Per-request temperature and token limits
// override the configured ones.
func NewOpenAILLM(c Config) LLMFunc {
	client := llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
		llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
		llm.WithMaxTokens(c.LLMMaxTokens),
		llm.WithTemperature(c.LLMTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: 120 * time.Second}),
	)
	return func(ctx context.Context, req LLMRequest) (string, error) {
		system := req.System
		if req.JSON {
			system += "\n\n" + jsonInstruction
		}
		temperature := req.Temperature
		if temperature <= 0 {
			temperature = c.LLMTemperature
		}
		maxTokens := req.MaxTokens
		if maxTokens <= 0 {
			maxTokens = c.LLMMaxTokens
		}
		return client.Complete(ctx, system, req.Prompt,
			llm.WithChatTemperature(temperature),
			llm.WithChatMaxTokens(maxTokens),
		)
	}
}
