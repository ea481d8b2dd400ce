package engine

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// NewGeminiLLM returns an LLMFunc backed by the Gemini API. JSON requests are
// constrained to the analysis record schema.
func NewGeminiLLM(ctx context.Context, apiKey, model string) (LLMFunc, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return func(ctx context.Context, req LLMRequest) (string, error) {
		gc := &genai.GenerateContentConfig{}
		if req.System != "" {
			gc.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
		}
		if req.Temperature > 0 {
			gc.Temperature = genai.Ptr(float32(req.Temperature))
		}
		if req.MaxTokens > 0 {
			gc.MaxOutputTokens = int32(req.MaxTokens)
		}
		if req.JSON {
			gc.ResponseMIMEType = "application/json"
			gc.ResponseSchema = recordSchema()
		}

		contents := []*genai.Content{{
			Parts: []*genai.Part{{Text: req.Prompt}},
			Role:  "user",
		}}
		resp, err := client.Models.GenerateContent(ctx, model, contents, gc)
		if err != nil {
			return "", fmt.Errorf("gemini API call failed: %w", err)
		}
		return resp.Text(), nil
	}, nil
}

func recordSchema() *genai.Schema {
	list := func(desc string) *genai.Schema {
		return &genai.Schema{
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: desc,
		}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"main_alpha":           list("Contrarian or non-consensus ideas."),
			"key_insights":         list("Specific insights with numbers, names or mechanisms."),
			"actionable_takeaways": list("Concrete actions a listener could take."),
			"key_quotes":           list("Verbatim quotes from the segment."),
			"main_topics":          list("Short topic labels."),
			"content_category":     {Type: genai.TypeString, Description: "business, technology, investing, crypto, personal_development, strategy or general."},
			"confidence_score":     {Type: genai.TypeNumber, Description: "Substance of the segment between 0 and 1."},
		},
		Required: []string{"main_alpha", "key_insights", "actionable_takeaways", "key_quotes", "content_category", "confidence_score"},
	}
}
