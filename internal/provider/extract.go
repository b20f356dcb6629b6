package provider

import (
	"encoding/json"
	"fmt"
)

// This file is the response extractor: it parses each provider's documented
// response shape into the normalized CompletionResult. Text fields are
// decoded into pointers so that a missing field can be told apart from a
// present-but-empty one; only the former is a MalformedResponseError.

// ---------------------------------------------------------------------------
// Wire types (unexported)
// ---------------------------------------------------------------------------

type openaiChatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *openaiUsage `json:"usage"`
}

type openaiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string  `json:"type"`
		Text *string `json:"text"`
	} `json:"content"`
	Usage *anthropicUsage `json:"usage"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type qwenResponse struct {
	Output struct {
		Text *string `json:"text"`
	} `json:"output"`
	Usage *qwenUsage `json:"usage"`
}

type qwenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata *geminiUsageMetadata `json:"usageMetadata"`
}

type geminiUsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// ---------------------------------------------------------------------------
// Extract
// ---------------------------------------------------------------------------

// Extract parses a raw 2xx response body into a CompletionResult.
//
// The requested model is passed in so ModelUsed can fall back to it for
// providers (Qwen, Gemini) whose responses do not echo the model name.
// Usage is extracted opportunistically: when the payload has no usage
// object, the result's Usage stays nil rather than reporting zeros.
func Extract(p Profile, model string, body []byte) (*CompletionResult, error) {
	switch p.RequestShape {
	case ShapeOpenAIChat:
		return extractOpenAI(p, model, body)
	case ShapeAnthropicMessages:
		return extractAnthropic(p, model, body)
	case ShapeQwenDashscope:
		return extractQwen(p, model, body)
	case ShapeGeminiGenerate:
		return extractGemini(p, model, body)
	default:
		return nil, &UnsupportedProviderError{ID: string(p.RequestShape)}
	}
}

func extractOpenAI(p Profile, model string, body []byte) (*CompletionResult, error) {
	var resp openaiChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", p.ID, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == nil {
		return nil, &MalformedResponseError{Provider: p.ID, Path: "choices[0].message.content"}
	}

	result := &CompletionResult{
		Content:      *resp.Choices[0].Message.Content,
		ModelUsed:    firstNonEmpty(resp.Model, model),
		ProviderUsed: p.ID,
	}
	if resp.Usage != nil {
		result.Usage = &Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	return result, nil
}

func extractAnthropic(p Profile, model string, body []byte) (*CompletionResult, error) {
	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", p.ID, err)
	}

	// Anthropic returns an array of content blocks because responses can
	// mix text and tool_use blocks. For a plain completion content[0] is
	// the text block, but we scan for type "text" to be safe.
	var text *string
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			text = block.Text
			break
		}
	}
	if text == nil {
		return nil, &MalformedResponseError{Provider: p.ID, Path: "content[0].text"}
	}

	result := &CompletionResult{
		Content:      *text,
		ModelUsed:    firstNonEmpty(resp.Model, model),
		ProviderUsed: p.ID,
	}
	if resp.Usage != nil {
		result.Usage = &Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		}
	}
	return result, nil
}

func extractQwen(p Profile, model string, body []byte) (*CompletionResult, error) {
	var resp qwenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", p.ID, err)
	}
	if resp.Output.Text == nil {
		return nil, &MalformedResponseError{Provider: p.ID, Path: "output.text"}
	}

	result := &CompletionResult{
		Content:      *resp.Output.Text,
		ModelUsed:    model,
		ProviderUsed: p.ID,
	}
	if resp.Usage != nil {
		total := resp.Usage.TotalTokens
		if total == 0 {
			total = resp.Usage.InputTokens + resp.Usage.OutputTokens
		}
		result.Usage = &Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      total,
		}
	}
	return result, nil
}

func extractGemini(p Profile, model string, body []byte) (*CompletionResult, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", p.ID, err)
	}
	if len(resp.Candidates) == 0 ||
		len(resp.Candidates[0].Content.Parts) == 0 ||
		resp.Candidates[0].Content.Parts[0].Text == nil {
		return nil, &MalformedResponseError{Provider: p.ID, Path: "candidates[0].content.parts[0].text"}
	}

	result := &CompletionResult{
		Content:      *resp.Candidates[0].Content.Parts[0].Text,
		ModelUsed:    model,
		ProviderUsed: p.ID,
	}
	if resp.UsageMetadata != nil {
		result.Usage = &Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
	}
	return result, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
