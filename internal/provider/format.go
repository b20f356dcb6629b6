package provider

// This file is the request formatter: pure translation from the unified
// Message/Params types into each provider's documented request body. No
// I/O, no hidden state; every branch is independently testable against the
// literal JSON the provider documents.

// ---------------------------------------------------------------------------
// Wire types (unexported; only this file builds them)
// ---------------------------------------------------------------------------

// openaiChatRequest covers OpenAI, Deepseek, Mistral, and any
// OpenAI-compatible endpoint. Messages pass through unchanged.
type openaiChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	TopP        float64   `json:"top_p"`
}

// anthropicRequest is the Messages API body. Same shape family as OpenAI
// but max_tokens is required and auth travels in different headers (the
// transport's concern, not ours).
type anthropicRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p"`
}

// qwenRequest is DashScope's nested generation body: messages live under
// "input", generation parameters under "parameters".
type qwenRequest struct {
	Model      string         `json:"model"`
	Input      qwenInput      `json:"input"`
	Parameters qwenParameters `json:"parameters"`
}

type qwenInput struct {
	Messages []Message `json:"messages"`
}

type qwenParameters struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	TopP        float64 `json:"top_p"`
}

// geminiRequest is the generateContent body. The model is not in the body
// at all (it lives in the URL path), messages become "contents" with parts,
// and generation parameters move under generationConfig with renamed keys.
type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

// geminiContent is one message. Gemini uses "parts" (an array) because it
// supports multimodal input; for text we always send a single part.
type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// ---------------------------------------------------------------------------
// Format
// ---------------------------------------------------------------------------

// Format builds the provider-specific request body for one call. The
// returned value is an opaque JSON-serializable structure; the transport
// marshals it without looking inside. Unknown request shapes fail with
// UnsupportedProviderError.
func Format(p Profile, model string, messages []Message, params Params) (any, error) {
	switch p.RequestShape {
	case ShapeOpenAIChat:
		return &openaiChatRequest{
			Model:       model,
			Messages:    messages,
			Temperature: params.Temperature,
			MaxTokens:   params.MaxTokens,
			TopP:        params.TopP,
		}, nil

	case ShapeAnthropicMessages:
		return &anthropicRequest{
			Model:       model,
			Messages:    messages,
			MaxTokens:   params.MaxTokens,
			Temperature: params.Temperature,
			TopP:        params.TopP,
		}, nil

	case ShapeQwenDashscope:
		return &qwenRequest{
			Model: model,
			Input: qwenInput{Messages: messages},
			Parameters: qwenParameters{
				Temperature: params.Temperature,
				MaxTokens:   params.MaxTokens,
				TopP:        params.TopP,
			},
		}, nil

	case ShapeGeminiGenerate:
		return &geminiRequest{
			Contents: toGeminiContents(messages),
			GenerationConfig: geminiGenConfig{
				Temperature:     params.Temperature,
				TopP:            params.TopP,
				MaxOutputTokens: params.MaxTokens,
			},
		}, nil

	default:
		return nil, &UnsupportedProviderError{ID: string(p.RequestShape)}
	}
}

// toGeminiContents remaps messages into Gemini's contents array. The remap
// is lossy only in role naming ("assistant" becomes "model"); content
// ordering and text are preserved exactly.
func toGeminiContents(messages []Message) []geminiContent {
	contents := make([]geminiContent, 0, len(messages))
	for _, msg := range messages {
		role := msg.Role
		if role == RoleAssistant {
			role = "model"
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}
	return contents
}
