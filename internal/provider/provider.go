// Package provider defines the static LLM provider registry and the pure
// request/response translation layer.
//
// Every LLM backend (OpenAI, Anthropic, Qwen, Gemini, ...) speaks its own
// JSON dialect. The rest of Prompter works with the unified types in this
// file; Format and Extract translate to and from each provider's wire shape
// so callers never need to know which dialect is on the other end.
package provider

import "fmt"

// Role tags a message with its speaker. Ordering (conversation order) is
// significant and system messages conventionally come first, but that is
// the caller's responsibility; we pass the list through as given.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single message in the conversation. This matches the OpenAI
// format, which uses role + content pairs. Qwen and Gemini use different
// structures (Gemini has "parts" and a "model" role), so the formatter
// translates from this common shape.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ---------------------------------------------------------------------------
// Generation parameters
// ---------------------------------------------------------------------------

// Defaults applied when the caller does not specify a parameter.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
	DefaultTopP        = 1.0
)

// Params holds the resolved generation parameters for one call. Values are
// always concrete here: defaults are applied once, up front, by
// ResolveParams, so the same resolved numbers feed payload building,
// logging, and the metadata attached to the final result.
type Params struct {
	Temperature float64
	MaxTokens   int
	TopP        float64
}

// ResolveParams applies defaults to optionally-present caller values.
// Temperature and topP arrive as pointers so an explicit 0 survives; a nil
// pointer means "not set".
func ResolveParams(temperature *float64, maxTokens int, topP *float64) Params {
	p := Params{
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		TopP:        DefaultTopP,
	}
	if temperature != nil {
		p.Temperature = *temperature
	}
	if maxTokens > 0 {
		p.MaxTokens = maxTokens
	}
	if topP != nil {
		p.TopP = *topP
	}
	return p
}

// ---------------------------------------------------------------------------
// Provider profiles
// ---------------------------------------------------------------------------

// AuthStyle selects how the API key travels with the request.
type AuthStyle string

const (
	// AuthBearerHeader sends "Authorization: Bearer <key>".
	AuthBearerHeader AuthStyle = "bearer-header"
	// AuthAPIKeyHeader sends the raw key in a provider-specific header
	// (x-api-key for Anthropic) plus any fixed version header required.
	AuthAPIKeyHeader AuthStyle = "api-key-header"
	// AuthQueryParam appends the key to the endpoint URL as a query
	// parameter; no auth header is sent.
	AuthQueryParam AuthStyle = "query-param"
)

// RequestShape selects which wire dialect the provider speaks. The set is
// closed: the formatter and extractor switch over it exhaustively, and an
// unknown shape is an UnsupportedProviderError, never a silent default.
type RequestShape string

const (
	// ShapeOpenAIChat covers OpenAI, Deepseek, Mistral, and any
	// OpenAI-compatible endpoint.
	ShapeOpenAIChat        RequestShape = "openai-chat"
	ShapeAnthropicMessages RequestShape = "anthropic-messages"
	ShapeQwenDashscope     RequestShape = "qwen-dashscope"
	ShapeGeminiGenerate    RequestShape = "gemini-generate"
)

// Profile is the static per-provider record. Profiles are constructed once
// in the registry table at package init and never mutated.
type Profile struct {
	ID              string
	DefaultEndpoint string
	DefaultModel    string
	Models          []string
	AuthStyle       AuthStyle
	RequestShape    RequestShape
}

// ---------------------------------------------------------------------------
// Completion results
// ---------------------------------------------------------------------------

// Usage holds token count information. Every provider returns this in some
// form; we normalize the field names here.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionResult is the normalized outcome of one completion call,
// created fresh per call by Extract and owned by the caller afterwards.
// Content is never empty on success: a response missing the expected text
// field is an extraction failure, not an empty-string success. Usage stays
// nil when the provider's payload omits token counts; a zero usage value is
// never fabricated.
type CompletionResult struct {
	Content      string
	ModelUsed    string
	ProviderUsed string
	Usage        *Usage
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

// UnsupportedProviderError reports an unknown provider id or request shape.
// It is fatal: never retried, and never silently mapped to another provider.
type UnsupportedProviderError struct {
	ID string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider %q", e.ID)
}

// MalformedResponseError reports a 2xx provider response that is missing
// the field path the provider's documented shape promises.
type MalformedResponseError struct {
	Provider string
	Path     string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: missing %s", e.Provider, e.Path)
}
