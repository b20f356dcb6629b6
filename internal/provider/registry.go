package provider

import "fmt"

// ---------------------------------------------------------------------------
// Static provider table
// ---------------------------------------------------------------------------

// Provider ids accepted by Lookup.
const (
	OpenAI    = "openai"
	Anthropic = "anthropic"
	Deepseek  = "deepseek"
	Qwen      = "qwen"
	Gemini    = "gemini"
	Mistral   = "mistral"
	// Custom is an OpenAI-compatible endpoint supplied entirely by
	// configuration; it has no default endpoint or model of its own.
	Custom = "custom"
)

// profiles is the process-wide immutable provider table. It is built once
// here and only ever read; Lookup hands out copies, so callers cannot
// mutate the table through the returned value (Models is the exception,
// and ListModels copies it for the same reason).
var profiles = map[string]Profile{
	OpenAI: {
		ID:              OpenAI,
		DefaultEndpoint: "https://api.openai.com/v1/chat/completions",
		DefaultModel:    "gpt-4o",
		Models:          []string{"gpt-4o", "gpt-4o-mini", "gpt-4-turbo", "gpt-3.5-turbo"},
		AuthStyle:       AuthBearerHeader,
		RequestShape:    ShapeOpenAIChat,
	},
	Anthropic: {
		ID:              Anthropic,
		DefaultEndpoint: "https://api.anthropic.com/v1/messages",
		DefaultModel:    "claude-3-5-sonnet-20241022",
		Models:          []string{"claude-3-5-sonnet-20241022", "claude-3-5-haiku-20241022", "claude-3-opus-20240229"},
		AuthStyle:       AuthAPIKeyHeader,
		RequestShape:    ShapeAnthropicMessages,
	},
	Deepseek: {
		ID:              Deepseek,
		DefaultEndpoint: "https://api.deepseek.com/chat/completions",
		DefaultModel:    "deepseek-chat",
		Models:          []string{"deepseek-chat", "deepseek-reasoner"},
		AuthStyle:       AuthBearerHeader,
		RequestShape:    ShapeOpenAIChat,
	},
	Qwen: {
		ID:              Qwen,
		DefaultEndpoint: "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation",
		DefaultModel:    "qwen-turbo",
		Models:          []string{"qwen-turbo", "qwen-plus", "qwen-max"},
		AuthStyle:       AuthBearerHeader,
		RequestShape:    ShapeQwenDashscope,
	},
	Gemini: {
		// The Gemini endpoint is a base: the model name and the
		// :generateContent verb are appended per call by Endpoint.
		ID:              Gemini,
		DefaultEndpoint: "https://generativelanguage.googleapis.com/v1beta/models",
		DefaultModel:    "gemini-2.0-flash",
		Models:          []string{"gemini-2.0-flash", "gemini-1.5-pro", "gemini-1.5-flash"},
		AuthStyle:       AuthQueryParam,
		RequestShape:    ShapeGeminiGenerate,
	},
	Mistral: {
		ID:              Mistral,
		DefaultEndpoint: "https://api.mistral.ai/v1/chat/completions",
		DefaultModel:    "mistral-small-latest",
		Models:          []string{"mistral-small-latest", "mistral-large-latest", "open-mistral-nemo"},
		AuthStyle:       AuthBearerHeader,
		RequestShape:    ShapeOpenAIChat,
	},
	Custom: {
		ID:           Custom,
		AuthStyle:    AuthBearerHeader,
		RequestShape: ShapeOpenAIChat,
	},
}

// IDs lists the known provider ids in a stable order, for UI population
// and error messages.
var IDs = []string{OpenAI, Anthropic, Deepseek, Qwen, Gemini, Mistral, Custom}

// Lookup returns the static profile for a provider id. An unknown id is a
// hard failure; it is never defaulted to another provider.
func Lookup(id string) (Profile, error) {
	p, ok := profiles[id]
	if !ok {
		return Profile{}, &UnsupportedProviderError{ID: id}
	}
	return p, nil
}

// ListModels returns the static, ordered model list for a provider. The
// list carries no network effects; it exists so the host UI can populate a
// model picker without a round trip.
func ListModels(id string) ([]string, error) {
	p, ok := profiles[id]
	if !ok {
		return nil, &UnsupportedProviderError{ID: id}
	}
	models := make([]string, len(p.Models))
	copy(models, p.Models)
	return models, nil
}

// Endpoint resolves the URL to POST to for one call. A non-empty override
// from configuration wins over the profile default. Gemini is special: its
// endpoint embeds the model name in the URL path, so we append it here
// rather than in the request body.
func Endpoint(p Profile, model, override string) (string, error) {
	base := p.DefaultEndpoint
	if override != "" {
		base = override
	}
	if base == "" {
		return "", fmt.Errorf("provider %q requires an endpoint override in configuration", p.ID)
	}
	if p.RequestShape == ShapeGeminiGenerate {
		return fmt.Sprintf("%s/%s:generateContent", base, model), nil
	}
	return base, nil
}
