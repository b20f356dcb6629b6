package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/prompterhq/prompter/internal/provider"
	"github.com/prompterhq/prompter/internal/transport"
)

// Outcome is the result of coercing model output into a shape. It is a
// value, not an error: Success false means the model did not comply with
// the shape (bad JSON or failed validation), which callers treat as a
// recoverable condition, distinct from transport or extraction errors.
type Outcome struct {
	Success bool
	Data    map[string]any
	Message string
}

// Translator runs one provider/model pairing through the full pipeline:
// format the request, send it, extract the raw text, then parse and
// validate it against a shape. Each call constructs and owns its own
// request/response values; Translators are safe for concurrent use.
type Translator struct {
	client   *transport.Client
	profile  provider.Profile
	model    string
	endpoint string
	auth     transport.Auth
	params   provider.Params
}

// NewTranslator builds a Translator for one resolved provider/model pair.
// endpointOverride may be empty for every provider except "custom".
func NewTranslator(client *transport.Client, profile provider.Profile, model, endpointOverride, apiKey string, params provider.Params) (*Translator, error) {
	if model == "" {
		model = profile.DefaultModel
	}
	if model == "" {
		return nil, fmt.Errorf("provider %q has no default model; configure one", profile.ID)
	}

	endpoint, err := provider.Endpoint(profile, model, endpointOverride)
	if err != nil {
		return nil, err
	}
	auth, err := transport.AuthFor(profile, apiKey)
	if err != nil {
		return nil, err
	}

	return &Translator{
		client:   client,
		profile:  profile,
		model:    model,
		endpoint: endpoint,
		auth:     auth,
		params:   params,
	}, nil
}

// Model returns the resolved model id this translator sends to.
func (t *Translator) Model() string { return t.model }

// Params returns the resolved generation parameters.
func (t *Translator) Params() provider.Params { return t.params }

// Complete sends a message list through format, transport, and extract,
// returning the normalized completion. Errors at any of these stages
// propagate to the caller; they mean the system failed, not the model.
func (t *Translator) Complete(ctx context.Context, messages []provider.Message) (*provider.CompletionResult, error) {
	body, err := provider.Format(t.profile, t.model, messages, t.params)
	if err != nil {
		return nil, err
	}

	raw, err := t.client.Send(ctx, t.endpoint, t.auth, body)
	if err != nil {
		return nil, err
	}

	return provider.Extract(t.profile, t.model, raw)
}

// Translate sends the prompt through one completion round trip and coerces
// the raw model text into the shape.
//
// The returned error covers system failures only (unsupported provider,
// transport, malformed response); when it is nil, the Outcome says whether
// the model's text matched the shape. The underlying CompletionResult is
// returned whenever extraction succeeded, including on validation failure,
// so usage and model metadata are never lost.
func (t *Translator) Translate(ctx context.Context, prompt string, shape Shape) (Outcome, *provider.CompletionResult, error) {
	messages := []provider.Message{
		{Role: provider.RoleSystem, Content: shape.Instructions()},
		{Role: provider.RoleUser, Content: prompt},
	}

	completion, err := t.Complete(ctx, messages)
	if err != nil {
		return Outcome{}, nil, err
	}

	outcome := coerce(completion.Content, shape)
	return outcome, completion, nil
}

// coerce parses raw model text as JSON and validates it against the shape.
// Parse and validation failures become a failed Outcome carrying the
// underlying cause; nothing escapes as an error.
func coerce(raw string, shape Shape) Outcome {
	text := stripFence(raw)

	var decoded map[string]any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return Outcome{Success: false, Message: fmt.Sprintf("parsing model output as JSON: %v", err)}
	}

	data, err := shape.Validate(decoded)
	if err != nil {
		return Outcome{Success: false, Message: err.Error()}
	}

	return Outcome{Success: true, Data: data}
}

// stripFence removes a single surrounding markdown code fence, which
// models routinely wrap JSON in despite instructions not to. Anything
// else is returned unchanged and left to the JSON parser to judge.
func stripFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 || !strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		return trimmed
	}
	return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
}

// Bind decodes a validated Outcome payload into a caller struct via a JSON
// round trip. It exists so hosts can work with typed values instead of
// map[string]any without any reflection beyond the stdlib encoder.
func Bind[T any](o Outcome) (T, error) {
	var v T
	if !o.Success {
		return v, fmt.Errorf("cannot bind a failed translation: %s", o.Message)
	}
	raw, err := json.Marshal(o.Data)
	if err != nil {
		return v, fmt.Errorf("re-encoding translated data: %w", err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("binding translated data: %w", err)
	}
	return v, nil
}
