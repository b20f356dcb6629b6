package provider

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var formatMessages = []Message{
	{Role: RoleSystem, Content: "You are terse."},
	{Role: RoleUser, Content: "Say hi."},
	{Role: RoleAssistant, Content: "hi"},
}

var formatParams = Params{Temperature: 0.3, MaxTokens: 500, TopP: 0.8}

// marshalFormat runs Format and returns the serialized body, so each test
// can compare against the literal JSON the provider documents.
func marshalFormat(t *testing.T, providerID string) string {
	t.Helper()
	p, err := Lookup(providerID)
	require.NoError(t, err)
	body, err := Format(p, "test-model", formatMessages, formatParams)
	require.NoError(t, err)
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return string(raw)
}

func TestFormatOpenAIChat(t *testing.T) {
	assert.JSONEq(t, `{
		"model": "test-model",
		"messages": [
			{"role": "system", "content": "You are terse."},
			{"role": "user", "content": "Say hi."},
			{"role": "assistant", "content": "hi"}
		],
		"temperature": 0.3,
		"max_tokens": 500,
		"top_p": 0.8
	}`, marshalFormat(t, "openai"))
}

func TestFormatAnthropicMessages(t *testing.T) {
	assert.JSONEq(t, `{
		"model": "test-model",
		"messages": [
			{"role": "system", "content": "You are terse."},
			{"role": "user", "content": "Say hi."},
			{"role": "assistant", "content": "hi"}
		],
		"max_tokens": 500,
		"temperature": 0.3,
		"top_p": 0.8
	}`, marshalFormat(t, "anthropic"))
}

func TestFormatQwenDashscope(t *testing.T) {
	assert.JSONEq(t, `{
		"model": "test-model",
		"input": {
			"messages": [
				{"role": "system", "content": "You are terse."},
				{"role": "user", "content": "Say hi."},
				{"role": "assistant", "content": "hi"}
			]
		},
		"parameters": {
			"temperature": 0.3,
			"max_tokens": 500,
			"top_p": 0.8
		}
	}`, marshalFormat(t, "qwen"))
}

func TestFormatGeminiGenerate(t *testing.T) {
	// Gemini renames everything: assistant becomes model, content wraps
	// in parts, parameters nest under generationConfig with camelCase
	// keys. The model id is absent from the body (it lives in the URL).
	assert.JSONEq(t, `{
		"contents": [
			{"role": "system", "parts": [{"text": "You are terse."}]},
			{"role": "user", "parts": [{"text": "Say hi."}]},
			{"role": "model", "parts": [{"text": "hi"}]}
		],
		"generationConfig": {
			"temperature": 0.3,
			"topP": 0.8,
			"maxOutputTokens": 500
		}
	}`, marshalFormat(t, "gemini"))
}

func TestFormatOpenAICompatibleProvidersShareShape(t *testing.T) {
	// Deepseek, Mistral, and custom endpoints all speak openai-chat; the
	// payloads must be byte-for-byte interchangeable.
	want := marshalFormat(t, "openai")
	assert.JSONEq(t, want, marshalFormat(t, "deepseek"))
	assert.JSONEq(t, want, marshalFormat(t, "mistral"))
	assert.JSONEq(t, want, marshalFormat(t, "custom"))
}

func TestFormatUnknownShape(t *testing.T) {
	p := Profile{ID: "bogus", RequestShape: RequestShape("bogus-shape")}
	_, err := Format(p, "m", formatMessages, formatParams)
	require.Error(t, err)
	var unsupported *UnsupportedProviderError
	require.ErrorAs(t, err, &unsupported)
}

func TestGeminiRoleRemapPreservesOrderAndText(t *testing.T) {
	messages := []Message{
		{Role: RoleUser, Content: "first"},
		{Role: RoleAssistant, Content: "second"},
		{Role: RoleUser, Content: "third"},
	}

	contents := toGeminiContents(messages)
	require.Len(t, contents, len(messages))

	for i, msg := range messages {
		// Lossy only in role naming: "assistant" -> "model".
		wantRole := msg.Role
		if wantRole == RoleAssistant {
			wantRole = "model"
		}
		assert.Equal(t, wantRole, contents[i].Role)
		require.Len(t, contents[i].Parts, 1)
		assert.Equal(t, msg.Content, contents[i].Parts[0].Text)
	}
}
