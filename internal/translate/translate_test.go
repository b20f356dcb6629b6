package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prompterhq/prompter/internal/provider"
	"github.com/prompterhq/prompter/internal/transport"
)

// openaiStub wraps raw model text in an openai-chat response body, the way
// a real provider would return it.
func openaiStub(t *testing.T, modelText string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"model": "stub-model",
			"choices": []any{
				map[string]any{"message": map[string]any{"role": "assistant", "content": modelText}},
			},
			"usage": map[string]any{"prompt_tokens": 9, "completion_tokens": 5, "total_tokens": 14},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}
}

// newStubTranslator points a Translator at a stub server via the custom
// (OpenAI-compatible) provider profile.
func newStubTranslator(t *testing.T, handler http.Handler) (*Translator, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	custom, err := provider.Lookup("custom")
	require.NoError(t, err)

	tr, err := NewTranslator(transport.New(), custom, "stub-model", srv.URL, "test-key",
		provider.ResolveParams(nil, 0, nil))
	require.NoError(t, err)
	return tr, srv
}

func TestTranslateStructuredSuccess(t *testing.T) {
	tr, _ := newStubTranslator(t, openaiStub(t, `{"format":"plaintext","response":"hi"}`))

	outcome, completion, err := tr.Translate(context.Background(), "Say hi.", CellShape())
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	assert.Empty(t, outcome.Message)
	assert.Equal(t, "plaintext", outcome.Data["format"])
	assert.Equal(t, "hi", outcome.Data["response"])

	require.NotNil(t, completion)
	assert.Equal(t, "custom", completion.ProviderUsed)
	require.NotNil(t, completion.Usage)
	assert.Equal(t, 14, completion.Usage.TotalTokens)
}

func TestTranslateNonJSONOutput(t *testing.T) {
	// The model answered in prose. That is a failed outcome carrying the
	// parse error, not a returned error: the system worked, the model
	// did not comply.
	tr, _ := newStubTranslator(t, openaiStub(t, "not json"))

	outcome, completion, err := tr.Translate(context.Background(), "Say hi.", CellShape())
	require.NoError(t, err)

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Message, "parsing model output")
	assert.Nil(t, outcome.Data)

	// Usage metadata survives the failed coercion.
	require.NotNil(t, completion)
	require.NotNil(t, completion.Usage)
}

func TestTranslateValidationFailure(t *testing.T) {
	tr, _ := newStubTranslator(t, openaiStub(t, `{"format":"html","response":"hi"}`))

	outcome, _, err := tr.Translate(context.Background(), "Say hi.", CellShape())
	require.NoError(t, err)

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Message, "format")
}

func TestTranslateFencedOutput(t *testing.T) {
	fenced := "```json\n{\"format\":\"markdown\",\"response\":\"# Hi\"}\n```"
	tr, _ := newStubTranslator(t, openaiStub(t, fenced))

	outcome, _, err := tr.Translate(context.Background(), "Say hi.", CellShape())
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	assert.Equal(t, "# Hi", outcome.Data["response"])
}

func TestTranslateIdempotent(t *testing.T) {
	// Two calls against a stub returning identical text must yield
	// structurally equal outcomes.
	tr, _ := newStubTranslator(t, openaiStub(t, `{"format":"plaintext","response":"hi","tags":["greeting"]}`))

	first, _, err := tr.Translate(context.Background(), "Say hi.", CellShape())
	require.NoError(t, err)
	second, _, err := tr.Translate(context.Background(), "Say hi.", CellShape())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTranslateSendsShapeInstructions(t *testing.T) {
	var gotBody struct {
		Messages []provider.Message `json:"messages"`
	}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		openaiStub(t, `{"format":"plaintext","response":"hi"}`)(w, r)
	})
	tr, _ := newStubTranslator(t, handler)

	_, _, err := tr.Translate(context.Background(), "Say hi.", CellShape())
	require.NoError(t, err)

	require.Len(t, gotBody.Messages, 2)
	assert.Equal(t, provider.RoleSystem, gotBody.Messages[0].Role)
	assert.Contains(t, gotBody.Messages[0].Content, `"format"`)
	assert.Equal(t, provider.RoleUser, gotBody.Messages[1].Role)
	assert.Equal(t, "Say hi.", gotBody.Messages[1].Content)
}

func TestTranslateTransportErrorPropagates(t *testing.T) {
	tr, _ := newStubTranslator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, _, err := tr.Translate(context.Background(), "Say hi.", CellShape())
	require.Error(t, err)

	var httpErr *transport.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
}

func TestTranslateMalformedResponsePropagates(t *testing.T) {
	tr, _ := newStubTranslator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))

	_, _, err := tr.Translate(context.Background(), "Say hi.", CellShape())
	var malformed *provider.MalformedResponseError
	require.True(t, errors.As(err, &malformed))
}

func TestStripFence(t *testing.T) {
	cases := map[string]struct{ in, want string }{
		"no fence":           {`{"a":1}`, `{"a":1}`},
		"plain fence":        {"```\n{\"a\":1}\n```", `{"a":1}`},
		"language fence":     {"```json\n{\"a\":1}\n```", `{"a":1}`},
		"surrounding space":  {"  {\"a\":1}\n", `{"a":1}`},
		"unterminated fence": {"```json\n{\"a\":1}", "```json\n{\"a\":1}"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, stripFence(tc.in))
		})
	}
}

func TestBind(t *testing.T) {
	outcome := Outcome{
		Success: true,
		Data: map[string]any{
			"format":   "markdown",
			"tags":     []string{"go"},
			"response": "# Hi",
		},
	}

	cell, err := Bind[CellOutput](outcome)
	require.NoError(t, err)
	assert.Equal(t, CellOutput{Format: "markdown", Tags: []string{"go"}, Response: "# Hi"}, cell)
}

func TestBindFailedOutcome(t *testing.T) {
	_, err := Bind[CellOutput](Outcome{Success: false, Message: "nope"})
	require.Error(t, err)
}
