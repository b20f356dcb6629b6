package transport

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prompterhq/prompter/internal/provider"
)

func authForID(t *testing.T, id, key string) Auth {
	t.Helper()
	p, err := provider.Lookup(id)
	require.NoError(t, err)
	auth, err := AuthFor(p, key)
	require.NoError(t, err)
	return auth
}

func TestAuthBearerHeader(t *testing.T) {
	auth := authForID(t, "openai", "sk-123")

	req, err := http.NewRequest(http.MethodPost, "https://api.openai.com/v1/chat/completions", nil)
	require.NoError(t, err)
	auth.applyHeaders(req)

	assert.Equal(t, "Bearer sk-123", req.Header.Get("Authorization"))

	// Bearer auth never touches the URL.
	url, err := auth.requestURL("https://api.openai.com/v1/chat/completions")
	require.NoError(t, err)
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", url)
}

func TestAuthAPIKeyHeader(t *testing.T) {
	auth := authForID(t, "anthropic", "sk-ant-123")

	req, err := http.NewRequest(http.MethodPost, "https://api.anthropic.com/v1/messages", nil)
	require.NoError(t, err)
	auth.applyHeaders(req)

	// The raw key in x-api-key, plus the pinned version header. No
	// Authorization header at all.
	assert.Equal(t, "sk-ant-123", req.Header.Get("x-api-key"))
	assert.Equal(t, anthropicAPIVersion, req.Header.Get("anthropic-version"))
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestAuthQueryParam(t *testing.T) {
	auth := authForID(t, "gemini", "AIza-test")

	url, err := auth.requestURL("https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent")
	require.NoError(t, err)
	assert.Equal(t,
		"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent?key=AIza-test",
		url,
	)

	// And no headers.
	req, err := http.NewRequest(http.MethodPost, url, nil)
	require.NoError(t, err)
	auth.applyHeaders(req)
	assert.Empty(t, req.Header.Get("Authorization"))
	assert.Empty(t, req.Header.Get("x-api-key"))
}

func TestAuthForUnknownStyle(t *testing.T) {
	_, err := AuthFor(provider.Profile{ID: "bogus", AuthStyle: provider.AuthStyle("carrier-pigeon")}, "k")
	require.Error(t, err)
}
