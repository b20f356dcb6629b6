package transport

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/prompterhq/prompter/internal/provider"
)

// anthropicAPIVersion pins the Anthropic API behavior. Anthropic versions
// its API with a date-based header instead of the URL path, and rejects
// requests without it.
const anthropicAPIVersion = "2023-06-01"

// Auth carries the credentials for one call in whichever form the provider
// expects: a bearer header, a named key header plus fixed extras, or a URL
// query parameter. Build one with AuthFor.
type Auth struct {
	style provider.AuthStyle
	key   string

	headerName string            // api-key-header: the header carrying the key
	extra      map[string]string // api-key-header: fixed companion headers
	queryParam string            // query-param: the parameter name
}

// AuthFor builds the Auth for a provider profile. The mapping from auth
// style to concrete header/parameter names lives here so the rest of the
// transport stays provider-agnostic.
func AuthFor(p provider.Profile, key string) (Auth, error) {
	switch p.AuthStyle {
	case provider.AuthBearerHeader:
		return Auth{style: p.AuthStyle, key: key}, nil

	case provider.AuthAPIKeyHeader:
		// Anthropic is the only api-key-header provider today; the raw
		// key goes in x-api-key alongside the pinned version header.
		return Auth{
			style:      p.AuthStyle,
			key:        key,
			headerName: "x-api-key",
			extra:      map[string]string{"anthropic-version": anthropicAPIVersion},
		}, nil

	case provider.AuthQueryParam:
		return Auth{style: p.AuthStyle, key: key, queryParam: "key"}, nil

	default:
		return Auth{}, fmt.Errorf("unknown auth style %q for provider %q", p.AuthStyle, p.ID)
	}
}

// requestURL returns the endpoint to POST to, appending the key as a query
// parameter when that is the provider's auth style.
func (a Auth) requestURL(endpoint string) (string, error) {
	if a.style != provider.AuthQueryParam {
		return endpoint, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing endpoint %q: %w", endpoint, err)
	}
	q := u.Query()
	q.Set(a.queryParam, a.key)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// applyHeaders sets the auth headers on an outgoing request. Query-param
// auth sets nothing here; the key already travels in the URL.
func (a Auth) applyHeaders(req *http.Request) {
	switch a.style {
	case provider.AuthBearerHeader:
		req.Header.Set("Authorization", "Bearer "+a.key)
	case provider.AuthAPIKeyHeader:
		req.Header.Set(a.headerName, a.key)
		for name, value := range a.extra {
			req.Header.Set(name, value)
		}
	}
}
