package llm

import (
	"net/http"
)

// UserAgent is sent with every API request.
const UserAgent = "shellgen"

// headerTransport adds fixed headers to each outgoing request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request.
	clone := req.Clone(req.Context())
	if clone.Header.Get("User-Agent") == "" {
		clone.Header.Set("User-Agent", UserAgent)
	}
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}
	return t.base.RoundTrip(clone)
}

// NewHTTPClient creates the client used for streaming completions. It has
// no overall Timeout: a deadline would cut long streams mid-answer, so
// cancellation is left to the request context.
func NewHTTPClient(headers map[string]string) *http.Client {
	copied := make(map[string]string, len(headers))
	for k, v := range headers {
		copied[k] = v
	}
	return &http.Client{
		Transport: &headerTransport{
			base:    http.DefaultTransport,
			headers: copied,
		},
	}
}
