package upstream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

var credentialPrefixes = []string{"Token ", "Bearer ", "Basic "}

// Config carries everything a request needs from client state.
type Config struct {
	BaseURL    string
	Credential string
}

// Request is a fully built upstream call, not yet executed.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// NormalizeCredential keeps a known auth scheme prefix or defaults to "Token ".
// An empty credential stays empty.
func NormalizeCredential(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, prefix := range credentialPrefixes {
		if strings.HasPrefix(raw, prefix) {
			return raw
		}
	}
	return "Token " + raw
}

// BuildRequest frames a call against the upstream API.
// A string body is sent verbatim, any other non-nil body is JSON encoded.
func BuildRequest(cfg Config, method, path string, body any) (Request, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return Request{}, fmt.Errorf("upstream base URL is not configured")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if method == "" {
		method = http.MethodGet
	}

	header := http.Header{}
	header.Set("Accept", "application/json")
	if auth := NormalizeCredential(cfg.Credential); auth != "" {
		header.Set("Authorization", auth)
	}

	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			return Request{}, fmt.Errorf("failed to encode request body: %w", err)
		}
		header.Set("Content-Type", "application/json")
		payload = encoded
	}

	return Request{
		Method: method,
		URL:    base + path,
		Header: header,
		Body:   payload,
	}, nil
}
