package upstream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx answer from the upstream service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// TransportError covers network failures and bodies that are not JSON.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is an upstream 401 or 403.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
}

// StatusOf returns the upstream status behind err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func newAPIError(status int, body []byte) *APIError {
	msg := extractMessage(body)
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", status)
	}
	return &APIError{Status: status, Message: msg}
}

// extractMessage prefers "detail", then the first field of the body.
func extractMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	if !json.Valid(trimmed) {
		return string(trimmed)
	}

	switch trimmed[0] {
	case '"':
		var s string
		_ = json.Unmarshal(trimmed, &s)
		return s
	case '{':
		var probe struct {
			Detail json.RawMessage `json:"detail"`
		}
		if err := json.Unmarshal(trimmed, &probe); err == nil && truthy(probe.Detail) {
			return plainValue(probe.Detail)
		}
		key, value, ok := firstField(trimmed)
		if !ok {
			return ""
		}
		switch value[0] {
		case '[':
			var parts []json.RawMessage
			_ = json.Unmarshal(value, &parts)
			texts := make([]string, 0, len(parts))
			for _, p := range parts {
				texts = append(texts, plainValue(p))
			}
			return key + ": " + strings.Join(texts, ", ")
		case '"':
			return key + ": " + plainValue(value)
		default:
			return compact(trimmed)
		}
	case '[':
		var parts []json.RawMessage
		_ = json.Unmarshal(trimmed, &parts)
		texts := make([]string, 0, len(parts))
		for _, p := range parts {
			texts = append(texts, plainValue(p))
		}
		return strings.Join(texts, ", ")
	case 'n':
		return ""
	default:
		return string(trimmed)
	}
}

// firstField walks the object tokens so the key order of the body is kept.
func firstField(body []byte) (string, json.RawMessage, bool) {
	dec := json.NewDecoder(bytes.NewReader(body))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return "", nil, false
	}
	tok, err := dec.Token()
	if err != nil {
		return "", nil, false
	}
	key, ok := tok.(string)
	if !ok {
		return "", nil, false
	}
	var value json.RawMessage
	if err := dec.Decode(&value); err != nil || len(value) == 0 {
		return "", nil, false
	}
	return key, value, true
}

func plainValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return compact(raw)
}

func truthy(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "", "null", "false", `""`, "0":
		return false
	}
	return true
}

func compact(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
