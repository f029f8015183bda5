// Package validate checks backend payloads before they reach the application.
//
// Payloads may arrive wrapped in a {success, data, error, errors, timestamp}
// envelope and with snake_case keys for the declared fields; both are handled
// before shape checks.
package validate

import (
	"bytes"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vietddude/fitlink/internal/core/domain"
)

type envelope struct {
	Success   bool                `json:"success"`
	Data      json.RawMessage     `json:"data"`
	Error     string              `json:"error"`
	Errors    []domain.FieldError `json:"errors"`
	Timestamp string              `json:"timestamp"`
}

// Unwrap strips the response envelope, if any, and returns the payload bytes.
// A top-level object with a boolean "success" key is treated as an envelope.
func Unwrap(raw []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, domain.ErrEmptyResponse
	}
	if trimmed[0] != '{' {
		return trimmed, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		// Let the shape decoder report the syntax problem.
		return trimmed, nil
	}
	flag, ok := probe["success"]
	if !ok {
		return trimmed, nil
	}
	if s := string(bytes.TrimSpace(flag)); s != "true" && s != "false" {
		return trimmed, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		// errors[] did not match the documented shape; keep what we can.
		env = envelope{}
		_ = json.Unmarshal(flag, &env.Success)
		_ = json.Unmarshal(probe["error"], &env.Error)
		env.Data = probe["data"]
	}

	if !env.Success {
		return nil, &domain.RejectedError{Message: env.Error, Errors: env.Errors}
	}

	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, domain.ErrEmptyResponse
	}
	return data, nil
}

func snakeToCamel(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	b.Grow(len(s))
	first := true
	for _, p := range parts {
		if p == "" {
			continue
		}
		if first {
			b.WriteString(p)
			first = false
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	if b.Len() == 0 {
		return s
	}
	return b.String()
}
