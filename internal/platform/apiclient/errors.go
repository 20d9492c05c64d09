package apiclient

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RequestError is a non-2xx response. Message is already suitable for display.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string { return e.Message }

func (e *RequestError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.Status
}

// TransportError means no HTTP response was received at all.
type TransportError struct {
	Method   string
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// errorMessage extracts a human-readable reason from an error body.
// Order: string "detail", FastAPI validation array, {"error":{"message"}}, "message",
// then the generic status fallback.
func errorMessage(status int, body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err == nil {
		if raw, ok := payload["detail"]; ok {
			var s string
			if json.Unmarshal(raw, &s) == nil && strings.TrimSpace(s) != "" {
				return s
			}
			var items []struct {
				Msg string `json:"msg"`
			}
			if json.Unmarshal(raw, &items) == nil {
				msgs := make([]string, 0, len(items))
				for _, it := range items {
					if m := strings.TrimSpace(it.Msg); m != "" {
						msgs = append(msgs, m)
					}
				}
				if len(msgs) > 0 {
					return strings.Join(msgs, "; ")
				}
			}
		}
		if raw, ok := payload["error"]; ok {
			var env struct {
				Message string `json:"message"`
			}
			if json.Unmarshal(raw, &env) == nil && strings.TrimSpace(env.Message) != "" {
				return env.Message
			}
		}
		if raw, ok := payload["message"]; ok {
			var s string
			if json.Unmarshal(raw, &s) == nil && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return fmt.Sprintf("HTTP error! status: %d", status)
}
