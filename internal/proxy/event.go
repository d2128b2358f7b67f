// Package proxy implements the transcription and chat pass-through handlers.
// Handlers take a gateway-style Event and return a Result so the HTTP server
// and tests drive them the same way.
package proxy

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/selfassess/internal/llm"
)

// Event is an inbound request.
type Event struct {
	Body            string
	IsBase64Encoded bool
	Headers         map[string]string
}

// Header returns the value of the named header. Lookup is case-insensitive.
func (e Event) Header(name string) string {
	if v, ok := e.Headers[name]; ok {
		return v
	}
	for k, v := range e.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Result is the response to an Event.
type Result struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

// Handler serves proxy events.
type Handler struct {
	transcriber llm.Transcriber
	provider    llm.Provider
	logger      *zap.Logger
}

// NewHandler creates a Handler. Either backend may be nil, in which case the
// matching call answers 500.
func NewHandler(t llm.Transcriber, p llm.Provider, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{transcriber: t, provider: p, logger: logger}
}

func jsonResult(status int, v any) Result {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"encode response"}`)
	}
	return Result{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func errorResult(status int, err error) Result {
	return jsonResult(status, map[string]string{"error": err.Error()})
}
