package proxy

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/selfassess/internal/llm"
)

// chatRequest keeps each message as received so the reply echoes the
// caller's messages unchanged.
type chatRequest struct {
	Messages []json.RawMessage
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat forwards the conversation to the chat model, appends its reply and
// answers {messages, input}.
func (h *Handler) Chat(ctx context.Context, ev Event) Result {
	req, err := parseChat(ev)
	if err != nil {
		return errorResult(http.StatusBadRequest, err)
	}
	if h.provider == nil {
		return chatFailure(errors.New("chat is not configured"))
	}

	msgs := make([]llm.Message, len(req.Messages))
	for i, raw := range req.Messages {
		msgs[i] = toLLMMessage(raw)
	}
	resp, err := h.provider.Generate(llm.WithPurpose(ctx, llm.PurposeChat), llm.Request{Messages: msgs})
	if err != nil {
		h.logger.Error("chat completion failed", zap.Error(err))
		return chatFailure(err)
	}

	reply, err := json.Marshal(chatMessage{Role: string(llm.RoleAssistant), Content: resp.Content})
	if err != nil {
		return chatFailure(err)
	}
	out := append(slices.Clone(req.Messages), reply)
	return jsonResult(http.StatusOK, map[string]any{
		"messages": out,
		"input":    req.Messages,
	})
}

func chatFailure(err error) Result {
	return jsonResult(http.StatusInternalServerError, map[string]string{
		"message": "chat completion failed",
		"error":   err.Error(),
	})
}

func parseChat(ev Event) (*chatRequest, error) {
	body := []byte(ev.Body)
	if ev.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(ev.Body)
		if err != nil {
			return nil, &ValidationError{Field: "body", Reason: "invalid base64", Err: err}
		}
		body = decoded
	}

	var envelope struct {
		Messages json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &ValidationError{Field: "body", Reason: "invalid JSON", Err: err}
	}
	raw := bytes.TrimSpace(envelope.Messages)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, &ValidationError{Field: "messages", Reason: "must be an array"}
	}

	req := &chatRequest{}
	if err := json.Unmarshal(raw, &req.Messages); err != nil {
		return nil, &ValidationError{Field: "messages", Reason: "must be an array", Err: err}
	}
	return req, nil
}

// toLLMMessage reads role and content from one wire message. Roles other
// than assistant and system (developer counts as system) are sent as user.
// Array content contributes its text parts; any other content is passed on
// as raw JSON.
func toLLMMessage(raw json.RawMessage) llm.Message {
	var m struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return llm.Message{Role: llm.RoleUser, Content: string(raw)}
	}

	role := llm.RoleUser
	switch m.Role {
	case "assistant":
		role = llm.RoleAssistant
	case "system", "developer":
		role = llm.RoleSystem
	}
	return llm.Message{Role: role, Content: contentText(m.Content)}
}

func contentText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	var parts []struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parts); err == nil {
		var b strings.Builder
		for _, p := range parts {
			if p.Text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(p.Text)
		}
		return b.String()
	}
	return string(raw)
}
