package llm

import (
	"context"
	"io"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content string
	Usage   Usage
	Err     error
}

// MockProvider is a deterministic Provider for tests and offline serving.
// It returns canned responses in FIFO order and records all requests. Once
// the queue is drained, an Echo provider repeats the last user message.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Echo      bool
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate returns the next canned response. With an empty queue it echoes
// when Echo is set and fails with ErrProviderUnavailable otherwise.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		if m.Echo {
			return echo(req), nil
		}
		return nil, &ErrProviderUnavailable{Err: nil}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return nil, resp.Err
	}

	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

func echo(req Request) *Response {
	var last string
	for _, msg := range req.Messages {
		if msg.Role == RoleUser {
			last = msg.Content
		}
	}
	content := "echo: " + last
	return &Response{
		Content:    content,
		Usage:      Usage{InputTokens: len(last), OutputTokens: len(content), TotalTokens: len(last) + len(content)},
		Model:      "mock",
		StopReason: "end",
	}
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockTranscriber returns a fixed transcript, or Err when set. It records
// the audio it received.
type MockTranscriber struct {
	mu       sync.Mutex
	Text     string
	Err      error
	Received [][]byte
}

func (m *MockTranscriber) Transcribe(_ context.Context, req TranscriptionRequest) (*Transcription, error) {
	audio, err := io.ReadAll(req.Audio)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Received = append(m.Received, audio)
	if m.Err != nil {
		return nil, m.Err
	}
	return &Transcription{Text: m.Text, Model: "mock"}, nil
}

// ModelID returns "mock".
func (m *MockTranscriber) ModelID() string {
	return "mock"
}
