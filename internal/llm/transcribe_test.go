package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestTranscriber(t *testing.T, timeout time.Duration, handler http.HandlerFunc) *OpenAITranscriber {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tr, err := NewOpenAITranscriber("test-key", server.URL+"/v1", "", timeout)
	if err != nil {
		t.Fatalf("NewOpenAITranscriber: %v", err)
	}
	return tr
}

func TestOpenAITranscriber_HappyPath(t *testing.T) {
	var gotModel, gotFilename, gotAuth string
	var gotAudio []byte
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotModel = r.FormValue("model")
		f, hdr, err := r.FormFile("file")
		if err == nil {
			gotFilename = hdr.Filename
			gotAudio, _ = io.ReadAll(f)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"text": "we use multi factor authentication"})
	}

	tr := newTestTranscriber(t, 5*time.Second, handler)
	resp, err := tr.Transcribe(context.Background(), TranscriptionRequest{
		Filename: "clip.webm",
		Audio:    strings.NewReader("RIFFDATA"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "we use multi factor authentication" {
		t.Fatalf("unexpected transcript %q", resp.Text)
	}
	if gotModel != "whisper-1" {
		t.Errorf("model = %q, want whisper-1", gotModel)
	}
	if gotFilename != "clip.webm" {
		t.Errorf("filename = %q", gotFilename)
	}
	if string(gotAudio) != "RIFFDATA" {
		t.Errorf("audio = %q", gotAudio)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
}

func TestOpenAITranscriber_UpstreamError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"type":    "invalid_request_error",
				"message": "Invalid file format.",
			},
		})
	}

	tr := newTestTranscriber(t, 5*time.Second, handler)
	_, err := tr.Transcribe(context.Background(), TranscriptionRequest{Audio: strings.NewReader("x")})
	var ext *ErrExternalService
	if !errors.As(err, &ext) {
		t.Fatalf("expected ErrExternalService, got: %T (%v)", err, err)
	}
	if ext.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", ext.StatusCode)
	}
}

func TestOpenAITranscriber_Timeout(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}

	tr := newTestTranscriber(t, 50*time.Millisecond, handler)
	_, err := tr.Transcribe(context.Background(), TranscriptionRequest{Audio: strings.NewReader("x")})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestNewOpenAITranscriber_RequiresKey(t *testing.T) {
	if _, err := NewOpenAITranscriber("", "", "", 0); err == nil {
		t.Fatal("expected error for empty API key")
	}
}

func TestMockTranscriber(t *testing.T) {
	m := &MockTranscriber{Text: "hello"}
	resp, err := m.Transcribe(context.Background(), TranscriptionRequest{Audio: strings.NewReader("abc")})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "hello" || string(m.Received[0]) != "abc" {
		t.Errorf("resp = %+v, received = %q", resp, m.Received)
	}
}
