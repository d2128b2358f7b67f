package llm

import (
	"context"
	"fmt"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Transcriber converts recorded speech to text.
type Transcriber interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (*Transcription, error)
	ModelID() string
}

// TranscriptionRequest carries one audio file.
type TranscriptionRequest struct {
	// Filename is passed upstream so the API can infer the audio format.
	Filename string
	Audio    io.Reader
	Language string
}

// Transcription is the recognised text.
type Transcription struct {
	Text  string
	Model string
}

const defaultAudioFilename = "audio.webm"

// OpenAITranscriber implements Transcriber with the OpenAI audio API.
type OpenAITranscriber struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAITranscriber creates a transcriber. A zero timeout disables the
// per-call deadline.
func NewOpenAITranscriber(apiKey, baseURL, model string, timeout time.Duration) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required for transcription")
	}
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAITranscriber{
		client:  newOpenAIClient(apiKey, baseURL),
		model:   model,
		timeout: timeout,
	}, nil
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, req TranscriptionRequest) (*Transcription, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	filename := req.Filename
	if filename == "" {
		filename = defaultAudioFilename
	}

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: filename,
		Reader:   req.Audio,
		Language: req.Language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	return &Transcription{Text: resp.Text, Model: t.model}, nil
}

func (t *OpenAITranscriber) ModelID() string {
	return t.model
}
