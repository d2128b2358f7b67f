package proxy

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/selfassess/internal/llm"
)

const multipartFormData = "multipart/form-data"

// Transcribe decodes the base64 multipart body, sends its audio file to the
// transcription API and answers {transcript}.
func (h *Handler) Transcribe(ctx context.Context, ev Event) Result {
	audio, err := parseAudio(ev)
	if err != nil {
		return errorResult(http.StatusBadRequest, err)
	}
	if h.transcriber == nil {
		return errorResult(http.StatusInternalServerError, errors.New("transcription is not configured"))
	}

	res, err := h.transcriber.Transcribe(llm.WithPurpose(ctx, llm.PurposeTranscribe), llm.TranscriptionRequest{
		Filename: audio.filename,
		Audio:    bytes.NewReader(audio.data),
	})
	if err != nil {
		h.logger.Error("transcription failed", zap.Error(err))
		return errorResult(http.StatusInternalServerError, err)
	}
	return jsonResult(http.StatusOK, map[string]string{"transcript": res.Text})
}

type audioFile struct {
	filename string
	data     []byte
}

func parseAudio(ev Event) (*audioFile, error) {
	if !ev.IsBase64Encoded {
		return nil, &ValidationError{Reason: "body must be base64 encoded"}
	}
	contentType := ev.Header("content-type")
	if !strings.HasPrefix(strings.ToLower(contentType), multipartFormData) {
		return nil, &ValidationError{Field: "content-type", Reason: "must be " + multipartFormData}
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil || params["boundary"] == "" {
		return nil, &ValidationError{Field: "content-type", Reason: "missing multipart boundary", Err: err}
	}

	raw, err := base64.StdEncoding.DecodeString(ev.Body)
	if err != nil {
		return nil, &ValidationError{Field: "body", Reason: "invalid base64", Err: err}
	}

	mr := multipart.NewReader(bytes.NewReader(raw), params["boundary"])
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ValidationError{Field: "body", Reason: "malformed multipart body", Err: err}
		}
		if part.FileName() == "" {
			continue
		}
		data, err := io.ReadAll(part)
		if err != nil {
			return nil, fmt.Errorf("read audio part: %w", err)
		}
		return &audioFile{filename: part.FileName(), data: data}, nil
	}
	return nil, &ValidationError{Field: "body", Reason: "no audio file in request"}
}
