package server

import (
	"encoding/base64"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/selfassess/internal/proxy"
)

// toEvent adapts an HTTP request into a proxy event. Multipart bodies are
// base64 encoded the way an API gateway delivers binary payloads.
func toEvent(c *gin.Context, limit int64) (proxy.Event, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, limit))
	if err != nil {
		return proxy.Event{}, err
	}
	ev := proxy.Event{
		Body:    string(body),
		Headers: map[string]string{"content-type": c.GetHeader("Content-Type")},
	}
	if c.ContentType() == "multipart/form-data" {
		ev.Body = base64.StdEncoding.EncodeToString(body)
		ev.IsBase64Encoded = true
	}
	return ev, nil
}

func (s *Server) serveProxy(c *gin.Context, call string, limit int64, fn func(*gin.Context, proxy.Event) proxy.Result) {
	if s.proxy == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": call + " is not configured"})
		return
	}
	ev, err := toEvent(c, limit)
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	res := fn(c, ev)
	s.metrics.observeProxy(call, res.StatusCode, time.Since(start))

	for k, v := range res.Headers {
		c.Header(k, v)
	}
	c.Data(res.StatusCode, res.Headers["Content-Type"], []byte(res.Body))
}

func (s *Server) transcribe(c *gin.Context) {
	s.serveProxy(c, "transcribe", maxAudioBytes, func(c *gin.Context, ev proxy.Event) proxy.Result {
		return s.proxy.Transcribe(c.Request.Context(), ev)
	})
}

func (s *Server) chat(c *gin.Context) {
	s.serveProxy(c, "chat", 1<<20, func(c *gin.Context, ev proxy.Event) proxy.Result {
		return s.proxy.Chat(c.Request.Context(), ev)
	})
}
