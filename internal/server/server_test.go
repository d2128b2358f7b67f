package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abhisek/selfassess/internal/cache"
	"github.com/abhisek/selfassess/internal/llm"
	"github.com/abhisek/selfassess/internal/proxy"
	"github.com/abhisek/selfassess/internal/service"
	"github.com/abhisek/selfassess/internal/storage"
	"github.com/abhisek/selfassess/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	srv         *Server
	chat        *llm.MockProvider
	transcriber *llm.MockTranscriber
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s, err := store.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	bucket := storage.NewSQLiteBucket(s.ObjectRepo())
	c, err := cache.OpenInMemory(service.SubmissionLoader(s.AssessmentRepo(), bucket), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	env := &testEnv{
		chat:        llm.NewMockProvider(),
		transcriber: &llm.MockTranscriber{Text: "we enforce MFA"},
	}
	svc := service.New(s.AssessmentRepo(), bucket, c, zap.NewNop())
	env.srv = New(svc, proxy.NewHandler(env.transcriber, env.chat, zap.NewNop()), NewMetrics(), zap.NewNop())
	return env
}

func (e *testEnv) do(t *testing.T, method, path, identity, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	if identity != "" {
		id, groups, _ := strings.Cut(identity, ":")
		r.Header.Set(HeaderIdentityID, id)
		if groups != "" {
			r.Header.Set(HeaderIdentityGroups, groups)
		}
	}
	w := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func createAssessment(t *testing.T, e *testEnv, owner string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/v1/assessments", owner, `{"title":"FY25"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[assessmentView](t, w).ID
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAssessments_RequireIdentity(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, http.MethodGet, "/v1/assessments", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAssessmentLifecycle(t *testing.T) {
	e := newTestEnv(t)
	id := createAssessment(t, e, "alice")

	w := e.do(t, http.MethodGet, "/v1/assessments/"+id, "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[assessmentView](t, w)
	assert.Equal(t, "draft", view.Status)
	assert.Equal(t, 21, view.Progress.Total)
	assert.Equal(t, "company_name", view.Questions[0].ID)

	w = e.do(t, http.MethodPut, "/v1/assessments/"+id+"/answers/handles_fci", "alice", `{"value":"No"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view = decode[assessmentView](t, w)
	assert.Equal(t, 22, view.Progress.Total)
	assert.Equal(t, 1, view.Progress.Answered)

	w = e.do(t, http.MethodPut, "/v1/assessments/"+id+"/answers/AC.L1-3.1.1", "alice", `{"value":"Yes"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/v1/assessments/"+id+"/report", "alice", "")
	assert.Equal(t, http.StatusNotFound, w.Code, "no submission yet")

	w = e.do(t, http.MethodPost, "/v1/assessments/"+id+"/submit", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "submitted", decode[recordView](t, w).Status)

	w = e.do(t, http.MethodGet, "/v1/assessments/"+id+"/report", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	rep := decode[struct {
		Result struct {
			Score    int `json:"score"`
			MaxScore int `json:"maxScore"`
		} `json:"result"`
		Percent float64 `json:"percent"`
	}](t, w)
	assert.Equal(t, 1, rep.Result.Score)
	assert.Equal(t, 1, rep.Result.MaxScore)
	assert.InDelta(t, 100, rep.Percent, 0.001)

	w = e.do(t, http.MethodDelete, "/v1/assessments/"+id, "alice", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = e.do(t, http.MethodGet, "/v1/assessments/"+id, "alice", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestErrorMapping(t *testing.T) {
	e := newTestEnv(t)
	id := createAssessment(t, e, "alice")

	tests := []struct {
		name     string
		method   string
		path     string
		identity string
		body     string
		want     int
	}{
		{"missing assessment", http.MethodGet, "/v1/assessments/nope", "alice", "", http.StatusNotFound},
		{"hidden question", http.MethodPut, "/v1/assessments/" + id + "/answers/AC.L1-3.1.1_followup", "alice", `{"value":"x"}`, http.StatusNotFound},
		{"other owner", http.MethodGet, "/v1/assessments/" + id, "bob", "", http.StatusForbidden},
		{"assessor", http.MethodGet, "/v1/assessments/" + id, "carol:assessors", "", http.StatusOK},
		{"missing title", http.MethodPost, "/v1/assessments", "alice", `{}`, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/v1/assessments", "alice", `{`, http.StatusBadRequest},
		{"missing value", http.MethodPut, "/v1/assessments/" + id + "/answers/handles_fci", "alice", `{}`, http.StatusBadRequest},
		{"missing entry name", http.MethodPost, "/v1/assessments/" + id + "/inventory/software", "alice", `{"id":"s1"}`, http.StatusBadRequest},
		{"remove missing entry", http.MethodDelete, "/v1/assessments/" + id + "/inventory/hardware/h9", "alice", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(t, tt.method, tt.path, tt.identity, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestInventoryEndpoints(t *testing.T) {
	e := newTestEnv(t)
	id := createAssessment(t, e, "alice")
	base := "/v1/assessments/" + id + "/inventory/"

	w := e.do(t, http.MethodPost, base+"software", "alice", `{"id":"s1","name":"Office","vendor":"Microsoft"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(t, http.MethodPost, base+"software", "alice", `{"id":"s1","name":"Office"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(t, http.MethodPost, base+"hardware", "alice", `{"name":"Laptop"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	inv := decode[struct {
		Hardware []struct {
			ID string `json:"id"`
		} `json:"hardware"`
	}](t, w)
	require.Len(t, inv.Hardware, 1)
	assert.NotEmpty(t, inv.Hardware[0].ID, "id assigned when omitted")

	w = e.do(t, http.MethodDelete, base+"software/s1", "alice", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodDelete, base+"software/s1", "alice", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAssessments(t *testing.T) {
	e := newTestEnv(t)
	createAssessment(t, e, "alice")
	createAssessment(t, e, "bob")

	w := e.do(t, http.MethodGet, "/v1/assessments", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[struct {
		Assessments []recordView `json:"assessments"`
	}](t, w).Assessments, 1)

	w = e.do(t, http.MethodGet, "/v1/assessments", "root:admins", "")
	assert.Len(t, decode[struct {
		Assessments []recordView `json:"assessments"`
	}](t, w).Assessments, 2)
}

func TestQuestionnaireEndpoints(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodGet, "/v1/questionnaire", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "AC.L1-3.1.1")

	doc := `{"name":"Custom","version":"2","questions":[{"section":"onboarding","id":"company_name","question":"Company?","type":"text"}]}`
	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodPut, "/v1/questionnaire", "", doc).Code)
	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodPut, "/v1/questionnaire", "carol:assessors", doc).Code)
	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodPut, "/v1/questionnaire", "carol:assessors", `{"questions":[]}`).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPut, "/v1/questionnaire", "root:admins", `{"questions":[]}`).Code)

	w = e.do(t, http.MethodPut, "/v1/questionnaire", "root:admins", doc)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"name":"Custom","version":"2","questions":1}`, w.Body.String())
}

func TestChatEndpoint(t *testing.T) {
	e := newTestEnv(t)
	e.chat.AddResponse(llm.MockResponse{Content: "Use unique user IDs."})

	w := e.do(t, http.MethodPost, "/v1/chat", "alice", `{"messages":[{"role":"user","content":"IA.L1-3.5.1?"}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Use unique user IDs.")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	w = e.do(t, http.MethodPost, "/v1/chat", "alice", `{"messages":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTranscribeEndpoint(t *testing.T) {
	e := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "clip.webm")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("audio-bytes"))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/v1/transcribe", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"transcript":"we enforce MFA"}`, w.Body.String())
	require.Len(t, e.transcriber.Received, 1)
	assert.Equal(t, "audio-bytes", string(e.transcriber.Received[0]))

	w = e.do(t, http.MethodPost, "/v1/transcribe", "", `{"audio":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestEnv(t)
	e.do(t, http.MethodGet, "/health", "", "")
	e.chat.AddResponse(llm.MockResponse{Content: "ok"})
	e.do(t, http.MethodPost, "/v1/chat", "", `{"messages":[{"role":"user","content":"hi"}]}`)

	w := e.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `selfassess_http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, body, `selfassess_proxy_calls_total{call="chat",status="200"} 1`)
}
