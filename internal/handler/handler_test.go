package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/contentkit/studio/internal/auth"
	"github.com/contentkit/studio/internal/config"
	"github.com/contentkit/studio/internal/middleware"
	"github.com/contentkit/studio/internal/model"
	ws "github.com/contentkit/studio/internal/websocket"
	"github.com/contentkit/studio/pkg/response"
)

const testSecret = "test-secret"

type event struct {
	kind  string
	jobID string
	code  string
}

type listEvent struct {
	userID string
	list   string
	items  any
}

type recordingPublisher struct {
	mu     sync.Mutex
	states []string
	lists  []listEvent
	ended  chan event
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{ended: make(chan event, 4)}
}

func (p *recordingPublisher) Bind(string, context.CancelFunc) {}
func (p *recordingPublisher) Release(string)                  {}

func (p *recordingPublisher) BroadcastSnapshot(_, _, state string, _ uint64, _ any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = append(p.states, state)
}

func (p *recordingPublisher) BroadcastComplete(jobID, _ string, _ any) {
	p.ended <- event{kind: "complete", jobID: jobID}
}

func (p *recordingPublisher) BroadcastError(jobID, code, _ string) {
	p.ended <- event{kind: "error", jobID: jobID, code: code}
}

func (p *recordingPublisher) BroadcastList(userID, list string, items any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lists = append(p.lists, listEvent{userID: userID, list: list, items: items})
}

func (p *recordingPublisher) recordedLists() []listEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]listEvent(nil), p.lists...)
}

func (p *recordingPublisher) waitEnd(t *testing.T) event {
	t.Helper()
	select {
	case ev := <-p.ended:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("job did not end")
		return event{}
	}
}

// fakeBackend answers the backend routes the gateway tests touch.
type fakeBackend struct {
	mu       sync.Mutex
	hold     bool // keeps kit-1 processing
	polls    int
	auth     []string
	uploaded []byte
	srv      *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	b := &fakeBackend{}
	b.srv = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.auth = append(b.auth, r.Header.Get("Authorization"))

	write := func(status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/content-kit/generate":
		write(http.StatusAccepted, `{"jobId":"kit-1","status":"PROCESSING"}`)
	case r.URL.Path == "/content-kit/kit-1/status":
		b.polls++
		if b.hold || b.polls < 2 {
			write(http.StatusOK, `{"jobId":"kit-1","status":"PROCESSING","outputs":{}}`)
			return
		}
		write(http.StatusOK, `{"jobId":"kit-1","status":"COMPLETED","outputs":{}}`)
	case r.Method == http.MethodGet && r.URL.Path == "/content-kit":
		write(http.StatusOK, `{"items":[{"jobId":"kit-1","status":"COMPLETED"}]}`)
	case r.URL.Path == "/content-kit/missing/status":
		write(http.StatusNotFound, `{"message":"Content kit not found"}`)
	case r.URL.Path == "/content-kit/kit-1/download":
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="my-kit.zip"`)
		_, _ = io.WriteString(w, "PK-zip")
	case r.Method == http.MethodPost && r.URL.Path == "/files/upload-url":
		write(http.StatusOK, `{"uploadUrl":"`+b.srv.URL+`/bucket/f1","fileId":"f1"}`)
	case r.Method == http.MethodPut && r.URL.Path == "/bucket/f1":
		b.uploaded, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	case r.URL.Path == "/pdf/start":
		write(http.StatusAccepted, `{"jobId":"pdf-1","status":"PROCESSING"}`)
	case r.URL.Path == "/pdf/status/pdf-1":
		write(http.StatusOK, `{"jobId":"pdf-1","status":"COMPLETED","extractedText":"hello"}`)
	case r.URL.Path == "/files":
		write(http.StatusOK, `{"files":[{"id":"f1","fileName":"doc.pdf"}]}`)
	default:
		write(http.StatusNotFound, `{"message":"no route"}`)
	}
}

func (b *fakeBackend) setHold(hold bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hold = hold
}

func (b *fakeBackend) authHeaders() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.auth...)
}

func (b *fakeBackend) uploadedBody() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.uploaded
}

type gateway struct {
	app   *fiber.App
	pub   *recordingPublisher
	token string
}

func newGateway(t *testing.T, backend *fakeBackend) *gateway {
	t.Helper()
	logger := zaptest.NewLogger(t)
	studio := &Studio{
		Backend: config.BackendConfig{BaseURL: backend.srv.URL, RequestTimeout: 5 * time.Second, UploadTimeout: 5 * time.Second},
		Polling: config.PollingConfig{
			ContentKit:    5 * time.Millisecond,
			Transcription: 5 * time.Millisecond,
			PDF:           5 * time.Millisecond,
			SocialImport:  5 * time.Millisecond,
		},
		Validate: validator.New(),
		Logger:   logger,
	}
	pub := newRecordingPublisher()
	studio.Lists = pub
	jobs := NewJobs(pub, time.Minute, logger)

	kits := NewKitHandler(studio, jobs)
	uploads := NewUploadHandler(studio, jobs)

	app := fiber.New()
	api := app.Group("/api", middleware.NewAuthMiddleware(nil, testSecret).Authenticate())
	api.Post("/kits", kits.Generate)
	api.Get("/kits/:jobId", kits.Status)
	api.Get("/kits/:jobId/download", kits.Download)
	api.Post("/uploads", uploads.Upload)

	token, err := auth.IssueLegacyToken("u1", "u1@example.com", testSecret, time.Hour)
	require.NoError(t, err)
	return &gateway{app: app, pub: pub, token: token}
}

func (g *gateway) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	req.Header.Set("Authorization", "Bearer "+g.token)
	resp, err := g.app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestKitHandler_GenerateFollowsJobToCompletion(t *testing.T) {
	backend := newFakeBackend(t)
	g := newGateway(t, backend)

	req := httptest.NewRequest(http.MethodPost, "/api/kits", strings.NewReader(`{"inputType":"prompt","inputData":{"text":"launch post"}}`))
	req.Header.Set("Content-Type", "application/json")
	resp := g.do(t, req)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "kit-1", body["jobId"])
	assert.Equal(t, "/ws/jobs/kit-1", body["stream"])

	ev := g.pub.waitEnd(t)
	assert.Equal(t, event{kind: "complete", jobID: "kit-1"}, ev)

	for _, h := range backend.authHeaders() {
		assert.Equal(t, "Bearer "+g.token, h)
	}
}

func TestKitHandler_CompletedKitRefreshesUserList(t *testing.T) {
	g := newGateway(t, newFakeBackend(t))

	req := httptest.NewRequest(http.MethodPost, "/api/kits", strings.NewReader(`{"inputType":"prompt","inputData":{"text":"launch post"}}`))
	req.Header.Set("Content-Type", "application/json")
	resp := g.do(t, req)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	g.pub.waitEnd(t)

	lists := g.pub.recordedLists()
	require.Len(t, lists, 1)
	assert.Equal(t, "u1", lists[0].userID)
	assert.Equal(t, model.ListKits, lists[0].list)
	assert.Equal(t, []model.ContentKitSummary{{JobID: "kit-1", Status: model.JobStatusCompleted}}, lists[0].items)
}

func TestKitHandler_SecondKitWhilePollingConflicts(t *testing.T) {
	backend := newFakeBackend(t)
	backend.setHold(true)
	g := newGateway(t, backend)

	generate := func() *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/api/kits", strings.NewReader(`{"inputType":"prompt","inputData":{"text":"launch post"}}`))
		req.Header.Set("Content-Type", "application/json")
		return g.do(t, req)
	}

	resp := generate()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	resp = generate()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var body response.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, response.CodeConflict, body.Error.Code)

	backend.setHold(false)
	assert.Equal(t, event{kind: "complete", jobID: "kit-1"}, g.pub.waitEnd(t))

	resp = generate()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode, "a finished job frees the flow")
	resp.Body.Close()
	g.pub.waitEnd(t)
}

func TestKitHandler_GenerateRejectsInvalidInput(t *testing.T) {
	backend := newFakeBackend(t)
	g := newGateway(t, backend)

	req := httptest.NewRequest(http.MethodPost, "/api/kits", strings.NewReader(`{"inputType":"prompt","inputData":{}}`))
	req.Header.Set("Content-Type", "application/json")
	resp := g.do(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body response.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, response.CodeValidationError, body.Error.Code)
	assert.Empty(t, backend.authHeaders())
}

func TestKitHandler_StatusNotFound(t *testing.T) {
	g := newGateway(t, newFakeBackend(t))

	resp := g.do(t, httptest.NewRequest(http.MethodGet, "/api/kits/missing", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body response.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "Content kit not found", body.Error.Message)
}

func TestKitHandler_Download(t *testing.T) {
	g := newGateway(t, newFakeBackend(t))

	resp := g.do(t, httptest.NewRequest(http.MethodGet, "/api/kits/kit-1/download", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "PK-zip", string(data))
	assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="my-kit.zip"`, resp.Header.Get("Content-Disposition"))
}

func TestKitHandler_RequiresAuth(t *testing.T) {
	g := newGateway(t, newFakeBackend(t))

	resp, err := g.app.Test(httptest.NewRequest(http.MethodGet, "/api/kits/kit-1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func multipartUpload(t *testing.T, name string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadHandler_PDFUploadIsProcessed(t *testing.T) {
	backend := newFakeBackend(t)
	g := newGateway(t, backend)

	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF\n")
	resp := g.do(t, multipartUpload(t, "doc.pdf", pdf, map[string]string{"target": "library"}))
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "pdf-1", body["jobId"])
	assert.Equal(t, "f1", body["fileId"])
	assert.Equal(t, "pdf", body["category"])
	assert.Equal(t, pdf, backend.uploadedBody())

	ev := g.pub.waitEnd(t)
	assert.Equal(t, "complete", ev.kind)

	lists := g.pub.recordedLists()
	require.Len(t, lists, 1)
	assert.Equal(t, model.ListFiles, lists[0].list)
	assert.Equal(t, []model.MediaFile{{ID: "f1", FileName: "doc.pdf"}}, lists[0].items)
}

func TestUploadHandler_RejectsBeforeUpload(t *testing.T) {
	backend := newFakeBackend(t)
	g := newGateway(t, backend)

	tests := []struct {
		name   string
		file   string
		body   []byte
		fields map[string]string
	}{
		{"unsupported type", "notes.txt", []byte("plain text notes"), nil},
		{"too long", "talk.mp3", []byte("ID3\x03\x00\x00\x00\x00\x00\x00"), map[string]string{"durationSeconds": "1201"}},
		{"bad target", "doc.pdf", []byte("%PDF-1.4\n"), map[string]string{"target": "trash"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := g.do(t, multipartUpload(t, tt.file, tt.body, tt.fields))
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
	assert.Nil(t, backend.uploadedBody())
}

func TestStreamHandler_UnknownJob(t *testing.T) {
	logger := zaptest.NewLogger(t)
	hub := ws.NewHub(logger)
	streams := NewStreamHandler(hub, NewJobs(hub, time.Minute, logger))

	token, err := auth.IssueLegacyToken("u1", "", testSecret, time.Hour)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/ws/jobs/:jobId", middleware.NewAuthMiddleware(nil, testSecret).Authenticate(), streams.AuthorizeJob, streams.Serve())

	req := httptest.NewRequest(http.MethodGet, "/ws/jobs/nope", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAuthHandler_Verify(t *testing.T) {
	app := fiber.New()
	app.Get("/auth/verify", NewAuthHandler(middleware.NewAuthMiddleware(nil, testSecret)).Verify)

	token, err := auth.IssueLegacyToken("u1", "u1@example.com", testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "u1", resp.Header.Get(middleware.HeaderUserID))
	assert.Equal(t, "u1@example.com", resp.Header.Get(middleware.HeaderUserEmail))

	req = httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(middleware.HeaderUserID))
}
