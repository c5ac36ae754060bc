package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/contentkit/studio/internal/config"
	"github.com/contentkit/studio/internal/model"
	"github.com/contentkit/studio/internal/session"
)

const testToken = "opaque-test-token"

func newClients(t *testing.T, baseURL string, sess *session.Session) *Clients {
	t.Helper()
	if sess == nil {
		sess = session.NewWithToken(testToken)
	}
	clients, err := New(config.BackendConfig{
		BaseURL:        baseURL,
		RequestTimeout: 5 * time.Second,
		UploadTimeout:  5 * time.Second,
	}, Options{Session: sess, Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	return clients
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestGenerateContentKit_Accepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/content-kit/generate", r.URL.Path)
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var req model.GenerateContentKitRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, model.InputTypePrompt, req.InputType)
		assert.Equal(t, "u1", req.InputData.UserID)

		writeJSON(w, http.StatusAccepted, map[string]any{
			"jobId":     "job-1",
			"status":    "PROCESSING",
			"message":   "queued",
			"requestId": "req-1",
		})
	}))
	defer srv.Close()

	c := newClients(t, srv.URL, nil)
	accepted, err := c.ContentKit.GenerateContentKit(context.Background(), &model.GenerateContentKitRequest{
		InputType: model.InputTypePrompt,
		InputData: model.ContentKitInput{Text: "launch notes", UserID: "u1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "job-1", accepted.JobID)
	assert.Equal(t, model.JobStatusProcessing, accepted.Status)
	assert.Equal(t, "req-1", accepted.RequestID)
}

func TestRequest_MissingTokenFailsBeforeNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := newClients(t, srv.URL, session.New(session.NewMemoryStore()))
	_, err := c.Transcription.GetTranscriptionStatus(context.Background(), "t-1")
	require.Error(t, err)
	assert.True(t, IsAuth(err))
	assert.ErrorIs(t, err, session.ErrNoToken)
	assert.Zero(t, hits.Load())
}

func TestRequest_ExpiredJWTFailsBeforeNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	c := newClients(t, srv.URL, session.NewWithToken(token))
	_, err = c.PDF.GetPDFStatus(context.Background(), "p-1")
	assert.Equal(t, KindAuth, KindOf(err))
	assert.Zero(t, hits.Load())
}

func TestRequest_UnauthorizedClearsTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token revoked"})
	}))
	defer srv.Close()

	ctx := context.Background()
	sess := session.New(session.NewMemoryStore())
	require.NoError(t, sess.SetTokens(ctx, testToken, "refresh"))

	c := newClients(t, srv.URL, sess)
	_, err := c.Media.ListFiles(ctx)

	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindAuth, se.Kind)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Equal(t, "token revoked", se.Message)

	_, err = sess.AccessToken(ctx)
	assert.ErrorIs(t, err, session.ErrNoToken)
}

func TestRequest_ServerErrorBodies(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		wantCode string
	}{
		{"message field", 400, `{"message":"inputData.text is required"}`, "inputData.text is required", ""},
		{"error string", 409, `{"error":"kit already deleted"}`, "kit already deleted", ""},
		{"error object", 429, `{"error":{"code":"RATE_LIMITED","message":"slow down"}}`, "slow down", "RATE_LIMITED"},
		{"plain text", 502, `bad gateway`, "content-kit request failed with status 502", ""},
		{"empty body", 500, ``, "content-kit request failed with status 500", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := newClients(t, srv.URL, nil)
			_, err := c.ContentKit.GetContentKitStatus(context.Background(), "job-1")

			var se *ServiceError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, KindServer, se.Kind)
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.wantMsg, se.Message)
			assert.Equal(t, tt.wantCode, se.Code)
		})
	}
}

func TestRequest_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := newClients(t, url, nil)
	_, err := c.SocialImport.GetImportStatus(context.Background(), "i-1")
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.Zero(t, StatusCode(err))
}

func TestRequest_CanceledContextIsNetworkAndUnwraps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newClients(t, srv.URL, nil)
	_, err := c.Analytics.GetSummary(ctx, "30d")
	assert.True(t, IsNetwork(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRequest_UndecodableSuccessBodyIsUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>maintenance</html>")
	}))
	defer srv.Close()

	c := newClients(t, srv.URL, nil)
	_, err := c.ContentKit.GetContentKitStatus(context.Background(), "job-1")
	require.Error(t, err)
	assert.Equal(t, KindUnknown, KindOf(err))
}

func TestNew_MissingBaseURL(t *testing.T) {
	t.Run("lenient constructor fails on request", func(t *testing.T) {
		c := newClients(t, "", nil)
		_, err := c.ContentKit.ListContentKits(context.Background(), 20, "")
		assert.Equal(t, KindUnknown, KindOf(err))
		assert.ErrorIs(t, err, ErrBaseURLMissing)
	})

	t.Run("strict constructor fails", func(t *testing.T) {
		_, err := NewMediaClient(config.BackendConfig{Strict: true}, Options{})
		assert.ErrorIs(t, err, ErrBaseURLMissing)
	})
}

func TestListContentKits_Query(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/content-kit", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		assert.Equal(t, "tok-2", r.URL.Query().Get("nextToken"))
		writeJSON(w, http.StatusOK, model.ContentKitPage{
			Items:     []model.ContentKitSummary{{JobID: "job-21"}},
			NextToken: "tok-3",
		})
	}))
	defer srv.Close()

	c := newClients(t, srv.URL, nil)
	page, err := c.ContentKit.ListContentKits(context.Background(), 20, "tok-2")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "tok-3", page.NextToken)
}

func TestDownloadContentKit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/content-kit/job-1/download", r.URL.Path)
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="launch-kit.zip"`)
		_, _ = io.WriteString(w, "PK\x03\x04zip")
	}))
	defer srv.Close()

	c := newClients(t, srv.URL, nil)
	archive, err := c.ContentKit.DownloadContentKit(context.Background(), "job-1")
	require.NoError(t, err)
	defer archive.Body.Close()

	data, err := io.ReadAll(archive.Body)
	require.NoError(t, err)
	assert.Equal(t, "PK\x03\x04zip", string(data))
	assert.Equal(t, "launch-kit.zip", archive.FileName)
	assert.Equal(t, "application/zip", archive.ContentType)
}

func TestExtractContent_ConfiguredPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/extract", r.URL.Path)
		writeJSON(w, http.StatusOK, model.ExtractResult{URL: "https://example.com/post", Text: "body"})
	}))
	defer srv.Close()

	c, err := NewContentClient(config.BackendConfig{BaseURL: srv.URL, ExtractPath: "/api/extract"},
		Options{Session: session.NewWithToken(testToken), Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)

	res, err := c.ExtractContent(context.Background(), &model.ExtractRequest{URL: "https://example.com/post"})
	require.NoError(t, err)
	assert.Equal(t, "body", res.Text)
}

func TestUpload_NoBearerAndTimeout(t *testing.T) {
	t.Run("sends raw bytes without bearer", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Empty(t, r.Header.Get("Authorization"))
			assert.Equal(t, "audio/mpeg", r.Header.Get("Content-Type"))
			data, _ := io.ReadAll(r.Body)
			assert.Equal(t, "ID3audio", string(data))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c := newClients(t, "http://backend.invalid", nil)
		err := c.Media.Upload(context.Background(), srv.URL+"/bucket/key?sig=1", strings.NewReader("ID3audio"), 8, "audio/mpeg")
		require.NoError(t, err)
	})

	t.Run("times out", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		c, err := NewMediaClient(config.BackendConfig{BaseURL: "http://backend.invalid", UploadTimeout: 50 * time.Millisecond},
			Options{Session: session.NewWithToken(testToken), Logger: zaptest.NewLogger(t)})
		require.NoError(t, err)

		err = c.Upload(context.Background(), srv.URL, strings.NewReader("x"), 1, "application/pdf")
		var se *ServiceError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, KindNetwork, se.Kind)
		assert.Equal(t, "UPLOAD_TIMEOUT", se.Code)
	})
}

func TestInitConnect_DoesNotFollowRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oauth/linkedin/init", r.URL.Path)
		http.Redirect(w, r, "https://www.linkedin.com/oauth/v2/authorization?state=abc", http.StatusFound)
	}))
	defer srv.Close()

	c := newClients(t, srv.URL, nil)
	location, err := c.OAuth.InitConnect(context.Background(), model.PlatformLinkedIn)
	require.NoError(t, err)
	assert.Equal(t, "https://www.linkedin.com/oauth/v2/authorization?state=abc", location)

	_, err = c.OAuth.InitConnect(context.Background(), model.Platform("myspace"))
	assert.True(t, IsValidation(err))
}

func TestKindOf_Wrapped(t *testing.T) {
	se := &ServiceError{Service: "pdf", Kind: KindServer, Message: "boom", StatusCode: 500}
	wrapped := fmt.Errorf("start pdf: %w", se)

	assert.Equal(t, KindServer, KindOf(wrapped))
	assert.Equal(t, 500, StatusCode(wrapped))
	assert.Equal(t, "boom", Message(wrapped))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, "pdf: boom (status 500)", se.Error())
}
