package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/contentkit/studio/internal/config"
)

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string]string
	headers map[string]http.Header
}

func (b *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		b.objects[r.URL.Path] = string(data)
		b.headers[r.URL.Path] = r.Header.Clone()
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(b.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func testConfig() config.R2Config {
	return config.R2Config{
		AccountID:       "acct",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "kits",
		URLExpiry:       15 * time.Minute,
	}
}

func TestR2Store_PutArchiveReturnsSignedURL(t *testing.T) {
	bucket := &fakeBucket{objects: map[string]string{}, headers: map[string]http.Header{}}
	srv := httptest.NewServer(bucket)
	defer srv.Close()

	store, err := newStore(context.Background(), testConfig(), srv.URL, zaptest.NewLogger(t))
	require.NoError(t, err)

	body := "PK-archive"
	link, err := store.PutArchive(context.Background(), "kits/u1/job-1/kit.zip", strings.NewReader(body), int64(len(body)), "application/zip")
	require.NoError(t, err)

	assert.Equal(t, body, bucket.objects["/kits/kits/u1/job-1/kit.zip"])
	assert.Equal(t, `attachment; filename="kit.zip"`, bucket.headers["/kits/kits/u1/job-1/kit.zip"].Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(link, srv.URL+"/kits/kits/u1/job-1/kit.zip?"))
	assert.Contains(t, link, "X-Amz-Signature=")
	assert.Contains(t, link, "X-Amz-Expires=900")

	require.NoError(t, store.Delete(context.Background(), "kits/u1/job-1/kit.zip"))
	assert.Empty(t, bucket.objects)
}

func TestNewR2Store_RequiresCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.SecretAccessKey = ""
	_, err := NewR2Store(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewR2Store(context.Background(), config.R2Config{}, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
