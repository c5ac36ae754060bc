package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/contentkit/studio/internal/client"
	"github.com/contentkit/studio/internal/model"
)

type fakeKitBackend struct {
	mu        sync.Mutex
	accepted  *model.JobAccepted
	submitErr error
	submitted []*model.GenerateContentKitRequest
	statuses  []*model.ContentKitStatus
	polls     int
	pages     map[string]*model.ContentKitPage
	listCalls int
	deleted   []string
	archive   string
}

func (f *fakeKitBackend) GenerateContentKit(_ context.Context, req *model.GenerateContentKitRequest) (*model.JobAccepted, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, req)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.accepted, nil
}

func (f *fakeKitBackend) GetContentKitStatus(_ context.Context, _ string) (*model.ContentKitStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.polls
	f.polls++
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	st := *f.statuses[i]
	return &st, nil
}

func (f *fakeKitBackend) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

func (f *fakeKitBackend) ListContentKits(_ context.Context, _ int, nextToken string) (*model.ContentKitPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	page, ok := f.pages[nextToken]
	if !ok {
		return &model.ContentKitPage{}, nil
	}
	return page, nil
}

func (f *fakeKitBackend) DeleteContentKit(_ context.Context, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, jobID)
	return nil
}

func (f *fakeKitBackend) DownloadContentKit(_ context.Context, jobID string) (*client.Archive, error) {
	return &client.Archive{
		Body:        io.NopCloser(strings.NewReader(f.archive)),
		ContentType: "application/zip",
		FileName:    jobID + ".zip",
		Size:        int64(len(f.archive)),
	}, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []model.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingNotifier) all() []model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Notification(nil), r.sent...)
}

type fakeMedia struct {
	mu          sync.Mutex
	urlRequests []*model.UploadURLRequest
	uploaded    string
	listCalls   int
	files       []model.MediaFile
	uploadErr   error
}

func (f *fakeMedia) RequestUploadURL(_ context.Context, req *model.UploadURLRequest) (*model.UploadURLResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urlRequests = append(f.urlRequests, req)
	return &model.UploadURLResponse{UploadURL: "https://bucket.example/put?sig=1", FileID: "file-1"}, nil
}

func (f *fakeMedia) Upload(_ context.Context, _ string, body io.Reader, _ int64, _ string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.uploaded = string(data)
	f.mu.Unlock()
	return nil
}

func (f *fakeMedia) ListFiles(context.Context) ([]model.MediaFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.files, nil
}

func (f *fakeMedia) requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.urlRequests)
}

type fakeProcessing struct {
	mu            sync.Mutex
	started       []string
	transcription []*model.TranscriptionStatus
	pdf           []*model.PDFStatus
	polls         int
}

func (f *fakeProcessing) StartTranscription(_ context.Context, req *model.StartTranscriptionRequest) (*model.JobAccepted, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, "transcription:"+req.FileID)
	return &model.JobAccepted{JobID: "t-1", Status: model.JobStatusPending}, nil
}

func (f *fakeProcessing) GetTranscriptionStatus(_ context.Context, _ string) (*model.TranscriptionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := min(f.polls, len(f.transcription)-1)
	f.polls++
	st := *f.transcription[i]
	return &st, nil
}

func (f *fakeProcessing) StartPDFProcessing(_ context.Context, req *model.StartPDFRequest) (*model.JobAccepted, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, "pdf:"+req.FileID)
	return &model.JobAccepted{JobID: "p-1", Status: model.JobStatusPending}, nil
}

func (f *fakeProcessing) GetPDFStatus(_ context.Context, _ string) (*model.PDFStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := min(f.polls, len(f.pdf)-1)
	f.polls++
	st := *f.pdf[i]
	return &st, nil
}

type fakeKnowledgeBase struct {
	mu    sync.Mutex
	added []*model.AddDocumentRequest
}

func (f *fakeKnowledgeBase) AddDocument(_ context.Context, req *model.AddDocumentRequest) (*model.KnowledgeDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, req)
	return &model.KnowledgeDocument{ID: "doc-1", FileID: req.FileID, Title: req.Title}, nil
}

func kitPage(from, to int, next string) *model.ContentKitPage {
	page := &model.ContentKitPage{NextToken: next}
	for i := from; i < to; i++ {
		page.Items = append(page.Items, model.ContentKitSummary{JobID: fmt.Sprintf("job-%d", i)})
	}
	return page
}
