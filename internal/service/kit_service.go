package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/contentkit/studio/internal/client"
	"github.com/contentkit/studio/internal/logging"
	"github.com/contentkit/studio/internal/media"
	"github.com/contentkit/studio/internal/model"
	"github.com/contentkit/studio/internal/poller"
)

// KitBackend is the subset of the content kit wrapper the flow needs.
type KitBackend interface {
	GenerateContentKit(ctx context.Context, req *model.GenerateContentKitRequest) (*model.JobAccepted, error)
	GetContentKitStatus(ctx context.Context, jobID string) (*model.ContentKitStatus, error)
	ListContentKits(ctx context.Context, limit int, nextToken string) (*model.ContentKitPage, error)
	DeleteContentKit(ctx context.Context, jobID string) error
	DownloadContentKit(ctx context.Context, jobID string) (*client.Archive, error)
}

// ArchiveStore keeps downloaded kit archives and hands out a temporary
// link to them.
type ArchiveStore interface {
	PutArchive(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

type KitHandle = poller.Handle[*model.ContentKitStatus]

// KitService runs one content kit job at a time; Generate fails with
// poller.ErrBusy while an earlier job is still being polled.
type KitService struct {
	backend   KitBackend
	validate  *validator.Validate
	notifier  Notifier
	archives  ArchiveStore
	refreshed func(ctx context.Context, userID string, list *KitList)
	poller    *poller.Poller[*model.ContentKitStatus]
	logger    *zap.Logger

	mu    sync.Mutex
	lists []*KitList
}

type KitServiceConfig struct {
	Interval time.Duration
	Notifier Notifier
	Archives ArchiveStore
	// ListRefreshed is called for every tracked list reloaded after a kit
	// completes.
	ListRefreshed func(ctx context.Context, userID string, list *KitList)
	Logger        *zap.Logger
}

// ArchiveInfo describes a downloaded kit archive.
type ArchiveInfo struct {
	FileName    string
	ContentType string
	Size        int64
}

func NewKitService(backend KitBackend, validate *validator.Validate, cfg KitServiceConfig) *KitService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	s := &KitService{
		backend:   backend,
		validate:  validate,
		notifier:  notifierOrNop(cfg.Notifier),
		archives:  cfg.Archives,
		refreshed: cfg.ListRefreshed,
		logger:    logging.OrNop(cfg.Logger).Named("kits"),
	}
	s.poller = mustPoller(poller.Config[*model.ContentKitStatus]{
		Name:     FlowContentKit,
		Interval: cfg.Interval,
		Status:   backend.GetContentKitStatus,
		Classify: classifyStatus(func(st *model.ContentKitStatus) model.JobStatus { return st.Status }),
		FailureMessage: func(st *model.ContentKitStatus) string {
			return st.Error
		},
		Merge:  s.mergeOutputs,
		Logger: s.logger,
	})
	return s
}

// Track registers a list that is refreshed whenever a kit completes or is
// deleted.
func (s *KitService) Track(list *KitList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists = append(s.lists, list)
}

func (s *KitService) tracked() []*KitList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*KitList(nil), s.lists...)
}

// Generate validates req, submits it and polls the job until it ends.
// Outputs already seen are kept even if a later poll omits them.
func (s *KitService) Generate(ctx context.Context, req *model.GenerateContentKitRequest) (*KitHandle, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	return s.poller.StartJob(ctx, poller.Job[*model.ContentKitStatus]{
		Submit: func(ctx context.Context) (string, error) {
			accepted, err := s.backend.GenerateContentKit(ctx, req)
			if err != nil {
				return "", err
			}
			s.logger.Info("content kit submitted",
				zap.String("job_id", accepted.JobID),
				zap.String("request_id", accepted.RequestID))
			return accepted.JobID, nil
		},
		OnDone:   s.onDone(req.InputData.UserID),
		OnFailed: s.onFailed(req.InputData.UserID),
	})
}

func (s *KitService) validateRequest(req *model.GenerateContentKitRequest) error {
	if err := validateStruct(s.validate, "content-kit", req); err != nil {
		return err
	}
	in := req.InputData
	switch req.InputType {
	case model.InputTypePrompt, model.InputTypeText:
		if in.Text == "" {
			return client.NewValidationError("content-kit", "INVALID_REQUEST", "inputData.text is required for "+string(req.InputType)+" input")
		}
	case model.InputTypeURL:
		return media.ValidateURL(in.URL)
	case model.InputTypeFile:
		if in.FileID == "" {
			return client.NewValidationError("content-kit", "INVALID_REQUEST", "inputData.fileId is required for file input")
		}
	}
	return nil
}

func (s *KitService) mergeOutputs(held, next *model.ContentKitStatus) *model.ContentKitStatus {
	for _, kind := range held.Outputs.Kinds() {
		if !next.Outputs.Has(kind) {
			s.logger.Warn("backend omitted a previously reported output",
				zap.String("job_id", next.JobID),
				zap.String("output", string(kind)))
		}
	}
	merged := *next
	merged.Outputs = held.Outputs.Merge(next.Outputs)
	return &merged
}

func (s *KitService) onDone(userID string) func(context.Context, poller.Snapshot[*model.ContentKitStatus]) {
	return func(ctx context.Context, final poller.Snapshot[*model.ContentKitStatus]) {
		s.refreshLists(ctx, userID)
		s.notify(ctx, model.Notification{
			UserID:  userID,
			JobID:   final.JobID,
			Flow:    FlowContentKit,
			Level:   "success",
			Message: "Your content kit is ready",
		})
	}
}

func (s *KitService) onFailed(userID string) func(context.Context, poller.Snapshot[*model.ContentKitStatus]) {
	return func(ctx context.Context, final poller.Snapshot[*model.ContentKitStatus]) {
		s.notify(ctx, model.Notification{
			UserID:  userID,
			JobID:   final.JobID,
			Flow:    FlowContentKit,
			Level:   "error",
			Message: final.Err.Error(),
		})
	}
}

func (s *KitService) Status(ctx context.Context, jobID string) (*model.ContentKitStatus, error) {
	return s.backend.GetContentKitStatus(ctx, jobID)
}

func (s *KitService) Delete(ctx context.Context, jobID string) error {
	if err := s.backend.DeleteContentKit(ctx, jobID); err != nil {
		return err
	}
	for _, l := range s.tracked() {
		l.Remove(jobID)
	}
	return nil
}

// Download copies the kit archive into sink. The returned info carries the
// file name and content type the backend reported and the bytes written.
func (s *KitService) Download(ctx context.Context, jobID string, sink io.Writer) (*ArchiveInfo, error) {
	archive, err := s.backend.DownloadContentKit(ctx, jobID)
	if err != nil {
		return nil, err
	}
	defer archive.Body.Close()

	info := &ArchiveInfo{FileName: archive.FileName, ContentType: archive.ContentType}
	info.Size, err = io.Copy(sink, archive.Body)
	if err != nil {
		return info, fmt.Errorf("failed to write archive: %w", err)
	}
	return info, nil
}

// ShareDownload stores the kit archive and returns a temporary link to it.
func (s *KitService) ShareDownload(ctx context.Context, userID, jobID string) (string, error) {
	if s.archives == nil {
		return "", fmt.Errorf("archive storage is not configured")
	}
	archive, err := s.backend.DownloadContentKit(ctx, jobID)
	if err != nil {
		return "", err
	}
	defer archive.Body.Close()

	key := fmt.Sprintf("kits/%s/%s/%s", userID, jobID, archive.FileName)
	link, err := s.archives.PutArchive(ctx, key, archive.Body, archive.Size, archive.ContentType)
	if err != nil {
		return "", fmt.Errorf("failed to store archive: %w", err)
	}
	return link, nil
}

func (s *KitService) refreshLists(ctx context.Context, userID string) {
	for _, l := range s.tracked() {
		if err := l.Refresh(ctx); err != nil {
			s.logger.Warn("failed to refresh kit list", zap.Error(err))
			continue
		}
		if s.refreshed != nil {
			s.refreshed(ctx, userID, l)
		}
	}
}

func (s *KitService) notify(ctx context.Context, n model.Notification) {
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn("failed to deliver notification", zap.String("job_id", n.JobID), zap.Error(err))
	}
}

// classifyStatus adapts a status accessor to the poller's classifier.
func classifyStatus[S any](status func(S) model.JobStatus) func(S) poller.Outcome {
	return func(s S) poller.Outcome {
		st := status(s)
		switch {
		case st.Succeeded():
			return poller.OutcomeSucceeded
		case st.Failed():
			return poller.OutcomeFailed
		default:
			return poller.OutcomePending
		}
	}
}
