package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/contentkit/studio/internal/logging"
	"github.com/contentkit/studio/internal/media"
	"github.com/contentkit/studio/internal/model"
	"github.com/contentkit/studio/internal/poller"
)

type ImportBackend interface {
	InitiateImport(ctx context.Context, req *model.ScrapeRequest) (*model.JobAccepted, error)
	GetImportStatus(ctx context.Context, jobID string) (*model.ImportStatus, error)
}

type ImportHandle = poller.Handle[*model.ImportStatus]

// ImportService runs one import at a time.
type ImportService struct {
	backend  ImportBackend
	validate *validator.Validate
	notifier Notifier
	poller   *poller.Poller[*model.ImportStatus]
	logger   *zap.Logger
}

func NewImportService(backend ImportBackend, validate *validator.Validate, interval time.Duration, notifier Notifier, logger *zap.Logger) *ImportService {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	s := &ImportService{
		backend:  backend,
		validate: validate,
		notifier: notifierOrNop(notifier),
		logger:   logging.OrNop(logger).Named("imports"),
	}
	s.poller = mustPoller(poller.Config[*model.ImportStatus]{
		Name:     FlowSocialImport,
		Interval: interval,
		Status:   backend.GetImportStatus,
		Classify: classifyStatus(func(st *model.ImportStatus) model.JobStatus { return st.Status }),
		FailureMessage: func(st *model.ImportStatus) string {
			return st.ErrorMessage
		},
		Logger: s.logger,
	})
	return s
}

// Import scrapes a social profile and polls the import job.
func (s *ImportService) Import(ctx context.Context, userID string, req *model.ScrapeRequest) (*ImportHandle, error) {
	if err := media.ValidateURL(req.ProfileURL); err != nil {
		return nil, err
	}
	if err := validateStruct(s.validate, "social-import", req); err != nil {
		return nil, err
	}

	return s.poller.StartJob(ctx, poller.Job[*model.ImportStatus]{
		Submit: func(ctx context.Context) (string, error) {
			accepted, err := s.backend.InitiateImport(ctx, req)
			if err != nil {
				return "", err
			}
			s.logger.Info("import initiated",
				zap.String("job_id", accepted.JobID),
				zap.String("platform", string(req.Platform)),
				zap.Int("estimated_seconds", accepted.EstimatedTime))
			return accepted.JobID, nil
		},
		OnDone: func(ctx context.Context, final poller.Snapshot[*model.ImportStatus]) {
			r := final.Status.Results
			s.notify(ctx, model.Notification{
				UserID:  userID,
				JobID:   final.JobID,
				Flow:    FlowSocialImport,
				Level:   "success",
				Message: fmt.Sprintf("Imported %d posts (%d skipped, %d failed)", r.Imported, r.Skipped, r.Failed),
			})
		},
		OnFailed: func(ctx context.Context, final poller.Snapshot[*model.ImportStatus]) {
			s.notify(ctx, model.Notification{
				UserID:  userID,
				JobID:   final.JobID,
				Flow:    FlowSocialImport,
				Level:   "error",
				Message: final.Err.Error(),
			})
		},
	})
}

func (s *ImportService) notify(ctx context.Context, n model.Notification) {
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn("failed to deliver notification", zap.String("job_id", n.JobID), zap.Error(err))
	}
}
