package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/contentkit/studio/internal/logging"
	"github.com/contentkit/studio/internal/media"
	"github.com/contentkit/studio/internal/model"
	"github.com/contentkit/studio/internal/poller"
)

type MediaBackend interface {
	RequestUploadURL(ctx context.Context, req *model.UploadURLRequest) (*model.UploadURLResponse, error)
	Upload(ctx context.Context, uploadURL string, body io.Reader, size int64, contentType string) error
	ListFiles(ctx context.Context) ([]model.MediaFile, error)
}

type TranscriptionBackend interface {
	StartTranscription(ctx context.Context, req *model.StartTranscriptionRequest) (*model.JobAccepted, error)
	GetTranscriptionStatus(ctx context.Context, jobID string) (*model.TranscriptionStatus, error)
}

type PDFBackend interface {
	StartPDFProcessing(ctx context.Context, req *model.StartPDFRequest) (*model.JobAccepted, error)
	GetPDFStatus(ctx context.Context, jobID string) (*model.PDFStatus, error)
}

type KnowledgeBaseBackend interface {
	AddDocument(ctx context.Context, req *model.AddDocumentRequest) (*model.KnowledgeDocument, error)
}

// PipelineOptions selects the variant of the upload flow: the media
// library and the knowledge base differ only in wording and in what is
// refreshed afterwards.
type PipelineOptions struct {
	SuccessMessage string
	// RefreshFiles reloads the media file list after a successful job.
	RefreshFiles bool
	// AddToKnowledgeBase registers the processed file as a knowledge
	// base document.
	AddToKnowledgeBase bool
	Language           string
}

var (
	MediaLibraryOptions = PipelineOptions{
		SuccessMessage: "File processed successfully",
		RefreshFiles:   true,
	}
	KnowledgeBaseOptions = PipelineOptions{
		SuccessMessage:     "Document added to your knowledge base",
		AddToKnowledgeBase: true,
	}
)

// ProcessingStatus is the common view of a transcription or PDF job.
type ProcessingStatus struct {
	JobID        string
	Category     model.FileCategory
	Status       model.JobStatus
	Text         string
	ErrorMessage string
	// Exactly one of these is set.
	Transcription *model.TranscriptionStatus
	PDF           *model.PDFStatus
}

type ProcessingHandle = poller.Handle[*ProcessingStatus]

// Upload is one file handed to the pipeline.
type Upload struct {
	File   media.File
	Body   io.Reader
	UserID string
	Title  string

	// Language overrides the pipeline's transcription language.
	Language string
}

// UploadJob is a file that was uploaded and is being processed.
type UploadJob struct {
	FileID   string
	Category model.FileCategory
	Handle   *ProcessingHandle
}

type UploadPipeline struct {
	media         MediaBackend
	transcription TranscriptionBackend
	pdf           PDFBackend
	kb            KnowledgeBaseBackend
	notifier      Notifier
	opts          PipelineOptions
	intervals     PipelineIntervals
	refreshed     func(ctx context.Context, userID string, files []model.MediaFile)
	poller        *poller.Poller[*ProcessingStatus]
	logger        *zap.Logger

	mu    sync.RWMutex
	files []model.MediaFile
}

type PipelineIntervals struct {
	Transcription time.Duration
	PDF           time.Duration
}

type UploadPipelineConfig struct {
	Media         MediaBackend
	Transcription TranscriptionBackend
	PDF           PDFBackend
	KnowledgeBase KnowledgeBaseBackend
	Notifier      Notifier
	Intervals     PipelineIntervals
	// FilesRefreshed receives the media file list reloaded after a job
	// completes (RefreshFiles option).
	FilesRefreshed func(ctx context.Context, userID string, files []model.MediaFile)
	Logger         *zap.Logger
}

func NewUploadPipeline(cfg UploadPipelineConfig, opts PipelineOptions) *UploadPipeline {
	if cfg.Intervals.Transcription <= 0 {
		cfg.Intervals.Transcription = 5 * time.Second
	}
	if cfg.Intervals.PDF <= 0 {
		cfg.Intervals.PDF = 5 * time.Second
	}
	p := &UploadPipeline{
		media:         cfg.Media,
		transcription: cfg.Transcription,
		pdf:           cfg.PDF,
		kb:            cfg.KnowledgeBase,
		notifier:      notifierOrNop(cfg.Notifier),
		opts:          opts,
		intervals:     cfg.Intervals,
		refreshed:     cfg.FilesRefreshed,
		logger:        logging.OrNop(cfg.Logger).Named("uploads"),
	}
	// Flow, interval and status function depend on the file category and
	// are set per job.
	p.poller = mustPoller(poller.Config[*ProcessingStatus]{
		Classify: classifyStatus(func(st *ProcessingStatus) model.JobStatus { return st.Status }),
		FailureMessage: func(st *ProcessingStatus) string {
			return st.ErrorMessage
		},
		Logger: p.logger,
	})
	return p
}

// Files returns the media file list as last refreshed.
func (p *UploadPipeline) Files() []model.MediaFile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]model.MediaFile(nil), p.files...)
}

func (p *UploadPipeline) RefreshFiles(ctx context.Context) error {
	files, err := p.media.ListFiles(ctx)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.files = files
	p.mu.Unlock()
	return nil
}

// Process validates the file locally, uploads it, starts transcription
// (audio, video) or text extraction (pdf) and polls the job. Validation
// failures return before any request is made.
func (p *UploadPipeline) Process(ctx context.Context, up Upload) (*UploadJob, error) {
	category, contentType, err := media.Validate(up.File)
	if err != nil {
		return nil, err
	}

	var fileID string
	flow, interval, status := p.statusFunc(category)
	h, err := p.poller.StartJob(ctx, poller.Job[*ProcessingStatus]{
		Submit: func(ctx context.Context) (string, error) {
			target, err := p.media.RequestUploadURL(ctx, &model.UploadURLRequest{
				FileName:    up.File.Name,
				ContentType: contentType,
				FileSize:    up.File.Size,
				Category:    category,
			})
			if err != nil {
				return "", err
			}
			fileID = target.FileID

			if err := p.media.Upload(ctx, target.UploadURL, up.Body, up.File.Size, contentType); err != nil {
				return "", err
			}
			p.logger.Info("file uploaded", zap.String("file_id", fileID), zap.String("category", string(category)))

			return p.start(ctx, category, fileID, up.Language)
		},
		Name:     flow,
		Interval: interval,
		Status:   status,
		OnDone: func(ctx context.Context, final poller.Snapshot[*ProcessingStatus]) {
			p.onDone(ctx, up, fileID, final)
		},
		OnFailed: func(ctx context.Context, final poller.Snapshot[*ProcessingStatus]) {
			p.notify(ctx, up.UserID, final.JobID, flow, "error", final.Err.Error())
		},
	})
	if err != nil {
		return nil, err
	}
	return &UploadJob{FileID: fileID, Category: category, Handle: h}, nil
}

func (p *UploadPipeline) start(ctx context.Context, category model.FileCategory, fileID, language string) (string, error) {
	var (
		accepted *model.JobAccepted
		err      error
	)
	if category == model.FileCategoryPDF {
		accepted, err = p.pdf.StartPDFProcessing(ctx, &model.StartPDFRequest{FileID: fileID})
	} else {
		if language == "" {
			language = p.opts.Language
		}
		accepted, err = p.transcription.StartTranscription(ctx, &model.StartTranscriptionRequest{
			FileID:   fileID,
			Language: language,
		})
	}
	if err != nil {
		return "", err
	}
	return accepted.JobID, nil
}

func (p *UploadPipeline) statusFunc(category model.FileCategory) (string, time.Duration, func(context.Context, string) (*ProcessingStatus, error)) {
	if category == model.FileCategoryPDF {
		return FlowPDF, p.intervals.PDF, func(ctx context.Context, jobID string) (*ProcessingStatus, error) {
			st, err := p.pdf.GetPDFStatus(ctx, jobID)
			if err != nil {
				return nil, err
			}
			return &ProcessingStatus{
				JobID:        jobID,
				Category:     category,
				Status:       st.Status,
				Text:         st.ExtractedText,
				ErrorMessage: st.ErrorMessage,
				PDF:          st,
			}, nil
		}
	}
	return FlowTranscription, p.intervals.Transcription, func(ctx context.Context, jobID string) (*ProcessingStatus, error) {
		st, err := p.transcription.GetTranscriptionStatus(ctx, jobID)
		if err != nil {
			return nil, err
		}
		return &ProcessingStatus{
			JobID:         jobID,
			Category:      category,
			Status:        st.Status,
			Text:          st.Transcript,
			ErrorMessage:  st.ErrorMessage,
			Transcription: st,
		}, nil
	}
}

func (p *UploadPipeline) onDone(ctx context.Context, up Upload, fileID string, final poller.Snapshot[*ProcessingStatus]) {
	flow := FlowTranscription
	if final.Status.Category == model.FileCategoryPDF {
		flow = FlowPDF
	}

	if p.opts.RefreshFiles {
		if err := p.RefreshFiles(ctx); err != nil {
			p.logger.Warn("failed to refresh file list", zap.Error(err))
		} else if p.refreshed != nil {
			p.refreshed(ctx, up.UserID, p.Files())
		}
	}
	if p.opts.AddToKnowledgeBase && p.kb != nil {
		title := up.Title
		if title == "" {
			title = up.File.Name
		}
		if _, err := p.kb.AddDocument(ctx, &model.AddDocumentRequest{FileID: fileID, Title: title}); err != nil {
			p.logger.Warn("failed to add document to knowledge base", zap.String("file_id", fileID), zap.Error(err))
			p.notify(ctx, up.UserID, final.JobID, flow, "error", fmt.Sprintf("Processed %s but could not add it to the knowledge base", title))
			return
		}
	}
	p.notify(ctx, up.UserID, final.JobID, flow, "success", p.opts.SuccessMessage)
}

func (p *UploadPipeline) notify(ctx context.Context, userID, jobID, flow, level, message string) {
	err := p.notifier.Notify(ctx, model.Notification{
		UserID:  userID,
		JobID:   jobID,
		Flow:    flow,
		Level:   level,
		Message: message,
	})
	if err != nil {
		p.logger.Warn("failed to deliver notification", zap.String("job_id", jobID), zap.Error(err))
	}
}
