package client

import (
	"github.com/contentkit/studio/internal/config"
)

// Clients bundles every wrapper over one shared session and logger.
type Clients struct {
	ContentKit    *ContentKitClient
	Content       *ContentClient
	Media         *MediaClient
	Transcription *TranscriptionClient
	PDF           *PDFClient
	SocialImport  *SocialImportClient
	OAuth         *OAuthClient
	Scheduling    *SchedulingClient
	Analytics     *AnalyticsClient
	KnowledgeBase *KnowledgeBaseClient
}

func New(cfg config.BackendConfig, opts Options) (*Clients, error) {
	var (
		c   Clients
		err error
	)
	if c.ContentKit, err = NewContentKitClient(cfg, opts); err != nil {
		return nil, err
	}
	if c.Content, err = NewContentClient(cfg, opts); err != nil {
		return nil, err
	}
	if c.Media, err = NewMediaClient(cfg, opts); err != nil {
		return nil, err
	}
	if c.Transcription, err = NewTranscriptionClient(cfg, opts); err != nil {
		return nil, err
	}
	if c.PDF, err = NewPDFClient(cfg, opts); err != nil {
		return nil, err
	}
	if c.SocialImport, err = NewSocialImportClient(cfg, opts); err != nil {
		return nil, err
	}
	if c.OAuth, err = NewOAuthClient(cfg, opts); err != nil {
		return nil, err
	}
	if c.Scheduling, err = NewSchedulingClient(cfg, opts); err != nil {
		return nil, err
	}
	if c.Analytics, err = NewAnalyticsClient(cfg, opts); err != nil {
		return nil, err
	}
	if c.KnowledgeBase, err = NewKnowledgeBaseClient(cfg, opts); err != nil {
		return nil, err
	}
	return &c, nil
}
