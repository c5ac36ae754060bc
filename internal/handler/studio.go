package handler

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/contentkit/studio/internal/client"
	"github.com/contentkit/studio/internal/config"
	"github.com/contentkit/studio/internal/middleware"
	"github.com/contentkit/studio/internal/model"
	"github.com/contentkit/studio/internal/service"
	"github.com/contentkit/studio/internal/session"
	"github.com/contentkit/studio/pkg/response"
)

// Studio builds the per-user wrappers and services a request needs. The
// wrappers forward the caller's own token to the backend. A user's
// services live as long as the gateway, so a flow that is still polling
// refuses a second job.
type Studio struct {
	Backend    config.BackendConfig
	Polling    config.PollingConfig
	Redis      *redis.Client // session state; nil keeps it in memory
	Notifier   service.Notifier
	Lists      ListPublisher // nil drops refreshed lists
	Archives   service.ArchiveStore
	Validate   *validator.Validate
	HTTPClient *http.Client
	Logger     *zap.Logger

	mu    sync.Mutex
	users map[string]*scope
}

// ListPublisher receives the lists a finished job reloaded.
type ListPublisher interface {
	BroadcastList(userID, list string, items any)
}

type scope struct {
	studio  *Studio
	userID  string
	session *session.Session
	clients *client.Clients

	mu      sync.Mutex
	kits    *service.KitService
	imports *service.ImportService
	uploads map[string]*service.UploadPipeline
}

// scope returns the caller's scope with the request token installed.
func (s *Studio) scope(c *fiber.Ctx) (*scope, error) {
	sc, err := s.userScope(middleware.GetUserID(c))
	if err != nil {
		return nil, err
	}
	if err := sc.session.SetTokens(c.UserContext(), middleware.GetToken(c), ""); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *Studio) userScope(userID string) (*scope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc, ok := s.users[userID]; ok {
		return sc, nil
	}

	var store session.Store = session.NewMemoryStore()
	if s.Redis != nil {
		store = session.NewRedisStore(s.Redis, userID)
	}
	sess := session.New(store)

	clients, err := client.New(s.Backend, client.Options{
		Session:    sess,
		Logger:     s.Logger,
		HTTPClient: s.HTTPClient,
	})
	if err != nil {
		return nil, err
	}

	if s.users == nil {
		s.users = make(map[string]*scope)
	}
	sc := &scope{
		studio:  s,
		userID:  userID,
		session: sess,
		clients: clients,
		uploads: make(map[string]*service.UploadPipeline),
	}
	s.users[userID] = sc
	return sc, nil
}

func (s *Studio) publishKits(_ context.Context, userID string, list *service.KitList) {
	if s.Lists != nil {
		s.Lists.BroadcastList(userID, model.ListKits, list.Items())
	}
}

func (s *Studio) publishFiles(_ context.Context, userID string, files []model.MediaFile) {
	if s.Lists != nil {
		s.Lists.BroadcastList(userID, model.ListFiles, files)
	}
}

func (sc *scope) kitService() *service.KitService {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.kits == nil {
		s := sc.studio
		sc.kits = service.NewKitService(sc.clients.ContentKit, s.Validate, service.KitServiceConfig{
			Interval:      s.Polling.ContentKit,
			Notifier:      s.Notifier,
			Archives:      s.Archives,
			ListRefreshed: s.publishKits,
			Logger:        s.Logger,
		})
		sc.kits.Track(service.NewKitList(sc.clients.ContentKit, service.DefaultPageSize))
	}
	return sc.kits
}

// pipeline returns the upload pipeline of one target. Each target runs
// one file at a time.
func (sc *scope) pipeline(target string, opts service.PipelineOptions) *service.UploadPipeline {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	p, ok := sc.uploads[target]
	if !ok {
		s := sc.studio
		p = service.NewUploadPipeline(service.UploadPipelineConfig{
			Media:         sc.clients.Media,
			Transcription: sc.clients.Transcription,
			PDF:           sc.clients.PDF,
			KnowledgeBase: sc.clients.KnowledgeBase,
			Notifier:      s.Notifier,
			Intervals: service.PipelineIntervals{
				Transcription: s.Polling.Transcription,
				PDF:           s.Polling.PDF,
			},
			FilesRefreshed: s.publishFiles,
			Logger:         s.Logger,
		}, opts)
		sc.uploads[target] = p
	}
	return p
}

func (sc *scope) importService() *service.ImportService {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.imports == nil {
		s := sc.studio
		sc.imports = service.NewImportService(sc.clients.SocialImport, s.Validate,
			s.Polling.SocialImport, s.Notifier, s.Logger)
	}
	return sc.imports
}

// parseBody decodes and validates the request body into req. It writes the
// error response itself and reports whether the handler may continue.
func (s *Studio) parseBody(c *fiber.Ctx, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, response.ValidationError(c, "Invalid request body", nil)
	}
	if err := s.Validate.Struct(req); err != nil {
		return false, response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}
	return true, nil
}

func formatValidationErrors(err error) interface{} {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[e.Field()] = e.Tag()
	}
	return fields
}
