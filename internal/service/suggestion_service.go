package service

import (
	"context"
	"slices"

	"github.com/contentkit/studio/internal/model"
	"github.com/contentkit/studio/internal/session"
)

type SuggestionBackend interface {
	ListSuggestions(ctx context.Context) ([]model.Suggestion, error)
}

// SuggestionService hides suggestions the user dismissed. Dismissals are
// kept in the session, not on the backend.
type SuggestionService struct {
	backend SuggestionBackend
	session *session.Session
}

func NewSuggestionService(backend SuggestionBackend, sess *session.Session) *SuggestionService {
	return &SuggestionService{backend: backend, session: sess}
}

func (s *SuggestionService) List(ctx context.Context) ([]model.Suggestion, error) {
	all, err := s.backend.ListSuggestions(ctx)
	if err != nil {
		return nil, err
	}
	dismissed, err := s.session.DismissedSuggestions(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(sg model.Suggestion) bool {
		return slices.Contains(dismissed, sg.ID)
	}), nil
}

func (s *SuggestionService) Dismiss(ctx context.Context, id string) error {
	return s.session.DismissSuggestion(ctx, id)
}
