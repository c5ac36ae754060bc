package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/contentkit/studio/internal/client"
	"github.com/contentkit/studio/internal/model"
	"github.com/contentkit/studio/internal/poller"
)

// Flow names, used for logs, metrics and notifications.
const (
	FlowContentKit    = "content_kit"
	FlowTranscription = "transcription"
	FlowPDF           = "pdf"
	FlowSocialImport  = "social_import"
)

// Notifier delivers job-level notices (the success or failure toast).
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, model.Notification) error { return nil }

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

// mustPoller builds a poller from a config known to be complete. New only
// fails without a classifier or with a negative interval.
func mustPoller[S any](cfg poller.Config[S]) *poller.Poller[S] {
	p, err := poller.New(cfg)
	if err != nil {
		panic(err)
	}
	return p
}

// validateStruct runs struct-tag validation and converts failures into a
// KindValidation error naming every offending field.
func validateStruct(v *validator.Validate, service string, req any) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return client.NewValidationError(service, "INVALID_REQUEST", err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return client.NewValidationError(service, "INVALID_REQUEST", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "url":
		return field + " must be a valid URL"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
