// Package media checks files and URLs locally, before anything is sent to
// the backend.
package media

import (
	"fmt"
	"mime"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/contentkit/studio/internal/client"
	"github.com/contentkit/studio/internal/model"
)

const (
	CodeUnsupportedType = "UNSUPPORTED_TYPE"
	CodeFileTooLarge    = "FILE_TOO_LARGE"
	CodeDurationLimit   = "DURATION_LIMIT"
	CodeEmptyFile       = "EMPTY_FILE"
	CodeInvalidURL      = "INVALID_URL"
	CodeURLTooLong      = "URL_TOO_LONG"
)

const (
	MB           = 1 << 20
	MaxURLLength = 2048
)

// Limit is the constraint set of one file category. A zero MaxDuration
// means duration is not checked.
type Limit struct {
	MaxSize     int64
	MaxDuration time.Duration
	Types       []string
}

var Limits = map[model.FileCategory]Limit{
	model.FileCategoryPDF: {
		MaxSize: 50 * MB,
		Types:   []string{"application/pdf"},
	},
	model.FileCategoryAudio: {
		MaxSize:     100 * MB,
		MaxDuration: 10 * time.Minute,
		Types: []string{
			"audio/mpeg", "audio/mp3", "audio/wav", "audio/x-wav", "audio/wave",
			"audio/mp4", "audio/x-m4a", "audio/m4a", "audio/aac", "audio/ogg",
			"audio/webm", "audio/flac", "audio/x-flac",
		},
	},
	model.FileCategoryVideo: {
		MaxSize:     500 * MB,
		MaxDuration: 20 * time.Minute,
		Types: []string{
			"video/mp4", "video/quicktime", "video/webm", "video/x-msvideo",
			"video/x-matroska", "video/mpeg",
		},
	},
}

// File describes a candidate upload. Head holds the leading bytes of the
// content and is only used when ContentType is empty or generic. Duration
// is reported by the caller; zero means unknown and is not checked.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Duration    time.Duration
	Head        []byte
}

// Validate checks f against the limits of its category and returns the
// category and the resolved content type.
func Validate(f File) (model.FileCategory, string, error) {
	if f.Size <= 0 {
		return "", "", invalid(CodeEmptyFile, fmt.Sprintf("%s is empty", displayName(f)))
	}

	contentType := resolveType(f)
	category, ok := CategoryOf(contentType)
	if !ok {
		return "", "", invalid(CodeUnsupportedType, fmt.Sprintf("file type %q is not supported", contentType))
	}

	limit := Limits[category]
	if f.Size > limit.MaxSize {
		return "", "", invalid(CodeFileTooLarge, fmt.Sprintf("%s files must be %d MB or smaller", category, limit.MaxSize/MB))
	}
	if limit.MaxDuration > 0 && f.Duration > limit.MaxDuration {
		return "", "", invalid(CodeDurationLimit, fmt.Sprintf("%s files must be %s or shorter, got %s",
			category, formatDuration(limit.MaxDuration), formatDuration(f.Duration)))
	}
	return category, contentType, nil
}

// CategoryOf maps a content type to its whitelisted category.
func CategoryOf(contentType string) (model.FileCategory, bool) {
	ct := normalize(contentType)
	for category, limit := range Limits {
		for _, t := range limit.Types {
			if t == ct {
				return category, true
			}
		}
	}
	return "", false
}

// ValidateURL accepts absolute http and https URLs up to 2048 characters.
func ValidateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return invalid(CodeInvalidURL, "url is required")
	}
	if len(raw) > MaxURLLength {
		return invalid(CodeURLTooLong, fmt.Sprintf("url must be at most %d characters", MaxURLLength))
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return invalid(CodeInvalidURL, "url must be an absolute http or https address")
	}
	return nil
}

func resolveType(f File) string {
	ct := normalize(f.ContentType)
	if (ct == "" || ct == "application/octet-stream") && len(f.Head) > 0 {
		ct = normalize(mimetype.Detect(f.Head).String())
	}
	return ct
}

func normalize(contentType string) string {
	if contentType == "" {
		return ""
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		return strings.ToLower(mediaType)
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

func displayName(f File) string {
	if f.Name != "" {
		return f.Name
	}
	return "file"
}

// formatDuration renders d as m:ss.
func formatDuration(d time.Duration) string {
	total := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func invalid(code, message string) error {
	return client.NewValidationError("media", code, message)
}
