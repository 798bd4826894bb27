package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

// contentSanitizer cleans administrator-supplied text before it is stored.
type contentSanitizer struct {
	rich  *bluemonday.Policy
	plain *bluemonday.Policy
}

func newContentSanitizer() contentSanitizer {
	rich := bluemonday.UGCPolicy()
	rich.AllowElements("p", "strong", "em", "a", "ul", "ol", "li", "br", "h2", "h3", "blockquote")
	rich.AllowAttrs("href", "title", "target").OnElements("a")
	return contentSanitizer{rich: rich, plain: bluemonday.StrictPolicy()}
}

// HTML keeps safe formatting markup.
func (c contentSanitizer) HTML(value string) string {
	return strings.TrimSpace(c.rich.Sanitize(value))
}

// Text strips all markup.
func (c contentSanitizer) Text(value string) string {
	return strings.TrimSpace(c.plain.Sanitize(value))
}

func parseTimestamp(field, value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, badRequest("%s must be an RFC3339 timestamp", field)
	}
	return parsed.UTC(), nil
}

func parseOptionalTimestamp(field, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parsed, err := parseTimestamp(field, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parseWindow parses a starts/ends pair and rejects windows that end before they start.
func parseWindow(startsAt, endsAt string) (time.Time, *time.Time, error) {
	start, err := parseTimestamp("starts_at", startsAt)
	if err != nil {
		return time.Time{}, nil, err
	}
	end, err := parseOptionalTimestamp("ends_at", endsAt)
	if err != nil {
		return time.Time{}, nil, err
	}
	if end != nil && end.Before(start) {
		return time.Time{}, nil, badRequest("ends_at must not be before starts_at")
	}
	return start, end, nil
}

// createWithSlug retries once with a random suffix when the slug is already taken.
func createWithSlug(title string, assign func(slug string), create func() error) error {
	slug := generateContentSlug(title)
	assign(slug)
	err := create()
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	assign(slug + "-" + uuid.NewString()[:6])
	return create()
}
