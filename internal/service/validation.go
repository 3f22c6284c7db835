package service

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"bitacora/internal/models"
)

const (
	maxTitleLen   = 200
	maxSlugLen    = 200
	maxExcerptLen = 500
	maxQueryLen   = 100
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func validateTitle(title string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	if n == 0 {
		return models.NewValidationError("Title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return models.NewValidationError(fmt.Sprintf("Title too long (max %d characters)", maxTitleLen))
	}
	return nil
}

func validateSlug(slug string) error {
	if slug == "" {
		return models.NewValidationError("Slug is required")
	}
	if len(slug) > maxSlugLen {
		return models.NewValidationError(fmt.Sprintf("Slug too long (max %d characters)", maxSlugLen))
	}
	if !slugPattern.MatchString(slug) {
		return models.NewValidationError("Slug may only contain lowercase letters, digits and single hyphens")
	}
	return nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Content is required")
	}
	return nil
}

func validateCoverImage(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return models.NewValidationError("Cover image is required")
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return models.NewValidationError("Cover image must be a valid http(s) URL")
	}
	return nil
}

func validateExcerpt(excerpt *string) error {
	if excerpt != nil && utf8.RuneCountInString(*excerpt) > maxExcerptLen {
		return models.NewValidationError(fmt.Sprintf("Excerpt too long (max %d characters)", maxExcerptLen))
	}
	return nil
}

func validateStatus(status models.PostStatus) error {
	if !status.Valid() {
		return models.NewValidationError("Status must be draft or published")
	}
	return nil
}

// normalizeComment trims surrounding whitespace and enforces the length bounds.
func normalizeComment(content string) (string, error) {
	content = strings.TrimSpace(content)
	n := utf8.RuneCountInString(content)
	if n < models.CommentMinLength {
		return "", models.NewValidationError("Comment cannot be empty")
	}
	if n > models.CommentMaxLength {
		return "", models.NewValidationError(fmt.Sprintf("Comment too long (max %d characters)", models.CommentMaxLength))
	}
	return content, nil
}

// normalizeExcerpt maps a blank excerpt to nil.
func normalizeExcerpt(excerpt *string) *string {
	if excerpt == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*excerpt)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
