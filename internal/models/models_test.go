package models

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("bad"), http.StatusBadRequest},
		{"unauthorized", NewUnauthorizedError("who"), http.StatusUnauthorized},
		{"forbidden", NewForbiddenError("no"), http.StatusForbidden},
		{"not found", NewNotFoundError("Post", "x"), http.StatusNotFound},
		{"conflict", NewConflictError("slug taken", nil), http.StatusConflict},
		{"internal", NewInternalError(errors.New("boom")), http.StatusInternalServerError},
		{"plain error", errors.New("pq: connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestFail_HidesStorageDetail(t *testing.T) {
	res := Fail(errors.New(`pq: duplicate key value violates unique constraint "idx_posts_slug"`))
	assert.False(t, res.Success)
	assert.Equal(t, GenericErrorMessage, res.Error)
	assert.Equal(t, CodeInternal, res.Code)

	res = Fail(NewInternalError(errors.New("dial tcp 10.0.0.4:5432: refused")))
	assert.Equal(t, GenericErrorMessage, res.Error)

	res = Fail(NewValidationError("Title is required"))
	assert.Equal(t, "Title is required", res.Error)
	assert.Equal(t, CodeValidation, res.Code)
}

func TestAppError_UnwrapsCause(t *testing.T) {
	cause := errors.New("root")
	err := NewConflictError("slug already in use", cause)
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "slug already in use")
}

func TestPost_MarkPublished(t *testing.T) {
	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	p := &Post{Status: PostStatusDraft}
	p.MarkPublished(first)
	assert.Nil(t, p.PublishedAt, "drafts are never stamped")

	p.Status = PostStatusPublished
	p.MarkPublished(first)
	require.NotNil(t, p.PublishedAt)
	assert.True(t, p.PublishedAt.Equal(first))

	p.Status = PostStatusDraft
	p.MarkPublished(later)
	p.Status = PostStatusPublished
	p.MarkPublished(later)
	assert.True(t, p.PublishedAt.Equal(first), "republishing keeps the original timestamp")
}

func TestPost_CoAuthorIDs(t *testing.T) {
	p := &Post{CoAuthors: []PostAuthor{
		{UserID: "owner", Role: AuthorRolePrimary},
		{UserID: "b", Role: AuthorRoleContributor},
		{UserID: "c", Role: AuthorRoleContributor},
	}}
	assert.Equal(t, []string{"b", "c"}, p.CoAuthorIDs())
}

func TestPostStatus_Valid(t *testing.T) {
	assert.True(t, PostStatusDraft.Valid())
	assert.True(t, PostStatusPublished.Valid())
	assert.False(t, PostStatus("archived").Valid())
	assert.False(t, PostStatus("").Valid())
}
