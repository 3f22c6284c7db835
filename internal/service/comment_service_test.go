package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"bitacora/internal/models"
	"bitacora/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComment_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := testutil.CreatePost(t, f.db, f.admin, "estado-actual")

	tests := []struct {
		name    string
		userID  string
		content string
		code    string
		message string
	}{
		{"anonymous", "", "hola", models.CodeUnauthorized, ""},
		{"blank", f.reader.ID, "   \n\t", models.CodeValidation, "Comment cannot be empty"},
		{"too long", f.reader.ID, strings.Repeat("ñ", 1001), models.CodeValidation, "Comment too long (max 1000 characters)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.comments.CreateComment(ctx, CreateCommentInput{UserID: tt.userID, PostID: post.ID, Content: tt.content})
			require.Error(t, err)
			assert.Equal(t, tt.code, models.ErrorCode(err))
			if tt.message != "" {
				assert.Equal(t, tt.message, models.PublicMessage(err))
			}
		})
	}

	res, err := f.comments.CreateComment(ctx, CreateCommentInput{UserID: f.reader.ID, PostID: post.ID, Content: strings.Repeat("ñ", 1000)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.CommentsCount, "exactly 1000 characters is accepted")

	res, err = f.comments.CreateComment(ctx, CreateCommentInput{UserID: f.reader.ID, PostID: post.ID, Content: "  con espacios  "})
	require.NoError(t, err)
	assert.Equal(t, "con espacios", res.Comment.Content)
}

func TestCreateComment_PostMustBePublished(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	draft := testutil.CreatePost(t, f.db, f.admin, "borrador", testutil.Draft())

	_, err := f.comments.CreateComment(ctx, CreateCommentInput{UserID: f.reader.ID, PostID: draft.ID, Content: "hola"})
	assert.True(t, models.IsNotFound(err))

	_, err = f.comments.CreateComment(ctx, CreateCommentInput{UserID: f.reader.ID, PostID: "missing", Content: "hola"})
	assert.True(t, models.IsNotFound(err))
}

func TestCreateComment_Parent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := testutil.CreatePost(t, f.db, f.admin, "estado-actual")
	elsewhere := testutil.CreatePost(t, f.db, f.admin, "otro-post")

	root, err := f.comments.CreateComment(ctx, CreateCommentInput{UserID: f.reader.ID, PostID: post.ID, Content: "raíz"})
	require.NoError(t, err)

	reply, err := f.comments.CreateComment(ctx, CreateCommentInput{
		UserID: f.other.ID, PostID: post.ID, Content: "respuesta", ParentID: &root.Comment.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, reply.Comment.ParentID)
	assert.Equal(t, root.Comment.ID, *reply.Comment.ParentID)

	_, err = f.comments.CreateComment(ctx, CreateCommentInput{
		UserID: f.other.ID, PostID: elsewhere.ID, Content: "cruzado", ParentID: &root.Comment.ID,
	})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	_, err = f.comments.CreateComment(ctx, CreateCommentInput{
		UserID: f.other.ID, PostID: post.ID, Content: "huérfano", ParentID: ptr("no-such-comment"),
	})
	assert.Equal(t, "Parent comment not found", models.PublicMessage(err))

	empty := ""
	res, err := f.comments.CreateComment(ctx, CreateCommentInput{
		UserID: f.other.ID, PostID: post.ID, Content: "sin padre", ParentID: &empty,
	})
	require.NoError(t, err)
	assert.Nil(t, res.Comment.ParentID)
}

func TestUpdateAndDeleteComment_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := testutil.CreatePost(t, f.db, f.admin, "estado-actual")

	created, err := f.comments.CreateComment(ctx, CreateCommentInput{UserID: f.reader.ID, PostID: post.ID, Content: "original"})
	require.NoError(t, err)
	id := created.Comment.ID

	for _, actor := range []*models.User{f.other, f.admin} {
		_, err = f.comments.UpdateComment(ctx, UpdateCommentInput{UserID: actor.ID, CommentID: id, Content: "secuestrado"})
		assert.Equal(t, models.CodeForbidden, models.ErrorCode(err), actor.Name)
		assert.Equal(t, "You can only modify your own comments", models.PublicMessage(err))

		_, err = f.comments.DeleteComment(ctx, DeleteCommentInput{UserID: actor.ID, CommentID: id})
		assert.Equal(t, models.CodeForbidden, models.ErrorCode(err), actor.Name)
	}

	_, err = f.comments.UpdateComment(ctx, UpdateCommentInput{UserID: f.reader.ID, CommentID: id, Content: " "})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	updated, err := f.comments.UpdateComment(ctx, UpdateCommentInput{UserID: f.reader.ID, CommentID: id, Content: "editado"})
	require.NoError(t, err)
	assert.Equal(t, "editado", updated.Comment.Content)
	assert.Equal(t, int64(1), updated.CommentsCount)

	deleted, err := f.comments.DeleteComment(ctx, DeleteCommentInput{UserID: f.reader.ID, CommentID: id})
	require.NoError(t, err)
	assert.Nil(t, deleted.Comment)
	assert.Zero(t, deleted.CommentsCount)

	_, err = f.comments.DeleteComment(ctx, DeleteCommentInput{UserID: f.reader.ID, CommentID: id})
	assert.True(t, models.IsNotFound(err))

	_, err = f.comments.UpdateComment(ctx, UpdateCommentInput{CommentID: id, Content: "x"})
	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))
}

func TestListComments_NewestFirstAndCoherent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := testutil.CreatePost(t, f.db, f.admin, "estado-actual")

	list, err := f.comments.ListComments(ctx, "estado-actual")
	require.NoError(t, err)
	assert.Empty(t, list)

	first, err := f.comments.CreateComment(ctx, CreateCommentInput{UserID: f.reader.ID, PostID: post.ID, Content: "primero"})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.Comment{}).Where("id = ?", first.Comment.ID).
		Update("created_at", time.Now().Add(-time.Hour)).Error)

	_, err = f.comments.CreateComment(ctx, CreateCommentInput{UserID: f.other.ID, PostID: post.ID, Content: "segundo"})
	require.NoError(t, err)

	list, err = f.comments.ListComments(ctx, "estado-actual")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "segundo", list[0].Content)
	assert.Equal(t, "primero", list[1].Content)
	require.NotNil(t, list[0].User)
	assert.Equal(t, f.other.Name, list[0].User.Name)
	assert.Empty(t, list[0].User.Email, "public user view omits email")

	_, err = f.comments.ListComments(ctx, "missing")
	assert.True(t, models.IsNotFound(err))
}

func TestCommentWriteWithoutSlugHintStillRefreshesDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := testutil.CreatePost(t, f.db, f.admin, "estado-actual")

	created, err := f.comments.CreateComment(ctx, CreateCommentInput{UserID: f.reader.ID, PostID: post.ID, Content: "hola"})
	require.NoError(t, err)

	detail, err := f.posts.GetBySlug(ctx, "estado-actual", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), detail.CommentsCount)

	_, err = f.comments.DeleteComment(ctx, DeleteCommentInput{UserID: f.reader.ID, CommentID: created.Comment.ID})
	require.NoError(t, err)

	detail, err = f.posts.GetBySlug(ctx, "estado-actual", nil)
	require.NoError(t, err)
	assert.Zero(t, detail.CommentsCount)
}

func TestCommentWriteWithMismatchedSlugHintRefreshesOwnPost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := testutil.CreatePost(t, f.db, f.admin, "estado-actual")
	other := testutil.CreatePost(t, f.db, f.admin, "otro-post")

	list, err := f.comments.ListComments(ctx, post.Slug)
	require.NoError(t, err)
	require.Empty(t, list)

	created, err := f.comments.CreateComment(ctx, CreateCommentInput{
		UserID: f.reader.ID, PostID: post.ID, Content: "hola", PostSlug: other.Slug,
	})
	require.NoError(t, err)

	list, err = f.comments.ListComments(ctx, post.Slug)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "hola", list[0].Content)

	_, err = f.comments.UpdateComment(ctx, UpdateCommentInput{
		UserID: f.reader.ID, CommentID: created.Comment.ID, Content: "editado", PostSlug: other.Slug,
	})
	require.NoError(t, err)

	list, err = f.comments.ListComments(ctx, post.Slug)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "editado", list[0].Content)

	_, err = f.comments.DeleteComment(ctx, DeleteCommentInput{
		UserID: f.reader.ID, CommentID: created.Comment.ID, PostSlug: other.Slug,
	})
	require.NoError(t, err)

	list, err = f.comments.ListComments(ctx, post.Slug)
	require.NoError(t, err)
	assert.Empty(t, list)
}

// A published post created by an admin gathers a like and a comment, and every
// read view reflects both before the writes return.
func TestPublishReactCommentScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.posts.CreatePost(ctx, f.admin, CreatePostInput{
		Title:      "Estado Actual",
		Slug:       "estado-actual",
		Content:    "Así está la playa esta semana.",
		CoverImage: "https://images.example.com/salaverry.jpg",
		Status:     models.PostStatusPublished,
	})
	require.NoError(t, err)
	require.NotNil(t, post.PublishedAt)

	page, err := f.posts.ListPublished(ctx, 1)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "estado-actual", page.Posts[0].Slug)

	state, err := f.reactions.ToggleReaction(ctx, f.reader.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReactionState{PostID: post.ID, Liked: true, Count: 1}, *state)

	res, err := f.comments.CreateComment(ctx, CreateCommentInput{
		UserID: f.reader.ID, PostID: post.ID, Content: "Buen artículo", PostSlug: "estado-actual",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.CommentsCount)

	detail, err := f.posts.GetBySlug(ctx, "estado-actual", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), detail.ReactionsCount)
	assert.Equal(t, int64(1), detail.CommentsCount)
	assert.Equal(t, "Ana Admin", detail.Byline.Label)
	assert.Equal(t, "AA", detail.Byline.Initials)

	comments, err := f.comments.ListComments(ctx, "estado-actual")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Buen artículo", comments[0].Content)

	state, err = f.reactions.ToggleReaction(ctx, f.reader.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, state.Liked)
	assert.Zero(t, state.Count)

	page, err = f.posts.ListPublished(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, page.Posts[0].ReactionsCount)
	assert.Equal(t, int64(1), page.Posts[0].CommentsCount)
}
