package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"bitacora/internal/models"
	"bitacora/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_Lifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	admin := testutil.CreateUser(t, db, "Ana Admin", models.RoleAdmin)
	reader := testutil.CreateUser(t, db, "Lector", models.RoleUser)
	post := testutil.CreatePost(t, db, admin, "comentarios")

	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	first := &models.Comment{PostID: post.ID, UserID: reader.ID, Content: "primero", CreatedAt: base}
	second := &models.Comment{PostID: post.ID, UserID: admin.ID, Content: "segundo", CreatedAt: base.Add(time.Minute), ParentID: nil}
	require.NoError(t, repo.Create(ctx, first))
	second.ParentID = &first.ID
	require.NoError(t, repo.Create(ctx, second))

	list, err := repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first, flat regardless of parent")
	require.NotNil(t, list[1].User)
	assert.Equal(t, "Lector", list[1].User.Name)
	assert.Empty(t, list[1].User.Email)

	updated, err := repo.UpdateContent(ctx, first.ID, "editado")
	require.NoError(t, err)
	assert.Equal(t, "editado", updated.Content)
	assert.True(t, updated.UpdatedAt.After(base))

	n, err := repo.CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, repo.Delete(ctx, second.ID))
	assert.True(t, models.IsNotFound(repo.Delete(ctx, second.ID)))

	_, err = repo.UpdateContent(ctx, "missing", "x")
	assert.True(t, models.IsNotFound(err))
	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, models.IsNotFound(err))
}

func TestCommentRepository_CreateOnMissingPost(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewCommentRepository(db)
	reader := testutil.CreateUser(t, db, "Lector", models.RoleUser)

	err := repo.Create(context.Background(), &models.Comment{PostID: "missing", UserID: reader.ID, Content: "hola"})
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
}

func TestCommentRepository_ListByPostQuery(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "comments" WHERE post_id = $1 ORDER BY created_at DESC,id DESC`)).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "content", "user_id", "post_id"}))

	list, err := repo.ListByPost(context.Background(), "p1")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list, "empty list, not null")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_StorageErrorIsInternal(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "comments"`)).
		WillReturnError(errors.New("connection reset by peer"))

	_, err := repo.GetByID(context.Background(), "c1")
	require.Error(t, err)
	assert.Equal(t, models.CodeInternal, models.ErrorCode(err))
	assert.Equal(t, models.GenericErrorMessage, models.PublicMessage(err))
}
