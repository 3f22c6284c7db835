package repository

import (
	"context"
	"regexp"
	"testing"

	"bitacora/internal/models"
	"bitacora/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestReactionRepository_InsertThenDuplicate(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewReactionRepository(db)
	ctx := context.Background()

	admin := testutil.CreateUser(t, db, "Ana Admin", models.RoleAdmin)
	reader := testutil.CreateUser(t, db, "Lector", models.RoleUser)
	post := testutil.CreatePost(t, db, admin, "me-gusta")

	require.NoError(t, repo.Insert(ctx, reader.ID, post.ID))
	assert.ErrorIs(t, repo.Insert(ctx, reader.ID, post.ID), models.ErrDuplicateReaction)

	exists, err := repo.Exists(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	n, err := repo.CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	removed, err := repo.Delete(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	removed, err = repo.Delete(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestReactionRepository_InsertUnknownPost(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewReactionRepository(db)
	reader := testutil.CreateUser(t, db, "Lector", models.RoleUser)

	err := repo.Insert(context.Background(), reader.ID, "missing-post")
	assert.True(t, models.IsNotFound(err))
}

func TestReactionRepository_InsertPostgresConflicts(t *testing.T) {
	insertSQL := regexp.QuoteMeta(`INSERT INTO "reactions"`)

	t.Run("do nothing affects zero rows", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewReactionRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(insertSQL + ".*ON CONFLICT DO NOTHING").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.Insert(context.Background(), "u1", "p1")
		assert.ErrorIs(t, err, models.ErrDuplicateReaction)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewReactionRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(insertSQL).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_reaction_user_post"})
		mock.ExpectRollback()

		err := repo.Insert(context.Background(), "u1", "p1")
		assert.ErrorIs(t, err, models.ErrDuplicateReaction)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("foreign key violation", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewReactionRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(insertSQL).
			WillReturnError(&pgconn.PgError{Code: "23503"})
		mock.ExpectRollback()

		err := repo.Insert(context.Background(), "u1", "p1")
		assert.True(t, models.IsNotFound(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
