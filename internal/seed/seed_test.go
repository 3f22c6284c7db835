package seed

import (
	"context"
	"testing"

	"bitacora/internal/models"
	"bitacora/internal/observability"
	"bitacora/internal/repository"
	"bitacora/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	observability.EnableRepoLogging = false
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Estado Actual":            "estado-actual",
		"  Hola,  Mundo!  ":        "hola-mundo",
		"Cómo Reducir el Plástico": "c-mo-reducir-el-pl-stico",
		"2025 en revisión.":        "2025-en-revisi-n",
		"---":                      "",
	}
	for in, want := range tests {
		assert.Equal(t, want, slugify(in), in)
	}
}

func TestSamplePosts_Idempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	admin := testutil.CreateUser(t, db, "Ana Admin", models.RoleAdmin)
	s := NewSeeder(db, 42)
	ctx := context.Background()

	created, err := s.SamplePosts(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, created, len(SamplePosts))

	again, err := s.SamplePosts(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, again)

	repo := repository.NewPostRepository(db)
	post, err := repo.GetBySlug(ctx, "estado-actual-playa-salaverry", false)
	require.NoError(t, err)
	assert.Equal(t, "Estado Actual de la Playa de Salaverry", post.Title)
	require.NotNil(t, post.PublishedAt)
	assert.Equal(t, "2025-10-25", post.PublishedAt.Format("2006-01-02"))

	authors, err := repo.AuthorsByPostIDs(ctx, []string{post.ID})
	require.NoError(t, err)
	require.Len(t, authors[post.ID], 1)
	assert.Equal(t, models.AuthorRolePrimary, authors[post.ID][0].Role)
}

func TestRun_GeneratesConsistentData(t *testing.T) {
	db := testutil.NewTestDB(t)
	admin := testutil.CreateUser(t, db, "Ana Admin", models.RoleAdmin)
	ctx := context.Background()

	summary, err := NewSeeder(db, 7).Run(ctx, admin, Options{NumUsers: 4, NumPosts: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Users)
	assert.Equal(t, len(SamplePosts)+10, summary.Posts)

	repo := repository.NewPostRepository(db)
	counts, err := repo.CountsByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(summary.Posts), counts.Total)
	assert.Equal(t, counts.Total, counts.Draft+counts.Published)

	var reactions, comments int64
	require.NoError(t, db.Model(&models.Reaction{}).Count(&reactions).Error)
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)
	assert.Equal(t, int64(summary.Reactions), reactions)
	assert.Equal(t, int64(summary.Comments), comments)

	var onDrafts int64
	require.NoError(t, db.Model(&models.Reaction{}).
		Joins("JOIN posts ON posts.id = reactions.post_id").
		Where("posts.status = ?", models.PostStatusDraft).
		Count(&onDrafts).Error)
	assert.Zero(t, onDrafts, "drafts receive no engagement")

	_, err = NewSeeder(db, 7).Run(ctx, admin, Options{ShouldClean: true})
	require.NoError(t, err)
	counts, err = repo.CountsByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(SamplePosts)), counts.Total)
}

func TestRun_RequiresAuthor(t *testing.T) {
	db := testutil.NewTestDB(t)
	_, err := NewSeeder(db, 1).Run(context.Background(), nil, Options{})
	assert.Error(t, err)
}
