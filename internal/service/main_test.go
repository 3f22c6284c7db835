package service

import (
	"testing"
	"time"

	"bitacora/internal/cache"
	"bitacora/internal/models"
	"bitacora/internal/observability"
	"bitacora/internal/repository"
	"bitacora/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func init() {
	observability.EnableRepoLogging = false
}

type fixture struct {
	db        *gorm.DB
	mr        *miniredis.Miniredis
	cache     *cache.ReadCache
	postRepo  repository.PostRepository
	posts     *PostService
	reactions *ReactionService
	comments  *CommentService
	admin     *models.User
	reader    *models.User
	other     *models.User
	clock     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	rc := cache.NewReadCache(rdb, time.Minute)

	postRepo := repository.NewPostRepository(db)
	f := &fixture{
		db:        db,
		mr:        mr,
		cache:     rc,
		postRepo:  postRepo,
		posts:     NewPostService(postRepo, repository.NewUserRepository(db), rc, nil),
		reactions: NewReactionService(repository.NewReactionRepository(db), postRepo, rc),
		comments:  NewCommentService(repository.NewCommentRepository(db), postRepo, rc),
		admin:     testutil.CreateUser(t, db, "Ana Admin", models.RoleAdmin),
		reader:    testutil.CreateUser(t, db, "Lucía Lectora", models.RoleUser),
		other:     testutil.CreateUser(t, db, "Otro Usuario", models.RoleUser),
		clock:     time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	f.posts.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func ptr[T any](v T) *T {
	return &v
}

func validCreateInput(slug string, status models.PostStatus) CreatePostInput {
	return CreatePostInput{
		Title:      "Estado Actual",
		Slug:       slug,
		Content:    "La playa de Salaverry hoy.",
		CoverImage: "https://images.example.com/salaverry.jpg",
		Status:     status,
	}
}
