package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"bitacora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMeili struct {
	mu        sync.Mutex
	documents [][]Document
	deleted   []string
	hits      []string
}

func (f *fakeMeili) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/health":
		_, _ = io.WriteString(w, `{"status":"available"}`)
		return
	case r.URL.Path == "/indexes/posts/search":
		hits := make([]map[string]string, len(f.hits))
		for i, id := range f.hits {
			hits[i] = map[string]string{"id": id}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hits":               hits,
			"query":              "",
			"processingTimeMs":   1,
			"limit":              20,
			"offset":             0,
			"estimatedTotalHits": len(hits),
		})
		return
	case r.Method == http.MethodPost && r.URL.Path == "/indexes/posts/documents":
		var docs []Document
		_ = json.NewDecoder(r.Body).Decode(&docs)
		f.documents = append(f.documents, docs)
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/indexes/posts/documents/"):
		f.deleted = append(f.deleted, strings.TrimPrefix(r.URL.Path, "/indexes/posts/documents/"))
	}

	w.WriteHeader(http.StatusAccepted)
	_, _ = io.WriteString(w, `{"taskUid":1,"indexUid":"posts","status":"enqueued","type":"documentAdditionOrUpdate","enqueuedAt":"2025-06-01T10:00:00Z"}`)
}

func TestNewDocument(t *testing.T) {
	published := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	excerpt := "Resumen"
	post := &models.Post{
		ID:          "p1",
		Slug:        "estado-actual",
		Title:       "Estado Actual",
		Excerpt:     &excerpt,
		Content:     "Texto",
		Author:      &models.User{Name: "Ana Admin"},
		Status:      models.PostStatusPublished,
		PublishedAt: &published,
	}

	doc := NewDocument(post)
	assert.Equal(t, "Ana Admin", doc.AuthorName)
	assert.Equal(t, "Resumen", doc.Excerpt)
	assert.Equal(t, published.Unix(), doc.PublishedAt)

	post.IsAnonymous = true
	assert.Empty(t, NewDocument(post).AuthorName, "anonymous posts do not index their author")
}

func TestMeili_IndexSearchRemove(t *testing.T) {
	fake := &fakeMeili{hits: []string{"p2", "p1"}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	m := NewMeili(srv.URL, "", "posts")
	defer m.Close()
	require.True(t, m.Healthy())

	ctx := context.Background()
	require.NoError(t, m.IndexPosts([]*models.Post{
		{ID: "p1", Slug: "uno", Title: "Uno", Status: models.PostStatusPublished},
		{ID: "p3", Slug: "borrador", Title: "Borrador", Status: models.PostStatusDraft},
	}))

	fake.mu.Lock()
	require.Len(t, fake.documents, 1)
	require.Len(t, fake.documents[0], 1, "drafts are never indexed")
	assert.Equal(t, "p1", fake.documents[0][0].ID)
	fake.mu.Unlock()

	ids, err := m.Search(ctx, "uno", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, ids)

	require.NoError(t, m.RemovePost(ctx, "p1"))
	fake.mu.Lock()
	assert.Equal(t, []string{"p1"}, fake.deleted)
	fake.mu.Unlock()
}

func TestMeili_UnavailableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	m := NewMeili(url, "", "posts")
	defer m.Close()

	assert.False(t, m.Healthy())
	_, err := m.Search(context.Background(), "playa", 10)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, m.IndexPost(context.Background(), &models.Post{ID: "p1", Status: models.PostStatusPublished}), ErrUnavailable)
}
