// Package search keeps a Meilisearch index of published posts. The service
// layer falls back to a database scan whenever the index reports an error.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"bitacora/internal/middleware"
	"bitacora/internal/models"

	meili "github.com/meilisearch/meilisearch-go"
)

const healthInterval = 10 * time.Second

// ErrUnavailable is returned while the last health probe failed.
var ErrUnavailable = errors.New("meilisearch unavailable")

// Document is the indexed form of a published post. Anonymous posts carry no
// author so the byline cannot be recovered through search.
type Document struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Excerpt     string `json:"excerpt,omitempty"`
	Content     string `json:"content"`
	AuthorName  string `json:"author_name,omitempty"`
	PublishedAt int64  `json:"published_at"`
}

// NewDocument maps a post to its index document.
func NewDocument(post *models.Post) Document {
	doc := Document{
		ID:      post.ID,
		Slug:    post.Slug,
		Title:   post.Title,
		Content: post.Content,
	}
	if post.Excerpt != nil {
		doc.Excerpt = *post.Excerpt
	}
	if !post.IsAnonymous && post.Author != nil {
		doc.AuthorName = post.Author.Name
	}
	if post.PublishedAt != nil {
		doc.PublishedAt = post.PublishedAt.Unix()
	}
	return doc
}

// Meili implements service.PostIndex.
type Meili struct {
	client  meili.ServiceManager
	index   string
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili connects to Meilisearch and configures the posts index. An
// unreachable server is not fatal: the index starts unhealthy and the
// background probe reconfigures it on recovery.
func NewMeili(url, apiKey, index string) *Meili {
	m := &Meili{
		client: meili.New(url, meili.WithAPIKey(apiKey)),
		index:  index,
		done:   make(chan struct{}),
	}

	if _, err := m.client.Health(); err != nil {
		middleware.Logger.Warn("search: meilisearch unavailable, using database search",
			slog.String("url", url), slog.String("error", err.Error()))
	} else {
		m.healthy.Store(true)
		m.configure()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configure() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{Uid: m.index, PrimaryKey: "id"}); err != nil {
		middleware.Logger.Debug("search: create index (may already exist)",
			slog.String("index", m.index), slog.String("error", err.Error()))
	}

	idx := m.client.Index(m.index)
	searchable := []string{"title", "excerpt", "content", "author_name"}
	if _, err := idx.UpdateSearchableAttributes(&searchable); err != nil {
		middleware.Logger.Warn("search: update searchable attributes",
			slog.String("index", m.index), slog.String("error", err.Error()))
	}
	filterable := []interface{}{"slug"}
	if _, err := idx.UpdateFilterableAttributes(&filterable); err != nil {
		middleware.Logger.Warn("search: update filterable attributes",
			slog.String("index", m.index), slog.String("error", err.Error()))
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			was := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !was {
				middleware.Logger.Info("search: meilisearch recovered, reconfiguring index")
				m.configure()
			}
		}
	}
}

// Close stops the health probe.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether the last probe succeeded.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

func (m *Meili) IndexPost(_ context.Context, post *models.Post) error {
	return m.IndexPosts([]*models.Post{post})
}

// IndexPosts upserts published posts in one batch. Drafts are skipped.
func (m *Meili) IndexPosts(posts []*models.Post) error {
	if !m.healthy.Load() {
		return ErrUnavailable
	}
	docs := make([]Document, 0, len(posts))
	for _, p := range posts {
		if p.IsPublished() {
			docs = append(docs, NewDocument(p))
		}
	}
	if len(docs) == 0 {
		return nil
	}
	if _, err := m.client.Index(m.index).AddDocuments(docs, nil); err != nil {
		return fmt.Errorf("meilisearch add documents: %w", err)
	}
	return nil
}

func (m *Meili) RemovePost(_ context.Context, id string) error {
	if !m.healthy.Load() {
		return ErrUnavailable
	}
	if _, err := m.client.Index(m.index).DeleteDocument(id, nil); err != nil {
		return fmt.Errorf("meilisearch delete document: %w", err)
	}
	return nil
}

// Search returns matching post ids in relevance order.
func (m *Meili) Search(_ context.Context, query string, limit int) ([]string, error) {
	if !m.healthy.Load() {
		return nil, ErrUnavailable
	}
	if limit <= 0 {
		limit = 20
	}

	resp, err := m.client.Index(m.index).Search(query, &meili.SearchRequest{
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		m.healthy.Store(false)
		return nil, fmt.Errorf("meilisearch search: %w", err)
	}

	ids := make([]string, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		if id := decodeString(hit, "id"); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
