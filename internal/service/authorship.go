package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"bitacora/internal/models"
	"bitacora/internal/repository"

	"github.com/graph-gophers/dataloader"
)

const anonymousName = "Anonymous"

// CanEdit reports whether user may edit post: admins, and the primary author
// recorded either as Post.AuthorID or as a primary-role row. Contributors are
// attribution only and never gain edit rights.
func CanEdit(user *models.User, post *models.Post, authors []models.PostAuthor) bool {
	if user == nil || post == nil {
		return false
	}
	if user.IsAdmin() {
		return true
	}
	if post.AuthorID != nil && *post.AuthorID == user.ID {
		return true
	}
	for _, a := range authors {
		if a.UserID == user.ID && a.Role == models.AuthorRolePrimary {
			return true
		}
	}
	return false
}

// Initials returns the uppercased first letters of the first two words of name.
func Initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		out = append(out, unicode.ToUpper(r))
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

// BuildByline renders the attribution of post. Anonymous posts hide every
// name, co-authors included.
func BuildByline(post *models.Post, authors []models.PostAuthor) *models.Byline {
	if post.IsAnonymous {
		return &models.Byline{
			Anonymous: true,
			Name:      anonymousName,
			Initials:  "A",
			Label:     anonymousName,
		}
	}

	primary := ""
	if post.Author != nil {
		primary = post.Author.Name
	}
	var coAuthors []string
	for _, a := range authors {
		switch {
		case a.User == nil:
			continue
		case a.Role == models.AuthorRolePrimary:
			if primary == "" {
				primary = a.User.Name
			}
		case post.AuthorID != nil && a.UserID == *post.AuthorID:
			continue
		default:
			coAuthors = append(coAuthors, a.User.Name)
		}
	}
	if primary == "" {
		primary = anonymousName
	}

	label := primary
	switch len(coAuthors) {
	case 0:
	case 1:
		label = primary + " & " + coAuthors[0]
	default:
		label = fmt.Sprintf("%s +%d contributors", primary, len(coAuthors))
	}

	return &models.Byline{
		Name:      primary,
		Initials:  Initials(primary),
		CoAuthors: coAuthors,
		Label:     label,
	}
}

// loadAuthors resolves the authorship rows of many posts through a batched
// loader so a page of posts costs a single query.
func loadAuthors(ctx context.Context, repo repository.PostRepository, postIDs []string) (map[string][]models.PostAuthor, error) {
	out := make(map[string][]models.PostAuthor, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}

	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := make([]string, len(keys))
		for i, key := range keys {
			ids[i] = key.String()
		}

		byPost, err := repo.AuthorsByPostIDs(ctx, ids)
		results := make([]*dataloader.Result, len(keys))
		for i, id := range ids {
			if err != nil {
				results[i] = &dataloader.Result{Error: err}
				continue
			}
			results[i] = &dataloader.Result{Data: byPost[id]}
		}
		return results
	}
	loader := dataloader.NewBatchedLoader(batchFn,
		dataloader.WithWait(time.Millisecond),
		dataloader.WithClearCacheOnBatch(),
	)

	data, errs := loader.LoadMany(ctx, dataloader.NewKeysFromStrings(postIDs))()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	for i, id := range postIDs {
		rows, _ := data[i].([]models.PostAuthor)
		out[id] = rows
	}
	return out, nil
}

// decorate attaches bylines, and co-author rows when withAuthors is set.
// Anonymous posts lose every identifying field unless withAuthors is set.
func decorate(ctx context.Context, repo repository.PostRepository, posts []*models.Post, withAuthors bool) error {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	byPost, err := loadAuthors(ctx, repo, ids)
	if err != nil {
		return err
	}

	for _, p := range posts {
		authors := byPost[p.ID]
		p.Byline = BuildByline(p, authors)
		if withAuthors {
			p.CoAuthors = authors
			continue
		}
		p.CoAuthors = nil
		if p.IsAnonymous {
			p.AuthorID = nil
			p.Author = nil
		}
	}
	return nil
}
