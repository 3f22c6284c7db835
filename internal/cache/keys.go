package cache

import "fmt"

// Invalidation tags.
const (
	TagPosts      = "posts"
	TagAdminPosts = "admin-posts"
)

// PostTag is the per-post tag, keyed by slug.
func PostTag(slug string) string {
	return "post:" + slug
}

// PostTags returns every tag a post write must invalidate. Empty slugs are skipped.
func PostTags(slugs ...string) []string {
	tags := []string{TagPosts, TagAdminPosts}
	seen := map[string]bool{}
	for _, s := range slugs {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		tags = append(tags, PostTag(s))
	}
	return tags
}

// InteractionTags returns the tags a reaction or comment write must
// invalidate. Without a slug only the coarse feed tag is invalidated and the
// detail view is bounded by the TTL.
func InteractionTags(slug string) []string {
	if slug == "" {
		return []string{TagPosts}
	}
	return []string{PostTag(slug), TagPosts}
}

func FeedPageKey(page int) string {
	return fmt.Sprintf("feed:page:%d", page)
}

func PublishedCountKey() string {
	return "feed:count"
}

func PostBySlugKey(slug string, includeDrafts bool) string {
	if includeDrafts {
		return "post:slug:" + slug + ":all"
	}
	return "post:slug:" + slug
}

func CommentsKey(slug string) string {
	return "comments:post:" + slug
}

func SearchKey(query string) string {
	return "search:" + query
}

func ReactionMembershipKey(userID, postID string) string {
	return fmt.Sprintf("reaction:%s:%s", userID, postID)
}

func AdminPostsKey() string {
	return "admin:posts"
}

func AdminPostKey(id string) string {
	return "admin:post:" + id
}

func AdminStatusCountsKey() string {
	return "admin:posts:counts"
}
