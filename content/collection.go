package content

import (
	"sort"

	"github.com/vibeflow/site/airtable"
)

// ResolveCollection maps raw records to canonical posts, drops the ones
// that fail resolution, deduplicates by slug (first occurrence in input
// order wins) and sorts newest-first. Undated posts sort after all dated
// posts, keeping their relative input order.
func ResolveCollection(recs []airtable.Record, siteURL string) []Post {
	posts := make([]Post, 0, len(recs))
	seen := make(map[string]struct{}, len(recs))
	for _, rec := range recs {
		post, ok := ResolvePost(rec, siteURL)
		if !ok {
			continue
		}
		if _, dup := seen[post.Slug]; dup {
			continue
		}
		seen[post.Slug] = struct{}{}
		posts = append(posts, post)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i].Published, posts[j].Published
		switch {
		case a != nil && b != nil:
			return a.After(*b)
		case a != nil:
			return true
		default:
			return false
		}
	})
	return posts
}

// Find locates a post by slug. The needle is normalized first so request
// input and resolved slugs always compare on equal footing.
func Find(posts []Post, slug string) (Post, bool) {
	needle := NormalizeSlug(slug)
	for _, p := range posts {
		if p.Slug == needle {
			return p, true
		}
	}
	return Post{}, false
}

// Neighbors returns the chronological neighbors of the post with the
// given slug within a resolved (date-descending) collection: prev is the
// adjacent older post, next the adjacent newer one. Either is nil at the
// collection's boundary, and both are nil when the slug is not present.
func Neighbors(posts []Post, slug string) (prev, next *Post) {
	needle := NormalizeSlug(slug)
	for i := range posts {
		if posts[i].Slug != needle {
			continue
		}
		if i+1 < len(posts) {
			prev = &posts[i+1]
		}
		if i > 0 {
			next = &posts[i-1]
		}
		return prev, next
	}
	return nil, nil
}
