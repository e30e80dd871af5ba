package content

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vibeflow/site/airtable"
)

const (
	// DefaultAuthor is used when the source record has no author entry.
	DefaultAuthor = "Vibe Flow Team"

	placeholderImage = "/images/blog-placeholder.jpg"
	maxDescription   = 150
)

// Layouts accepted for the publish-date field. Dates are soft data: a
// value matching none of these behaves exactly like an absent date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2/1/2006",
	time.RFC1123,
	time.RFC1123Z,
}

// Post is the canonical, fully-resolved representation of a blog post.
// It is derived fresh from the raw record set on every request and never
// persisted or mutated.
type Post struct {
	ID          string
	Slug        string
	Title       string
	Description string
	Published   *time.Time
	Image       string
	Author      string
	Body        string
}

// ResolvePost turns one raw record into a canonical post. It reports
// false when the record lacks a usable title or slug; slug and title are
// the only hard requirements, everything else falls back.
func ResolvePost(rec airtable.Record, siteURL string) (Post, bool) {
	fields := rec.Fields
	if fields == nil {
		return Post{}, false
	}

	slug := ExtractSlug(fields)
	title := PickField(fields, titleFields)
	if slug == "" || slug == "untitled" || len(slug) < 3 || title == "" {
		return Post{}, false
	}

	desc := PickField(fields, descFields)
	if desc == "" {
		desc = PickField(fields, seoTitleFields)
	}
	if desc == "" {
		desc = truncate(title, maxDescription)
	}

	return Post{
		ID:          rec.ID,
		Slug:        slug,
		Title:       title,
		Description: desc,
		Published:   parseDate(PickField(fields, dateFields)),
		Image:       resolveImage(fields, siteURL),
		Author:      resolveAuthor(fields),
		Body:        PickField(fields, bodyFields),
	}, true
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func resolveImage(fields map[string]any, siteURL string) string {
	img := ExtractImage(pickRaw(fields, imageFields))
	if img == "" {
		img = PickField(fields, imageURLFields)
	}
	if img == "" {
		img = placeholderImage
	}
	return absoluteURL(img, siteURL)
}

func resolveAuthor(fields map[string]any) string {
	raw := pickRaw(fields, authorFields)
	if arr, ok := raw.([]any); ok && len(arr) > 0 {
		switch first := arr[0].(type) {
		case string:
			if s := strings.TrimSpace(first); s != "" {
				return s
			}
		case map[string]any:
			if s := ExtractString(first["name"]); s != "" {
				return s
			}
		}
		return DefaultAuthor
	}
	if s := ExtractString(raw); s != "" {
		return s
	}
	return DefaultAuthor
}

func absoluteURL(ref, siteURL string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	base := strings.TrimRight(siteURL, "/")
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return base + ref
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max])) + "…"
}

// URL returns the canonical public URL of the post on the site.
func (p Post) URL(siteURL string) string {
	u, err := url.Parse(siteURL)
	if err != nil {
		return siteURL + "/blog/" + p.Slug
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/blog/" + p.Slug
	return u.String()
}
