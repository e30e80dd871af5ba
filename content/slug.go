package content

import (
	"net/url"
	"strings"
)

// NormalizeSlug converts arbitrary input (a title, a full post URL, or an
// already-clean slug) into a lower-kebab identifier matching [a-z0-9-]*.
// It is idempotent: normalizing an already-normal slug is a no-op.
func NormalizeSlug(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))

	// Full URLs appear in slug fields often enough to handle here: drop
	// the scheme and host, then any /blog/ prefix, then query/fragment.
	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil {
			s = u.Path
		} else if i := strings.Index(s, "://"); i >= 0 {
			s = s[i+3:]
			if j := strings.IndexByte(s, '/'); j >= 0 {
				s = s[j:]
			} else {
				s = ""
			}
		}
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(s, "/blog/")
	s = strings.TrimRight(s, "/")

	var b strings.Builder
	b.Grow(len(s))
	prevHyphen := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// ExtractSlug derives a post's slug from its fields: explicit SEO slug
// first, then the last path segment of an explicit URL, then the title.
func ExtractSlug(fields map[string]any) string {
	if s := NormalizeSlug(PickField(fields, seoSlugFields)); s != "" {
		return s
	}
	if raw := PickField(fields, urlFields); raw != "" {
		if s := NormalizeSlug(lastPathSegment(raw)); s != "" {
			return s
		}
	}
	return NormalizeSlug(PickField(fields, titleFields))
}

func lastPathSegment(raw string) string {
	s := strings.TrimRight(raw, "/")
	if u, err := url.Parse(s); err == nil && u.Path != "" {
		s = strings.TrimRight(u.Path, "/")
	}
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}
