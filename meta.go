package vibeflow

import (
	"encoding/json"
	"html/template"
	"time"

	"github.com/vibeflow/site/content"
)

// The SEO endpoints serve head-heavy HTML documents aimed at crawlers and
// link unfurlers; the SPA renders the real pages. html/template escapes
// every interpolated field, and the JSON-LD payload is marshaled with
// encoding/json (which escapes <, > and &) before being embedded raw.

var listTmpl = template.Must(template.New("list").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta name="description" content="{{.Description}}">
<link rel="canonical" href="{{.Canonical}}">
<meta property="og:type" content="website">
<meta property="og:site_name" content="{{.Site.Name}}">
<meta property="og:title" content="{{.Title}}">
<meta property="og:description" content="{{.Description}}">
<meta property="og:url" content="{{.Canonical}}">
<meta name="twitter:card" content="summary_large_image">
<meta name="twitter:title" content="{{.Title}}">
<meta name="twitter:description" content="{{.Description}}">
<script type="application/ld+json">{{.JSONLD}}</script>
</head>
<body>
<h1>{{.Title}}</h1>
<ul>
{{range .Posts}}<li><a href="{{.PostURL}}">{{.Post.Title}}</a> — {{.Post.Description}}</li>
{{end}}</ul>
</body>
</html>
`))

var postTmpl = template.Must(template.New("post").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Post.Title}} | {{.Site.Name}}</title>
<meta name="description" content="{{.Post.Description}}">
<link rel="canonical" href="{{.Canonical}}">
<meta property="og:type" content="article">
<meta property="og:site_name" content="{{.Site.Name}}">
<meta property="og:title" content="{{.Post.Title}}">
<meta property="og:description" content="{{.Post.Description}}">
<meta property="og:url" content="{{.Canonical}}">
<meta property="og:image" content="{{.Post.Image}}">
{{if .Published}}<meta property="article:published_time" content="{{.Published}}">
{{end}}<meta property="article:author" content="{{.Post.Author}}">
<meta name="twitter:card" content="summary_large_image">
<meta name="twitter:title" content="{{.Post.Title}}">
<meta name="twitter:description" content="{{.Post.Description}}">
<meta name="twitter:image" content="{{.Post.Image}}">
<script type="application/ld+json">{{.JSONLD}}</script>
</head>
<body>
<article>
<h1>{{.Post.Title}}</h1>
{{.BodyHTML}}
</article>
</body>
</html>
`))

type listEntry struct {
	Post    content.Post
	PostURL string
}

type listPageData struct {
	Site        SiteConfig
	Title       string
	Description string
	Canonical   string
	Posts       []listEntry
	JSONLD      template.JS
}

type postPageData struct {
	Site      SiteConfig
	Post      content.Post
	Canonical string
	Published string
	BodyHTML  template.HTML
	JSONLD    template.JS
}

// blogJSONLD builds the Blog/BlogPosting graph for the list page. Posts
// without a source date get "now" as datePublished here; only the strict
// Article schema on the detail page omits the field instead.
func blogJSONLD(cfg SiteConfig, posts []content.Post, now time.Time) template.JS {
	entries := make([]map[string]any, 0, len(posts))
	for _, p := range posts {
		published := now
		if p.Published != nil {
			published = *p.Published
		}
		entries = append(entries, map[string]any{
			"@type":         "BlogPosting",
			"headline":      p.Title,
			"description":   p.Description,
			"url":           p.URL(cfg.URL),
			"image":         p.Image,
			"datePublished": published.Format(time.RFC3339),
			"author": map[string]string{
				"@type": "Person",
				"name":  p.Author,
			},
		})
	}
	data := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Blog",
		"name":        cfg.Name,
		"url":         cfg.URL + "/blog",
		"description": cfg.Description,
		"blogPost":    entries,
	}
	return marshalJSONLD(data)
}

// articleJSONLD builds the Article schema for the detail page. Dates are
// included only when the source record carried a parseable one; asserting
// a fake publish date in strict article schema is worse than omission.
func articleJSONLD(cfg SiteConfig, post content.Post) template.JS {
	postURL := post.URL(cfg.URL)
	data := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Article",
		"headline":    post.Title,
		"description": post.Description,
		"image":       post.Image,
		"url":         postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
		"author": map[string]string{
			"@type": "Person",
			"name":  post.Author,
		},
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		},
	}
	if post.Published != nil {
		data["datePublished"] = post.Published.Format(time.RFC3339)
		data["dateModified"] = post.Published.Format(time.RFC3339)
	}
	return marshalJSONLD(data)
}

func marshalJSONLD(data map[string]any) template.JS {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return template.JS(b)
}
