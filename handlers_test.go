package vibeflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibeflow/site/airtable"
)

const echoHeaderContentType = "Content-Type"

type stubSource struct {
	recs []airtable.Record
	err  error
}

func (s stubSource) ListRecords(ctx context.Context) ([]airtable.Record, error) {
	return s.recs, s.err
}

func blogRecord(id, title, date string) airtable.Record {
	fields := map[string]any{
		"Título":    title,
		"Contenido": "# " + title + "\n\nCuerpo del artículo.",
	}
	if date != "" {
		fields["Fecha de Publicación"] = date
	}
	return airtable.Record{ID: id, Fields: fields}
}

func newTestApp(src RecordSource, opts ...Option) *App {
	cfg := SiteConfig{
		Name:           "Vibe Flow",
		URL:            "https://vibeflow.example",
		Description:    "Digital products community",
		AirtableAPIKey: "test-key",
		AirtableBaseID: "appTest",
	}
	opts = append([]Option{WithSource(src)}, opts...)
	return New(cfg, opts...)
}

func doRequest(app *App, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func threePosts() []airtable.Record {
	return []airtable.Record{
		{ID: "a", Fields: map[string]any{"Título": "Oldest Post", "Fecha": "2023-01-01", "Contenido": "old body"}},
		{ID: "b", Fields: map[string]any{"Título": "Middle Post", "Fecha": "2023-06-01", "Contenido": "middle body"}},
		{ID: "c", Fields: map[string]any{"Título": "Newest Post", "Fecha": "2024-01-01", "Contenido": "new body"}},
	}
}

func TestBlogListMeta(t *testing.T) {
	app := newTestApp(stubSource{recs: threePosts()})
	rec := doRequest(app, http.MethodGet, "/api/blog-list-meta")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echoHeaderContentType), "text/html")
	assert.Equal(t, "s-maxage=900, stale-while-revalidate=3600", rec.Header().Get("Cache-Control"))

	body := rec.Body.String()
	assert.Contains(t, body, `rel="canonical" href="https://vibeflow.example/blog"`)
	assert.Contains(t, body, `"@type":"Blog"`)
	assert.Contains(t, body, `"@type":"BlogPosting"`)
	// Newest-first ordering is visible in the rendered list.
	assert.Less(t, strings.Index(body, "Newest Post"), strings.Index(body, "Oldest Post"))
}

func TestBlogListMetaCapsAtTwenty(t *testing.T) {
	var recs []airtable.Record
	for i := 0; i < 30; i++ {
		date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i).Format(time.RFC3339)
		recs = append(recs, blogRecord(fmt.Sprintf("r%d", i), fmt.Sprintf("Post Number %d", i), date))
	}
	app := newTestApp(stubSource{recs: recs})
	rec := doRequest(app, http.MethodGet, "/api/blog-list-meta")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, listPageSize, strings.Count(rec.Body.String(), "<li>"))
}

func TestBlogListMetaEscapesInterpolatedText(t *testing.T) {
	recs := []airtable.Record{
		{ID: "x", Fields: map[string]any{"Título": `Injection <script>alert("x")</script>`}},
	}
	app := newTestApp(stubSource{recs: recs})
	rec := doRequest(app, http.MethodGet, "/api/blog-list-meta")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `<script>alert`)
}

func TestBlogMetaDetail(t *testing.T) {
	app := newTestApp(stubSource{recs: threePosts()})
	rec := doRequest(app, http.MethodGet, "/api/blog-meta?slug=middle-post")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `property="og:type" content="article"`)
	assert.Contains(t, body, `"@type":"Article"`)
	assert.Contains(t, body, `"datePublished":"2023-06-01T00:00:00Z"`)
	assert.Contains(t, body, "middle body")
}

func TestBlogMetaOmitsDateWhenUndated(t *testing.T) {
	recs := []airtable.Record{{ID: "u", Fields: map[string]any{"Título": "Sin Fecha"}}}
	app := newTestApp(stubSource{recs: recs})
	rec := doRequest(app, http.MethodGet, "/api/blog-meta?slug=sin-fecha")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "datePublished")
	assert.NotContains(t, body, "article:published_time")
}

func TestBlogMetaMissingSlug(t *testing.T) {
	app := newTestApp(stubSource{recs: threePosts()})
	rec := doRequest(app, http.MethodGet, "/api/blog-meta")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing slug parameter")
}

func TestBlogMetaNotFound(t *testing.T) {
	app := newTestApp(stubSource{recs: threePosts()})
	rec := doRequest(app, http.MethodGet, "/api/blog-meta?slug=does-not-exist")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Post not found", rec.Body.String())
}

func TestPostAPI(t *testing.T) {
	app := newTestApp(stubSource{recs: threePosts()})
	rec := doRequest(app, http.MethodGet, "/api/post?slug=middle-post")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echoHeaderContentType), "application/json")
	assert.Equal(t, "s-maxage=1800, stale-while-revalidate=7200", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "noindex, nofollow", rec.Header().Get("X-Robots-Tag"))

	var resp apiPostResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "middle-post", resp.Post.Slug)
	assert.Equal(t, "middle body", resp.Post.Body)
	require.NotNil(t, resp.Navigation.Prev)
	assert.Equal(t, "oldest-post", resp.Navigation.Prev.Slug)
	assert.Empty(t, resp.Navigation.Prev.Body)
	require.NotNil(t, resp.Navigation.Next)
	assert.Equal(t, "newest-post", resp.Navigation.Next.Slug)
}

func TestPostAPINavigationBoundaries(t *testing.T) {
	app := newTestApp(stubSource{recs: threePosts()})
	rec := doRequest(app, http.MethodGet, "/api/post?slug=oldest-post")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp apiPostResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Navigation.Prev)
	require.NotNil(t, resp.Navigation.Next)
	assert.Equal(t, "middle-post", resp.Navigation.Next.Slug)
}

func TestPostAPIErrors(t *testing.T) {
	app := newTestApp(stubSource{recs: threePosts()})

	rec := doRequest(app, http.MethodGet, "/api/post")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Missing slug parameter"}`, rec.Body.String())

	rec = doRequest(app, http.MethodGet, "/api/post?slug=does-not-exist")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Post not found"}`, rec.Body.String())
}

func TestSitemap(t *testing.T) {
	app := newTestApp(stubSource{recs: threePosts()})
	rec := doRequest(app, http.MethodGet, "/sitemap.xml")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echoHeaderContentType), "application/xml")
	assert.Equal(t, "s-maxage=1800, stale-while-revalidate=86400", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "noindex", rec.Header().Get("X-Robots-Tag"))

	body := rec.Body.String()
	assert.Contains(t, body, "<loc>https://vibeflow.example/services</loc>")
	assert.Contains(t, body, "<loc>https://vibeflow.example/blog/newest-post</loc>")
	// 11 static routes + 3 posts.
	assert.Equal(t, 14, strings.Count(body, "<url>"))
}

func TestSitemapCapsPosts(t *testing.T) {
	var recs []airtable.Record
	for i := 0; i < 1200; i++ {
		date := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i).Format("2006-01-02")
		recs = append(recs, blogRecord(fmt.Sprintf("r%d", i), fmt.Sprintf("Post Number %d", i), date))
	}
	app := newTestApp(stubSource{recs: recs})
	rec := doRequest(app, http.MethodGet, "/sitemap.xml")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, 11+sitemapMaxPosts, strings.Count(body, "<url>"))

	// Post entries are ordered by lastmod descending.
	newest := strings.Index(body, "<lastmod>2021-04-14</lastmod>")
	older := strings.Index(body, "<lastmod>2021-04-13</lastmod>")
	require.GreaterOrEqual(t, newest, 0)
	require.GreaterOrEqual(t, older, 0)
	assert.Less(t, newest, older)
}

func TestMethodGuard(t *testing.T) {
	app := newTestApp(stubSource{recs: threePosts()})

	targets := map[string]string{
		"/api/blog-list-meta": "/api/blog-list-meta",
		"/api/blog-meta":      "/api/blog-meta?slug=newest-post",
		"/api/post":           "/api/post?slug=newest-post",
		"/sitemap.xml":        "/sitemap.xml",
	}
	for path, target := range targets {
		rec := doRequest(app, http.MethodPost, path)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, "POST %s", path)
		assert.NotEmpty(t, rec.Header().Get("Allow"), "POST %s", path)

		rec = doRequest(app, http.MethodOptions, path)
		assert.Equal(t, http.StatusOK, rec.Code, "OPTIONS %s", path)
		assert.Equal(t, "GET, HEAD, OPTIONS", rec.Header().Get("Allow"), "OPTIONS %s", path)

		rec = doRequest(app, http.MethodHead, target)
		assert.Equal(t, http.StatusOK, rec.Code, "HEAD %s", path)
		assert.Empty(t, rec.Body.String(), "HEAD %s should have no body", path)
	}
}

func TestMissingCredentials(t *testing.T) {
	cfg := SiteConfig{URL: "https://vibeflow.example"}
	app := New(cfg, WithSource(stubSource{recs: threePosts()}))
	rec := doRequest(app, http.MethodGet, "/api/blog-list-meta")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing Airtable credentials")
}

func TestUpstreamFailure(t *testing.T) {
	app := newTestApp(stubSource{err: errors.New("connection refused")})
	rec := doRequest(app, http.MethodGet, "/api/post?slug=anything")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to load blog content")
}

func TestHealthz(t *testing.T) {
	app := newTestApp(stubSource{})
	rec := doRequest(app, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}
