package vibeflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vibeflow/site/content"
	"github.com/vibeflow/site/markdown"
)

const listPageSize = 20

// resolveAll performs the one upstream fetch for this request and runs
// the full resolver pipeline over the result. Per-record malformation
// never surfaces here; only missing credentials and fetch failures do.
func (a *App) resolveAll(c echo.Context) ([]content.Post, error) {
	if a.Config.AirtableAPIKey == "" || a.Config.AirtableBaseID == "" {
		return nil, &ConfigurationError{
			Message: "Missing Airtable credentials: set AIRTABLE_API_KEY and AIRTABLE_BASE_ID",
		}
	}
	recs, err := a.Source.ListRecords(c.Request().Context())
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	return content.ResolveCollection(recs, a.Config.URL), nil
}

// respond writes a response honoring HEAD semantics: headers and status
// only, no body.
func respond(c echo.Context, code int, contentType string, body []byte) error {
	c.Response().Header().Set(echo.HeaderContentType, contentType)
	c.Response().WriteHeader(code)
	if c.Request().Method == http.MethodHead {
		return nil
	}
	_, err := c.Response().Write(body)
	return err
}

// allowOptions answers preflight-style OPTIONS requests with the allowed
// method set. Echo answers all other unregistered methods with 405 and
// the same Allow header.
func allowOptions(c echo.Context) error {
	c.Response().Header().Set("Allow", "GET, HEAD, OPTIONS")
	return c.NoContent(http.StatusOK)
}

// handleBlogListMeta serves the blog index SEO document: meta tags plus
// a Blog/BlogPosting JSON-LD graph over the newest posts.
func (a *App) handleBlogListMeta(c echo.Context) error {
	posts, err := a.resolveAll(c)
	if err != nil {
		return err
	}
	if len(posts) > listPageSize {
		posts = posts[:listPageSize]
	}

	entries := make([]listEntry, 0, len(posts))
	for _, p := range posts {
		entries = append(entries, listEntry{Post: p, PostURL: p.URL(a.Config.URL)})
	}
	data := listPageData{
		Site:        a.Config,
		Title:       "Blog | " + a.Config.Name,
		Description: a.Config.Description,
		Canonical:   a.Config.URL + "/blog",
		Posts:       entries,
		JSONLD:      blogJSONLD(a.Config, posts, time.Now().UTC()),
	}
	var buf bytes.Buffer
	if err := listTmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render list page: %w", err)
	}
	return respond(c, http.StatusOK, echo.MIMETextHTMLCharsetUTF8, buf.Bytes())
}

// handleBlogMeta serves the per-post SEO document, including the rendered
// article body and Article JSON-LD.
func (a *App) handleBlogMeta(c echo.Context) error {
	slug := content.NormalizeSlug(c.QueryParam("slug"))
	if slug == "" {
		return respond(c, http.StatusBadRequest, echo.MIMETextPlainCharsetUTF8, []byte("Missing slug parameter"))
	}
	posts, err := a.resolveAll(c)
	if err != nil {
		return err
	}
	post, ok := content.Find(posts, slug)
	if !ok {
		return respond(c, http.StatusNotFound, echo.MIMETextPlainCharsetUTF8, []byte("Post not found"))
	}

	body, err := markdown.Render(post.Body)
	if err != nil {
		return fmt.Errorf("render post body: %w", err)
	}
	data := postPageData{
		Site:      a.Config,
		Post:      post,
		Canonical: post.URL(a.Config.URL),
		BodyHTML:  body,
		JSONLD:    articleJSONLD(a.Config, post),
	}
	if post.Published != nil {
		data.Published = post.Published.Format(time.RFC3339)
	}
	var buf bytes.Buffer
	if err := postTmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render post page: %w", err)
	}
	return respond(c, http.StatusOK, echo.MIMETextHTMLCharsetUTF8, buf.Bytes())
}

type apiPost struct {
	Slug        string  `json:"slug"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Date        *string `json:"date"`
	Image       string  `json:"image"`
	Author      string  `json:"author"`
	URL         string  `json:"url"`
	Body        string  `json:"body,omitempty"`
}

type apiNavigation struct {
	Prev *apiPost `json:"prev"`
	Next *apiPost `json:"next"`
}

type apiPostResponse struct {
	Post       apiPost       `json:"post"`
	Navigation apiNavigation `json:"navigation"`
}

func (a *App) toAPIPost(p content.Post, withBody bool) apiPost {
	out := apiPost{
		Slug:        p.Slug,
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		Author:      p.Author,
		URL:         p.URL(a.Config.URL),
	}
	if p.Published != nil {
		d := p.Published.Format(time.RFC3339)
		out.Date = &d
	}
	if withBody {
		out.Body = p.Body
	}
	return out
}

// handlePost is the JSON API consumed by the SPA: the full post plus its
// chronological neighbors for prev/next navigation.
func (a *App) handlePost(c echo.Context) error {
	slug := content.NormalizeSlug(c.QueryParam("slug"))
	if slug == "" {
		return respondJSON(c, http.StatusBadRequest, map[string]string{"error": "Missing slug parameter"})
	}
	posts, err := a.resolveAll(c)
	if err != nil {
		return err
	}
	post, ok := content.Find(posts, slug)
	if !ok {
		return respondJSON(c, http.StatusNotFound, map[string]string{"error": "Post not found"})
	}

	prev, next := content.Neighbors(posts, slug)
	resp := apiPostResponse{Post: a.toAPIPost(post, true)}
	if prev != nil {
		p := a.toAPIPost(*prev, false)
		resp.Navigation.Prev = &p
	}
	if next != nil {
		n := a.toAPIPost(*next, false)
		resp.Navigation.Next = &n
	}
	return respondJSON(c, http.StatusOK, resp)
}

func respondJSON(c echo.Context, code int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return respond(c, code, echo.MIMEApplicationJSON, body)
}

// handleRobots generates robots.txt dynamically using the site URL.
func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s/sitemap.xml\n", a.Config.URL)
	return respond(c, http.StatusOK, echo.MIMETextPlainCharsetUTF8, []byte(body))
}

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
