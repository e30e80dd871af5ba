package vibeflow

import (
	"bytes"
	"encoding/xml"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vibeflow/site/content"
)

const sitemapMaxPosts = 1000

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.resolveAll(c)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts, time.Now().UTC())
}

func (a *App) renderSitemap(c echo.Context, posts []content.Post, now time.Time) error {
	base := a.Config.URL
	today := now.Format("2006-01-02")

	urls := make([]sitemapURL, 0, len(a.Config.StaticRoutes)+sitemapMaxPosts)
	for _, route := range a.Config.StaticRoutes {
		urls = append(urls, sitemapURL{
			Loc:        base + route,
			LastMod:    today,
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
	}

	// Posts ordered by last modification; an undated post counts as
	// modified today, which puts it ahead of everything dated.
	entries := make([]sitemapURL, 0, len(posts))
	for _, p := range posts {
		lastMod := today
		if p.Published != nil {
			lastMod = p.Published.Format("2006-01-02")
		}
		entries = append(entries, sitemapURL{
			Loc:        p.URL(base),
			LastMod:    lastMod,
			ChangeFreq: "monthly",
			Priority:   "0.6",
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].LastMod > entries[j].LastMod
	})
	if len(entries) > sitemapMaxPosts {
		entries = entries[:sitemapMaxPosts]
	}
	urls = append(urls, entries...)

	set := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(set); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "application/xml; charset=utf-8", buf.Bytes())
}
