package vibeflow

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SiteConfig holds all configuration for the content service.
type SiteConfig struct {
	Name        string // Site name (default "Vibe Flow")
	URL         string // Canonical site URL (default "http://localhost:3000")
	Description string // Site description for meta tags and the feed

	Addr string // Listen address (default ":3000")

	AirtableAPIKey string // Record-source credential; checked per request, not at boot
	AirtableBaseID string // Airtable base identifier
	AirtableTable  string // Blog table name (default "Blog")

	RoutesFile   string   // Optional YAML file overriding StaticRoutes
	StaticRoutes []string // Site routes included in the sitemap ahead of posts
}

// defaultStaticRoutes are the fixed site routes the sitemap always lists.
var defaultStaticRoutes = []string{
	"/",
	"/services",
	"/community",
	"/blog",
	"/about",
	"/contact",
	"/faq",
	"/privacy",
	"/terms",
	"/cookies",
	"/legal",
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Vibe Flow"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.AirtableTable == "" {
		c.AirtableTable = "Blog"
	}
	if len(c.StaticRoutes) == 0 {
		c.StaticRoutes = defaultStaticRoutes
	}
}

// LoadConfig builds a SiteConfig from environment variables. A missing
// Airtable credential is not fatal here: the service boots and every
// content endpoint answers 500 until the credential is provided.
func LoadConfig() (SiteConfig, error) {
	cfg := SiteConfig{
		Name:           os.Getenv("SITE_NAME"),
		URL:            trimSlash(os.Getenv("SITE_URL")),
		Description:    os.Getenv("SITE_DESCRIPTION"),
		Addr:           os.Getenv("ADDR"),
		AirtableAPIKey: os.Getenv("AIRTABLE_API_KEY"),
		AirtableBaseID: os.Getenv("AIRTABLE_BASE_ID"),
		AirtableTable:  os.Getenv("AIRTABLE_TABLE"),
		RoutesFile:     os.Getenv("ROUTES_FILE"),
	}
	if cfg.RoutesFile != "" {
		routes, err := loadRoutesFile(cfg.RoutesFile)
		if err != nil {
			return SiteConfig{}, err
		}
		cfg.StaticRoutes = routes
	}
	cfg.setDefaults()
	return cfg, nil
}

type routesFile struct {
	Routes []string `yaml:"routes"`
}

func loadRoutesFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routes file: %w", err)
	}
	var rf routesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse routes file %s: %w", path, err)
	}
	var routes []string
	for _, r := range rf.Routes {
		if r != "" {
			routes = append(routes, r)
		}
	}
	return routes, nil
}

func trimSlash(s string) string {
	for len(s) > 1 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
