// Package datasource implements direct data sources that sit outside
// the provider registry, currently macroeconomic news feeds.
package datasource

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/econify/globetrends/internal/infra"
	"github.com/econify/globetrends/pkg/models"
)

// NewsSource represents one macroeconomic news feed.
type NewsSource struct {
	Name    string
	RSSURL  string
	BaseURL string
}

// DefaultNewsSources lists the configured economics news RSS feeds.
var DefaultNewsSources = []NewsSource{
	{
		Name:    "BBC Business",
		RSSURL:  "https://feeds.bbci.co.uk/news/business/rss.xml",
		BaseURL: "https://www.bbc.co.uk",
	},
	{
		Name:    "CNBC Economy",
		RSSURL:  "https://www.cnbc.com/id/20910258/device/rss/rss.html",
		BaseURL: "https://www.cnbc.com",
	},
	{
		Name:    "Guardian Economics",
		RSSURL:  "https://www.theguardian.com/business/economics/rss",
		BaseURL: "https://www.theguardian.com",
	},
}

// News fetches macroeconomic news from the configured sources.
type News struct {
	sources []NewsSource
	cache   *infra.Cache
	limiter *infra.RateLimiter
	parser  *gofeed.Parser
}

// NewNews creates a news data source with the default sources.
func NewNews() *News {
	return NewNewsWithSources(DefaultNewsSources)
}

// NewNewsWithSources creates a news data source with custom sources.
func NewNewsWithSources(sources []NewsSource) *News {
	return &News{
		sources: sources,
		cache:   infra.NewCache(10 * time.Minute),
		limiter: infra.NewRateLimiter(2, time.Second), // conservative: 2 req/s
		parser:  gofeed.NewParser(),
	}
}

// Name returns the data source name.
func (n *News) Name() string { return "Macro News" }

// GetMacroNews returns recent economics news from all configured
// sources, newest first. Failed sources are skipped.
func (n *News) GetMacroNews(ctx context.Context, limit int) ([]models.NewsArticle, error) {
	cacheKey := fmt.Sprintf("news:macro:%d", limit)
	if cached, ok := n.cache.Get(cacheKey); ok {
		return cached.([]models.NewsArticle), nil
	}

	var all []models.NewsArticle
	for _, src := range n.sources {
		articles, err := n.fetchRSS(ctx, src)
		if err != nil {
			continue
		}
		all = append(all, articles...)
	}

	sortArticlesByDate(all)

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	n.cache.Set(cacheKey, all)
	return all, nil
}

// GetCountryNews returns news mentioning the given country name.
func (n *News) GetCountryNews(ctx context.Context, country string, limit int) ([]models.NewsArticle, error) {
	cacheKey := fmt.Sprintf("news:country:%s:%d", strings.ToLower(country), limit)
	if cached, ok := n.cache.Get(cacheKey); ok {
		return cached.([]models.NewsArticle), nil
	}

	all, err := n.GetMacroNews(ctx, 0)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(country)
	var filtered []models.NewsArticle
	for _, a := range all {
		content := strings.ToLower(a.Title + " " + a.Summary)
		if strings.Contains(content, needle) {
			filtered = append(filtered, a)
		}
	}

	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}

	n.cache.Set(cacheKey, filtered)
	return filtered, nil
}

// fetchRSS parses an RSS feed and returns articles.
func (n *News) fetchRSS(ctx context.Context, src NewsSource) ([]models.NewsArticle, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := n.parser.ParseURLWithContext(src.RSSURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", src.Name, err)
	}

	articles := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := models.NewsArticle{
			Title:   item.Title,
			URL:     item.Link,
			Source:  src.Name,
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, a)
	}

	return articles, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

// sortArticlesByDate sorts newest first.
func sortArticlesByDate(articles []models.NewsArticle) {
	sort.Slice(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}
