// Package news fetches crypto headlines from RSS feeds, filters them by
// keyword and scores their aggregated sentiment with a local lexicon.
package news

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const fetchTimeout = 25 * time.Second

// Article is a normalized feed entry
type Article struct {
	ID          uuid.UUID
	Source      string
	Title       string
	Summary     string
	Link        string
	PublishedAt time.Time
}

// rssDocument covers the RSS 2.0 layout the configured feeds publish
type rssDocument struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
}

// atomDocument covers Atom feeds (binance blog publishes Atom)
type atomDocument struct {
	XMLName xml.Name `xml:"feed"`
	Title   string   `xml:"title"`
	Entries []struct {
		Title   string `xml:"title"`
		Summary string `xml:"summary"`
		Link    struct {
			Href string `xml:"href,attr"`
		} `xml:"link"`
		Updated   string `xml:"updated"`
		Published string `xml:"published"`
	} `xml:"entry"`
}

var (
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	spacePattern  = regexp.MustCompile(`\s+`)
	pubDateLayout = []string{
		time.RFC1123Z,
		time.RFC1123,
		time.RFC3339,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"2006-01-02T15:04:05Z",
	}
)

// Fetcher downloads and parses RSS feeds
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher creates a fetcher with a bounded request timeout
func NewFetcher() *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: fetchTimeout},
		userAgent: "Mozilla/5.0 (compatible; coinwatch/1.0)",
	}
}

// Fetch downloads a single feed and returns its articles, newest first
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", feedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s returned status %d", feedURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read feed %s: %w", feedURL, err)
	}

	articles, err := parseFeed(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", feedURL, err)
	}

	sort.Slice(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})

	return articles, nil
}

// parseFeed tries RSS 2.0 first and falls back to Atom
func parseFeed(body []byte) ([]Article, error) {
	var rss rssDocument
	if err := xml.Unmarshal(body, &rss); err == nil && len(rss.Channel.Items) > 0 {
		source := cleanText(rss.Channel.Title)
		return lo.Map(rss.Channel.Items, func(item rssItem, _ int) Article {
			return newArticle(source, item.Title, item.Description, item.Link, item.PubDate)
		}), nil
	}

	var atom atomDocument
	if err := xml.Unmarshal(body, &atom); err != nil {
		return nil, err
	}

	source := cleanText(atom.Title)
	articles := make([]Article, 0, len(atom.Entries))
	for _, entry := range atom.Entries {
		published := entry.Published
		if published == "" {
			published = entry.Updated
		}
		articles = append(articles, newArticle(source, entry.Title, entry.Summary, entry.Link.Href, published))
	}

	return articles, nil
}

func newArticle(source, title, summary, link, published string) Article {
	title = cleanText(title)
	return Article{
		ID:          uuid.NewSHA1(uuid.NameSpaceURL, []byte(title+link)),
		Source:      source,
		Title:       title,
		Summary:     cleanText(summary),
		Link:        strings.TrimSpace(link),
		PublishedAt: parsePublished(published),
	}
}

// cleanText strips HTML tags and collapses whitespace
func cleanText(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	).Replace(s)
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

func parsePublished(value string) time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range pubDateLayout {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// FilterByKeywords keeps articles whose title or summary contains at least
// one keyword. An empty keyword list keeps everything.
func FilterByKeywords(articles []Article, keywords []string) []Article {
	if len(keywords) == 0 {
		return articles
	}

	return lo.Filter(articles, func(article Article, _ int) bool {
		content := strings.ToLower(article.Title + " " + article.Summary)
		for _, keyword := range keywords {
			if strings.Contains(content, strings.ToLower(keyword)) {
				return true
			}
		}
		return false
	})
}
