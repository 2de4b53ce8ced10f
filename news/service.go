package news

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/raykavin/coinwatch/event"
	"github.com/raykavin/coinwatch/logger"
)

// Config controls the news service
type Config struct {
	Feeds        []string
	Keywords     []string
	Refresh      time.Duration
	PerSourceCap int
}

// Service keeps a TTL cache of filtered headlines and their aggregated
// sentiment. It implements core.SentimentProvider.
type Service struct {
	sync.RWMutex
	cfg     Config
	fetcher *Fetcher
	bus     *event.Bus
	log     logger.Logger

	articles    []Article
	sentiment   SentimentResult
	lastRefresh time.Time
}

// NewService creates a news service. The event bus is optional.
func NewService(cfg Config, bus *event.Bus, log logger.Logger) *Service {
	if cfg.Refresh <= 0 {
		cfg.Refresh = time.Hour
	}
	if cfg.PerSourceCap <= 0 {
		cfg.PerSourceCap = 2
	}

	return &Service{
		cfg:     cfg,
		fetcher: NewFetcher(),
		bus:     bus,
		log:     log,
	}
}

// Start refreshes immediately and then on every refresh interval until the
// context is canceled
func (s *Service) Start(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		s.log.WithError(err).Warn("Initial news refresh failed")
	}

	ticker := time.NewTicker(s.cfg.Refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.log.WithError(err).Warn("News refresh failed")
			}
		}
	}
}

// Refresh fetches all configured feeds concurrently, filters and dedupes
// the articles and recomputes the sentiment score
func (s *Service) Refresh(ctx context.Context) error {
	if len(s.cfg.Feeds) == 0 {
		return nil
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		merged  []Article
		failure error
	)

	for _, feedURL := range s.cfg.Feeds {
		wg.Add(1)
		go func(feedURL string) {
			defer wg.Done()

			articles, err := s.fetcher.Fetch(ctx, feedURL)
			if err != nil {
				s.log.WithError(err).WithField("feed", feedURL).Debug("Feed fetch failed")
				mu.Lock()
				failure = err
				mu.Unlock()
				return
			}

			articles = FilterByKeywords(articles, s.cfg.Keywords)
			if len(articles) > s.cfg.PerSourceCap {
				articles = articles[:s.cfg.PerSourceCap]
			}

			mu.Lock()
			merged = append(merged, articles...)
			mu.Unlock()
		}(feedURL)
	}
	wg.Wait()

	if len(merged) == 0 && failure != nil {
		return fmt.Errorf("all feeds failed: %w", failure)
	}

	merged = lo.UniqBy(merged, func(article Article) uuid.UUID { return article.ID })
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].PublishedAt.After(merged[j].PublishedAt)
	})

	result := ScoreArticles(merged)

	s.Lock()
	s.articles = merged
	s.sentiment = result
	s.lastRefresh = time.Now()
	s.Unlock()

	s.log.WithFields(map[string]any{
		"articles":  len(merged),
		"sentiment": result.Label,
		"score":     result.Score,
	}).Info("News refreshed")

	if s.bus != nil {
		s.bus.Publish(event.TopicNews, merged, result)
	}

	return nil
}

// Articles returns the cached headlines, newest first
func (s *Service) Articles() []Article {
	s.RLock()
	defer s.RUnlock()

	articles := make([]Article, len(s.articles))
	copy(articles, s.articles)
	return articles
}

// Sentiment implements core.SentimentProvider. The score is only valid
// while the cache is fresh.
func (s *Service) Sentiment() (float64, string, bool) {
	s.RLock()
	defer s.RUnlock()

	if s.lastRefresh.IsZero() || time.Since(s.lastRefresh) > 2*s.cfg.Refresh {
		return 0, LabelNeutral, false
	}

	return s.sentiment.Score, s.sentiment.Label, true
}

// LastRefresh returns the time of the last successful refresh
func (s *Service) LastRefresh() time.Time {
	s.RLock()
	defer s.RUnlock()
	return s.lastRefresh
}

// Summary renders the newest headlines as a text block for notifiers
func (s *Service) Summary(limit int) string {
	s.RLock()
	defer s.RUnlock()

	if len(s.articles) == 0 {
		return "No recent headlines."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Market sentiment: %s (%.2f)\n", s.sentiment.Label, s.sentiment.Score))

	for i, article := range s.articles {
		if limit > 0 && i >= limit {
			break
		}
		builder.WriteString(fmt.Sprintf("\n- [%s] %s", article.Source, article.Title))
		if article.Link != "" {
			builder.WriteString("\n  " + article.Link)
		}
	}

	return builder.String()
}
