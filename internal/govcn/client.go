package govcn

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/username/cn-holiday-collector/internal/config"
	"github.com/username/cn-holiday-collector/pkg/random"
)

// Placeholder texts handed to the parser when a notice cannot be fetched.
// Neither contains anything that looks like a date.
const (
	ContentNotFound = "CONTENT_NOT_FOUND"
	NetworkError    = "NETWORK_ERROR"
)

var (
	ErrContentNotFound = errors.New("content not found")
	ErrNetwork         = errors.New("network error")
)

// SearchResult is one hit on the portal's search page
type SearchResult struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Client scrapes holiday notices from the gov.cn search portal
type Client struct {
	http      *resty.Client
	cfg       config.SourceConfig
	searchURL *url.URL
	logger    *zap.Logger

	mu          sync.Mutex
	lastRequest time.Time
}

// NewClient creates a portal client from the source settings
func NewClient(cfg config.SourceConfig, logger *zap.Logger) (*Client, error) {
	searchURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source.base_url: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New()
	client.SetTimeout(cfg.GetPageTimeout())
	client.SetHeader("User-Agent", cfg.UserAgent)
	client.SetHeader("Accept-Language", "zh-CN,zh;q=0.9")
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	return &Client{
		http:      client,
		cfg:       cfg,
		searchURL: searchURL,
		logger:    logger,
	}, nil
}

// Search returns the notices the portal lists for year, in page order.
// Duplicate links are dropped.
func (c *Client) Search(ctx context.Context, year int) ([]SearchResult, error) {
	query := c.cfg.SearchWordFor(year)
	c.logger.Info("Searching portal", zap.Int("year", year), zap.String("query", query))

	doc, err := c.get(ctx, c.searchURL.String(), map[string]string{
		"code":       c.cfg.Code,
		"dataTypeId": c.cfg.DataTypeID,
		"searchWord": query,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search notices for %d: %w", year, err)
	}

	results := []SearchResult{}
	seen := make(map[string]bool)
	doc.Find(c.cfg.ResultSelector).Each(func(_ int, item *goquery.Selection) {
		anchor := item.Find(c.cfg.TitleSelector).First()
		href, ok := anchor.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		link, err := c.searchURL.Parse(strings.TrimSpace(href))
		if err != nil {
			c.logger.Warn("Skipping result with bad link", zap.String("href", href), zap.Error(err))
			return
		}
		if seen[link.String()] {
			return
		}
		seen[link.String()] = true
		results = append(results, SearchResult{
			Title: strings.TrimSpace(anchor.Text()),
			Link:  link.String(),
		})
	})

	c.logger.Info("Search results found", zap.Int("year", year), zap.Int("count", len(results)))
	return results, nil
}

// FetchContent returns the rendered text of a notice's content pane
func (c *Client) FetchContent(ctx context.Context, link string) (string, error) {
	doc, err := c.get(ctx, link, nil)
	if err != nil {
		return "", err
	}

	pane := doc.Find(c.cfg.ContentSelector).First()
	if pane.Length() == 0 {
		return "", fmt.Errorf("%w: no %q on %s", ErrContentNotFound, c.cfg.ContentSelector, link)
	}
	text := InnerText(pane.Nodes[0])
	if text == "" {
		return "", fmt.Errorf("%w: empty %q on %s", ErrContentNotFound, c.cfg.ContentSelector, link)
	}

	c.logger.Debug("Notice fetched", zap.String("link", link), zap.Int("length", len(text)))
	return text, nil
}

// FetchText is FetchContent for callers that want text no matter what:
// failures come back as ContentNotFound or NetworkError.
func (c *Client) FetchText(ctx context.Context, link string) string {
	text, err := c.FetchContent(ctx, link)
	if err == nil {
		return text
	}
	c.logger.Warn("Failed to fetch notice", zap.String("link", link), zap.Error(err))
	if errors.Is(err, ErrContentNotFound) {
		return ContentNotFound
	}
	return NetworkError
}

func (c *Client) get(ctx context.Context, link string, params map[string]string) (*goquery.Document, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	req := c.http.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}
	resp, err := req.Get(link)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %s returned %s", ErrNetwork, link, resp.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", link, err)
	}
	return doc, nil
}

// wait spaces requests at least a jittered request_delay apart
func (c *Client) wait(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lastRequest.IsZero() {
		delay := random.Jitter(c.cfg.GetRequestDelay(), c.cfg.DelayJitterPercent) - time.Since(c.lastRequest)
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	c.lastRequest = time.Now()
	return nil
}
