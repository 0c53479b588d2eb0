package collector

import (
	"context"
	"fmt"

	"cloudeng.io/errors"
	"go.uber.org/zap"

	"github.com/username/cn-holiday-collector/internal/announcement"
	"github.com/username/cn-holiday-collector/internal/govcn"
	"github.com/username/cn-holiday-collector/internal/store"
)

// Fetcher finds and downloads notices. *govcn.Client implements it.
type Fetcher interface {
	Search(ctx context.Context, year int) ([]govcn.SearchResult, error)
	FetchText(ctx context.Context, link string) string
}

// Collector searches the portal for each year's notices and parses them
type Collector struct {
	fetcher Fetcher
	parser  *announcement.Parser
	logger  *zap.Logger
}

// New creates a collector
func New(fetcher Fetcher, parser *announcement.Parser, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		fetcher: fetcher,
		parser:  parser,
		logger:  logger,
	}
}

// Run collects every requested year. Every year appears in the result, with
// no records when nothing could be collected. Failed searches are logged,
// skipped, and returned together once all years have been tried. Notices
// whose page could not be read are kept with the placeholder text as content.
func (c *Collector) Run(ctx context.Context, years []int) (map[int][]store.Record, error) {
	results := make(map[int][]store.Record, len(years))
	errs := &errors.M{}

	for _, year := range years {
		if err := ctx.Err(); err != nil {
			errs.Append(err)
			break
		}
		records, err := c.CollectYear(ctx, year)
		results[year] = records
		errs.Append(err)
	}

	return results, errs.Err()
}

// CollectYear collects the notices for a single year
func (c *Collector) CollectYear(ctx context.Context, year int) ([]store.Record, error) {
	records := []store.Record{}

	found, err := c.fetcher.Search(ctx, year)
	if err != nil {
		c.logger.Error("Search failed", zap.Int("year", year), zap.Error(err))
		return records, fmt.Errorf("year %d: %w", year, err)
	}
	if len(found) == 0 {
		c.logger.Warn("No notices found", zap.Int("year", year))
		return records, nil
	}

	errs := &errors.M{}
	for i, item := range found {
		if err := ctx.Err(); err != nil {
			errs.Append(err)
			break
		}

		c.logger.Info("Processing notice",
			zap.Int("year", year),
			zap.Int("item", i+1),
			zap.Int("total", len(found)),
			zap.String("title", item.Title))

		// Placeholder texts parse to an empty result and are still recorded.
		text := c.fetcher.FetchText(ctx, item.Link)
		if text == govcn.ContentNotFound || text == govcn.NetworkError {
			c.logger.Warn("Notice unavailable", zap.String("link", item.Link), zap.String("reason", text))
		}

		parsed := c.parser.Parse(text, year)
		records = append(records, store.Record{
			Year:        year,
			Title:       item.Title,
			Link:        item.Link,
			Content:     text,
			ParsedData:  parsed.Holidays,
			PublishDate: parsed.Metadata.PublishDate,
		})

		c.logger.Info("Notice parsed",
			zap.String("title", item.Title),
			zap.Int("holidays", parsed.Holidays.Len()))
	}

	return records, errs.Err()
}
