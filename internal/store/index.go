package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Item is one dataset entry in the index file
type Item struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	DescriptionZh string   `json:"description_zh,omitempty"`
	Path          []string `json:"path"`
	Updated       string   `json:"updated"`
}

type indexFile struct {
	Data []Item `json:"data"`
}

// Index maintains the shared data.json listing every collected dataset
type Index struct {
	path   string
	logger *zap.Logger
	now    func() time.Time
}

// NewIndex creates an index backed by the file at path
func NewIndex(path string, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
}

// Load returns the indexed items. A missing or corrupt file reads as empty
// so that one bad index never blocks a collection run.
func (ix *Index) Load() []Item {
	data, err := os.ReadFile(ix.path)
	if err != nil {
		if !os.IsNotExist(err) {
			ix.logger.Warn("Failed to read index, starting empty", zap.String("file", ix.path), zap.Error(err))
		}
		return []Item{}
	}

	var f indexFile
	if err := json.Unmarshal(data, &f); err != nil {
		ix.logger.Warn("Failed to parse index, starting empty", zap.String("file", ix.path), zap.Error(err))
		return []Item{}
	}
	if f.Data == nil {
		return []Item{}
	}
	return f.Data
}

// Upsert replaces the item with the same name, or appends it, stamps it with
// the current time and writes the index back.
func (ix *Index) Upsert(item Item) error {
	item.Updated = ix.now().UTC().Format("2006-01-02T15:04:05.000Z")
	if item.Path == nil {
		item.Path = []string{}
	}

	items := Upsert(ix.Load(), item)

	if dir := filepath.Dir(ix.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create index dir: %w", err)
		}
	}
	data, err := encodeJSON(indexFile{Data: items})
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	if err := os.WriteFile(ix.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}

	ix.logger.Info("Index updated",
		zap.String("file", ix.path),
		zap.String("name", item.Name),
		zap.Int("paths", len(item.Path)))

	return nil
}

// Upsert returns items with item replacing the entry of the same name in
// place, or appended when the name is new.
func Upsert(items []Item, item Item) []Item {
	out := make([]Item, 0, len(items)+1)
	replaced := false
	for _, existing := range items {
		if !replaced && existing.Name == item.Name {
			out = append(out, item)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, item)
	}
	return out
}
