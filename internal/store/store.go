package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/username/cn-holiday-collector/internal/announcement"
)

// Record is one collected notice as written to holidays_{year}.json.
// ParsedData holds only the holiday map; the publish date sits beside it.
type Record struct {
	Year        int                   `json:"year"`
	Title       string                `json:"title"`
	Link        string                `json:"link"`
	Content     string                `json:"content"`
	ParsedData  announcement.Holidays `json:"parsed_data"`
	PublishDate *announcement.Date    `json:"publish_date"`
}

// Store reads and writes per-year output files under a directory
type Store struct {
	dir    string
	logger *zap.Logger
}

// New creates a store rooted at dir
func New(dir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		dir:    dir,
		logger: logger,
	}
}

// Dir returns the output directory
func (s *Store) Dir() string {
	return s.dir
}

// YearFile returns the path of the output file for year
func (s *Store) YearFile(year int) string {
	return filepath.Join(s.dir, fmt.Sprintf("holidays_%d.json", year))
}

// SaveYear writes records to holidays_{year}.json, replacing any previous file.
// Chinese text is written as-is, not \u-escaped.
func (s *Store) SaveYear(year int, records []Record) (string, error) {
	if records == nil {
		records = []Record{}
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	data, err := encodeJSON(records)
	if err != nil {
		return "", fmt.Errorf("failed to marshal records for %d: %w", year, err)
	}

	path := s.YearFile(year)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	s.logger.Info("Holidays saved",
		zap.Int("year", year),
		zap.Int("records", len(records)),
		zap.String("file", path))

	return path, nil
}

// LoadYear reads holidays_{year}.json. A missing file is reported with an
// error wrapping fs.ErrNotExist.
func (s *Store) LoadYear(year int) ([]Record, error) {
	path := s.YearFile(year)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	s.logger.Debug("Holidays loaded", zap.Int("year", year), zap.Int("records", len(records)))
	return records, nil
}

// ListFiles returns every file below the output directory, slash-separated
// and prefixed with the directory as given. Entries that cannot be read are
// logged and skipped.
func (s *Store) ListFiles() ([]string, error) {
	files := []string{}
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.dir {
				return err
			}
			s.logger.Warn("Skipping unreadable path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			files = append(files, filepath.ToSlash(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.dir, err)
	}
	return files, nil
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
