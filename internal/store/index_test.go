package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUpsert(t *testing.T) {
	items := []Item{
		{Name: "trackers", Path: []string{"data/trackers.txt"}},
		{Name: "holidays", Path: []string{"old.json"}},
		{Name: "blackip", Path: []string{"data/blackip.txt"}},
	}

	t.Run("replaces in place", func(t *testing.T) {
		got := Upsert(items, Item{Name: "holidays", Path: []string{"new.json"}})
		require.Len(t, got, 3)
		require.Equal(t, "holidays", got[1].Name)
		require.Equal(t, []string{"new.json"}, got[1].Path)
		require.Equal(t, []string{"old.json"}, items[1].Path, "input must not be modified")
	})

	t.Run("appends new names", func(t *testing.T) {
		got := Upsert(items, Item{Name: "runner-images"})
		require.Len(t, got, 4)
		require.Equal(t, "runner-images", got[3].Name)
	})

	t.Run("empty index", func(t *testing.T) {
		got := Upsert(nil, Item{Name: "holidays"})
		require.Equal(t, []Item{{Name: "holidays"}}, got)
	})
}

func TestIndex_UpsertFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	ix := NewIndex(path, zap.NewNop())
	ix.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 6000000, time.UTC) }

	require.Empty(t, ix.Load())

	require.NoError(t, ix.Upsert(Item{Name: "trackers", Description: "Trackers", Path: []string{"a"}}))
	require.NoError(t, ix.Upsert(Item{
		Name:          "holidays",
		Description:   "Chinese Holiday Information",
		DescriptionZh: "中国节假日信息",
		Path:          []string{"output/holidays_2025.json"},
	}))

	ix.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, ix.Upsert(Item{
		Name:          "holidays",
		Description:   "Chinese Holiday Information",
		DescriptionZh: "中国节假日信息",
		Path:          []string{"output/holidays_2025.json", "output/holidays_2026.json"},
	}))

	items := ix.Load()
	require.Len(t, items, 2)
	require.Equal(t, "trackers", items[0].Name)
	require.Equal(t, "2025-01-02T03:04:05.006Z", items[0].Updated)
	require.Equal(t, "holidays", items[1].Name)
	require.Equal(t, "2025-06-01T00:00:00.000Z", items[1].Updated)
	require.Len(t, items[1].Path, 2)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "中国节假日信息")
	require.Contains(t, string(raw), "{\n  \"data\": [")
}

func TestIndex_CorruptFileReadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	ix := NewIndex(path, zap.NewNop())
	require.Empty(t, ix.Load())

	require.NoError(t, ix.Upsert(Item{Name: "holidays"}))
	items := ix.Load()
	require.Len(t, items, 1)
	require.Equal(t, []string{}, items[0].Path)
}
