package crawllog_test

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedrs/clipcrawl/internal/crawllog"
)

// fixedClock pins the run to a known instant.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

var testInstant = time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC)

func newLog(t *testing.T) (*crawllog.Log, string) {
	t.Helper()
	root := t.TempDir()
	return crawllog.New(root, fixedClock{now: testInstant}), root
}

func TestDayPartitionedDir(t *testing.T) {
	l, root := newLog(t)
	assert.Equal(t, filepath.Join(root, "2026-08-31"), l.Dir())

	// The directory does not exist until the first append.
	_, err := os.Stat(l.Dir())
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, l.Success("https://example.com/a"))
	info, err := os.Stat(l.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSuccessRow(t *testing.T) {
	l, _ := newLog(t)
	require.NoError(t, l.Success("https://example.com/a"))
	require.NoError(t, l.Success("https://example.com/b"))

	f, err := os.Open(filepath.Join(l.Dir(), "successes.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"https://example.com/a", "200", "2026-08-31 10:30:00"}, rows[0])
	assert.Equal(t, "https://example.com/b", rows[1][0])
}

func TestFailureLines(t *testing.T) {
	l, _ := newLog(t)
	require.NoError(t, l.Failure("https://example.com/broken"))
	require.NoError(t, l.Failure("https://example.com/worse"))

	data, err := os.ReadFile(filepath.Join(l.Dir(), "fails.txt"))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/broken\nhttps://example.com/worse\n", string(data))
}

func TestGenericRecord(t *testing.T) {
	l, _ := newLog(t)
	require.NoError(t, l.Record("https://example.com/gone", "404"))

	f, err := os.Open(filepath.Join(l.Dir(), "logs.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"https://example.com/gone", "404", "2026-08-31 10:30:00"}, rows[0])
}

func TestConcurrentAppendsDoNotInterleave(t *testing.T) {
	l, _ := newLog(t)

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, l.Success(fmt.Sprintf("https://example.com/%d", n)))
			assert.NoError(t, l.Failure(fmt.Sprintf("https://example.com/fail/%d", n)))
		}(i)
	}
	wg.Wait()

	f, err := os.Open(filepath.Join(l.Dir(), "successes.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, writers)
	for _, row := range rows {
		require.Len(t, row, 3)
		assert.True(t, strings.HasPrefix(row[0], "https://example.com/"))
	}

	fails, err := os.ReadFile(filepath.Join(l.Dir(), "fails.txt"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(fails), "\n"), "\n")
	assert.Len(t, lines, writers)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "https://example.com/fail/"))
	}
}
