// Package urllist reads the newline-separated URL input list.
package urllist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Read loads the URL list from path. One URL per line; surrounding
// whitespace is trimmed and blank lines are skipped.
func Read(path string) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 -- path comes from the CLI flag
	if err != nil {
		return nil, fmt.Errorf("open url list: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	urls, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read url list %s: %w", path, err)
	}
	return urls, nil
}

// Parse scans r line by line, preserving input order.
func Parse(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan lines: %w", err)
	}
	return urls, nil
}
