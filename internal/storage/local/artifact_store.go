// Package local persists crawl artifacts on the local filesystem.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/fedrs/clipcrawl/internal/crawl"
	"github.com/fedrs/clipcrawl/internal/metrics"
)

// invalidFilenameChars are stripped from titles before they become
// filenames (the Windows-reserved set).
const invalidFilenameChars = `/\:*?"<>|`

// Config captures the parameters for the artifact store.
type Config struct {
	// DataDir is the content-store directory all artifacts are written to.
	DataDir string `mapstructure:"data_dir"`
}

// ArtifactStore writes the per-page artifact set: the text artifact, the
// URL sidecar, and optionally the og:image bytes plus image-URL sidecar.
//
// Filename derivation is not injective: two titles that transform and
// sanitize to the same string overwrite each other's artifacts. Writes use
// plain overwrite semantics, so on a collision the last writer wins.
type ArtifactStore struct {
	dataDir    string
	downloader crawl.Downloader
	logger     *zap.Logger
}

// New creates an ArtifactStore rooted at cfg.DataDir, creating the
// directory if it does not exist.
func New(cfg Config, downloader crawl.Downloader, logger *zap.Logger) (*ArtifactStore, error) {
	if strings.TrimSpace(cfg.DataDir) == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &ArtifactStore{
		dataDir:    cfg.DataDir,
		downloader: downloader,
		logger:     logger,
	}, nil
}

// Save persists the extracted content for one task. The text artifact and
// URL sidecar must both land or Save fails; an image failure is logged and
// tolerated because the page itself was already persisted.
func (s *ArtifactStore) Save(ctx context.Context, content crawl.Content, task crawl.Task) (crawl.ArtifactSet, error) {
	title := content.Title
	if task.TitleSearch != "" {
		title = strings.ReplaceAll(title, task.TitleSearch, task.TitleReplace)
	}
	title = strings.TrimSpace(title)

	name := SanitizeFilename(title)
	set := crawl.ArtifactSet{
		Name:     name,
		TextPath: filepath.Join(s.dataDir, name+".txt"),
		URLPath:  filepath.Join(s.dataDir, name+"-url.txt"),
	}

	text := fmt.Sprintf("%s\n---\n%s\n", title, content.Body)
	if err := os.WriteFile(set.TextPath, []byte(text), 0o600); err != nil {
		return crawl.ArtifactSet{}, fmt.Errorf("write text artifact: %w", err)
	}
	if err := os.WriteFile(set.URLPath, []byte(task.URL), 0o600); err != nil {
		return crawl.ArtifactSet{}, fmt.Errorf("write url sidecar: %w", err)
	}

	if content.ImageURL != "" {
		imagePath, urlPath, err := s.saveImage(ctx, name, content.ImageURL)
		if err != nil {
			metrics.ObserveImage("failed")
			s.logger.Warn("image save failed",
				zap.String("url", task.URL),
				zap.String("image_url", content.ImageURL),
				zap.Error(err),
			)
		} else {
			set.ImagePath = imagePath
			set.ImageURLPath = urlPath
		}
	}

	return set, nil
}

// saveImage downloads the og:image into <name>.png and records the resolved
// URL in the <name>-image.txt sidecar. When a non-empty image file already
// exists the download is skipped entirely; re-running a crawl never
// re-fetches images it already has. The exists-check and the write are not
// atomic together: two workers racing on the same name may both download,
// and the last write wins, same as every other artifact.
func (s *ArtifactStore) saveImage(ctx context.Context, name, imageURL string) (string, string, error) {
	imagePath := filepath.Join(s.dataDir, name+".png")
	urlPath := filepath.Join(s.dataDir, name+"-image.txt")

	if info, err := os.Stat(imagePath); err == nil && info.Size() > 0 {
		metrics.ObserveImage("skipped")
		s.logger.Debug("image already present, skipping download", zap.String("path", imagePath))
		return imagePath, urlPath, nil
	}

	body, err := s.downloader.Open(ctx, imageURL)
	if err != nil {
		return "", "", fmt.Errorf("download image: %w", err)
	}
	defer body.Close() //nolint:errcheck // read side already consumed

	f, err := os.OpenFile(imagePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return "", "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close() //nolint:errcheck,gosec // write path already failed
		return "", "", fmt.Errorf("stream image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", "", fmt.Errorf("close image file: %w", err)
	}

	if err := os.WriteFile(urlPath, []byte(imageURL), 0o600); err != nil {
		return "", "", fmt.Errorf("write image url sidecar: %w", err)
	}
	metrics.ObserveImage("saved")
	return imagePath, urlPath, nil
}

// SanitizeFilename strips filesystem-unsafe characters from a title. It is
// deterministic and idempotent, and deliberately performs no collision
// avoidance.
func SanitizeFilename(title string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidFilenameChars, r) {
			return -1
		}
		return r
	}, title)
}
