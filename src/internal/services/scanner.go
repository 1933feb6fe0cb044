package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"io/fs"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yaffw/watchstore/src/internal/domain"
)

// LibraryScanner serves a local directory of video files as the catalog.
type LibraryScanner struct {
	root    string
	baseURL string
	logger  zerolog.Logger
}

// NewLibraryScanner scans root on every FetchCatalog. When baseURL is set,
// video URLs are baseURL joined with the file's path relative to root;
// otherwise they are file:// URLs.
func NewLibraryScanner(root, baseURL string, logger zerolog.Logger) *LibraryScanner {
	return &LibraryScanner{root: root, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

func (s *LibraryScanner) FetchCatalog(ctx context.Context) ([]domain.Video, error) {
	videos := []domain.Video{}
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !isVideoFile(p) {
			return nil
		}
		videos = append(videos, s.videoFromFile(p))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("root", s.root).Int("videos", len(videos)).Msg("library scanned")
	return videos, nil
}

func isVideoFile(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".mp4", ".m4v", ".mkv", ".avi", ".mov", ".webm":
		return true
	}
	return false
}

func (s *LibraryScanner) videoFromFile(p string) domain.Video {
	hash := md5.Sum([]byte(p))

	filename := filepath.Base(p)
	title, year := parseFilename(strings.TrimSuffix(filename, filepath.Ext(filename)))

	v := domain.Video{
		ID:       hex.EncodeToString(hash[:]),
		Title:    title,
		VideoURL: s.urlFor(p),
	}
	if year > 0 {
		v.ReleaseYear = &year
	}
	// Files grouped under a folder take the folder name as genre,
	// e.g. <root>/Animation/Sintel.mp4.
	if rel, err := filepath.Rel(s.root, filepath.Dir(p)); err == nil && rel != "." {
		v.Genre = filepath.Base(rel)
	}
	return v
}

func (s *LibraryScanner) urlFor(p string) string {
	if s.baseURL != "" {
		rel, err := filepath.Rel(s.root, p)
		if err == nil {
			return s.baseURL + "/" + (&url.URL{Path: path.Clean(filepath.ToSlash(rel))}).EscapedPath()
		}
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = p
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

var (
	reYearParens = regexp.MustCompile(`^(.*)\s*\((\d{4})\)`)
	reYearDot    = regexp.MustCompile(`^(.*?)[\.\s](\d{4})(?:[\.\s]|$)`)
)

// parseFilename matches "Movie Name (2023)" or "Movie.Name.2023.1080p".
func parseFilename(name string) (string, int) {
	if m := reYearParens.FindStringSubmatch(name); len(m) > 2 {
		return strings.TrimSpace(m[1]), toInt(m[2])
	}
	if m := reYearDot.FindStringSubmatch(name); len(m) > 2 {
		return strings.TrimSpace(strings.ReplaceAll(m[1], ".", " ")), toInt(m[2])
	}
	return name, 0
}

func toInt(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}
