// Package service ties the index, the render cache and the renderer together
// behind the ArticleService interface.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"

	"github.com/Kush-Singh-26/lectern/archive/cache"
	"github.com/Kush-Singh-26/lectern/archive/config"
	"github.com/Kush-Singh-26/lectern/archive/index"
	"github.com/Kush-Singh-26/lectern/archive/metrics"
	"github.com/Kush-Singh-26/lectern/archive/models"
)

// ErrNotFound is returned for lookups of ids the index does not know.
var ErrNotFound = errors.New("article not found")

type articleService struct {
	cfg      *config.Config
	builder  *index.Builder
	snapshot atomic.Pointer[index.Snapshot]
	cache    *cache.RenderCache
	stats    *metrics.CacheStats
	renderer Renderer
	loader   ContentLoader
	logger   *slog.Logger

	// flight coalesces concurrent load+render work per article id. It is
	// never held while the cache mutex is, and vice versa.
	flight singleflight.Group

	// rebuildMu serializes writers; readers never take it.
	rebuildMu sync.Mutex
}

// New builds the service and performs the initial index build. An unreadable
// articles root is fatal here and nowhere else. Passing a nil loader installs
// the default filesystem loader over fs.
func New(cfg *config.Config, fs afero.Fs, renderer Renderer, loader ContentLoader, logger *slog.Logger) (ArticleService, error) {
	if loader == nil {
		loader = &fsLoader{fs: fs, root: cfg.ArticlesDir}
	}

	s := &articleService{
		cfg:      cfg,
		builder:  index.NewBuilder(fs, cfg.ArticlesDir, logger),
		stats:    metrics.NewCacheStats(cfg.RecordCacheStats),
		renderer: renderer,
		loader:   loader,
		logger:   logger,
	}
	s.cache = cache.New(cfg.MaxCachedArticles, s.stats)

	if _, err := s.RebuildIndex(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *articleService) Lookup(id int) (models.Article, error) {
	snap := s.snapshot.Load()
	meta, ok := snap.Get(id)
	if !ok {
		return models.Article{}, ErrNotFound
	}

	if art, ok := s.cache.Get(id); ok {
		return art, nil
	}

	// Miss: coalesce the expensive load+render so a burst of requests for
	// the same id performs the work once and shares the result.
	v, err, _ := s.flight.Do(strconv.Itoa(id), func() (any, error) {
		if art, ok := s.cache.Peek(id); ok {
			return art, nil
		}
		art, err := s.loadAndRender(meta)
		if err != nil {
			return nil, err
		}
		s.cache.Put(id, art)
		return art, nil
	})
	if err != nil {
		return models.Article{}, err
	}
	return v.(models.Article), nil
}

func (s *articleService) List(limit, page int) ([]models.ArticleMeta, int, error) {
	snap := s.snapshot.Load()
	items, err := snap.ListAll(limit, page)
	if err != nil {
		return nil, 0, err
	}
	return items, index.PageCount(snap.Len(), limit), nil
}

func (s *articleService) ListByTag(tag string, limit, page int) ([]models.ArticleMeta, int, error) {
	snap := s.snapshot.Load()
	items, err := snap.ListByTag(tag, limit, page)
	if err != nil {
		return nil, 0, err
	}
	return items, index.PageCount(snap.CountByTag(tag), limit), nil
}

func (s *articleService) ListByKeyword(keyword string, limit, page int) ([]models.ArticleMeta, int, error) {
	snap := s.snapshot.Load()
	items, err := snap.ListByKeyword(keyword, limit, page)
	if err != nil {
		return nil, 0, err
	}
	return items, index.PageCount(snap.CountByKeyword(keyword), limit), nil
}

func (s *articleService) Pages(limit int) (int, error) {
	if limit <= 0 {
		return 0, index.ErrInvalidLimit
	}
	return index.PageCount(s.snapshot.Load().Len(), limit), nil
}

func (s *articleService) PagesByTag(tag string, limit int) (int, error) {
	if limit <= 0 {
		return 0, index.ErrInvalidLimit
	}
	snap := s.snapshot.Load()
	return index.PageCount(snap.CountByTag(tag), limit), nil
}

// Refresh re-validates the article's metadata from disk, not just its
// content, so a refreshed entry can never disagree with what a rebuild
// would produce.
func (s *articleService) Refresh(id int) error {
	snap := s.snapshot.Load()
	meta, ok := snap.Get(id)
	if !ok {
		return ErrNotFound
	}

	if !s.isSample(meta) {
		fresh, skip := s.builder.ReadOne(id)
		if skip != nil {
			return fmt.Errorf("article %d failed validation: %s (%s)", id, skip.Reason, skip.Detail)
		}
		meta = fresh
	}

	art, err := s.loadAndRender(meta)
	if err != nil {
		return err
	}
	s.cache.Put(id, art)
	s.logger.Info("article refreshed", "id", id)
	return nil
}

func (s *articleService) ClearCache() {
	s.cache.Clear()
	s.logger.Info("render cache cleared")
}

func (s *articleService) RebuildIndex() (*index.Report, error) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	var extra []models.ArticleMeta
	if s.cfg.SampleArticle {
		extra = append(extra, SampleMeta())
	}

	snap, report, err := s.builder.Build(extra...)
	if err != nil {
		return nil, err
	}

	// Publish atomically; in-flight readers keep the snapshot they hold.
	s.snapshot.Store(snap)

	// Close the staleness hazard: drop cached renderings of ids that are no
	// longer discoverable through the new snapshot.
	for _, id := range s.cache.Keys() {
		if _, ok := snap.Get(id); !ok {
			s.cache.Invalidate(id)
			s.logger.Info("cache entry invalidated after rebuild", "id", id)
		}
	}

	return report, nil
}

func (s *articleService) Stats() metrics.StatsSnapshot {
	return s.stats.Snapshot()
}

func (s *articleService) ResetStats() {
	s.stats.Reset()
	s.logger.Info("cache statistics reset")
}

// loadAndRender performs the expensive miss-path work: read the markdown
// source and render it to HTML.
func (s *articleService) loadAndRender(meta models.ArticleMeta) (models.Article, error) {
	var raw []byte
	var err error
	if s.isSample(meta) {
		raw = sampleMarkdown
	} else {
		raw, err = s.loader.Load(meta)
		if err != nil {
			return models.Article{}, fmt.Errorf("failed to load article %d: %w", meta.ID, err)
		}
	}

	html, err := s.renderer.Render(raw)
	if err != nil {
		return models.Article{}, fmt.Errorf("failed to render article %d: %w", meta.ID, err)
	}

	return models.Article{ArticleMeta: meta, Content: html}, nil
}

func (s *articleService) isSample(meta models.ArticleMeta) bool {
	return s.cfg.SampleArticle && meta.ID == SampleID
}

// fsLoader reads article markdown from the articles root.
type fsLoader struct {
	fs   afero.Fs
	root string
}

func (l *fsLoader) Load(meta models.ArticleMeta) ([]byte, error) {
	path := filepath.Join(l.root, strconv.Itoa(meta.ID), meta.ContentPath)
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
