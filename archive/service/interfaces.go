package service

import (
	"github.com/Kush-Singh-26/lectern/archive/index"
	"github.com/Kush-Singh-26/lectern/archive/metrics"
	"github.com/Kush-Singh-26/lectern/archive/models"
)

// ArticleService is the surface the HTTP layer talks to.
type ArticleService interface {
	// Lookup returns the full article for id, rendering and caching it on a miss.
	Lookup(id int) (models.Article, error)

	// List returns one page of article metadata plus the total page count.
	List(limit, page int) ([]models.ArticleMeta, int, error)
	ListByTag(tag string, limit, page int) ([]models.ArticleMeta, int, error)
	ListByKeyword(keyword string, limit, page int) ([]models.ArticleMeta, int, error)

	// Pages returns the page count for the full listing at the given limit.
	Pages(limit int) (int, error)
	PagesByTag(tag string, limit int) (int, error)

	// Refresh re-validates id's metadata from disk, re-renders its content
	// and replaces any cached entry. ErrNotFound if id is not indexed.
	Refresh(id int) error

	// ClearCache drops every cached rendering. Stats are untouched.
	ClearCache()

	// RebuildIndex rescans the articles root, atomically publishes the new
	// snapshot and invalidates cache entries for ids that disappeared.
	RebuildIndex() (*index.Report, error)

	Stats() metrics.StatsSnapshot
	ResetStats()
}

// Renderer converts raw markdown to HTML.
type Renderer interface {
	Render(src []byte) (string, error)
}

// ContentLoader reads the raw markdown source for an indexed article.
// Implementations are invoked only on cache misses and refreshes.
type ContentLoader interface {
	Load(meta models.ArticleMeta) ([]byte, error)
}
