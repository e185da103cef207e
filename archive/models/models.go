// Package models defines the article data types shared across the archive packages.
package models

// ArticleMeta is the indexed metadata of a single article. The id doubles as
// the name of the directory the article lives in.
type ArticleMeta struct {
	ID          int      `json:"id" toml:"id"`
	Title       string   `json:"title" toml:"title"`
	Description string   `json:"description" toml:"description"`
	Date        int      `json:"date" toml:"date"` // YYYYMMDD
	Tags        []string `json:"tags" toml:"tags"`
	Keywords    []string `json:"keywords,omitempty" toml:"keywords"`
	ContentPath string   `json:"-" toml:"markdown_path"`
}

// Article is an ArticleMeta plus its rendered HTML body. It is materialized
// on demand and only ever lives in the render cache.
type Article struct {
	ArticleMeta
	Content string `json:"content"`
}

// Metainfo mirrors the on-disk metainfo.toml layout: a single [article] table.
type Metainfo struct {
	Article ArticleMeta `toml:"article"`
}

// APIResponse is the JSON envelope every endpoint replies with.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}
