// Package testutil provides article-tree fixtures for tests.
package testutil

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/lectern/archive/models"
)

// NewArticlesFs returns an in-memory filesystem with an empty articles root.
func NewArticlesFs(root string) afero.Fs {
	fs := afero.NewMemMapFs()
	_ = fs.MkdirAll(root, 0755)
	return fs
}

// CreateSampleMeta creates a valid ArticleMeta for the given id.
func CreateSampleMeta(id int) models.ArticleMeta {
	return models.ArticleMeta{
		ID:          id,
		Title:       fmt.Sprintf("Article %d", id),
		Description: fmt.Sprintf("Description of article %d", id),
		Date:        20240101 + id%28,
		Tags:        []string{"go", "testing"},
		Keywords:    []string{"fixture"},
		ContentPath: "content.md",
	}
}

// CreateTestMarkdown creates sample markdown content for testing.
func CreateTestMarkdown(title string) string {
	return "# " + title + `

Some paragraph text with **bold** and *italic* runs.

## Details

- first item
- second item

` + "```go\nfmt.Println(\"hello\")\n```\n"
}

// WriteArticle writes a complete article directory (metainfo.toml plus the
// markdown source) under root.
func WriteArticle(fs afero.Fs, root string, meta models.ArticleMeta, markdown string) error {
	dir := filepath.Join(root, strconv.Itoa(meta.ID))
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(models.Metainfo{Article: meta}); err != nil {
		return err
	}
	if err := afero.WriteFile(fs, filepath.Join(dir, "metainfo.toml"), buf.Bytes(), 0644); err != nil {
		return err
	}

	return afero.WriteFile(fs, filepath.Join(dir, meta.ContentPath), []byte(markdown), 0644)
}

// WriteArticleTree writes n valid articles with ids 1..n under root.
func WriteArticleTree(fs afero.Fs, root string, n int) error {
	for id := 1; id <= n; id++ {
		meta := CreateSampleMeta(id)
		if err := WriteArticle(fs, root, meta, CreateTestMarkdown(meta.Title)); err != nil {
			return err
		}
	}
	return nil
}
