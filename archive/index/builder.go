package index

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/lectern/archive/models"
)

// MetainfoFile is the metadata file expected inside every article directory.
const MetainfoFile = "metainfo.toml"

// requiredFields must be present in the [article] table of metainfo.toml.
var requiredFields = []string{"id", "title", "description", "markdown_path", "date", "tags"}

// Builder scans an articles root and produces immutable Snapshots. One bad
// directory never aborts a build; it is skipped and recorded in the Report.
type Builder struct {
	fs     afero.Fs
	root   string
	logger *slog.Logger
}

// NewBuilder creates a Builder over root on the given filesystem.
func NewBuilder(fs afero.Fs, root string, logger *slog.Logger) *Builder {
	return &Builder{fs: fs, root: root, logger: logger}
}

// Build walks the immediate subdirectories of the root and assembles a new
// Snapshot plus a validation Report. Extra metas (e.g. the embedded sample
// article) are indexed as-is before the scan. The only fatal error is an
// unreadable root directory.
func (b *Builder) Build(extra ...models.ArticleMeta) (*Snapshot, *Report, error) {
	snap := &Snapshot{
		byID:      make(map[int]models.ArticleMeta),
		byTag:     make(map[string][]int),
		byKeyword: make(map[string][]int),
	}
	report := &Report{}

	for _, meta := range extra {
		b.insert(snap, meta)
	}

	entries, err := afero.ReadDir(b.fs, b.root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read articles directory %s: %w", b.root, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		name := entry.Name()
		dirID, err := strconv.Atoi(name)
		if err != nil || dirID < 0 {
			// Not an id-named directory; ignore silently like dotfiles.
			b.logger.Debug("skipping non-article directory", "name", name)
			continue
		}

		meta, skip := b.readArticle(name, dirID)
		if skip != nil {
			b.logger.Warn("article skipped",
				"ref", skip.Ref, "reason", string(skip.Reason), "detail", skip.Detail)
			report.Skipped = append(report.Skipped, *skip)
			continue
		}

		b.insert(snap, meta)
	}

	report.Indexed = snap.Len()
	b.logger.Info("article index built",
		"indexed", report.Indexed, "skipped", len(report.Skipped))
	return snap, report, nil
}

// ReadOne re-validates a single article directory outside of a full build.
// Used by per-article refresh so its semantics match rebuild exactly.
func (b *Builder) ReadOne(id int) (models.ArticleMeta, *Skipped) {
	return b.readArticle(strconv.Itoa(id), id)
}

// readArticle validates one directory and returns its metadata, or the skip
// record explaining why it was excluded.
func (b *Builder) readArticle(dirName string, dirID int) (models.ArticleMeta, *Skipped) {
	metaPath := filepath.Join(b.root, dirName, MetainfoFile)

	data, err := afero.ReadFile(b.fs, metaPath)
	if err != nil {
		return models.ArticleMeta{}, &Skipped{Ref: dirName, Reason: ReasonMissingMetadata, Detail: MetainfoFile}
	}

	var mi models.Metainfo
	md, err := toml.Decode(string(data), &mi)
	if err != nil {
		return models.ArticleMeta{}, &Skipped{Ref: dirName, Reason: ReasonInvalidField, Detail: err.Error()}
	}

	if field, ok := missingField(md); ok {
		return models.ArticleMeta{}, &Skipped{Ref: dirName, Reason: ReasonInvalidField, Detail: field}
	}

	meta := mi.Article
	if meta.Date < 10000000 || meta.Date > 99999999 {
		return models.ArticleMeta{}, &Skipped{Ref: dirName, Reason: ReasonInvalidField, Detail: "date"}
	}

	if meta.ID != dirID {
		detail := fmt.Sprintf("directory %s declares id %d", dirName, meta.ID)
		return models.ArticleMeta{}, &Skipped{Ref: dirName, Reason: ReasonIDMismatch, Detail: detail}
	}

	contentPath := filepath.Join(b.root, dirName, meta.ContentPath)
	if ok, err := afero.Exists(b.fs, contentPath); err != nil || !ok {
		return models.ArticleMeta{}, &Skipped{Ref: dirName, Reason: ReasonContentMissing, Detail: meta.ContentPath}
	}

	return meta, nil
}

// missingField reports the first required [article] field the file does not
// define. TOML type mismatches are caught earlier by the decoder itself.
func missingField(md toml.MetaData) (string, bool) {
	for _, field := range requiredFields {
		if !md.IsDefined("article", field) {
			return field, true
		}
	}
	return "", false
}

// insert adds meta to all three lookup maps. Tag and keyword membership keeps
// scan order; display order is applied by the snapshot's listing operations.
func (b *Builder) insert(snap *Snapshot, meta models.ArticleMeta) {
	snap.byID[meta.ID] = meta
	for _, tag := range meta.Tags {
		snap.byTag[tag] = append(snap.byTag[tag], meta.ID)
	}
	for _, kw := range meta.Keywords {
		snap.byKeyword[kw] = append(snap.byKeyword[kw], meta.ID)
	}
}
