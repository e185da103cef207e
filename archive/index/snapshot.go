package index

import (
	"errors"
	"sort"

	"github.com/Kush-Singh-26/lectern/archive/models"
)

// ErrInvalidLimit is returned by listing operations when limit <= 0.
var ErrInvalidLimit = errors.New("limit must be positive")

// Snapshot is an immutable point-in-time index of article metadata. A rebuild
// produces a fresh Snapshot; the active one is never mutated, so readers can
// keep using a reference they already hold while a rebuild runs.
type Snapshot struct {
	byID      map[int]models.ArticleMeta
	byTag     map[string][]int // ids in scan order
	byKeyword map[string][]int // ids in scan order
}

// Get returns the metadata for id.
func (s *Snapshot) Get(id int) (models.ArticleMeta, bool) {
	meta, ok := s.byID[id]
	return meta, ok
}

// Len returns the number of indexed articles.
func (s *Snapshot) Len() int {
	return len(s.byID)
}

// IDs returns every indexed id in display order.
func (s *Snapshot) IDs() []int {
	ids := make([]int, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	s.sortIDs(ids)
	return ids
}

// Tags returns every tag present in the snapshot, unordered.
func (s *Snapshot) Tags() []string {
	tags := make([]string, 0, len(s.byTag))
	for tag := range s.byTag {
		tags = append(tags, tag)
	}
	return tags
}

// ListAll returns one page of all article metadata in display order.
func (s *Snapshot) ListAll(limit, page int) ([]models.ArticleMeta, error) {
	return s.paginate(s.IDs(), limit, page)
}

// ListByTag returns one page of metadata for articles carrying tag. An
// unknown tag yields an empty page, not an error.
func (s *Snapshot) ListByTag(tag string, limit, page int) ([]models.ArticleMeta, error) {
	return s.paginate(s.sortedCopy(s.byTag[tag]), limit, page)
}

// ListByKeyword returns one page of metadata for articles carrying keyword.
func (s *Snapshot) ListByKeyword(keyword string, limit, page int) ([]models.ArticleMeta, error) {
	return s.paginate(s.sortedCopy(s.byKeyword[keyword]), limit, page)
}

// CountByTag returns the number of articles carrying tag.
func (s *Snapshot) CountByTag(tag string) int {
	return len(s.byTag[tag])
}

// CountByKeyword returns the number of articles carrying keyword.
func (s *Snapshot) CountByKeyword(keyword string) int {
	return len(s.byKeyword[keyword])
}

// PageCount returns ceil(total/limit), the number of valid pages.
func PageCount(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// paginate slices one page out of ids and resolves the metadata. A page past
// the end is an empty slice, not an error.
func (s *Snapshot) paginate(ids []int, limit, page int) ([]models.ArticleMeta, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if page < 0 {
		page = 0
	}

	start := page * limit
	if start >= len(ids) {
		return []models.ArticleMeta{}, nil
	}
	end := start + limit
	if end > len(ids) {
		end = len(ids)
	}

	metas := make([]models.ArticleMeta, 0, end-start)
	for _, id := range ids[start:end] {
		metas = append(metas, s.byID[id])
	}
	return metas, nil
}

// sortedCopy returns ids in display order without touching the snapshot's
// scan-order slices.
func (s *Snapshot) sortedCopy(ids []int) []int {
	out := make([]int, len(ids))
	copy(out, ids)
	s.sortIDs(out)
	return out
}

// sortIDs applies the canonical display order: date descending, then id
// ascending. Every listing operation uses this same ordering so pages never
// shift between calls.
func (s *Snapshot) sortIDs(ids []int) {
	sort.Slice(ids, func(i, j int) bool {
		a, b := s.byID[ids[i]], s.byID[ids[j]]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		return a.ID < b.ID
	})
}
