package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Kush-Singh-26/lectern/archive/index"
	"github.com/Kush-Singh-26/lectern/archive/models"
	"github.com/Kush-Singh-26/lectern/archive/render"
	"github.com/Kush-Singh-26/lectern/archive/service"
)

// listingPage is the data payload of every paginated listing endpoint.
type listingPage struct {
	Items      []models.ArticleMeta `json:"items"`
	TotalPages int                  `json:"total_pages"`
}

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	limit, page, ok := s.pagination(w, r)
	if !ok {
		return
	}

	items, totalPages, err := s.svc.List(limit, page)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, listingPage{Items: items, TotalPages: totalPages})
}

func (s *Server) handleArticlePages(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.ArticlesPerPage
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.badRequest(w, "invalid pagination parameters")
			return
		}
		limit = n
	}

	pages, err := s.svc.Pages(limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, pages)
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		s.badRequest(w, "invalid article id")
		return
	}

	article, err := s.svc.Lookup(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	etag := render.ETag(article.Content)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	s.ok(w, article)
}

func (s *Server) handleListByTag(w http.ResponseWriter, r *http.Request) {
	limit, page, ok := s.pagination(w, r)
	if !ok {
		return
	}

	items, totalPages, err := s.svc.ListByTag(r.PathValue("tag"), limit, page)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, listingPage{Items: items, TotalPages: totalPages})
}

func (s *Server) handleTagPages(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.ArticlesPerPage
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.badRequest(w, "invalid pagination parameters")
			return
		}
		limit = n
	}

	pages, err := s.svc.PagesByTag(r.PathValue("tag"), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, pages)
}

func (s *Server) handleListByKeyword(w http.ResponseWriter, r *http.Request) {
	limit, page, ok := s.pagination(w, r)
	if !ok {
		return
	}

	items, totalPages, err := s.svc.ListByKeyword(r.PathValue("keyword"), limit, page)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, listingPage{Items: items, TotalPages: totalPages})
}

func (s *Server) handleRebuildIndex(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.RebuildIndex()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, report)
}

func (s *Server) handleRefreshArticle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		s.badRequest(w, "invalid article id")
		return
	}

	if err := s.svc.Refresh(id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.message(w, "article refreshed")
}

func (s *Server) handleClearCache(w http.ResponseWriter, _ *http.Request) {
	s.svc.ClearCache()
	s.message(w, "cache cleared")
}

func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	s.ok(w, s.svc.Stats())
}

func (s *Server) handleResetStats(w http.ResponseWriter, _ *http.Request) {
	s.svc.ResetStats()
	s.message(w, "cache statistics have been reset")
}

// pagination reads the optional limit and page query parameters, defaulting
// to the configured page size and the first page.
func (s *Server) pagination(w http.ResponseWriter, r *http.Request) (limit, page int, ok bool) {
	limit = s.cfg.ArticlesPerPage
	page = 0

	q := r.URL.Query()
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.badRequest(w, "invalid pagination parameters")
			return 0, 0, false
		}
		limit = n
	}
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.badRequest(w, "invalid pagination parameters")
			return 0, 0, false
		}
		page = n
	}
	return limit, page, true
}

// fail maps service errors to status codes and writes the error envelope.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, models.APIResponse{Message: "article not found"})
	case errors.Is(err, index.ErrInvalidLimit):
		s.badRequest(w, "invalid pagination parameters")
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, models.APIResponse{Message: "internal error"})
	}
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, models.APIResponse{Message: msg})
}

func (s *Server) ok(w http.ResponseWriter, data any) {
	s.writeJSON(w, http.StatusOK, models.APIResponse{Success: true, Data: data})
}

func (s *Server) message(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusOK, models.APIResponse{Success: true, Message: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, resp models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}
