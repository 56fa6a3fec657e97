package http

import (
	"net/http"
	"strings"

	"lifedash/internal/derive"
	"lifedash/internal/record"
)

type collectionInfo struct {
	Name     string   `json:"name"`
	Module   string   `json:"module"`
	Parent   string   `json:"parent,omitempty"`
	Children []string `json:"children,omitempty"`
	Statuses []string `json:"statuses,omitempty"`
}

func (s *Server) handleListCollections(w http.ResponseWriter, _ *http.Request) {
	all := record.All()
	out := make([]collectionInfo, 0, len(all))
	for _, c := range all {
		out = append(out, collectionInfo{
			Name:     c.Name,
			Module:   c.Module,
			Parent:   c.Parent,
			Children: c.Children,
			Statuses: c.Statuses,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleList returns records of a collection, narrowed by the optional
// query parameters q (free-text search), status (or "all"), tags
// (comma-separated, all must match), and parent (scope to one parent).
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("collection")
	c, err := record.Lookup(name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	recs, err := s.svc.List(r.Context(), name, r.URL.Query().Get("parent"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	query := r.URL.Query().Get("q")
	selector := r.URL.Query().Get("status")
	tags := splitTags(r.URL.Query().Get("tags"))

	recs = derive.Filter(recs,
		func(rec record.Record) bool {
			fields := make([]string, 0, len(c.SearchFields))
			for _, f := range c.SearchFields {
				fields = append(fields, rec.StringField(f))
			}
			return derive.MatchesQuery(query, fields...)
		},
		func(rec record.Record) bool {
			if c.StatusField == "" {
				return true
			}
			return derive.MatchesSelector(selector, rec.StringField(c.StatusField))
		},
		func(rec record.Record) bool {
			if c.TagsField == "" {
				return true
			}
			return derive.HasAllTags(stringList(rec.Fields()[c.TagsField]), tags)
		},
	)

	if recs == nil {
		recs = []record.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.Get(r.Context(), r.PathValue("collection"), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	collection := r.PathValue("collection")

	ownerID := strings.TrimSpace(r.Header.Get("X-Owner-ID"))
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "missing X-Owner-ID header")
		return
	}

	var payload map[string]any
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rec, err := s.svc.Create(r.Context(), collection, ownerID, r.URL.Query().Get("parent"), payload)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.invalidateViews(collection)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	collection := r.PathValue("collection")

	var fields map[string]any
	if err := decodeBody(r, &fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rec, err := s.svc.Patch(r.Context(), collection, r.PathValue("id"), fields)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.invalidateViews(collection)
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	collection := r.PathValue("collection")

	if err := s.svc.Delete(r.Context(), collection, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}

	s.invalidateViews(collection)
	w.WriteHeader(http.StatusNoContent)
}

type bulkPatchRequest struct {
	IDs    []string       `json:"ids"`
	Fields map[string]any `json:"fields"`
}

// handleBulkPatch applies one set of field changes to many records
// atomically: either every record is updated or none is.
func (s *Server) handleBulkPatch(w http.ResponseWriter, r *http.Request) {
	collection := r.PathValue("collection")

	var req bulkPatchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids must not be empty")
		return
	}

	if err := s.svc.BulkPatch(r.Context(), collection, req.IDs, req.Fields); err != nil {
		writeServiceError(w, err)
		return
	}

	s.invalidateViews(collection)
	writeJSON(w, http.StatusOK, map[string]int{"updated": len(req.IDs)})
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	collection := r.PathValue("collection")

	var req bulkDeleteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids must not be empty")
		return
	}

	if err := s.svc.BulkDelete(r.Context(), collection, req.IDs); err != nil {
		writeServiceError(w, err)
		return
	}

	s.invalidateViews(collection)
	writeJSON(w, http.StatusOK, map[string]int{"deleted": len(req.IDs)})
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
