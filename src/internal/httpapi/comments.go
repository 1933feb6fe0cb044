package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yaffw/watchstore/src/internal/domain"
	"github.com/yaffw/watchstore/src/internal/policy"
)

type commentRequest struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// handleListComments returns the thread newest first.
func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.CommentThreadEntries(chi.URLParam(r, "id")))
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	text, err := policy.NormalizeCommentText(req.Text)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	author := req.Author
	if author == "" {
		author = domain.LocalAuthor
	}

	c := s.store.AddComment(chi.URLParam(r, "id"), text, author)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleEditComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req commentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	text, err := policy.NormalizeCommentText(req.Text)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, found, allowed := s.store.EditComment(id, text)
	switch {
	case !found:
		writeError(w, http.StatusNotFound, "comment not found")
	case !allowed:
		writeError(w, http.StatusForbidden, "comment can no longer be edited")
	default:
		writeJSON(w, http.StatusOK, c)
	}
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	if !s.store.DeleteComment(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "comment not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
