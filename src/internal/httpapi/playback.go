package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yaffw/watchstore/src/internal/services"
)

// session returns the playback session for the video in the URL, creating
// it on first use. It reports false when the video is not in the catalog.
func (s *Server) session(r *http.Request) (*services.PlaybackSession, bool) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess, true
	}
	for _, v := range s.store.Videos() {
		if v.ID == id {
			sess := services.NewPlaybackSession(s.store, v, s.logger)
			s.sessions[id] = sess
			return sess, true
		}
	}
	return nil, false
}

type playResponse struct {
	Restart bool `json:"restart"`
}

type loadRequest struct {
	Duration float64 `json:"duration"`
}

type tickRequest struct {
	CurrentTime float64 `json:"currentTime"`
}

type tickResponse struct {
	Live bool `json:"live"`
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r)
	if !ok {
		writeError(w, http.StatusNotFound, "video not found")
		return
	}
	writeJSON(w, http.StatusOK, playResponse{Restart: sess.Play()})
}

func (s *Server) handlePlaybackLoad(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	sess, ok := s.session(r)
	if !ok {
		writeError(w, http.StatusNotFound, "video not found")
		return
	}
	sess.OnLoad(req.Duration)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePlaybackProgress(w http.ResponseWriter, r *http.Request) {
	var req tickRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	sess, ok := s.session(r)
	if !ok {
		writeError(w, http.StatusNotFound, "video not found")
		return
	}
	writeJSON(w, http.StatusOK, tickResponse{Live: sess.OnProgress(req.CurrentTime)})
}

func (s *Server) handlePlaybackEnd(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r)
	if !ok {
		writeError(w, http.StatusNotFound, "video not found")
		return
	}
	sess.OnEnd()
	w.WriteHeader(http.StatusNoContent)
}
