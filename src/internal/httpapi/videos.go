package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yaffw/watchstore/src/internal/domain"
	"github.com/yaffw/watchstore/src/internal/policy"
	"github.com/yaffw/watchstore/src/internal/store"
)

type videoEntry struct {
	domain.Video
	Watched       bool                 `json:"watched"`
	Progress      *domain.ProgressMark `json:"progress,omitempty"`
	DurationLabel string               `json:"durationLabel,omitempty"`
}

type listVideosResponse struct {
	Filter domain.Filter      `json:"filter"`
	Videos []videoEntry       `json:"videos"`
	Counts store.FilterCounts `json:"counts"`
}

type catalogResponse struct {
	Phase   string         `json:"phase"`
	Videos  []domain.Video `json:"videos,omitempty"`
	Message string         `json:"message,omitempty"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toCatalogResponse(s.store.Catalog()))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.store.FetchVideos(r.Context())
	writeJSON(w, http.StatusOK, toCatalogResponse(s.store.Catalog()))
}

func toCatalogResponse(v store.CatalogView) catalogResponse {
	return catalogResponse{Phase: v.Phase.String(), Videos: v.Videos, Message: v.Message}
}

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	f, err := domain.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	videos := s.store.Filter(f)
	resp := listVideosResponse{
		Filter: f,
		Videos: make([]videoEntry, 0, len(videos)),
		Counts: s.store.Counts(),
	}
	for _, v := range videos {
		entry := videoEntry{Video: v, Watched: s.store.IsVideoWatched(v.ID)}
		if p, ok := s.store.GetProgress(v.ID); ok {
			entry.Progress = &p
		}
		if v.Duration != nil {
			entry.DurationLabel = policy.FormatDuration(*v.Duration)
		}
		resp.Videos = append(resp.Videos, entry)
	}
	writeJSON(w, http.StatusOK, resp)
}

type markWatchedRequest struct {
	Rating *int `json:"rating"`
}

func (s *Server) handleMarkWatched(w http.ResponseWriter, r *http.Request) {
	var req markWatchedRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		writeError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}
	mark := s.store.MarkAsWatched(chi.URLParam(r, "id"), req.Rating)
	writeJSON(w, http.StatusOK, mark)
}

func (s *Server) handleUnmarkWatched(w http.ResponseWriter, r *http.Request) {
	if !s.store.UnmarkAsWatched(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "video is not marked as watched")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type progressRequest struct {
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
}

func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	mark := s.store.UpdateProgress(chi.URLParam(r, "id"), req.CurrentTime, req.Duration)
	writeJSON(w, http.StatusOK, mark)
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	p, ok := s.store.GetProgress(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "no progress recorded")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type playingResponse struct {
	VideoID string `json:"videoId"`
}

func (s *Server) handleGetPlaying(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, playingResponse{VideoID: s.store.CurrentlyPlayingID()})
}

func (s *Server) handleSetPlaying(w http.ResponseWriter, r *http.Request) {
	var req playingResponse
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.store.SetCurrentlyPlayingID(req.VideoID)
	writeJSON(w, http.StatusOK, playingResponse{VideoID: s.store.CurrentlyPlayingID()})
}

func (s *Server) handleClearPlaying(w http.ResponseWriter, r *http.Request) {
	s.store.SetCurrentlyPlayingID("")
	w.WriteHeader(http.StatusNoContent)
}

type profileResponse struct {
	User  domain.User        `json:"user"`
	Stats store.ProfileStats `json:"stats"`
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, profileResponse{User: domain.LocalUser, Stats: s.store.Stats()})
}
