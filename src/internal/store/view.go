package store

import "github.com/yaffw/watchstore/src/internal/domain"

// CatalogPhase is the state the catalog screen renders.
type CatalogPhase int

const (
	PhaseEmpty CatalogPhase = iota
	PhaseLoading
	PhaseError
	PhaseContent
)

func (p CatalogPhase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseLoading:
		return "loading"
	case PhaseError:
		return "error"
	case PhaseContent:
		return "content"
	}
	return "unknown"
}

// CatalogView is a snapshot of the catalog. Videos is set only for
// PhaseContent and Message only for PhaseError.
type CatalogView struct {
	Phase   CatalogPhase
	Videos  []domain.Video
	Message string
}
