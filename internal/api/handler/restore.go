package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/edvin/snapback/internal/api/request"
	"github.com/edvin/snapback/internal/api/response"
	"github.com/edvin/snapback/internal/config"
	"github.com/edvin/snapback/internal/core"
)

// Restorer runs the restore pipeline for one backup.
type Restorer interface {
	RestoreOne(ctx context.Context, p core.RestoreParams) error
}

type Restore struct {
	svc Restorer
	cfg *config.Config
}

func NewRestore(svc Restorer, cfg *config.Config) *Restore {
	return &Restore{svc: svc, cfg: cfg}
}

// Create restores a backup into the requested target database. The run
// is synchronous; the restore record reaches a terminal status before
// the response is written.
func (h *Restore) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRestore
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	uri, err := h.cfg.MongoURI(req.Target)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.svc.RestoreOne(r.Context(), core.RestoreParams{
		BackupID:    req.BackupID,
		MongoURI:    uri,
		Collections: req.Collections,
	})
	switch {
	case err == nil:
		response.WriteMessage(w, http.StatusOK, "restore completed")
	case errors.Is(err, core.ErrNotFound):
		response.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrMissingStorage), errors.Is(err, core.ErrConfig):
		response.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		response.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
