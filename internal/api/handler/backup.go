package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/snapback/internal/api/request"
	"github.com/edvin/snapback/internal/api/response"
	"github.com/edvin/snapback/internal/model"
)

// BackupRunner triggers a full backup run across all configured
// databases.
type BackupRunner interface {
	RunDaily(ctx context.Context, isManual bool) error
}

// BackupReader reads backup history.
type BackupReader interface {
	GetBackupRecord(ctx context.Context, id string) (*model.BackupRecord, error)
	ListBackupRecords(ctx context.Context) ([]model.BackupRecord, error)
	CountBackupRecords(ctx context.Context) (int, error)
}

type Backup struct {
	runner BackupRunner
	store  BackupReader
}

func NewBackup(runner BackupRunner, store BackupReader) *Backup {
	return &Backup{runner: runner, store: store}
}

// CreateManual runs a manual backup of every configured database. The
// run is synchronous; the response reports its outcome.
func (h *Backup) CreateManual(w http.ResponseWriter, r *http.Request) {
	if err := h.runner.RunDaily(r.Context(), true); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.WriteMessage(w, http.StatusOK, "backup completed")
}

func (h *Backup) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListBackupRecords(r.Context())
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []model.BackupRecord{}
	}
	response.WriteJSON(w, http.StatusOK, records)
}

func (h *Backup) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.CountBackupRecords(r.Context())
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *Backup) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.store.GetBackupRecord(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if record == nil {
		response.WriteError(w, http.StatusNotFound, "backup not found")
		return
	}
	response.WriteJSON(w, http.StatusOK, record)
}
