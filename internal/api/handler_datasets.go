package api

import (
	"io"
	"net/http"
	"time"

	"github.com/sucharith-p/personal-data-lake/internal/codec"
	"github.com/sucharith-p/personal-data-lake/internal/domain"
)

// maxUploadBytes caps in-memory multipart parsing.
const maxUploadBytes = 256 << 20

type datasetResponse struct {
	ID          string            `json:"id"`
	DisplayName string            `json:"display_name"`
	StorageKey  string            `json:"storage_key"`
	Schema      map[string]string `json:"schema"`
	CreatedAt   time.Time         `json:"created_at"`
	SizeBytes   int64             `json:"size_bytes"`
	Rows        int               `json:"rows,omitempty"`
}

func datasetToAPI(rec *domain.DatasetRecord, rows int) datasetResponse {
	return datasetResponse{
		ID:          rec.ID,
		DisplayName: rec.DisplayName,
		StorageKey:  rec.StorageKey,
		Schema:      rec.Schema,
		CreatedAt:   rec.CreatedAt,
		SizeBytes:   rec.SizeBytes,
		Rows:        rows,
	}
}

// handleUpload accepts a multipart "file" part, parses it according to its
// filename suffix, and registers it as a new dataset.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, domain.ErrValidation("parse multipart form: %v", err))
		return
	}
	part, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, domain.ErrValidation("missing multipart field %q", "file"))
		return
	}
	defer part.Close() //nolint:errcheck

	format, err := codec.FormatForName(header.Filename)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := io.ReadAll(part)
	if err != nil {
		writeError(w, domain.ErrValidation("read upload: %v", err))
		return
	}
	ds, err := codec.Decode(data, format)
	if err != nil {
		writeError(w, domain.ErrValidation("parse %s file: %v", format, err))
		return
	}

	record, err := h.ingest.Ingest(r.Context(), header.Filename, ds, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, datasetToAPI(record, len(ds.Rows)))
}

type datasetInfoResponse struct {
	DisplayName  string    `json:"display_name"`
	StorageKey   string    `json:"storage_key"`
	SizeBytes    int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}

// handleListDatasets joins catalog records with the live blob listing.
// Records whose blob is gone are omitted rather than reported as errors;
// the reconciler will collect them on its next sweep.
func (h *Handler) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := h.catalog.List(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	objects, err := h.blobs.List(ctx)
	if err != nil {
		writeError(w, err)
		return
	}

	live := make(map[string]domain.ObjectInfo, len(objects))
	for _, obj := range objects {
		live[obj.Key] = obj
	}

	infos := make([]datasetInfoResponse, 0, len(records))
	for _, rec := range records {
		obj, ok := live[rec.StorageKey]
		if !ok {
			continue
		}
		infos = append(infos, datasetInfoResponse{
			DisplayName:  rec.DisplayName,
			StorageKey:   rec.StorageKey,
			SizeBytes:    obj.Size,
			LastModified: obj.LastModified,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"datasets": infos})
}

type cleanupResponse struct {
	Deleted  []string `json:"deleted"`
	Failures int      `json:"failures"`
}

// handleCleanup runs a manual orphan sweep.
func (h *Handler) handleCleanup(w http.ResponseWriter, r *http.Request) {
	report, err := h.sweeper.CleanupOrphans(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	deleted := report.Deleted
	if deleted == nil {
		deleted = []string{}
	}
	writeJSON(w, http.StatusOK, cleanupResponse{Deleted: deleted, Failures: report.Failures})
}

// handleReconcile triggers a full sweep (cleanup plus embedding backfill).
func (h *Handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	status := h.runner.RunNow(r.Context())
	writeJSON(w, http.StatusOK, status)
}
