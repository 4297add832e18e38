package api

import (
	"encoding/json"
	"net/http"

	"github.com/sucharith-p/personal-data-lake/internal/domain"
)

type queryRequest struct {
	SQL string `json:"sql"`
}

type queryResponse struct {
	Columns  []string        `json:"columns"`
	Rows     [][]interface{} `json:"rows"`
	RowCount int             `json:"row_count"`
}

// handleQuery executes one SQL statement across all cataloged datasets.
func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrValidation("parse request body: %v", err))
		return
	}
	if req.SQL == "" {
		writeError(w, domain.ErrValidation("sql is required"))
		return
	}

	result, err := h.engine.Run(r.Context(), req.SQL)
	if err != nil {
		writeError(w, err)
		return
	}

	rows := result.Rows
	if rows == nil {
		rows = [][]interface{}{}
	}
	writeJSON(w, http.StatusOK, queryResponse{
		Columns:  result.Columns,
		Rows:     rows,
		RowCount: result.RowCount,
	})
}

type exportRequest struct {
	SQL    string `json:"sql"`
	Format string `json:"format"`
	Name   string `json:"name,omitempty"`
}

// handleExport runs a query and stores the result as a new dataset.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrValidation("parse request body: %v", err))
		return
	}

	record, err := h.export.Export(r.Context(), req.SQL, req.Format, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, datasetToAPI(record, 0))
}
