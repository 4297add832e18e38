package api

import (
	"net/http"
	"strconv"

	"github.com/sucharith-p/personal-data-lake/internal/domain"
	"github.com/sucharith-p/personal-data-lake/internal/service/reconciler"
)

const defaultSearchLimit = 5

type searchHit struct {
	Source   string  `json:"source"`
	Text     string  `json:"text"`
	Distance float64 `json:"distance"`
}

// handleSearch embeds the question and returns the nearest indexed chunks.
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	question := r.URL.Query().Get("q")
	if question == "" {
		writeError(w, domain.ErrValidation("query parameter %q is required", "q"))
		return
	}
	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, domain.ErrValidation("invalid limit %q", raw))
			return
		}
		limit = n
	}

	embedding, err := h.embedder.Embed(r.Context(), question)
	if err != nil {
		writeError(w, err)
		return
	}
	chunks, err := h.index.Nearest(r.Context(), embedding, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	hits := make([]searchHit, 0, len(chunks))
	for _, c := range chunks {
		hits = append(hits, searchHit{Source: c.SourceName, Text: c.Text, Distance: c.Distance})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"hits": hits})
}

type healthResponse struct {
	Status     string               `json:"status"`
	Reconciler reconciler.RunStatus `json:"reconciler"`
}

// handleHealthz reports liveness and the reconciler's last-run status.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Reconciler: h.runner.Status(),
	})
}
