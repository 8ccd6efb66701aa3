package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fartlog/fartlog-be/internal/services"
)

// ExportHandler streams a user's records as downloadable files.
type ExportHandler struct {
	service services.ExportServiceProvider
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(service services.ExportServiceProvider) *ExportHandler {
	return &ExportHandler{service: service}
}

// CSV handles GET /export/csv.
func (h *ExportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	data, err := h.service.CSV(user.ID, q.Get("date_from"), q.Get("date_to"))
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("CSV export failed")
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=fart_records.csv")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Excel handles GET /export/excel.
func (h *ExportHandler) Excel(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	data, err := h.service.Excel(user.ID, q.Get("date_from"), q.Get("date_to"))
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Excel export failed")
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=fart_records.xlsx")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
