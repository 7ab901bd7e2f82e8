package export

import (
	"fmt"
	"log/slog"
	"net/http"
)

// Handler serves failure reports as CSV downloads.
type Handler struct {
	service   *Service
	listTitle string
	logger    *slog.Logger
}

// NewHTTPHandler serves GET requests with an optional file query parameter.
func NewHTTPHandler(service *Service, listTitle string, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, listTitle: listTitle, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	fileName := r.URL.Query().Get("file")
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ReportFileName(h.listTitle, fileName)))

	result, err := h.service.WriteFailures(r.Context(), w, h.listTitle, fileName)
	if err != nil {
		// Headers are already sent once rows were streamed.
		if result.Bytes == 0 {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		h.logger.Error("failure report export failed", slog.String("error", err.Error()))
		return
	}
	h.logger.Info("failure report exported", slog.Int("rows", result.Rows), slog.Int64("bytes", result.Bytes))
}
