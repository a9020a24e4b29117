package api

import (
	"net/http"

	"go.uber.org/zap"

	"JetScheduler/internal/configuration"
	"JetScheduler/internal/email"
	"JetScheduler/internal/preview"
)

type Handler struct {
	Configs     *configuration.Service
	Preview     *preview.Pipeline
	Mail        *email.Composer
	Locale      string
	CORSOrigins []string
	Log         *zap.Logger
}

// Routes builds the API mux wrapped in CORS and request logging.
func (h *Handler) Routes() http.Handler {
	if h.Log == nil {
		h.Log = zap.NewNop()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)

	// ----------------------------
	// Configurations
	// ----------------------------
	mux.HandleFunc("POST /api/configurations", h.CreateConfiguration)
	mux.HandleFunc("GET /api/configurations", h.ListConfigurations)
	mux.HandleFunc("GET /api/configurations/{id}", h.GetConfiguration)
	mux.HandleFunc("PUT /api/configurations/{id}", h.UpdateConfiguration)
	mux.HandleFunc("DELETE /api/configurations/{id}", h.DeleteConfiguration)
	mux.HandleFunc("GET /api/configurations/{id}/airflow", h.ExportAirflow)
	mux.HandleFunc("PUT /api/configurations/{id}/template", h.SetTemplate)

	// ----------------------------
	// Recipients
	// ----------------------------
	mux.HandleFunc("GET /api/configurations/{id}/recipients", h.GetRecipients)
	mux.HandleFunc("PUT /api/configurations/{id}/recipients", h.SetRecipients)
	mux.HandleFunc("POST /api/configurations/{id}/recipients/import", h.ImportRecipients)

	// ----------------------------
	// Aggregations
	// ----------------------------
	mux.HandleFunc("POST /api/configurations/{id}/aggregations", h.AddAggregation)
	mux.HandleFunc("GET /api/configurations/{id}/aggregations", h.ListAggregations)
	mux.HandleFunc("DELETE /api/configurations/{id}/aggregations/{aggId}", h.RemoveAggregation)

	// ----------------------------
	// Report source
	// ----------------------------
	mux.HandleFunc("GET /api/configurations/{id}/report", h.GetReport)
	mux.HandleFunc("PUT /api/configurations/{id}/report", h.SetReport)
	mux.HandleFunc("GET /api/configurations/{id}/report/columns", h.ReportColumns)
	mux.HandleFunc("GET /api/configurations/{id}/report/export", h.ExportReport)

	// ----------------------------
	// Schedule
	// ----------------------------
	mux.HandleFunc("GET /api/configurations/{id}/schedule", h.GetSchedule)
	mux.HandleFunc("PUT /api/configurations/{id}/schedule", h.UpdateSchedule)
	mux.HandleFunc("DELETE /api/configurations/{id}/schedule", h.DeleteSchedule)
	mux.HandleFunc("GET /api/configurations/{id}/schedule/description", h.DescribeSchedule)

	// ----------------------------
	// Preview
	// ----------------------------
	mux.HandleFunc("GET /api/configurations/{id}/preview", h.GetPreview)
	mux.HandleFunc("GET /api/configurations/{id}/preview.eml", h.GetPreviewEML)

	return h.cors(h.logRequests(mux))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
