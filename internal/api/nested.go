package api

import (
	"bytes"
	"fmt"
	"net/http"

	"JetScheduler/internal/csvcodec"
	"JetScheduler/internal/domain"
	"JetScheduler/internal/models"
)

// ----------------------------
// Recipients
// ----------------------------

func (h *Handler) GetRecipients(w http.ResponseWriter, r *http.Request) {
	id, ok := h.configID(w, r)
	if !ok {
		return
	}

	rc, err := h.Configs.Recipients.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

func (h *Handler) SetRecipients(w http.ResponseWriter, r *http.Request) {
	id, ok := h.configID(w, r)
	if !ok {
		return
	}

	var req recipientsRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	var rc models.RecipientConfig
	err := h.Configs.WithConfiguration(r.Context(), id, func() error {
		var err error
		switch models.RecipientType(req.Type) {
		case models.RecipientManual:
			rc, err = h.Configs.Recipients.SetManual(r.Context(), id, req.Emails)
		case models.RecipientDatalake:
			rc, err = h.Configs.Recipients.SetDatalake(r.Context(), id, req.TableReference.model())
		default:
			err = domain.NewValidationError(fmt.Sprintf("Unknown recipient type: %s", req.Type))
		}
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

// ImportRecipients takes a text/csv body with an Email column and stores
// it as the manual recipient list.
func (h *Handler) ImportRecipients(w http.ResponseWriter, r *http.Request) {
	id, ok := h.configID(w, r)
	if !ok {
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var rc models.RecipientConfig
	err := h.Configs.WithConfiguration(r.Context(), id, func() error {
		var err error
		rc, err = h.Configs.Recipients.ImportCSV(r.Context(), id, body, csvcodec.DefaultMaxRows)
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

// ----------------------------
// Aggregations
// ----------------------------

func (h *Handler) AddAggregation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.configID(w, r)
	if !ok {
		return
	}

	var req aggregationRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	var agg models.AggregationConfig
	err := h.Configs.WithConfiguration(r.Context(), id, func() error {
		var err error
		agg, err = h.Configs.Aggregations.Add(r.Context(), id, models.AggregationDef{
			Column: req.Column,
			Type:   models.AggregationType(req.Type),
			Label:  req.Label,
		})
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, agg)
}

func (h *Handler) ListAggregations(w http.ResponseWriter, r *http.Request) {
	id, ok := h.configID(w, r)
	if !ok {
		return
	}

	aggs, err := h.Configs.Aggregations.List(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, aggs)
}

func (h *Handler) RemoveAggregation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.configID(w, r)
	if !ok {
		return
	}

	err := h.Configs.WithConfiguration(r.Context(), id, func() error {
		return h.Configs.Aggregations.Remove(r.Context(), id, r.PathValue("aggId"))
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ----------------------------
// Report source
// ----------------------------

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := h.configID(w, r)
	if !ok {
		return
	}

	rc, err := h.Configs.Reports.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

func (h *Handler) SetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := h.configID(w, r)
	if !ok {
		return
	}

	var req reportRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	var rc models.ReportConfig
	err := h.Configs.WithConfiguration(r.Context(), id, func() error {
		var err error
		rc, err = h.Configs.Reports.SetSource(r.Context(), id, req.TableReference.model())
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

func (h *Handler) ReportColumns(w http.ResponseWriter, r *http.Request) {
	id, ok := h.configID(w, r)
	if !ok {
		return
	}

	cols, err := h.Configs.Reports.Columns(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cols)
}

// ExportReport downloads the report table; ?format=csv (default) or xlsx.
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	id, ok := h.configID(w, r)
	if !ok {
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		out, err := h.Configs.Reports.ExportCSV(r.Context(), id)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, id))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(out))

	case "xlsx":
		var buf bytes.Buffer
		if err := h.Configs.Reports.ExportXLSX(r.Context(), id, &buf); err != nil {
			h.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, id))
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())

	default:
		h.writeError(w, r, domain.NewValidationError(fmt.Sprintf("Unsupported export format: %s", format)))
	}
}

// configID returns the path id after checking the configuration exists,
// so every nested resource answers 404 for an unknown configuration.
// Handlers that write nested state repeat the check under the
// configuration lock via WithConfiguration.
func (h *Handler) configID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if err := h.Configs.Exists(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return "", false
	}
	return id, true
}
