package api

import (
	"net/http"

	"JetScheduler/internal/models"
)

func (h *Handler) CreateConfiguration(w http.ResponseWriter, r *http.Request) {
	var req createConfigurationRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	cfg, err := h.Configs.Create(r.Context(), req.Label)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cfg)
}

// ListConfigurations returns all configurations, or those whose label
// contains ?search= when given.
func (h *Handler) ListConfigurations(w http.ResponseWriter, r *http.Request) {
	var (
		list []models.EmailConfiguration
		err  error
	)
	if search := r.URL.Query().Get("search"); search != "" {
		list, err = h.Configs.Search(r.Context(), search)
	} else {
		list, err = h.Configs.List(r.Context())
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetConfiguration(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Configs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *Handler) UpdateConfiguration(w http.ResponseWriter, r *http.Request) {
	var patch models.ConfigurationPatch
	if err := decode(w, r, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}

	cfg, err := h.Configs.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *Handler) DeleteConfiguration(w http.ResponseWriter, r *http.Request) {
	if err := h.Configs.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ExportAirflow(w http.ResponseWriter, r *http.Request) {
	out, err := h.Configs.ExportForAirflow(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) SetTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	tmpl, err := h.Configs.SetTemplate(r.Context(), r.PathValue("id"), req.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}
