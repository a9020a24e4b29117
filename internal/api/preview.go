package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
)

func (h *Handler) GetPreview(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Configs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Preview.Generate(r.Context(), cfg))
}

// GetPreviewEML downloads the preview as an RFC 5322 message. A preview
// that could not be produced answers 422 with its errors.
func (h *Handler) GetPreviewEML(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Configs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	p := h.Preview.Generate(r.Context(), cfg)
	if p.RenderedHTML == "" && len(p.Errors) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: strings.Join(p.Errors, "; ")})
		return
	}

	var buf bytes.Buffer
	if err := h.Mail.WriteEML(&buf, cfg, p); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "message/rfc822")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.eml"`, cfg.ID))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
