package api

import (
	"net/http"
	"time"

	"JetScheduler/internal/domain"
	"JetScheduler/internal/models"
	"JetScheduler/internal/schedule"
)

const nextRunCount = 5

// GetSchedule returns the stored schedule, creating the default one on
// first access.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.configID(w, r)
	if !ok {
		return
	}

	var sc models.ScheduleConfig
	err := h.Configs.WithConfiguration(r.Context(), id, func() error {
		var err error
		sc, err = h.Configs.Schedules.GetOrCreate(r.Context(), id)
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.configID(w, r)
	if !ok {
		return
	}

	var patch models.SchedulePatch
	if err := decode(w, r, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}

	var sc models.ScheduleConfig
	err := h.Configs.WithConfiguration(r.Context(), id, func() error {
		if _, err := h.Configs.Schedules.GetOrCreate(r.Context(), id); err != nil {
			return err
		}
		var err error
		sc, err = h.Configs.Schedules.Update(r.Context(), id, patch)
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.configID(w, r)
	if !ok {
		return
	}

	err := h.Configs.WithConfiguration(r.Context(), id, func() error {
		return h.Configs.Schedules.Delete(r.Context(), id)
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DescribeSchedule answers with the description, cron expression and the
// next few runs. It never creates a schedule. ?locale= overrides the
// server default.
func (h *Handler) DescribeSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.configID(w, r)
	if !ok {
		return
	}

	locale := r.URL.Query().Get("locale")
	if locale == "" {
		locale = h.Locale
	}

	sc, err := h.Configs.Schedules.Get(r.Context(), id)
	if domain.IsNotFound(err) {
		writeJSON(w, http.StatusOK, descriptionResponse{Description: schedule.NotConfigured(locale)})
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	runs, err := schedule.NextRuns(sc, time.Now(), nextRunCount)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, descriptionResponse{
		Description: schedule.Describe(sc, locale),
		Cron:        schedule.ToCron(sc),
		NextRuns:    runs,
	})
}
