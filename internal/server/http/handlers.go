package internalhttp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lomoval/personal-calendar/internal/app"
	"github.com/lomoval/personal-calendar/internal/calendar"
	"github.com/lomoval/personal-calendar/internal/ical"
	"github.com/lomoval/personal-calendar/internal/storage"
)

type handlers struct {
	app       *app.App
	responder responder
}

type monthGrid struct {
	Year            int             `json:"year"`
	Month           int             `json:"month"`
	Offset          int             `json:"offset"`
	DaysInMonth     int             `json:"days_in_month"`
	DaysInPrevMonth int             `json:"days_in_prev_month"`
	Cells           []calendar.Cell `json:"cells"`
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
	h.responder.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *handlers) listEvents(w http.ResponseWriter, r *http.Request, params map[string]string) {
	events, err := h.app.ListByMonth(r.Context(), params["year"], params["month"])
	if err != nil {
		h.responder.writeError(w, err)
		return
	}
	if events == nil {
		events = []storage.Event{}
	}
	h.responder.writeJSON(w, http.StatusOK, events)
}

func (h *handlers) getEvent(w http.ResponseWriter, r *http.Request, params map[string]string) {
	e, err := h.app.GetEvent(r.Context(), app.ParseID(params["id"]))
	if err != nil {
		h.responder.writeError(w, err)
		return
	}
	h.responder.writeJSON(w, http.StatusOK, e)
}

func (h *handlers) createEvent(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	e, err := h.app.CreateEvent(r.Context(), in)
	if err != nil {
		h.responder.writeError(w, err)
		return
	}
	h.responder.writeJSON(w, http.StatusCreated, e)
}

func (h *handlers) updateEvent(w http.ResponseWriter, r *http.Request, params map[string]string) {
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	e, err := h.app.UpdateEvent(r.Context(), app.ParseID(params["id"]), in)
	if err != nil {
		h.responder.writeError(w, err)
		return
	}
	h.responder.writeJSON(w, http.StatusOK, e)
}

func (h *handlers) deleteEvent(w http.ResponseWriter, r *http.Request, params map[string]string) {
	if err := h.app.RemoveEvent(r.Context(), app.ParseID(params["id"])); err != nil {
		h.responder.writeError(w, err)
		return
	}
	h.responder.writeJSON(w, http.StatusNoContent, nil)
}

func (h *handlers) exportMonth(w http.ResponseWriter, r *http.Request, params map[string]string) {
	year, month, events, ok := h.monthEvents(w, r, params)
	if !ok {
		return
	}
	name := fmt.Sprintf("%04d-%02d", year, int(month))
	body, err := ical.Export(name, events, time.Now())
	if err != nil {
		h.responder.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".ics"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (h *handlers) monthGrid(w http.ResponseWriter, r *http.Request, params map[string]string) {
	year, month, events, ok := h.monthEvents(w, r, params)
	if !ok {
		return
	}
	m := calendar.NewMonth(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), time.Sunday, events)
	h.responder.writeJSON(w, http.StatusOK, monthGrid{
		Year:            year,
		Month:           int(month),
		Offset:          m.Offset,
		DaysInMonth:     m.DaysInMonth,
		DaysInPrevMonth: m.DaysInPrevMonth,
		Cells:           m.Collect(),
	})
}

func (h *handlers) monthEvents(
	w http.ResponseWriter, r *http.Request, params map[string]string,
) (int, time.Month, []storage.Event, bool) {
	year, month, err := app.ParseMonth(params["year"], params["month"])
	if err != nil {
		h.responder.writeError(w, err)
		return 0, 0, nil, false
	}
	events, err := h.app.ListByMonth(r.Context(), params["year"], params["month"])
	if err != nil {
		h.responder.writeError(w, err)
		return 0, 0, nil, false
	}
	return year, month, events, true
}

func (h *handlers) decode(w http.ResponseWriter, r *http.Request) (app.EventInput, bool) {
	var in app.EventInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.responder.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidRequest})
		return app.EventInput{}, false
	}
	return in, true
}
