package api

import (
	"errors"
	"net/http"
	"time"

	"bode-andarilho/agenda/internal/common"
	"bode-andarilho/agenda/internal/logging"
	"bode-andarilho/agenda/internal/models/dtos"
	"bode-andarilho/agenda/internal/services"
)

// ExportAttendees handles GET /api/v1/export/attendees?token=...
//
// The token is single use; a second download of the same link is refused.
func (h *Handlers) ExportAttendees() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		token := r.URL.Query().Get("token")
		if token == "" {
			common.RespondError(w, start, nil, "missing token", http.StatusBadRequest)
			return
		}

		grant, err := h.deps.Signer.Redeem(token)
		switch {
		case errors.Is(err, common.ErrTokenConsumed):
			common.RespondError(w, start, err, "link already used", http.StatusGone)
			return
		case err != nil:
			logging.Warn("Rejected export token", "error", err)
			common.RespondError(w, start, err, "invalid or expired link", http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		event, err := h.deps.Events.Get(ctx, grant.EventID)
		if errors.Is(err, services.ErrNotFound) {
			common.RespondError(w, start, err, "event not found", http.StatusNotFound)
			return
		}
		if err != nil {
			common.RespondError(w, start, err, "could not load event")
			return
		}

		list, err := h.deps.Attendees.Attendees(ctx, event.ID)
		if err != nil {
			common.RespondError(w, start, err, "could not load attendees")
			return
		}
		count, err := h.deps.Events.Headcount(ctx, event.ID)
		if err != nil {
			common.RespondError(w, start, err, "could not load headcount")
			return
		}

		export := dtos.AttendeeExport{
			EventKey:    event.Key,
			Date:        event.Date,
			Weekday:     event.Weekday,
			Time:        event.Time,
			Lodge:       event.Lodge(),
			MealPolicy:  string(event.MealPolicy),
			Headcount:   count,
			Attendees:   make([]dtos.AttendeeEntry, 0, len(list)),
			GeneratedAt: time.Now().UTC(),
		}
		for _, c := range list {
			export.Attendees = append(export.Attendees, dtos.AttendeeEntry{
				Name:         c.Name,
				Grade:        c.Grade,
				Lodge:        c.Lodge,
				Origin:       c.Origin,
				Jurisdiction: c.Jurisdiction,
				MealTier:     string(c.MealTier),
				ConfirmedAt:  c.ConfirmedAt,
			})
		}

		logging.Info("Attendee list exported", "event_id", event.ID, "user_id", grant.UserID, "attendees", len(list))
		common.RespondSuccess(w, start, "ok", export)
	}
}
