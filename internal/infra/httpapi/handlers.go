// internal/infra/httpapi/handlers.go
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"video_xapi_tracker/internal/app"
	"video_xapi_tracker/internal/domain/statement"
)

type eventRequest struct {
	Verb string `json:"verb"`

	Actor struct {
		Email     string `json:"email"`
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"actor"`

	Video struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		URL         string `json:"url"`
	} `json:"video"`

	Course struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"course"`

	Time              float64 `json:"time"`
	Length            float64 `json:"length"`
	TimeFrom          float64 `json:"time_from"`
	TimeTo            float64 `json:"time_to"`
	WatchedPercentage float64 `json:"watched_percentage"`
	Title             string  `json:"title"`
	Description       string  `json:"description"`
}

// eventFromRequest maps the wire verb onto the closed event union. This is
// the only place a verb string exists; everything past the boundary is
// typed.
func eventFromRequest(req *eventRequest) (statement.Event, error) {
	switch req.Verb {
	case "played":
		return statement.PlayEvent{Time: req.Time, Length: req.Length}, nil
	case "paused":
		return statement.PauseEvent{Time: req.Time, Length: req.Length}, nil
	case "seeked":
		return statement.SeekEvent{TimeFrom: req.TimeFrom, TimeTo: req.TimeTo, Length: req.Length}, nil
	case "completed":
		return statement.CompleteEvent{Time: req.Time, Length: req.Length, WatchedPercentage: req.WatchedPercentage}, nil
	case "bookmarked":
		return statement.BookmarkEvent{Time: req.Time, Length: req.Length, Title: req.Title, Description: req.Description}, nil
	case "experienced":
		return statement.ExperienceEvent{}, nil
	default:
		return nil, fmt.Errorf("unknown verb %q", req.Verb)
	}
}

func (h *Handler) ingestEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body: "+err.Error())
		return
	}

	ev, err := eventFromRequest(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	user := statement.Principal{
		Email:     req.Actor.Email,
		Username:  req.Actor.Username,
		FirstName: req.Actor.FirstName,
		LastName:  req.Actor.LastName,
	}
	video := statement.Video{
		ID:          req.Video.ID,
		Name:        req.Video.Name,
		Description: req.Video.Description,
		URL:         req.Video.URL,
	}
	course := statement.Course{ID: req.Course.ID, Name: req.Course.Name}

	outcome, err := h.ingest.Track(r.Context(), user, video, course, ev)
	switch {
	case errors.Is(err, app.ErrTrackingDisabled):
		writeError(w, http.StatusServiceUnavailable, "TRACKING_DISABLED", "xAPI tracking is disabled")
		return
	case errors.Is(err, app.ErrInvalidStatement):
		writeError(w, http.StatusUnprocessableEntity, "INVALID_STATEMENT", "built statement failed validation")
		return
	case err != nil:
		h.logger.Errorf("Event could not be delivered or queued: %v", err)
		writeError(w, http.StatusInternalServerError, "DELIVERY_ERROR", "statement could not be delivered or queued")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"statement_id": outcome.Statement.ID,
		"delivered":    outcome.Delivered,
		"queued":       outcome.Queued,
		"http_code":    outcome.Result.HTTPCode,
	})
}

func (h *Handler) queueStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.delivery.QueueStats(r.Context())
	if err != nil {
		h.logger.Errorf("Queue stats query failed: %v", err)
		writeError(w, http.StatusInternalServerError, "STATS_ERROR", "could not read queue statistics")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) testConnection(w http.ResponseWriter, r *http.Request) {
	result := h.delivery.TestConnection(r.Context())
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, result)
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
