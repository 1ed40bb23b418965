package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"eventrsvp/internal/delivery/http/helpers"
	"eventrsvp/internal/delivery/http/middleware"
	"eventrsvp/internal/domain"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type RSVPController struct {
	Logger  *slog.Logger
	Service domain.AdmissionService
}

func NewRSVPController(logger *slog.Logger, svc domain.AdmissionService) *RSVPController {
	return &RSVPController{
		Logger:  logger,
		Service: svc,
	}
}

// RSVPSuccessResponse is the success response envelope for the RSVP endpoints (200).
type RSVPSuccessResponse struct {
	Data  *domain.EventSnapshot `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// Reserve godoc
// @Summary RSVP to an event
// @Description Reserves a seat for the authenticated user. Rejections carry a machine-distinguishable reason code: event_in_past, too_early (with seconds_remaining), already_reserved, or capacity_full.
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.RSVPSuccessResponse "data contains the updated event snapshot"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request, event_in_past, too_early, already_reserved, or capacity_full"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: store_unavailable or internal_error"
// @Router /events/{eventID}/rsvp [post]
func (c *RSVPController) Reserve(w http.ResponseWriter, r *http.Request) {
	eventID, userID, ok := c.rsvpIdentifiers(w, r)
	if !ok {
		return
	}

	snapshot, err := c.Service.TryReserve(r.Context(), eventID, userID)
	if err != nil {
		c.writeAdmissionError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, snapshot)
}

// CancelReservation godoc
// @Summary Cancel an RSVP
// @Description Releases the authenticated user's seat. Cancelling an absent reservation returns 400 with code not_reserved; a retry after a successful cancel observes the same.
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.RSVPSuccessResponse "data contains the updated event snapshot"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or not_reserved"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: store_unavailable or internal_error"
// @Router /events/{eventID}/rsvp [delete]
func (c *RSVPController) CancelReservation(w http.ResponseWriter, r *http.Request) {
	eventID, userID, ok := c.rsvpIdentifiers(w, r)
	if !ok {
		return
	}

	snapshot, err := c.Service.Cancel(r.Context(), eventID, userID)
	if err != nil {
		c.writeAdmissionError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, snapshot)
}

// ListReservedEventsSuccessResponse is the success response envelope for GET /rsvp/user (200).
type ListReservedEventsSuccessResponse struct {
	Data  []*domain.EventSnapshot `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// ListReservedEvents godoc
// @Summary Get upcoming events the current user has RSVP'd to
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListReservedEventsSuccessResponse "data is an array of event snapshots"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: store_unavailable or internal_error"
// @Router /rsvp/user [get]
func (c *RSVPController) ListReservedEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	snapshots, err := c.Service.ListReservedEvents(r.Context(), userID)
	if err != nil {
		c.writeAdmissionError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, snapshots)
}

// rsvpIdentifiers extracts and validates the event ID from the path and the
// user ID from the auth context. Malformed ids are rejected here, before any
// store access.
func (c *RSVPController) rsvpIdentifiers(w http.ResponseWriter, r *http.Request) (eventID, userID string, ok bool) {
	eventID = r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return "", "", false
	}
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return "", "", false
	}
	userID, found := middleware.UserIDFromContext(r.Context())
	if !found {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return "", "", false
	}
	return eventID, userID, true
}

func (c *RSVPController) writeAdmissionError(w http.ResponseWriter, r *http.Request, err error) {
	var tooEarly *domain.TooEarlyError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrEventInPast):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeEventInPast, "cannot RSVP to past events")
	case errors.As(err, &tooEarly):
		helpers.WriteJSONTooEarly(w, tooEarly.Error(), tooEarly.SecondsRemaining)
	case errors.Is(err, domain.ErrAlreadyReserved):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeAlreadyReserved, "you have already RSVP'd to this event")
	case errors.Is(err, domain.ErrCapacityFull):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeCapacityFull, "event is at full capacity")
	case errors.Is(err, domain.ErrNotReserved):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeNotReserved, "you have not RSVP'd to this event")
	case errors.Is(err, domain.ErrStoreUnavailable):
		c.Logger.ErrorContext(r.Context(), "store unavailable", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeStoreUnavailable, "store unavailable, please retry")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
