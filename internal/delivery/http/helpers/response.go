package helpers

import (
	"encoding/json"
	"net/http"
)

// Error codes for API error responses. Use these with WriteJSONError.
// The RSVP rejection codes are machine-distinguishable so a client can
// render the correct message for each outcome.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeInternalError    = "internal_error"
	ErrCodeEventInPast      = "event_in_past"
	ErrCodeTooEarly         = "too_early"
	ErrCodeAlreadyReserved  = "already_reserved"
	ErrCodeCapacityFull     = "capacity_full"
	ErrCodeNotReserved      = "not_reserved"
	ErrCodeStoreUnavailable = "store_unavailable"
)

// APIError is the error object in the standardized API response envelope.
// SecondsRemaining is only set for the too_early code.
// swagger:model APIError
type APIError struct {
	Code             string `json:"code"`
	Message          string `json:"message"`
	SecondsRemaining int    `json:"seconds_remaining,omitempty"`
}

// APIResponse is the standardized envelope for all API responses.
// On success: Data is set, Error is nil. On error: Data is nil, Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// WriteJSONSuccess sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with the given data and error set to nil.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Data: data, Error: nil})
}

// WriteJSONError sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with data nil and the given error code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Data:  nil,
		Error: &APIError{Code: code, Message: message},
	})
}

// WriteJSONTooEarly writes the 400 too_early rejection with the computed
// number of seconds until the RSVP window opens.
func WriteJSONTooEarly(w http.ResponseWriter, message string, secondsRemaining int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Data: nil,
		Error: &APIError{
			Code:             ErrCodeTooEarly,
			Message:          message,
			SecondsRemaining: secondsRemaining,
		},
	})
}
