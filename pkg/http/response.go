package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "evcharge/pkg/errors"
)

const HeaderTotalCount = "X-Total-Count"

// MessageResponse is the body shape the auth endpoints have always returned.
type MessageResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError renders err as an error object. Errors that are not AppErrors
// collapse to a generic 500 so internal details never leak.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := apperrors.AsAppError(err)

	response := apperrors.ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	}
	if appErr.Code == apperrors.CodeInternal {
		response.Message = "Internal server error"
		response.Details = nil
	}

	return WriteJSON(w, appErr.StatusCode(), response)
}

func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, data)
}

func WriteCreated(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusCreated, data)
}

func WriteMessage(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, MessageResponse{Message: message})
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WritePaginated writes the page as a bare array and reports the total in a header,
// keeping list endpoints compatible with clients that expect an array body.
func WritePaginated(w http.ResponseWriter, data any, totalCount int64) error {
	w.Header().Set(HeaderTotalCount, strconv.FormatInt(totalCount, 10))
	return WriteJSON(w, http.StatusOK, data)
}
