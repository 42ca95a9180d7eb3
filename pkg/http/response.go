package http

import (
	"encoding/json"
	"net/http"
	apperrors "petcare/pkg/errors"
)

type ErrorResponse struct {
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError renders err as {"error": ...}. Internal causes are never written to the client.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := apperrors.AsAppError(err)

	statusCode := appErr.StatusCode()
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}

	errResp := ErrorResponse{
		Error:   apperrors.UserMessage(appErr),
		Details: appErr.Details,
	}
	if appErr.Code == apperrors.CodeInternal {
		errResp.Details = nil
	}

	return WriteJSON(w, statusCode, errResp)
}
