package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"stockroom/internal/model"

	"github.com/rs/zerolog"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and body.
func writeError(w http.ResponseWriter, status int, resp model.ErrorResponse, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("error", resp.Error).Str("message", resp.Message).Int("status", status).Msg("handler error")

	writeJSON(w, status, resp)
}

// writeServiceError maps a service error to its status code and body.
// Infrastructure errors are reported without their details.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	code := model.ErrorCode(err)
	resp := model.ErrorResponse{Error: code, Message: err.Error()}

	var shortfall *model.InsufficientStockError
	var notFound *model.ProductNotFoundError
	switch {
	case code == model.ErrCodeCompensationFailed:
		resp.Message = model.ErrCompensationFailed.Message
	case errors.As(err, &shortfall):
		resp.ProductID = shortfall.ProductID
		resp.Available = &shortfall.Available
		resp.Requested = &shortfall.Requested
	case errors.As(err, &notFound):
		resp.ProductID = notFound.ProductID
	case code == model.ErrCodeInternalError:
		logger.Error().Err(err).Msg("internal error")
		resp.Message = "internal server error"
	}

	writeError(w, statusForCode(code), resp, logger)
}

func statusForCode(code string) int {
	switch code {
	case model.ErrCodeInvalidJSON,
		model.ErrCodeInvalidParameter,
		model.ErrCodeEmptyOrder,
		model.ErrCodeInvalidQuantity,
		model.ErrCodeMissingField,
		model.ErrCodeProductNotFound,
		model.ErrCodeInvalidStatus:
		return http.StatusBadRequest
	case model.ErrCodeInsufficientStock, model.ErrCodeInvalidTransition:
		return http.StatusConflict
	case model.ErrCodeOrderNotFound, model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func invalidJSON() model.ErrorResponse {
	return model.ErrorResponse{Error: model.ErrCodeInvalidJSON, Message: "invalid request body"}
}
