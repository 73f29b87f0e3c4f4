package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ErrorResponse is the error envelope shared by every endpoint.
type ErrorResponse struct {
	Errors []string `json:"errors"`
}

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	// Handle nil payload
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// RespondErrors writes the error envelope with one entry per message.
func RespondErrors(w http.ResponseWriter, logger *slog.Logger, status int, messages ...string) {
	if messages == nil {
		messages = []string{}
	}
	RespondJSON(w, logger, status, ErrorResponse{Errors: messages})
}

// RespondError writes the error envelope with a single message.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondErrors(w, logger, status, message)
}

// ParseID extracts the numeric {id} path parameter. Returns the ID and a boolean indicating success.
func ParseID(w http.ResponseWriter, r *http.Request, logger *slog.Logger, entity string) (int64, bool) {
	pathValueID := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(pathValueID, 10, 64)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s ID: %s", entity, pathValueID))
		return 0, false
	}
	return id, true
}
