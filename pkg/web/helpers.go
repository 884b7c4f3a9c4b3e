package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

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

func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, map[string]string{"error": message})
}

// Caller retrieves the calling account ID placed in the request context by
// AuthMiddleware. Responds 401 and returns false if it is missing.
func Caller(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (string, bool) {
	callerID, ok := GetCallerID(r.Context())
	if !ok || callerID == "" {
		RespondError(w, logger, http.StatusUnauthorized, "Unauthorized: Missing or invalid account ID")
		return "", false
	}
	return callerID, true
}
