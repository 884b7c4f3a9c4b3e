package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// ParseOffset extracts the "offset" query parameter. A missing parameter
// defaults to 0; a malformed or negative value is rejected with 400.
func ParseOffset(r *http.Request, w http.ResponseWriter, logger *slog.Logger) (int, bool) {
	value := r.URL.Query().Get("offset")
	if value == "" {
		return 0, true
	}
	intValue, err := strconv.Atoi(value)
	if err != nil || intValue < 0 {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid offset number: %s", value))
		return 0, false
	}
	return intValue, true
}
