package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/quillpost/quillpost/internal/handler/dto"
)

// writeJSONError writes the API error envelope.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.ErrorResponse{Error: message, Code: code})
}
