package api

import (
	"encoding/json"
	"net/http"
)

// JSONResponse is the envelope every endpoint answers with.
type JSONResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// SendJSON sends a success envelope with the given status code, message and data.
func SendJSON(w http.ResponseWriter, statusCode int, message string, data any) {
	writeJSON(w, statusCode, JSONResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// SendError sends an error envelope carrying err's message.
func SendError(w http.ResponseWriter, statusCode int, err error) {
	writeJSON(w, statusCode, JSONResponse{
		Status:  "error",
		Message: err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, body JSONResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
