// Package web holds the small JSON response helpers shared by all handlers.
// Every error response has the shape {"error": "..."} so the frontend can
// render failures uniformly.
package web

import (
	"encoding/json"
	"net/http"
)

// OK writes v as a JSON response with status 200.
func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// Error writes {"error": msg} with the given status code.
func Error(w http.ResponseWriter, msg string, code int) {
	JSON(w, code, map[string]string{"error": msg})
}
