package shell

import (
	"encoding/json"
	"net/http"
)

// payload is the standard JSON response envelope.
type payload struct {
	Surface string            `json:"surface,omitempty"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Links   map[string]string `json:"links,omitempty"`
	Detail  string            `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
