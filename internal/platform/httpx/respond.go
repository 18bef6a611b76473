// Package httpx is the JSON surface of the SocietyHub API: success
// payloads and RFC7807 problem responses, plus request body decoding.
package httpx

import (
	"encoding/json"
	"io"
	"net/http"
)

// maxBodyBytes caps request bodies; no SocietyHub endpoint accepts
// payloads anywhere near this size.
const maxBodyBytes = 1 << 20

// ProblemDetail is the RFC7807 error body every endpoint returns.
type ProblemDetail struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// JSON writes data with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Problem writes an RFC7807 problem response.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	JSON(w, status, ProblemDetail{
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// DecodeJSON reads the request body into target, capped at one
// megabyte.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(target)
}
