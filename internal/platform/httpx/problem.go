// Package httpx writes JSON and RFC 7807 problem responses.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// Sentinel errors shared by handlers and the remote client.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrValidation = errors.New("validation failed")
	ErrUpstream   = errors.New("upstream service unavailable")
)

// ProblemDetail is an RFC 7807 body.
type ProblemDetail struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type errorMapping struct {
	target error
	status int
	title  string
}

// Checked in order; a timeout wrapped in ErrUpstream still reports 504.
var errorMappings = []errorMapping{
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "Remote Service Timeout"},
	{ErrUpstream, http.StatusBadGateway, "Remote Service Unavailable"},
	{ErrNotFound, http.StatusNotFound, "Not Found"},
	{ErrValidation, http.StatusUnprocessableEntity, "Validation Failed"},
}

func JSON(w http.ResponseWriter, status int, data any) {
	write(w, "application/json", status, data)
}

func Problem(w http.ResponseWriter, status int, title, detail string) {
	write(w, "application/problem+json", status, ProblemDetail{Title: title, Status: status, Detail: detail})
}

// RespondError writes the problem matching err. Unknown errors become a 500
// without detail so internals do not leak.
func RespondError(w http.ResponseWriter, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			Problem(w, m.status, m.title, err.Error())
			return
		}
	}
	Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

func write(w http.ResponseWriter, contentType string, status int, data any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
