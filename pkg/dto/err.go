package dto

import (
	"encoding/json"
	"net/http"
	"time"
)

// ErrorResponse is the body of every non-2xx answer the monitor produces
// itself.
type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
	Time      time.Time `json:"time"`
}

func NewErr(msg, requestID string) ErrorResponse {
	return ErrorResponse{
		Message:   msg,
		RequestID: requestID,
		Time:      time.Now().UTC(),
	}
}

func (e ErrorResponse) ToString() string {
	b, err := json.MarshalIndent(e, "", "    ")
	if err != nil {
		return ""
	}

	return string(b)
}

func (e ErrorResponse) Write(w http.ResponseWriter, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(e.ToString()))
}
