package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	StatusReady = "ready"
	StatusAlive = "alive"
	StatusOK    = "ok"

	PongMessage = "pong"
)

// PingResponse answers the connectivity ping endpoints.
type PingResponse struct {
	Status     int       `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
	ServerTime float64   `json:"server_time"`
	Message    string    `json:"message"`
}

// NewPing builds a validated pong for now. ServerTime is now as fractional
// Unix seconds.
func NewPing(now time.Time) (PingResponse, error) {
	now = now.UTC()
	ping := PingResponse{
		Status:     http.StatusOK,
		Timestamp:  now,
		ServerTime: float64(now.UnixNano()) / float64(time.Second),
		Message:    PongMessage,
	}
	return ping, ping.Validate()
}

func (p PingResponse) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Status, validation.Required, validation.Min(100), validation.Max(599)),
		validation.Field(&p.Timestamp, validation.Required),
		validation.Field(&p.ServerTime, validation.Required, validation.Min(0.0)),
		validation.Field(&p.Message, validation.Required),
	)
}

// ProbeStatus answers the readiness, liveness and watcher health endpoints.
type ProbeStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func NewProbeStatus(status string, now time.Time) (ProbeStatus, error) {
	probe := ProbeStatus{
		Status:    status,
		Timestamp: now.UTC(),
	}
	return probe, probe.Validate()
}

func (p ProbeStatus) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Status, validation.Required, validation.In(StatusReady, StatusAlive, StatusOK)),
		validation.Field(&p.Timestamp, validation.Required),
	)
}

// Validatable is implemented by every response value object.
type Validatable interface {
	Validate() error
}

// Decode reads exactly one JSON value into v, rejecting unknown fields and
// trailing data, and validates the result.
func Decode(r io.Reader, v Validatable) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return errors.New("decode: unexpected data after JSON value")
	}

	return v.Validate()
}

// DecodeBytes is Decode over a byte slice.
func DecodeBytes(data []byte, v Validatable) error {
	return Decode(bytes.NewReader(data), v)
}
